package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/weather-stories/internal/cache"
	"github.com/neexbeast/weather-stories/internal/llm"
	"github.com/neexbeast/weather-stories/internal/stories"
	"github.com/neexbeast/weather-stories/internal/story"
)

const dateLayout = "2006-01-02"

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	svc   StoryService
	geo   GeoResolver
	cache ResponseCache
	log   *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(svc StoryService, geo GeoResolver, cache ResponseCache, log *slog.Logger) *Handlers {
	return &Handlers{svc: svc, geo: geo, cache: cache, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeUpstreamError maps generation failures to a response with a generic
// message. Internal causes stay in the logs.
func writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, llm.ErrUnavailable) || errors.Is(err, story.ErrMalformed) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "story generation failed, try again later"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// clientIP extracts the originating client IP, preferring X-Forwarded-For.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetDaily handles GET /api/v1/stories/daily.
// Resolves the caller's location, then serves today's story: response
// cache hit → return; otherwise orchestrate (which itself only generates
// on a story-cache miss) and repopulate the response cache.
func (h *Handlers) GetDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := h.geo.Lookup(ctx, clientIP(r))
	today := time.Now().Format(dateLayout)

	key := cache.DailyKey(loc.City, loc.Country, today)
	if cached := h.cachedDays(ctx, key); len(cached) > 0 {
		writeJSON(w, http.StatusOK, cached[0])
		return
	}

	day, err := h.svc.DailyStory(ctx, loc)
	if err != nil {
		h.log.Error("daily story failed", "city", loc.City, "err", err)
		writeUpstreamError(w, err)
		return
	}

	h.storeDays(ctx, key, []stories.DayStory{*day})
	writeJSON(w, http.StatusOK, day)
}

// GetWeekly handles GET /api/v1/stories/weekly.
func (h *Handlers) GetWeekly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := h.geo.Lookup(ctx, clientIP(r))
	today := time.Now().Format(dateLayout)

	key := cache.WeeklyKey(loc.City, loc.Country, today)
	if cached := h.cachedDays(ctx, key); len(cached) > 0 {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	days, err := h.svc.WeeklyStories(ctx, loc)
	if err != nil {
		h.log.Error("weekly stories failed", "city", loc.City, "err", err)
		writeUpstreamError(w, err)
		return
	}

	h.storeDays(ctx, key, days)
	writeJSON(w, http.StatusOK, days)
}

// GetChain handles GET /api/v1/stories/{id}/chain.
func (h *Handlers) GetChain(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid story id"})
		return
	}

	chain, err := h.svc.StoryChain(r.Context(), id)
	if err != nil {
		h.log.Error("story chain failed", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if chain == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "story not found"})
		return
	}

	writeJSON(w, http.StatusOK, chain)
}

// cachedDays reads the response cache; failures are logged, never surfaced.
func (h *Handlers) cachedDays(ctx context.Context, key string) []stories.DayStory {
	days, err := h.cache.Get(ctx, key)
	if err != nil {
		h.log.Warn("response cache get failed", "key", key, "err", err)
		return nil
	}
	return days
}

// storeDays writes the response cache; failures are logged, never surfaced.
func (h *Handlers) storeDays(ctx context.Context, key string, days []stories.DayStory) {
	if err := h.cache.Set(ctx, key, days); err != nil {
		h.log.Warn("response cache set failed", "key", key, "err", err)
	}
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
