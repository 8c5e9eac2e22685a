// Package stories holds the continuity cache orchestrator: given a
// location and a date range it serves stored stories where they exist,
// generates only the missing days, and threads each new story onto the
// continuity chain.
package stories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/weather-stories/internal/geoip"
	"github.com/neexbeast/weather-stories/internal/storage"
	"github.com/neexbeast/weather-stories/internal/story"
	"github.com/neexbeast/weather-stories/internal/weather"
)

// Placeholder returned for a day the generator skipped. The day stays
// unpersisted and becomes a cache miss on the next request.
const noStoryPlaceholder = "No story generated for this day."

// WeatherSummary is the per-day weather block in an assembled response.
type WeatherSummary struct {
	Code           int     `json:"weathercode"`
	Description    string  `json:"description"`
	TemperatureMax float64 `json:"temperature_max"`
	TemperatureMin float64 `json:"temperature_min"`
	Sunrise        string  `json:"sunrise"`
	Sunset         string  `json:"sunset"`
	UVIndexMax     float64 `json:"uv_index_max"`
}

// DayStory is one assembled response entry.
type DayStory struct {
	Date    string         `json:"date"`
	Story   string         `json:"story"`
	Weather WeatherSummary `json:"weather"`
}

// Service coordinates the store, the weather source, and the generator.
type Service struct {
	store    Store
	forecast Forecaster
	gen      Generator
	log      *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, forecast Forecaster, gen Generator, log *slog.Logger) *Service {
	return &Service{store: store, forecast: forecast, gen: gen, log: log}
}

// DailyStory returns today's story for the location, generating it if absent.
func (s *Service) DailyStory(ctx context.Context, loc geoip.Location) (*DayStory, error) {
	days, err := s.storiesForRange(ctx, loc, 1)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("weather source returned no days")
	}
	return &days[0], nil
}

// WeeklyStories returns stories for today through +6 days, ordered
// ascending by date, generating any missing days.
func (s *Service) WeeklyStories(ctx context.Context, loc geoip.Location) ([]DayStory, error) {
	return s.storiesForRange(ctx, loc, 7)
}

// StoryChain returns the continuity trace for a story: depth 0 is the
// requested story, increasing depth walks back through its predecessors,
// capped at 7 hops. Returns nil, nil when the id has no story.
func (s *Service) StoryChain(ctx context.Context, storyID int) ([]storage.ChainEntry, error) {
	return s.store.StoryChain(ctx, storyID, storage.ChainMaxDepth)
}

// storiesForRange runs the per-request state machine: resolve location,
// fetch and persist weather, probe the story cache, generate only the
// missing days, persist, assemble.
func (s *Service) storiesForRange(ctx context.Context, loc geoip.Location, count int) ([]DayStory, error) {
	location, err := s.store.UpsertLocation(ctx, loc.City, loc.Country, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, fmt.Errorf("resolving location: %w", err)
	}

	// The forecast fetch and the latest-story probe are independent.
	var forecast *weather.Forecast
	var latest *storage.Story

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := s.forecast.Fetch(gctx, location.Latitude, location.Longitude, count)
		if err != nil {
			return fmt.Errorf("fetching forecast: %w", err)
		}
		forecast = f
		return nil
	})
	g.Go(func() error {
		st, err := s.store.FindLatestStory(gctx, location.ID)
		if err != nil {
			return fmt.Errorf("probing latest story: %w", err)
		}
		latest = st
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	days := weather.Normalize(forecast)
	if len(days) == 0 {
		return nil, fmt.Errorf("weather source returned no days")
	}

	// Persist weather write-if-absent. A failed day is logged and dropped:
	// its story cannot be written without the weather row, so it falls out
	// of this request and is retried on the next one.
	weatherByDate := make(map[string]*storage.DailyWeather, len(days))
	for _, d := range days {
		w, err := s.store.InsertWeatherIfAbsent(ctx, location.ID, d)
		if err != nil {
			s.log.Error("storing weather failed", "location", location.ID, "date", d.Date, "err", err)
			continue
		}
		weatherByDate[d.Date] = w
	}

	cached, err := s.store.FindStoriesInRange(ctx, location.ID, days[0].Date, days[len(days)-1].Date)
	if err != nil {
		return nil, fmt.Errorf("probing story cache: %w", err)
	}

	storyByDate := make(map[string]storage.Story, len(cached))
	for _, st := range cached {
		storyByDate[st.Date] = st
	}

	// Completeness is judged against the requested day count, not a
	// hardcoded week: a fully cached range never invokes the generator.
	if len(storyByDate) == len(days) {
		return s.assemble(days, weatherByDate, storyByDate), nil
	}

	var missing []weather.Day
	for _, d := range days {
		if _, ok := storyByDate[d.Date]; !ok {
			missing = append(missing, d)
		}
	}

	// Seed the chain from the most recent prior story. A seed is only
	// valid if it narrates an earlier date than the first day we are
	// about to generate.
	var prevID *int
	prevText := ""
	if latest != nil && latest.Date < missing[0].Date {
		id := latest.ID
		prevID = &id
		prevText = latest.Text
	}

	if count == 1 {
		text, wordCount, err := s.gen.Daily(ctx, missing[0], prevText)
		if err != nil {
			return nil, err
		}
		s.persist(ctx, location.ID, weatherByDate, storyByDate, missing[0].Date, text, prevID, wordCount)
	} else {
		generated, err := s.gen.Weekly(ctx, missing)
		if err != nil {
			return nil, err
		}

		// Thread previous_story_id forward day-by-day within the batch so
		// each new story links to the one generated just before it.
		for _, d := range missing {
			text, ok := generated[d.Date]
			if !ok || strings.TrimSpace(text) == "" {
				s.log.Warn("no story generated", "location", location.ID, "date", d.Date)
				continue
			}
			st := s.persist(ctx, location.ID, weatherByDate, storyByDate, d.Date, text, prevID, story.WordCount(text))
			if st != nil {
				id := st.ID
				prevID = &id
			}
		}
	}

	return s.assemble(days, weatherByDate, storyByDate), nil
}

// persist writes one generated story. Failures are logged, not fatal: the
// day simply stays ungenerated and is retried on a later request. The
// stored row (which may be a concurrent winner's) is recorded in
// storyByDate and returned.
func (s *Service) persist(ctx context.Context, locationID int, weatherByDate map[string]*storage.DailyWeather, storyByDate map[string]storage.Story, date, text string, previousStoryID *int, wordCount int) *storage.Story {
	w, ok := weatherByDate[date]
	if !ok {
		s.log.Warn("skipping story without weather row", "location", locationID, "date", date)
		return nil
	}

	st, err := s.store.InsertStoryIfAbsent(ctx, locationID, w.ID, date, text, previousStoryID, wordCount)
	if err != nil {
		s.log.Error("storing story failed", "location", locationID, "date", date, "err", err)
		return nil
	}

	storyByDate[date] = *st
	return st
}

// assemble merges cached and freshly generated stories into the ordered
// response. Days without a story get the placeholder text.
func (s *Service) assemble(days []weather.Day, weatherByDate map[string]*storage.DailyWeather, storyByDate map[string]storage.Story) []DayStory {
	out := make([]DayStory, 0, len(days))
	for _, d := range days {
		entry := DayStory{
			Date:  d.Date,
			Story: noStoryPlaceholder,
			Weather: WeatherSummary{
				Code:           d.Code,
				Description:    d.Description,
				TemperatureMax: d.TemperatureMax,
				TemperatureMin: d.TemperatureMin,
				Sunrise:        d.Sunrise,
				Sunset:         d.Sunset,
				UVIndexMax:     d.UVIndexMax,
			},
		}

		// Prefer the stored weather row: descriptions are derived once at
		// write time and never recomputed.
		if w, ok := weatherByDate[d.Date]; ok {
			entry.Weather = WeatherSummary{
				Code:           w.Code,
				Description:    w.Description,
				TemperatureMax: w.TemperatureMax,
				TemperatureMin: w.TemperatureMin,
				Sunrise:        w.Sunrise,
				Sunset:         w.Sunset,
				UVIndexMax:     w.UVIndexMax,
			}
		}

		if st, ok := storyByDate[d.Date]; ok {
			entry.Story = st.Text
		}

		out = append(out, entry)
	}
	return out
}
