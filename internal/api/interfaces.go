package api

import (
	"context"

	"github.com/neexbeast/weather-stories/internal/geoip"
	"github.com/neexbeast/weather-stories/internal/storage"
	"github.com/neexbeast/weather-stories/internal/stories"
)

// StoryService defines the orchestration operations needed by handlers.
type StoryService interface {
	DailyStory(ctx context.Context, loc geoip.Location) (*stories.DayStory, error)
	WeeklyStories(ctx context.Context, loc geoip.Location) ([]stories.DayStory, error)
	StoryChain(ctx context.Context, storyID int) ([]storage.ChainEntry, error)
}

// GeoResolver resolves a client IP to a location. Implementations never
// fail; they fall back to a fixed default location.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) geoip.Location
}

// ResponseCache defines the response-cache operations needed by handlers.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]stories.DayStory, error)
	Set(ctx context.Context, key string, days []stories.DayStory) error
}
