package stories

import (
	"context"

	"github.com/neexbeast/weather-stories/internal/storage"
	"github.com/neexbeast/weather-stories/internal/weather"
)

// Store defines the persistence operations needed by the Service.
// *storage.Repository satisfies this interface.
type Store interface {
	UpsertLocation(ctx context.Context, city, country string, latitude, longitude float64) (*storage.Location, error)
	InsertWeatherIfAbsent(ctx context.Context, locationID int, day weather.Day) (*storage.DailyWeather, error)
	FindStoriesInRange(ctx context.Context, locationID int, start, end string) ([]storage.Story, error)
	FindLatestStory(ctx context.Context, locationID int) (*storage.Story, error)
	InsertStoryIfAbsent(ctx context.Context, locationID, weatherID int, date, text string, previousStoryID *int, wordCount int) (*storage.Story, error)
	StoryChain(ctx context.Context, storyID, maxDepth int) ([]storage.ChainEntry, error)
}

// Forecaster fetches a multi-day forecast for a coordinate pair.
type Forecaster interface {
	Fetch(ctx context.Context, latitude, longitude float64, days int) (*weather.Forecast, error)
}

// Generator produces narrative text for normalized weather days.
type Generator interface {
	Daily(ctx context.Context, day weather.Day, previous string) (string, int, error)
	Weekly(ctx context.Context, days []weather.Day) (map[string]string, error)
}
