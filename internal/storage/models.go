package storage

import "time"

// Location is a stored city/country pair. The pair is unique; rows are
// created on first lookup and never deleted.
type Location struct {
	ID           int
	City         string
	Country      string
	Latitude     float64
	Longitude    float64
	LastAccessed time.Time
}

// DailyWeather is one stored forecast day. Immutable once written:
// re-fetching weather for an existing (location, date) is a no-op.
type DailyWeather struct {
	ID             int
	LocationID     int
	Date           string
	Code           int
	Description    string
	TemperatureMax float64
	TemperatureMin float64
	Sunrise        string
	Sunset         string
	UVIndexMax     float64
	CreatedAt      time.Time
}

// Story is one stored narrative. PreviousStoryID links each story to the
// one it was generated after, forming a singly-linked chain through time;
// nil marks the start of a chain.
type Story struct {
	ID              int
	LocationID      int
	WeatherID       int
	Date            string
	Text            string
	PreviousStoryID *int
	WordCount       int
	CreatedAt       time.Time
}

// ChainEntry is one hop of a continuity chain. Depth 0 is the story the
// traversal started from; higher depths are older predecessors.
type ChainEntry struct {
	ID    int    `json:"id"`
	Date  string `json:"date"`
	Story string `json:"story"`
	Depth int    `json:"depth"`
}
