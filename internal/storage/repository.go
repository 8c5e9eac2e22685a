package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/weather-stories/internal/weather"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for locations, daily weather, and
// stories. All inserts are retry-safe: writing a (location, date) pair
// that already exists is a no-op that returns the existing row.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const locationColumns = "id, city_name, country, latitude, longitude, last_accessed"

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.City, &l.Country, &l.Latitude, &l.Longitude, &l.LastAccessed)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindLocation returns the location for a city/country pair, or nil, nil
// when it has never been looked up.
func (r *Repository) FindLocation(ctx context.Context, city, country string) (*Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations WHERE city_name = $1 AND country = $2`

	l, err := scanLocation(r.q.QueryRow(ctx, q, city, country))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying location %s/%s: %w", city, country, err)
	}
	return l, nil
}

// UpsertLocation inserts the location if absent; otherwise it only touches
// last_accessed. The stored row is returned either way.
func (r *Repository) UpsertLocation(ctx context.Context, city, country string, latitude, longitude float64) (*Location, error) {
	const q = `
		INSERT INTO locations (city_name, country, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (city_name, country) DO UPDATE
		SET last_accessed = NOW()
		RETURNING ` + locationColumns

	l, err := scanLocation(r.q.QueryRow(ctx, q, city, country, latitude, longitude))
	if err != nil {
		return nil, fmt.Errorf("upserting location %s/%s: %w", city, country, err)
	}
	return l, nil
}

const weatherColumns = "id, location_id, date, weathercode, description, temperature_max, temperature_min, sunrise, sunset, uv_index_max, created_at"

func scanWeather(row pgx.Row) (*DailyWeather, error) {
	var w DailyWeather
	err := row.Scan(&w.ID, &w.LocationID, &w.Date, &w.Code, &w.Description,
		&w.TemperatureMax, &w.TemperatureMin, &w.Sunrise, &w.Sunset, &w.UVIndexMax, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindWeather returns the stored weather for a location/date, or nil, nil.
func (r *Repository) FindWeather(ctx context.Context, locationID int, date string) (*DailyWeather, error) {
	const q = `SELECT ` + weatherColumns + ` FROM daily_weather WHERE location_id = $1 AND date = $2`

	w, err := scanWeather(r.q.QueryRow(ctx, q, locationID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying weather for location %d date %s: %w", locationID, date, err)
	}
	return w, nil
}

// InsertWeatherIfAbsent stores one normalized forecast day. If a row for
// the (location, date) pair already exists it is left untouched and
// returned as-is; weather rows are immutable once written.
func (r *Repository) InsertWeatherIfAbsent(ctx context.Context, locationID int, day weather.Day) (*DailyWeather, error) {
	const q = `
		INSERT INTO daily_weather (location_id, date, weathercode, description, temperature_max, temperature_min, sunrise, sunset, uv_index_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (location_id, date) DO NOTHING
		RETURNING ` + weatherColumns

	w, err := scanWeather(r.q.QueryRow(ctx, q,
		locationID, day.Date, day.Code, day.Description,
		day.TemperatureMax, day.TemperatureMin, day.Sunrise, day.Sunset, day.UVIndexMax))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("inserting weather for location %d date %s: %w", locationID, day.Date, err)
	}

	// Conflict: another writer got there first. Read the winning row.
	return r.FindWeather(ctx, locationID, day.Date)
}

const storyColumns = "id, location_id, weather_id, date, story, previous_story_id, word_count, created_at"

func scanStory(row pgx.Row) (*Story, error) {
	var s Story
	err := row.Scan(&s.ID, &s.LocationID, &s.WeatherID, &s.Date, &s.Text,
		&s.PreviousStoryID, &s.WordCount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindStory returns the stored story for a location/date, or nil, nil.
func (r *Repository) FindStory(ctx context.Context, locationID int, date string) (*Story, error) {
	const q = `SELECT ` + storyColumns + ` FROM stories WHERE location_id = $1 AND date = $2`

	s, err := scanStory(r.q.QueryRow(ctx, q, locationID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying story for location %d date %s: %w", locationID, date, err)
	}
	return s, nil
}

// FindStoryByID returns the story with the given id, or nil, nil.
func (r *Repository) FindStoryByID(ctx context.Context, id int) (*Story, error) {
	const q = `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`

	s, err := scanStory(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying story %d: %w", id, err)
	}
	return s, nil
}

// InsertStoryIfAbsent stores a generated story. A concurrent insert for
// the same (location, date) loses quietly: the existing row is returned
// and the losing text is discarded, never an error.
func (r *Repository) InsertStoryIfAbsent(ctx context.Context, locationID, weatherID int, date, text string, previousStoryID *int, wordCount int) (*Story, error) {
	const q = `
		INSERT INTO stories (location_id, weather_id, date, story, previous_story_id, word_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (location_id, date) DO NOTHING
		RETURNING ` + storyColumns

	s, err := scanStory(r.q.QueryRow(ctx, q, locationID, weatherID, date, text, previousStoryID, wordCount))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("inserting story for location %d date %s: %w", locationID, date, err)
	}

	return r.FindStory(ctx, locationID, date)
}

// FindLatestStory returns the most recent story for a location by date,
// or nil, nil when the location has no stories yet.
func (r *Repository) FindLatestStory(ctx context.Context, locationID int) (*Story, error) {
	const q = `SELECT ` + storyColumns + ` FROM stories WHERE location_id = $1 ORDER BY date DESC LIMIT 1`

	s, err := scanStory(r.q.QueryRow(ctx, q, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest story for location %d: %w", locationID, err)
	}
	return s, nil
}

// FindStoriesInRange returns all stories for a location with start <= date
// <= end, ordered ascending by date. Dates are zero-padded ISO strings, so
// lexicographic comparison is correct.
func (r *Repository) FindStoriesInRange(ctx context.Context, locationID int, start, end string) ([]Story, error) {
	const q = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE location_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	rows, err := r.q.Query(ctx, q, locationID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying stories for location %d range %s..%s: %w", locationID, start, end, err)
	}
	defer rows.Close()

	var stories []Story
	for rows.Next() {
		var s Story
		if err := rows.Scan(&s.ID, &s.LocationID, &s.WeatherID, &s.Date, &s.Text,
			&s.PreviousStoryID, &s.WordCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning story row: %w", err)
		}
		stories = append(stories, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating story rows: %w", err)
	}

	return stories, nil
}

// ChainMaxDepth bounds continuity-chain traversal.
const ChainMaxDepth = 7

// StoryChain walks previous_story_id back-references starting at storyID,
// stopping at maxDepth hops or a nil reference. The result is ordered
// oldest-to-newest (deepest hop first); the starting story has depth 0.
// Returns nil, nil when storyID does not exist.
//
// Traversal is an explicit bounded loop with a visited set: a corrupted
// cycle in the data terminates the walk instead of looping.
func (r *Repository) StoryChain(ctx context.Context, storyID, maxDepth int) ([]ChainEntry, error) {
	visited := make(map[int]bool)
	var entries []ChainEntry

	id := storyID
	for depth := 0; depth <= maxDepth; depth++ {
		if visited[id] {
			break
		}
		visited[id] = true

		s, err := r.FindStoryByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			if depth == 0 {
				return nil, nil
			}
			// Dangling reference; end the chain at the last good hop.
			break
		}

		entries = append(entries, ChainEntry{ID: s.ID, Date: s.Date, Story: s.Text, Depth: depth})

		if s.PreviousStoryID == nil {
			break
		}
		id = *s.PreviousStoryID
	}

	// Reverse into oldest-first order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}
