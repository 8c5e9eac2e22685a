// Package story builds generation requests for the narrative service and
// parses its responses into per-day story text.
package story

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neexbeast/weather-stories/internal/llm"
	"github.com/neexbeast/weather-stories/internal/weather"
)

// Generator turns normalized weather days into narrative text via a
// generative-text client, with retry on transient failures.
type Generator struct {
	llm   llm.Client
	retry RetryPolicy
	log   *slog.Logger
}

// NewGenerator constructs a Generator with the default retry policy.
func NewGenerator(client llm.Client, log *slog.Logger) *Generator {
	return NewGeneratorWithPolicy(client, DefaultRetryPolicy(), log)
}

// NewGeneratorWithPolicy constructs a Generator with a custom retry policy
// (tests inject a zero delay).
func NewGeneratorWithPolicy(client llm.Client, policy RetryPolicy, log *slog.Logger) *Generator {
	return &Generator{llm: client, retry: policy, log: log}
}

// Daily generates one day's story. previous, when non-empty, is the prior
// day's story text the new narrative must continue. Returns the story text
// and its word count.
func (g *Generator) Daily(ctx context.Context, day weather.Day, previous string) (string, int, error) {
	prompt := dailyPrompt(day, previous)

	raw, err := g.retry.do(ctx, func() (string, error) {
		return g.llm.Generate(ctx, prompt)
	})
	if err != nil {
		return "", 0, fmt.Errorf("generating story for %s: %w", day.Date, err)
	}

	text := stripFences(raw)
	if text == "" {
		return "", 0, fmt.Errorf("%w: empty story for %s", ErrMalformed, day.Date)
	}

	return text, WordCount(text), nil
}

// Weekly generates stories for a batch of days in a single call. The
// result maps each date to its story text; dates the service skipped are
// simply absent, which callers must tolerate.
func (g *Generator) Weekly(ctx context.Context, days []weather.Day) (map[string]string, error) {
	prompt := weeklyPrompt(days)

	raw, err := g.retry.do(ctx, func() (string, error) {
		return g.llm.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, fmt.Errorf("generating weekly stories: %w", err)
	}

	stories, err := parseWeekly(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing weekly stories: %w", err)
	}

	for _, day := range days {
		if _, ok := stories[day.Date]; !ok {
			g.log.Warn("generation response missing date", "date", day.Date)
		}
	}

	return stories, nil
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
