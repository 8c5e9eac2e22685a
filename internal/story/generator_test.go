package story_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-stories/internal/llm"
	"github.com/neexbeast/weather-stories/internal/story"
	"github.com/neexbeast/weather-stories/internal/weather"
)

// ---- fake llm client ----

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

// ---- helpers ----

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastPolicy keeps the default attempt budget but drops the delay so
// retry tests run instantly.
func fastPolicy() story.RetryPolicy {
	p := story.DefaultRetryPolicy()
	p.Delay = 0
	return p
}

func sampleDay() weather.Day {
	return weather.Day{
		Date:           "2026-08-28",
		Code:           61,
		Description:    "Rain: Slight",
		TemperatureMax: 18.0,
		TemperatureMin: 11.0,
		Sunrise:        "2026-08-28T06:09",
		Sunset:         "2026-08-28T19:58",
		UVIndexMax:     3.0,
	}
}

// ---- Daily ----

func TestDaily_Success(t *testing.T) {
	client := &fakeLLM{responses: []string{"Once upon a rainy morning, the town woke slowly."}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	text, words, err := g.Daily(context.Background(), sampleDay(), "")
	require.NoError(t, err)
	assert.Equal(t, "Once upon a rainy morning, the town woke slowly.", text)
	assert.Equal(t, 9, words)
	assert.Equal(t, 1, client.calls)
}

func TestDaily_PromptCarriesWeatherAndContinuity(t *testing.T) {
	client := &fakeLLM{responses: []string{"text"}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	_, _, err := g.Daily(context.Background(), sampleDay(), "Yesterday the cat found a piano.")
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Rain: Slight")
	assert.Contains(t, prompt, "Yesterday the cat found a piano.")
	assert.Contains(t, prompt, "Continue the story")
}

func TestDaily_NoPreviousStoryOmitsContinuation(t *testing.T) {
	client := &fakeLLM{responses: []string{"text"}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	_, _, err := g.Daily(context.Background(), sampleDay(), "")
	require.NoError(t, err)
	assert.NotContains(t, client.prompts[0], "Continue the story")
}

func TestDaily_StripsFences(t *testing.T) {
	client := &fakeLLM{responses: []string{"```\nA fenced story.\n```"}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	text, _, err := g.Daily(context.Background(), sampleDay(), "")
	require.NoError(t, err)
	assert.Equal(t, "A fenced story.", text)
}

func TestDaily_TransientThenSuccess(t *testing.T) {
	client := &fakeLLM{
		errs:      []error{llm.ErrUnavailable, nil},
		responses: []string{"", "recovered"},
	}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	text, _, err := g.Daily(context.Background(), sampleDay(), "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, client.calls)
}

func TestDaily_ExhaustedRetriesSurfaceLastError(t *testing.T) {
	client := &fakeLLM{errs: []error{llm.ErrUnavailable, llm.ErrUnavailable, llm.ErrUnavailable}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	_, _, err := g.Daily(context.Background(), sampleDay(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUnavailable)
	assert.Equal(t, 3, client.calls, "retry budget is 3 total attempts")
}

func TestDaily_FatalErrorNotRetried(t *testing.T) {
	fatal := errors.New("invalid api key")
	client := &fakeLLM{errs: []error{fatal}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	_, _, err := g.Daily(context.Background(), sampleDay(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, client.calls, "non-transient failures surface immediately")
}

// ---- Weekly ----

func weekDays(n int) []weather.Day {
	days := make([]weather.Day, 0, n)
	for i := 0; i < n; i++ {
		d := sampleDay()
		d.Date = fmt.Sprintf("2026-08-%02d", 28+i)
		days = append(days, d)
	}
	return days
}

func TestWeekly_Success(t *testing.T) {
	client := &fakeLLM{responses: []string{
		`{"2026-08-28": {"story": "one"}, "2026-08-29": {"story": "two"}}`,
	}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	stories, err := g.Weekly(context.Background(), weekDays(2))
	require.NoError(t, err)
	assert.Equal(t, "one", stories["2026-08-28"])
	assert.Equal(t, "two", stories["2026-08-29"])
}

func TestWeekly_PromptListsEveryDay(t *testing.T) {
	client := &fakeLLM{responses: []string{`{}`}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	days := weekDays(7)
	_, err := g.Weekly(context.Background(), days)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	for _, d := range days {
		assert.Contains(t, client.prompts[0], d.Date)
	}
}

func TestWeekly_FencedResponse(t *testing.T) {
	client := &fakeLLM{responses: []string{
		"```json\n{\"2026-08-28\": {\"story\": \"one\"}}\n```",
	}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	stories, err := g.Weekly(context.Background(), weekDays(1))
	require.NoError(t, err)
	assert.Equal(t, "one", stories["2026-08-28"])
}

func TestWeekly_MissingDateTolerated(t *testing.T) {
	client := &fakeLLM{responses: []string{
		`{"2026-08-28": {"story": "one"}}`,
	}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	stories, err := g.Weekly(context.Background(), weekDays(2))
	require.NoError(t, err)
	assert.Equal(t, "one", stories["2026-08-28"])
	_, ok := stories["2026-08-29"]
	assert.False(t, ok, "missing date is absent, not an error")
}

func TestWeekly_MalformedSurfaces(t *testing.T) {
	client := &fakeLLM{responses: []string{"no json at all"}}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	_, err := g.Weekly(context.Background(), weekDays(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, story.ErrMalformed)
}

func TestWeekly_TransientThenSuccess(t *testing.T) {
	client := &fakeLLM{
		errs:      []error{llm.ErrUnavailable, llm.ErrUnavailable, nil},
		responses: []string{"", "", `{"2026-08-28": {"story": "one"}}`},
	}
	g := story.NewGeneratorWithPolicy(client, fastPolicy(), testLogger())

	stories, err := g.Weekly(context.Background(), weekDays(1))
	require.NoError(t, err)
	assert.Equal(t, "one", stories["2026-08-28"])
	assert.Equal(t, 3, client.calls)
}
