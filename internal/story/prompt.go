package story

import (
	"fmt"
	"strings"

	"github.com/neexbeast/weather-stories/internal/weather"
)

// dailyPrompt builds the instruction for a single day's narrative. The
// weather must be woven in without being stated as weather data, and a
// previous story, if supplied, must be continued.
func dailyPrompt(day weather.Day, previous string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Write a delightful, creative story of EXACTLY 500 words for a specific day.
The story should have an interesting beginning, middle, and end, with a subtle plot arc and character development.
Subtly weave in the following details without explicitly stating them as weather data:

- Conditions: %s
- High temperature: %.1f°C
- Low temperature: %.1f°C
- Sunrise: %s
- Sunset: %s
- UV Index: %.1f

Make the story feel literary and imaginative, with a subtle wit. Do not mention that this is weather data.`,
		day.Description, day.TemperatureMax, day.TemperatureMin, day.Sunrise, day.Sunset, day.UVIndexMax)

	if previous != "" {
		fmt.Fprintf(&b, `

IMPORTANT: Continue the story and world-building from the previous day's narrative:
"%s"

Keep the characters and settings consistent with that narrative, but advance the story with new developments that relate to today's conditions.`, previous)
	}

	b.WriteString(`

Return ONLY the story text, exactly 500 words. No introductions, explanations, or JSON formatting.`)

	return b.String()
}

// weeklyPrompt builds the instruction for a batch of days. The response
// must be a single JSON object keyed by date, each value holding a
// "story" field, covering every listed day.
func weeklyPrompt(days []weather.Day) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Create a continuous story spanning %d days, where each day is about 500 words.
The narrative should flow from day to day, developing characters and a subtle plot that relates to the changing conditions.
Each day should have its own mini-arc while contributing to the overall narrative.

For each day, subtly incorporate the details below without explicitly stating them:
`, len(days))

	for i, day := range days {
		fmt.Fprintf(&b, `
DAY %d (%s):
- Conditions: %s
- Temperature range: %.1f°C to %.1f°C
- Sunrise: %s, Sunset: %s
- UV Index: %.1f
`, i+1, day.Date, day.Description, day.TemperatureMin, day.TemperatureMax, day.Sunrise, day.Sunset, day.UVIndexMax)
	}

	b.WriteString(`
Return the result as a single JSON object where each key is the date and each value is an object with a single key "story" containing that day's 500-word narrative:

{
  "2025-09-01": { "story": "Day 1 narrative text..." },
  "2025-09-02": { "story": "Day 2 narrative text..." }
}

Do not include any other text or explanation in your response, only the JSON object.`)

	return b.String()
}
