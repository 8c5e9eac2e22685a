package weather

// codeDescriptions maps WMO weather interpretation codes (as used by
// Open-Meteo) to human-readable descriptions.
var codeDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Drizzle: Light",
	53: "Drizzle: Moderate",
	55: "Drizzle: Dense",
	56: "Freezing Drizzle: Light",
	57: "Freezing Drizzle: Dense",
	61: "Rain: Slight",
	63: "Rain: Moderate",
	65: "Rain: Heavy",
	66: "Freezing Rain: Light",
	67: "Freezing Rain: Heavy",
	71: "Snow fall: Slight",
	73: "Snow fall: Moderate",
	75: "Snow fall: Heavy",
	77: "Snow grains",
	80: "Rain showers: Slight",
	81: "Rain showers: Moderate",
	82: "Rain showers: Violent",
	85: "Snow showers: Slight",
	86: "Snow showers: Heavy",
	95: "Thunderstorm: Slight or moderate",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// groupedDescriptions covers codes that only have a combined description
// when no exact entry exists. Order matters: first matching group wins.
var groupedDescriptions = []struct {
	codes       []int
	description string
}{
	{[]int{1, 2, 3}, "Mainly clear, partly cloudy, and overcast"},
	{[]int{45, 48}, "Fog and depositing rime fog"},
	{[]int{51, 53, 55}, "Drizzle: Light, moderate, and dense intensity"},
	{[]int{56, 57}, "Freezing Drizzle: Light and dense intensity"},
	{[]int{61, 63, 65}, "Rain: Slight, moderate and heavy intensity"},
	{[]int{66, 67}, "Freezing Rain: Light and heavy intensity"},
	{[]int{71, 73, 75}, "Snow fall: Slight, moderate, and heavy intensity"},
	{[]int{80, 81, 82}, "Rain showers: Slight, moderate, and violent"},
	{[]int{85, 86}, "Snow showers slight and heavy"},
	{[]int{95}, "Thunderstorm: Slight or moderate"},
	{[]int{96, 99}, "Thunderstorm with slight and heavy hail"},
}

// Describe maps a condition code to its description. Exact matches win,
// grouped ranges apply next, and anything else yields "Unknown".
// Descriptions are derived once at write time and never recomputed, so this
// mapping must stay stable.
func Describe(code int) string {
	if d, ok := codeDescriptions[code]; ok {
		return d
	}
	for _, g := range groupedDescriptions {
		for _, c := range g.codes {
			if c == code {
				return g.description
			}
		}
	}
	return "Unknown"
}
