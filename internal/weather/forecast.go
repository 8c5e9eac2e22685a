package weather

// Forecast mirrors the Open-Meteo daily forecast payload: one parallel
// array per field, one entry per day.
type Forecast struct {
	Daily struct {
		Time           []string  `json:"time"`
		WeatherCode    []int     `json:"weathercode"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		Sunrise        []string  `json:"sunrise"`
		Sunset         []string  `json:"sunset"`
		UVIndexMax     []float64 `json:"uv_index_max"`
	} `json:"daily"`
}

// Day is one normalized forecast day with a derived description.
type Day struct {
	Date           string  `json:"date"`
	Code           int     `json:"weathercode"`
	Description    string  `json:"description"`
	TemperatureMax float64 `json:"temperature_max"`
	TemperatureMin float64 `json:"temperature_min"`
	Sunrise        string  `json:"sunrise"`
	Sunset         string  `json:"sunset"`
	UVIndexMax     float64 `json:"uv_index_max"`
}

// Normalize zips the forecast's parallel arrays into ordered per-day
// records. Ragged payloads are truncated to the shortest array so a
// malformed upstream response cannot cause an index panic.
func Normalize(f *Forecast) []Day {
	n := len(f.Daily.Time)
	for _, l := range []int{
		len(f.Daily.WeatherCode),
		len(f.Daily.TemperatureMax),
		len(f.Daily.TemperatureMin),
		len(f.Daily.Sunrise),
		len(f.Daily.Sunset),
		len(f.Daily.UVIndexMax),
	} {
		if l < n {
			n = l
		}
	}

	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		code := f.Daily.WeatherCode[i]
		days = append(days, Day{
			Date:           f.Daily.Time[i],
			Code:           code,
			Description:    Describe(code),
			TemperatureMax: f.Daily.TemperatureMax[i],
			TemperatureMin: f.Daily.TemperatureMin[i],
			Sunrise:        f.Daily.Sunrise[i],
			Sunset:         f.Daily.Sunset[i],
			UVIndexMax:     f.Daily.UVIndexMax[i],
		})
	}
	return days
}
