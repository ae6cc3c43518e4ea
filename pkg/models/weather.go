package models

// WeatherObservation is one merged forecast entry for a single timestamp.
// BMKG delivers the parameters in separate arrays; the parser joins them
// by time index, defaulting fields the upstream never filled.
type WeatherObservation struct {
	Datetime           string  `json:"datetime"` // ISO timestamp
	TemperatureC       float64 `json:"temperature_c"`
	WeatherDescription string  `json:"weather_description"`
	HumidityPct        float64 `json:"humidity_pct"`
	RainMm             float64 `json:"rain_mm"`
	WindSpeedKmh       float64 `json:"wind_speed_kmh"`
	WindDirection      string  `json:"wind_direction"`
}

// WeatherLocation identifies the BMKG forecast location (village level,
// keyed by the ADM4 administrative code).
type WeatherLocation struct {
	ADM4      string  `json:"adm4"`
	Desa      string  `json:"desa"`
	Kecamatan string  `json:"kecamatan"`
	Kotkab    string  `json:"kotkab"`
	Provinsi  string  `json:"provinsi"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timezone  string  `json:"timezone"`
}

// WeatherForecast bundles a location with its per-timestamp observations.
type WeatherForecast struct {
	Location  WeatherLocation      `json:"location"`
	Forecasts []WeatherObservation `json:"forecasts"`
}

// DailyWeatherSummary is the per-day aggregate shown on the dashboard.
// Day is the canonical YYYY-MM-DD grouping key; Label is the Indonesian
// display string and is never used for grouping.
type DailyWeatherSummary struct {
	Day             string  `json:"day"`   // YYYY-MM-DD
	Label           string  `json:"label"` // e.g. "Sen, 5 Jan"
	AvgTemp         float64 `json:"avg_temp"`
	TotalRainfall   float64 `json:"total_rainfall"`
	DominantWeather string  `json:"dominant_weather"`
}

// CurrentConditions is the OpenWeather current-weather snapshot.
type CurrentConditions struct {
	Location    string  `json:"location"`
	TempC       float64 `json:"temp_c"`
	FeelsLikeC  float64 `json:"feels_like_c"`
	HumidityPct float64 `json:"humidity_pct"`
	WindKmh     float64 `json:"wind_kmh"`
	RainMm      float64 `json:"rain_mm"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	FetchedAt   string  `json:"fetched_at"`
}
