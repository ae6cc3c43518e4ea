package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/infra"
	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap API endpoint.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// Wonosobo town centre.
const (
	wonosoboLat = -7.3586
	wonosoboLon = 109.9006
)

// OpenWeather fetches current conditions. BMKG only publishes forecasts,
// so the "now" card on the dashboard comes from here.
type OpenWeather struct {
	baseURL string
	apiKey  string
	cache   *infra.Cache
}

// NewOpenWeather creates an OpenWeather client. An empty baseURL selects
// the production API.
func NewOpenWeather(baseURL, apiKey string) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeather{
		baseURL: baseURL,
		apiKey:  apiKey,
		cache:   infra.NewCache(5 * time.Minute),
	}
}

// Name returns the data source name.
func (o *OpenWeather) Name() string { return "OpenWeather" }

type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
}

// GetCurrent fetches the current conditions for Wonosobo.
func (o *OpenWeather) GetCurrent(ctx context.Context) (*models.CurrentConditions, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w: API key not configured", ErrNotFound)
	}

	if cached, ok := o.cache.Get("openweather:current"); ok {
		return cached.(*models.CurrentConditions), nil
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", wonosoboLat))
	q.Set("lon", fmt.Sprintf("%.4f", wonosoboLon))
	q.Set("appid", o.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "id")

	data, err := getJSON(ctx, o.baseURL+"/weather?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("openweather current: %w", err)
	}

	var resp openWeatherResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("openweather current: parse: %w", err)
	}

	cond := &models.CurrentConditions{
		TempC:       utils.Round1(resp.Main.Temp),
		FeelsLikeC:  utils.Round1(resp.Main.FeelsLike),
		HumidityPct: resp.Main.Humidity,
		WindKmh:     utils.Round1(resp.Wind.Speed * 3.6),
		RainMm:      resp.Rain.OneHour,
		Location:    resp.Name,
		FetchedAt:   time.Unix(resp.Dt, 0).In(utils.WIB).Format(time.RFC3339),
	}
	if len(resp.Weather) > 0 {
		cond.Description = resp.Weather[0].Description
		cond.Icon = resp.Weather[0].Icon
	}

	o.cache.Set("openweather:current", cond)
	return cond, nil
}
