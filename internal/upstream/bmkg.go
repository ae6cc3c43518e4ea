package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/infra"
	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// DefaultBMKGBaseURL is the BMKG public forecast API.
const DefaultBMKGBaseURL = "https://api.bmkg.go.id"

// DefaultADM4 is the administrative code of Wonosobo town, used when no
// region is selected.
const DefaultADM4 = "33.07.09.1020"

// ADM4 codes for the kecamatan of Kabupaten Wonosobo
// (33 = Jawa Tengah, 07 = Wonosobo).
var WonosoboADM4 = map[string]string{
	"Wadaslintang": "33.07.01.1007",
	"Kepil":        "33.07.02.1008",
	"Sapuran":      "33.07.03.1008",
	"Kaliwiro":     "33.07.04.1015",
	"Leksono":      "33.07.05.1006",
	"Selomerto":    "33.07.06.1008",
	"Kalikajar":    "33.07.07.1006",
	"Kertek":       "33.07.08.1008",
	"Wonosobo":     "33.07.09.1020",
	"Watumalang":   "33.07.10.1010",
	"Mojotengah":   "33.07.11.1009",
	"Garung":       "33.07.12.1005",
	"Kejajar":      "33.07.13.1008",
	"Sukoharjo":    "33.07.14.2003",
	"Kalibawang":   "33.07.15.2001",
}

// BMKG fetches public weather forecasts. Two payload generations are in
// the wild: the current nested per-day "cuaca" arrays and the legacy
// columnar "parameter"/"timerange" layout; both decode to the same
// WeatherForecast.
type BMKG struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewBMKG creates a BMKG client. An empty baseURL selects the production API.
func NewBMKG(baseURL string) *BMKG {
	if baseURL == "" {
		baseURL = DefaultBMKGBaseURL
	}
	return &BMKG{
		baseURL: baseURL,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
	}
}

// Name returns the data source name.
func (b *BMKG) Name() string { return "BMKG" }

// --- BMKG payload types ---

type bmkgResponse struct {
	Lokasi    models.WeatherLocation `json:"lokasi"`
	Data      []bmkgDataBlock        `json:"data"`
	Parameter []bmkgParameter        `json:"parameter"`
}

type bmkgDataBlock struct {
	Cuaca [][]bmkgEntry `json:"cuaca"`
}

type bmkgEntry struct {
	Datetime      string  `json:"datetime"`
	LocalDatetime string  `json:"local_datetime"`
	T             float64 `json:"t"`
	Hu            float64 `json:"hu"`
	Tp            float64 `json:"tp"`
	Ws            float64 `json:"ws"`
	Wd            string  `json:"wd"`
	WeatherDesc   string  `json:"weather_desc"`
}

type bmkgParameter struct {
	ID        string          `json:"id"`
	Timerange []bmkgTimeValue `json:"timerange"`
}

type bmkgTimeValue struct {
	Datetime string `json:"datetime"`
	Value    string `json:"value"`
}

// GetForecast fetches and parses the forecast for one ADM4 code.
func (b *BMKG) GetForecast(ctx context.Context, adm4 string) (*models.WeatherForecast, error) {
	if adm4 == "" {
		adm4 = DefaultADM4
	}

	cacheKey := "bmkg:" + adm4
	if cached, ok := b.cache.Get(cacheKey); ok {
		return cached.(*models.WeatherForecast), nil
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/publik/prakiraan-cuaca?adm4=%s", b.baseURL, adm4)
	data, err := getJSON(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("bmkg forecast %s: %w", adm4, err)
	}

	forecast, err := ParseBMKG(data)
	if err != nil {
		return nil, fmt.Errorf("bmkg forecast %s: %w", adm4, err)
	}

	b.cache.Set(cacheKey, forecast)
	return forecast, nil
}

// ParseBMKG decodes either payload generation into a WeatherForecast.
func ParseBMKG(data []byte) (*models.WeatherForecast, error) {
	var resp bmkgResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse bmkg payload: %w", err)
	}

	forecast := &models.WeatherForecast{Location: resp.Lokasi}

	switch {
	case len(resp.Data) > 0:
		forecast.Forecasts = flattenCuaca(resp.Data)
	case len(resp.Parameter) > 0:
		forecast.Forecasts = mergeParameters(resp.Parameter)
	default:
		return nil, ErrBadPayload
	}

	return forecast, nil
}

// flattenCuaca walks the nested per-day arrays of the current payload in
// order, producing one observation per entry.
func flattenCuaca(blocks []bmkgDataBlock) []models.WeatherObservation {
	var out []models.WeatherObservation
	for _, block := range blocks {
		for _, day := range block.Cuaca {
			for _, e := range day {
				dt := e.LocalDatetime
				if dt == "" {
					dt = e.Datetime
				}
				out = append(out, models.WeatherObservation{
					Datetime:           dt,
					TemperatureC:       e.T,
					WeatherDescription: e.WeatherDesc,
					HumidityPct:        e.Hu,
					RainMm:             e.Tp,
					WindSpeedKmh:       e.Ws,
					WindDirection:      e.Wd,
				})
			}
		}
	}
	return out
}

// mergeParameters joins the legacy columnar layout: one array per
// parameter id, aligned by a shared time index. The observation for an
// index is created by whichever parameter reaches it first, with every
// other field left at its zero default; later parameters only fill in
// their own field. Parameter arrays of unequal length are tolerated:
// indices present only in the longer arrays simply keep the defaults for
// the fields the shorter arrays never supplied.
func mergeParameters(params []bmkgParameter) []models.WeatherObservation {
	var obs []models.WeatherObservation

	ensure := func(idx int, datetime string) {
		for len(obs) <= idx {
			obs = append(obs, models.WeatherObservation{})
		}
		if obs[idx].Datetime == "" && datetime != "" {
			if t, err := utils.ParseFlexibleTime(datetime); err == nil {
				obs[idx].Datetime = t.Format(time.RFC3339)
			} else {
				obs[idx].Datetime = datetime
			}
		}
	}

	for _, p := range params {
		for idx, tv := range p.Timerange {
			ensure(idx, tv.Datetime)
			switch p.ID {
			case "t":
				obs[idx].TemperatureC = utils.ParsePrice(tv.Value)
			case "weather":
				obs[idx].WeatherDescription = tv.Value
			case "hu":
				obs[idx].HumidityPct = utils.ParsePrice(tv.Value)
			case "rain", "tp":
				obs[idx].RainMm = utils.ParsePrice(tv.Value)
			case "ws":
				obs[idx].WindSpeedKmh = utils.ParsePrice(tv.Value)
			case "wd":
				obs[idx].WindDirection = tv.Value
			}
		}
	}

	return obs
}
