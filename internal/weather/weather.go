// Package weather turns per-timestamp forecast observations into the
// per-day aggregates the dashboard displays.
package weather

import (
	"sort"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// GroupByDay buckets observations by their YYYY-MM-DD key in WIB.
// Observations with unparseable timestamps are dropped. The returned
// keys are sorted ascending; every key maps to the observations in their
// original order.
func GroupByDay(obs []models.WeatherObservation) (map[string][]models.WeatherObservation, []string) {
	groups := make(map[string][]models.WeatherObservation)
	var keys []string

	for _, o := range obs {
		t, err := utils.ParseFlexibleTime(o.Datetime)
		if err != nil {
			continue
		}
		key := utils.DayKey(t)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], o)
	}

	sort.Strings(keys)
	return groups, keys
}

// AvgTemp returns the mean temperature rounded to one decimal, or 0 for
// an empty slice.
func AvgTemp(obs []models.WeatherObservation) float64 {
	if len(obs) == 0 {
		return 0
	}
	var sum float64
	for _, o := range obs {
		sum += o.TemperatureC
	}
	return utils.Round1(sum / float64(len(obs)))
}

// TotalRainfall sums the rainfall of the observations.
func TotalRainfall(obs []models.WeatherObservation) float64 {
	var total float64
	for _, o := range obs {
		total += o.RainMm
	}
	return utils.Round1(total)
}

// DominantWeather returns the most frequent weather description. Ties go
// to the condition seen first in chronological observation order. Empty
// descriptions are ignored; all-empty input returns "".
func DominantWeather(obs []models.WeatherObservation) string {
	counts := make(map[string]int)
	var order []string

	for _, o := range obs {
		if o.WeatherDescription == "" {
			continue
		}
		if _, seen := counts[o.WeatherDescription]; !seen {
			order = append(order, o.WeatherDescription)
		}
		counts[o.WeatherDescription]++
	}

	dominant := ""
	best := 0
	for _, desc := range order {
		if counts[desc] > best {
			dominant = desc
			best = counts[desc]
		}
	}
	return dominant
}

// DailySummaries aggregates observations into one summary per day,
// ordered by day key ascending.
func DailySummaries(obs []models.WeatherObservation) []models.DailyWeatherSummary {
	groups, keys := GroupByDay(obs)

	summaries := make([]models.DailyWeatherSummary, 0, len(keys))
	for _, key := range keys {
		day := groups[key]
		label := ""
		if t, err := utils.ParseDateWIB(key); err == nil {
			label = utils.DayLabel(t)
		}
		summaries = append(summaries, models.DailyWeatherSummary{
			Day:             key,
			Label:           label,
			AvgTemp:         AvgTemp(day),
			TotalRainfall:   TotalRainfall(day),
			DominantWeather: DominantWeather(day),
		})
	}
	return summaries
}
