package weather

import (
	"testing"

	"github.com/ecoscope-id/ecoscope/pkg/models"
)

func obs(datetime, desc string, temp, rain float64) models.WeatherObservation {
	return models.WeatherObservation{
		Datetime:           datetime,
		WeatherDescription: desc,
		TemperatureC:       temp,
		RainMm:             rain,
	}
}

func TestGroupByDay(t *testing.T) {
	observations := []models.WeatherObservation{
		obs("2026-01-05 07:00:00", "Berawan", 21, 0),
		obs("2026-01-05 13:00:00", "Cerah", 26, 0),
		obs("2026-01-06 07:00:00", "Hujan Ringan", 20, 2),
		obs("garbage", "Cerah", 25, 0),
	}

	groups, keys := GroupByDay(observations)

	if len(keys) != 2 {
		t.Fatalf("got %d day keys, want 2: %v", len(keys), keys)
	}
	if keys[0] != "2026-01-05" || keys[1] != "2026-01-06" {
		t.Errorf("keys = %v", keys)
	}
	if len(groups["2026-01-05"]) != 2 || len(groups["2026-01-06"]) != 1 {
		t.Errorf("group sizes wrong: %v", groups)
	}
}

func TestGroupByDayYearBoundary(t *testing.T) {
	observations := []models.WeatherObservation{
		obs("2025-12-31 19:00:00", "Cerah", 22, 0),
		obs("2026-01-01 07:00:00", "Cerah", 21, 0),
	}

	_, keys := GroupByDay(observations)
	if len(keys) != 2 {
		t.Fatalf("year boundary must not collide: keys = %v", keys)
	}
}

func TestAvgTemp(t *testing.T) {
	observations := []models.WeatherObservation{
		obs("2026-01-05 07:00:00", "", 21.0, 0),
		obs("2026-01-05 10:00:00", "", 24.5, 0),
		obs("2026-01-05 13:00:00", "", 26.0, 0),
	}
	if got := AvgTemp(observations); got != 23.8 {
		t.Errorf("AvgTemp = %v, want 23.8", got)
	}
	if got := AvgTemp(nil); got != 0 {
		t.Errorf("AvgTemp(empty) = %v, want 0", got)
	}
}

func TestTotalRainfall(t *testing.T) {
	observations := []models.WeatherObservation{
		obs("", "", 0, 0.4),
		obs("", "", 0, 2.1),
		obs("", "", 0, 0),
	}
	if got := TotalRainfall(observations); got != 2.5 {
		t.Errorf("TotalRainfall = %v, want 2.5", got)
	}
}

func TestDominantWeather(t *testing.T) {
	tests := []struct {
		name string
		desc []string
		want string
	}{
		{"clear majority", []string{"Cerah", "Hujan Ringan", "Hujan Ringan"}, "Hujan Ringan"},
		{"tie keeps chronologically first", []string{"Berawan", "Cerah", "Cerah", "Berawan"}, "Berawan"},
		{"single", []string{"Kabut"}, "Kabut"},
		{"empty descriptions ignored", []string{"", "Cerah", ""}, "Cerah"},
		{"all empty", []string{"", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var observations []models.WeatherObservation
			for _, d := range tt.desc {
				observations = append(observations, obs("", d, 0, 0))
			}
			if got := DominantWeather(observations); got != tt.want {
				t.Errorf("DominantWeather = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDailySummaries(t *testing.T) {
	observations := []models.WeatherObservation{
		obs("2026-01-05 07:00:00", "Berawan", 21, 0.4),
		obs("2026-01-05 13:00:00", "Berawan", 26, 0),
		obs("2026-01-06 07:00:00", "Hujan Ringan", 20, 2.1),
	}

	summaries := DailySummaries(observations)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	first := summaries[0]
	if first.Day != "2026-01-05" {
		t.Errorf("first day = %q", first.Day)
	}
	if first.Label == "" || first.Label == first.Day {
		t.Errorf("label should be a display string, got %q", first.Label)
	}
	if first.AvgTemp != 23.5 {
		t.Errorf("first avg temp = %v, want 23.5", first.AvgTemp)
	}
	if first.TotalRainfall != 0.4 {
		t.Errorf("first rainfall = %v, want 0.4", first.TotalRainfall)
	}
	if first.DominantWeather != "Berawan" {
		t.Errorf("first dominant = %q", first.DominantWeather)
	}

	if summaries[1].Day != "2026-01-06" || summaries[1].DominantWeather != "Hujan Ringan" {
		t.Errorf("second summary = %+v", summaries[1])
	}
}
