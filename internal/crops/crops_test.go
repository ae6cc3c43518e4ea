package crops

import (
	"testing"

	"github.com/ecoscope-id/ecoscope/pkg/models"
)

func coolDays() []models.DailyWeatherSummary {
	return []models.DailyWeatherSummary{
		{Day: "2026-01-05", AvgTemp: 17},
		{Day: "2026-01-06", AvgTemp: 19},
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("empty input falls back to defaults", func(t *testing.T) {
		got := Analyze(nil)
		want := WeatherAnalysis{AvgTemp: 25, TotalRainfall: 50, AvgHumidity: 70}
		if got != want {
			t.Errorf("Analyze(nil) = %+v, want %+v", got, want)
		}
	})

	t.Run("cool window implies wet humid conditions", func(t *testing.T) {
		got := Analyze(coolDays())
		if got.AvgTemp != 18 {
			t.Errorf("AvgTemp = %v, want 18", got.AvgTemp)
		}
		if got.TotalRainfall != 100 || got.AvgHumidity != 80 {
			t.Errorf("estimates = %v mm / %v %%, want 100 / 80", got.TotalRainfall, got.AvgHumidity)
		}
		if got.Days != 2 {
			t.Errorf("Days = %d, want 2", got.Days)
		}
	})

	t.Run("hot window implies dry conditions", func(t *testing.T) {
		got := Analyze([]models.DailyWeatherSummary{{AvgTemp: 30}})
		if got.TotalRainfall != 40 || got.AvgHumidity != 60 {
			t.Errorf("estimates = %v mm / %v %%, want 40 / 60", got.TotalRainfall, got.AvgHumidity)
		}
	})
}

func cropByID(t *testing.T, id string) Crop {
	t.Helper()
	for _, c := range Database() {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("crop %q not in database", id)
	return Crop{}
}

func TestSuitability(t *testing.T) {
	cool := WeatherAnalysis{AvgTemp: 18, TotalRainfall: 100, AvgHumidity: 80}
	hot := WeatherAnalysis{AvgTemp: 30, TotalRainfall: 40, AvgHumidity: 60}

	tests := []struct {
		name    string
		cropID  string
		weather WeatherAnalysis
		want    float64
	}{
		// Highland staple in its element: optimal temp and rainfall,
		// humidity 5 points above the envelope.
		{"kentang in cool highlands", "kentang", cool, 96},
		// Rice below its optimal temp and rainfall, clamped partials.
		{"padi in cool highlands", "padi", cool, 63},
		// Drought-tolerant legume in a hot dry spell.
		{"kacang tanah in dry heat", "kacang_tanah", hot, 85.5},
		// Cold-climate cabbage outside every envelope.
		{"kol in dry heat", "kol", hot, 39.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suitability(cropByID(t, tt.cropID), tt.weather)
			if got != tt.want {
				t.Errorf("Suitability = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuitabilityLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{96, "Sangat Cocok"},
		{80, "Sangat Cocok"},
		{79.9, "Cocok"},
		{60, "Cocok"},
		{45, "Cukup Cocok"},
		{39.5, "Kurang Cocok"},
		{0, "Kurang Cocok"},
	}
	for _, tt := range tests {
		if got := SuitabilityLevel(tt.score); got != tt.want {
			t.Errorf("SuitabilityLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestDetermineSeason(t *testing.T) {
	tests := []struct {
		name    string
		weather WeatherAnalysis
		want    string
	}{
		{"wet and cool", WeatherAnalysis{AvgTemp: 22, TotalRainfall: 150}, "musim_hujan"},
		{"dry and hot", WeatherAnalysis{AvgTemp: 29, TotalRainfall: 40}, "musim_kemarau"},
		{"in between", WeatherAnalysis{AvgTemp: 18, TotalRainfall: 100}, "peralihan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineSeason(tt.weather); got.Season != tt.want {
				t.Errorf("season = %q, want %q", got.Season, tt.want)
			}
		})
	}
}

func TestPlantingTips(t *testing.T) {
	cool := PlantingTips(WeatherAnalysis{AvgTemp: 18, TotalRainfall: 100, AvgHumidity: 80})
	if len(cool) != 3 {
		t.Fatalf("cool tips: got %d, want 3\n%v", len(cool), cool)
	}

	humid := PlantingTips(WeatherAnalysis{AvgTemp: 22, TotalRainfall: 160, AvgHumidity: 85})
	found := false
	for _, tip := range humid {
		if tip == "Kelembapan tinggi - jaga sirkulasi udara, pangkas tanaman secara rutin" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing high-humidity tip in %v", humid)
	}
}

func TestRecommend(t *testing.T) {
	rec := Recommend(coolDays(), "Kejajar")

	if rec.Location != "Kejajar" {
		t.Errorf("location = %q", rec.Location)
	}
	if rec.SeasonInfo.Season != "peralihan" {
		t.Errorf("season = %q, want peralihan", rec.SeasonInfo.Season)
	}

	if len(rec.HighlyRecommended) != 3 {
		t.Fatalf("highly recommended: got %d, want 3", len(rec.HighlyRecommended))
	}
	for _, sc := range rec.HighlyRecommended {
		if sc.Score < 80 {
			t.Errorf("%s score %v below 80 in highly recommended", sc.ID, sc.Score)
		}
		if sc.Suitability != "Sangat Cocok" {
			t.Errorf("%s suitability = %q", sc.ID, sc.Suitability)
		}
	}
	// Descending order inside the bucket.
	if rec.HighlyRecommended[0].Score < rec.HighlyRecommended[2].Score {
		t.Error("highly recommended not sorted by score")
	}

	// Rice scores 63 in cool highland conditions.
	foundPadi := false
	for _, sc := range rec.Recommended {
		if sc.ID == "padi" {
			foundPadi = true
			if sc.Score != 63 {
				t.Errorf("padi score = %v, want 63", sc.Score)
			}
		}
	}
	if !foundPadi {
		t.Errorf("padi not in recommended bucket: %+v", rec.Recommended)
	}

	if len(rec.NotRecommended) > 2 {
		t.Errorf("not recommended: got %d, want at most 2", len(rec.NotRecommended))
	}
	if len(rec.PlantingTips) == 0 {
		t.Error("missing planting tips")
	}
}

func TestRecommendDefaultLocation(t *testing.T) {
	rec := Recommend(nil, "")
	if rec.Location != "Wonosobo" {
		t.Errorf("location = %q, want Wonosobo", rec.Location)
	}
	if rec.WeatherAnalysis.AvgTemp != 25 {
		t.Errorf("analysis = %+v, want empty-input defaults", rec.WeatherAnalysis)
	}
}
