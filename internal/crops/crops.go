// Package crops recommends Wonosobo food commodities from the weather
// outlook. Each crop carries its agronomic envelope; the forecast's
// daily aggregates are matched against it and scored.
package crops

import (
	"sort"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// Range is an inclusive [min, max] envelope.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v float64) bool { return r.Min <= v && v <= r.Max }

// Crop describes one commodity's growing requirements.
type Crop struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	TempOptimal       Range    `json:"temp_optimal"`       // °C
	TempTolerance     Range    `json:"temp_tolerance"`     // °C
	RainfallOptimal   Range    `json:"rainfall_optimal"`   // mm per bulan
	RainfallTolerance Range    `json:"rainfall_tolerance"` // mm per bulan
	GrowthPeriodDays  int      `json:"growth_period_days"`
	SeasonPreference  []string `json:"season_preference"`
	HumidityOptimal   Range    `json:"humidity_optimal"` // %
	EconomicValue     string   `json:"economic_value"`
	Difficulty        string   `json:"difficulty"`
	Description       string   `json:"description"`
}

// Database returns the Wonosobo crop catalogue.
func Database() []Crop {
	return []Crop{
		{
			ID: "padi", Name: "Padi", Category: "Biji-bijian",
			TempOptimal: Range{22, 28}, TempTolerance: Range{18, 32},
			RainfallOptimal: Range{150, 250}, RainfallTolerance: Range{100, 350},
			GrowthPeriodDays: 120, SeasonPreference: []string{"musim_hujan"},
			HumidityOptimal: Range{70, 85}, EconomicValue: "tinggi", Difficulty: "sedang",
			Description: "Tanaman pangan utama dengan hasil tinggi di dataran rendah-menengah",
		},
		{
			ID: "jagung", Name: "Jagung", Category: "Biji-bijian",
			TempOptimal: Range{20, 28}, TempTolerance: Range{16, 35},
			RainfallOptimal: Range{85, 150}, RainfallTolerance: Range{60, 200},
			GrowthPeriodDays: 90, SeasonPreference: []string{"musim_kemarau", "peralihan"},
			HumidityOptimal: Range{60, 75}, EconomicValue: "tinggi", Difficulty: "mudah",
			Description: "Tahan kekeringan, cocok musim kemarau, nilai ekonomi tinggi",
		},
		{
			ID: "kacang_tanah", Name: "Kacang Tanah", Category: "Kacang-kacangan",
			TempOptimal: Range{22, 30}, TempTolerance: Range{18, 35},
			RainfallOptimal: Range{50, 120}, RainfallTolerance: Range{40, 150},
			GrowthPeriodDays: 90, SeasonPreference: []string{"musim_kemarau"},
			HumidityOptimal: Range{60, 70}, EconomicValue: "sedang", Difficulty: "mudah",
			Description: "Protein nabati tinggi, tahan kekeringan, rotasi tanaman baik",
		},
		{
			ID: "kedelai", Name: "Kedelai", Category: "Kacang-kacangan",
			TempOptimal: Range{23, 27}, TempTolerance: Range{20, 30},
			RainfallOptimal: Range{100, 150}, RainfallTolerance: Range{80, 180},
			GrowthPeriodDays: 80, SeasonPreference: []string{"peralihan", "musim_kemarau"},
			HumidityOptimal: Range{65, 75}, EconomicValue: "tinggi", Difficulty: "sedang",
			Description: "Sumber protein tinggi, pasar stabil, cocok rotasi dengan padi",
		},
		{
			ID: "cabai", Name: "Cabai Rawit/Merah", Category: "Sayuran",
			TempOptimal: Range{20, 26}, TempTolerance: Range{18, 30},
			RainfallOptimal: Range{60, 120}, RainfallTolerance: Range{50, 150},
			GrowthPeriodDays: 75, SeasonPreference: []string{"musim_kemarau", "peralihan"},
			HumidityOptimal: Range{55, 70}, EconomicValue: "sangat_tinggi", Difficulty: "sedang",
			Description: "Nilai ekonomi sangat tinggi, permintaan konsisten, cocok dataran tinggi Wonosobo",
		},
		{
			ID: "tomat", Name: "Tomat", Category: "Sayuran",
			TempOptimal: Range{18, 24}, TempTolerance: Range{15, 28},
			RainfallOptimal: Range{60, 100}, RainfallTolerance: Range{40, 130},
			GrowthPeriodDays: 90, SeasonPreference: []string{"musim_kemarau"},
			HumidityOptimal: Range{50, 65}, EconomicValue: "tinggi", Difficulty: "sedang",
			Description: "Cocok iklim sejuk Wonosobo, pasar luas, bisa hidroponik",
		},
		{
			ID: "kentang", Name: "Kentang", Category: "Umbi-umbian",
			TempOptimal: Range{15, 22}, TempTolerance: Range{12, 25},
			RainfallOptimal: Range{80, 120}, RainfallTolerance: Range{60, 150},
			GrowthPeriodDays: 90, SeasonPreference: []string{"musim_kemarau"},
			HumidityOptimal: Range{60, 75}, EconomicValue: "tinggi", Difficulty: "sedang",
			Description: "Unggulan dataran tinggi Wonosobo, ekspor potensial, margin keuntungan besar",
		},
		{
			ID: "wortel", Name: "Wortel", Category: "Sayuran",
			TempOptimal: Range{16, 22}, TempTolerance: Range{13, 25},
			RainfallOptimal: Range{70, 110}, RainfallTolerance: Range{50, 140},
			GrowthPeriodDays: 75, SeasonPreference: []string{"musim_kemarau"},
			HumidityOptimal: Range{65, 75}, EconomicValue: "sedang", Difficulty: "mudah",
			Description: "Sayuran sejuk, mudah dibudidayakan, pasar stabil",
		},
		{
			ID: "bawang_daun", Name: "Bawang Daun", Category: "Sayuran",
			TempOptimal: Range{18, 25}, TempTolerance: Range{15, 28},
			RainfallOptimal: Range{60, 100}, RainfallTolerance: Range{50, 130},
			GrowthPeriodDays: 60, SeasonPreference: []string{"peralihan", "musim_kemarau"},
			HumidityOptimal: Range{60, 70}, EconomicValue: "sedang", Difficulty: "mudah",
			Description: "Cepat panen, permintaan stabil, cocok usaha skala kecil",
		},
		{
			ID: "kol", Name: "Kubis/Kol", Category: "Sayuran",
			TempOptimal: Range{15, 20}, TempTolerance: Range{12, 24},
			RainfallOptimal: Range{80, 120}, RainfallTolerance: Range{60, 150},
			GrowthPeriodDays: 85, SeasonPreference: []string{"musim_kemarau"},
			HumidityOptimal: Range{65, 80}, EconomicValue: "sedang", Difficulty: "sedang",
			Description: "Sayuran sejuk, pasar tradisional dan modern, tahan simpan",
		},
	}
}

// WeatherAnalysis condenses a forecast window into the figures the
// scoring works on.
type WeatherAnalysis struct {
	AvgTemp       float64 `json:"avg_temp"`
	TotalRainfall float64 `json:"total_rainfall"`
	AvgHumidity   float64 `json:"avg_humidity"`
	Days          int     `json:"prediction_days"`
}

// Analyze reduces daily summaries to an average temperature and
// estimates monthly rainfall and humidity from it. The forecast window
// is days, not a month, so rainfall is a temperature-derived rule of
// thumb for Wonosobo rather than the summed daily figures.
func Analyze(days []models.DailyWeatherSummary) WeatherAnalysis {
	if len(days) == 0 {
		return WeatherAnalysis{AvgTemp: 25, TotalRainfall: 50, AvgHumidity: 70}
	}

	var sum float64
	for _, d := range days {
		sum += d.AvgTemp
	}
	avgTemp := sum / float64(len(days))

	analysis := WeatherAnalysis{AvgTemp: utils.Round1(avgTemp), Days: len(days)}
	switch {
	case avgTemp < 20:
		analysis.TotalRainfall = 100 // musim hujan / sejuk
		analysis.AvgHumidity = 80
	case avgTemp > 28:
		analysis.TotalRainfall = 40 // musim kemarau panas
		analysis.AvgHumidity = 60
	default:
		analysis.TotalRainfall = 70
		analysis.AvgHumidity = 70
	}
	return analysis
}

// Suitability scores a crop against the analyzed conditions on a 0-100
// scale: temperature 40%, rainfall 30%, humidity 20%, economic value 10%.
func Suitability(c Crop, w WeatherAnalysis) float64 {
	score := 0.0

	tempScore := 0.0
	switch {
	case c.TempOptimal.contains(w.AvgTemp):
		tempScore = 100
	case c.TempTolerance.contains(w.AvgTemp):
		if w.AvgTemp < c.TempOptimal.Min {
			tempScore = 70 - (c.TempOptimal.Min-w.AvgTemp)*5
		} else {
			tempScore = 70 - (w.AvgTemp-c.TempOptimal.Max)*5
		}
		if tempScore < 50 {
			tempScore = 50
		}
	default:
		tempScore = 20
	}
	score += tempScore * 0.4

	rainScore := 0.0
	switch {
	case c.RainfallOptimal.contains(w.TotalRainfall):
		rainScore = 100
	case c.RainfallTolerance.contains(w.TotalRainfall):
		if w.TotalRainfall < c.RainfallOptimal.Min {
			rainScore = 70 - (c.RainfallOptimal.Min-w.TotalRainfall)*0.5
		} else {
			rainScore = 70 - (w.TotalRainfall-c.RainfallOptimal.Max)*0.5
		}
		if rainScore < 50 {
			rainScore = 50
		}
	default:
		rainScore = 25
	}
	score += rainScore * 0.3

	humidityScore := 0.0
	if c.HumidityOptimal.contains(w.AvgHumidity) {
		humidityScore = 100
	} else {
		diff := w.AvgHumidity - c.HumidityOptimal.Max
		if low := c.HumidityOptimal.Min - w.AvgHumidity; low > diff {
			diff = low
		}
		humidityScore = 100 - diff*2
		if humidityScore < 40 {
			humidityScore = 40
		}
	}
	score += humidityScore * 0.2

	economicBonus := map[string]float64{
		"sangat_tinggi": 100,
		"tinggi":        80,
		"sedang":        60,
		"rendah":        40,
	}
	bonus, ok := economicBonus[c.EconomicValue]
	if !ok {
		bonus = 60
	}
	score += bonus * 0.1

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return utils.Round1(score)
}

// SuitabilityLevel maps a score to its Indonesian display level.
func SuitabilityLevel(score float64) string {
	switch {
	case score >= 80:
		return "Sangat Cocok"
	case score >= 60:
		return "Cocok"
	case score >= 40:
		return "Cukup Cocok"
	default:
		return "Kurang Cocok"
	}
}

// ScoredCrop is a catalogue entry with its score for the analyzed window.
type ScoredCrop struct {
	Crop
	Score       float64 `json:"score"`
	Suitability string  `json:"suitability"`
}

// SeasonInfo names the season the conditions imply.
type SeasonInfo struct {
	Season      string `json:"season"`
	Description string `json:"description"`
}

// DetermineSeason classifies the analyzed window.
func DetermineSeason(w WeatherAnalysis) SeasonInfo {
	switch {
	case w.TotalRainfall > 120 && w.AvgTemp < 25:
		return SeasonInfo{
			Season:      "musim_hujan",
			Description: "Musim Hujan - cocok untuk padi, sayuran berdaun",
		}
	case w.TotalRainfall < 60 && w.AvgTemp > 26:
		return SeasonInfo{
			Season:      "musim_kemarau",
			Description: "Musim Kemarau - cocok untuk jagung, kacang-kacangan, cabai",
		}
	default:
		return SeasonInfo{
			Season:      "peralihan",
			Description: "Musim Peralihan - cocok untuk berbagai tanaman",
		}
	}
}

// PlantingTips generates advice lines for the analyzed conditions.
func PlantingTips(w WeatherAnalysis) []string {
	var tips []string

	switch {
	case w.AvgTemp < 20:
		tips = append(tips,
			"Suhu sejuk - cocok untuk sayuran dataran tinggi seperti kentang, wortel, kol",
			"Siapkan mulsa untuk melindungi tanaman dari suhu dingin malam")
	case w.AvgTemp > 28:
		tips = append(tips,
			"Suhu panas - pilih tanaman tahan panas seperti jagung, kacang tanah",
			"Siapkan sistem irigasi yang memadai")
	default:
		tips = append(tips, "Suhu optimal - cocok untuk berbagai jenis tanaman pangan")
	}

	switch {
	case w.TotalRainfall < 60:
		tips = append(tips,
			"Curah hujan rendah - pilih tanaman tahan kekeringan",
			"Persiapkan sumber air irigasi alternatif")
	case w.TotalRainfall > 150:
		tips = append(tips,
			"Curah hujan tinggi - pastikan drainase lahan baik",
			"Waspada penyakit jamur, aplikasi fungisida preventif")
	default:
		tips = append(tips, "Curah hujan cukup - kondisi baik untuk sebagian besar tanaman")
	}

	if w.AvgHumidity > 80 {
		tips = append(tips, "Kelembapan tinggi - jaga sirkulasi udara, pangkas tanaman secara rutin")
	} else if w.AvgHumidity < 60 {
		tips = append(tips, "Kelembapan rendah - tingkatkan frekuensi penyiraman")
	}

	return tips
}

// Recommendation is the full advisory for one location.
type Recommendation struct {
	Location          string          `json:"location"`
	WeatherAnalysis   WeatherAnalysis `json:"weather_analysis"`
	HighlyRecommended []ScoredCrop    `json:"highly_recommended"`
	Recommended       []ScoredCrop    `json:"recommended"`
	NotRecommended    []ScoredCrop    `json:"not_recommended"`
	PlantingTips      []string        `json:"planting_tips"`
	SeasonInfo        SeasonInfo      `json:"season_info"`
}

// Recommend scores the whole catalogue against the forecast window and
// buckets the results: top 3 with score >= 80, top 3 in [60, 80), and
// up to 2 below 60.
func Recommend(days []models.DailyWeatherSummary, location string) Recommendation {
	if location == "" {
		location = "Wonosobo"
	}
	analysis := Analyze(days)

	scored := make([]ScoredCrop, 0, len(Database()))
	for _, c := range Database() {
		s := Suitability(c, analysis)
		scored = append(scored, ScoredCrop{
			Crop:        c,
			Score:       s,
			Suitability: SuitabilityLevel(s),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	rec := Recommendation{
		Location:        location,
		WeatherAnalysis: analysis,
		PlantingTips:    PlantingTips(analysis),
		SeasonInfo:      DetermineSeason(analysis),
	}
	for _, sc := range scored {
		switch {
		case sc.Score >= 80 && len(rec.HighlyRecommended) < 3:
			rec.HighlyRecommended = append(rec.HighlyRecommended, sc)
		case sc.Score >= 60 && sc.Score < 80 && len(rec.Recommended) < 3:
			rec.Recommended = append(rec.Recommended, sc)
		case sc.Score < 60 && len(rec.NotRecommended) < 2:
			rec.NotRecommended = append(rec.NotRecommended, sc)
		}
	}
	return rec
}
