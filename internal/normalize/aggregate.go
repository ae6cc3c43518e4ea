package normalize

import (
	"sort"
	"strings"

	"github.com/ecoscope-id/ecoscope/pkg/models"
)

// LatestPerCommodity collapses duplicates so the dashboard shows exactly
// one record per commodity name: the most recent one. ISO dates compare
// correctly as strings, so replacement uses a strict lexicographic
// greater-than; records with an equal date keep the first-seen entry.
// Output is sorted by date descending. limit > 0 truncates to the top N.
func LatestPerCommodity(records []models.CommodityRecord, limit int) []models.CommodityRecord {
	latest := make(map[string]models.CommodityRecord)
	order := make([]string, 0, len(records))

	for _, rec := range records {
		existing, ok := latest[rec.Name]
		if !ok {
			latest[rec.Name] = rec
			order = append(order, rec.Name)
			continue
		}
		if rec.Date > existing.Date {
			latest[rec.Name] = rec
		}
	}

	out := make([]models.CommodityRecord, 0, len(latest))
	for _, name := range order {
		out = append(out, latest[name])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterByCategory keeps records whose category matches, or whose name
// contains the category term. Empty or "all" returns everything.
func FilterByCategory(records []models.CommodityRecord, category string) []models.CommodityRecord {
	if category == "" || strings.EqualFold(category, "all") {
		return records
	}
	lower := strings.ToLower(category)
	var out []models.CommodityRecord
	for _, rec := range records {
		if strings.ToLower(rec.Category) == lower ||
			strings.Contains(strings.ToLower(rec.Name), lower) {
			out = append(out, rec)
		}
	}
	return out
}

// Search keeps records whose name contains the query, case-insensitive.
func Search(records []models.CommodityRecord, query string) []models.CommodityRecord {
	if query == "" {
		return records
	}
	lower := strings.ToLower(query)
	var out []models.CommodityRecord
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), lower) {
			out = append(out, rec)
		}
	}
	return out
}

// Trend computes the price movement between the two most recent records
// of a commodity. Fewer than two records yields a stable trend with the
// single known price.
func Trend(records []models.CommodityRecord) models.PriceTrend {
	sorted := make([]models.CommodityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	trend := models.PriceTrend{Trend: "stable"}
	if len(sorted) > 0 {
		trend.Commodity = sorted[0].Name
		trend.Current = sorted[0].Price
	}
	if len(sorted) < 2 {
		return trend
	}

	trend.Previous = sorted[1].Price
	trend.Change = trend.Current - trend.Previous
	if trend.Previous != 0 {
		trend.ChangePercent = trend.Change / trend.Previous * 100
	}
	switch {
	case trend.ChangePercent > 0.5:
		trend.Trend = "up"
	case trend.ChangePercent < -0.5:
		trend.Trend = "down"
	}
	return trend
}
