// Package normalize converts the varying upstream commodity JSON shapes
// into canonical CommodityRecords.
//
// The Disdagkopukm endpoints disagree on field names between routes and
// between deployments (harga vs harga_pasar vs price, nama vs komoditas,
// nested produk objects). Instead of duck-typing scattered through the
// callers, each attribute has an ordered probe table of (path, parser)
// rules evaluated by a small interpreter; the first rule that yields a
// usable value wins.
package normalize

import (
	"log"
	"strings"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// Defaults applied when no probe rule matches.
const (
	UnknownName     = "Tidak diketahui"
	DefaultUnit     = "kg"
	DefaultCategory = "Umum"
)

// probe is one (path, parser) rule. Path segments are separated by dots
// and navigate nested objects.
type probe struct {
	path  string
	parse func(any) (string, bool)
}

// asString accepts a non-empty string value.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// asNameLike accepts a string or a nested {name: ...} object, the two
// shapes upstream uses for commodity and category names.
func asNameLike(v any) (string, bool) {
	if s, ok := asString(v); ok {
		return s, true
	}
	if m, ok := v.(map[string]any); ok {
		return asString(m["name"])
	}
	return "", false
}

// namePriceProbes order follows the upstream preference documented by the
// source APIs: market price first, then farmer price, then generic.
var (
	nameProbes = []probe{
		{"produk.name", asString},
		{"name", asString},
		{"nama", asNameLike},
		{"nama_komoditas", asNameLike},
		{"nama_produk", asNameLike},
		{"komoditas", asNameLike},
		{"commodity_name", asNameLike},
		{"product_name", asNameLike},
	}

	priceFields = []string{
		"harga_pasar", "harga_petani", "harga", "harga_eceran", "harga_jual",
		"harga_grosir", "harga_satuan", "price", "retail_price", "wholesale_price",
	}

	unitProbes = []probe{
		{"unit", asString},
		{"satuan", asString},
		{"satuan_unit", asString},
		{"uom", asString},
	}

	categoryProbes = []probe{
		{"kategori_komoditas.name", asString},
		{"kategori", asNameLike},
		{"jenis", asNameLike},
		{"category", asNameLike},
	}

	dateProbes = []probe{
		{"tgl", asString},
		{"tanggal", asString},
		{"updated_at", asString},
		{"created_at", asString},
		{"date", asString},
	}
)

// lookup navigates a dotted path through nested maps.
func lookup(raw map[string]any, path string) (any, bool) {
	cur := any(raw)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// probeString evaluates a probe table and returns the first match.
func probeString(raw map[string]any, probes []probe) (string, bool) {
	for _, p := range probes {
		if v, ok := lookup(raw, p.path); ok {
			if s, ok := p.parse(v); ok {
				return s, true
			}
		}
	}
	return "", false
}

// probePrice returns the first positive price among the candidate fields.
// String values are parsed as floats; zero and negative values lose.
func probePrice(raw map[string]any) (float64, bool) {
	for _, field := range priceFields {
		v, ok := lookup(raw, field)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		if price := utils.ParsePrice(v); price > 0 {
			return price, true
		}
	}
	return 0, false
}

// Normalize converts one raw upstream record to the canonical form.
// Pure and total: it never fails, only degrades to defaults, logging
// when neither a name nor a price could be resolved.
func Normalize(raw map[string]any) models.CommodityRecord {
	rec := models.CommodityRecord{
		Name:        UnknownName,
		Unit:        DefaultUnit,
		Category:    DefaultCategory,
		ChangeLabel: "0%",
	}

	nameOK := false
	if name, ok := probeString(raw, nameProbes); ok {
		rec.Name = name
		nameOK = true
	}

	priceOK := false
	if price, ok := probePrice(raw); ok {
		rec.Price = price
		priceOK = true
	}

	if unit, ok := probeString(raw, unitProbes); ok {
		rec.Unit = unit
	}
	if cat, ok := probeString(raw, categoryProbes); ok {
		rec.Category = cat
	}
	if date, ok := probeString(raw, dateProbes); ok {
		rec.Date = date
	}

	if id, ok := lookup(raw, "id"); ok {
		if f, isNum := id.(float64); isNum {
			rec.ID = int(f)
		}
	}
	if change, ok := lookup(raw, "perubahan"); ok {
		if s, isStr := asString(change); isStr {
			rec.ChangeLabel = s
		}
	}

	if !nameOK || !priceOK {
		log.Printf("normalize: unresolved fields (name=%v price=%v) in record with keys %v",
			nameOK, priceOK, keysOf(raw))
	}

	return rec
}

// NormalizeAll converts a slice of raw records.
func NormalizeAll(raw []map[string]any) []models.CommodityRecord {
	out := make([]models.CommodityRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}

// FromRow converts a local database row. The database shape is fixed, so
// this is a direct rename with no probing and always succeeds.
func FromRow(row models.MarketPrice) models.CommodityRecord {
	date := row.Date
	if date == "" {
		date = utils.FormatDateWIB(row.CreatedAt)
	}
	return models.CommodityRecord{
		ID:          row.PriceID,
		Name:        row.CommodityName,
		Price:       row.Price,
		Unit:        row.Unit,
		Date:        date,
		ChangeLabel: "0%",
		Category:    DefaultCategory,
	}
}

func keysOf(raw map[string]any) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return keys
}
