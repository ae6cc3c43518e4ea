package normalize

import (
	"encoding/json"
	"testing"

	"github.com/ecoscope-id/ecoscope/pkg/models"
)

func decodeRaw(t *testing.T, jsonStr string) map[string]any {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		t.Fatalf("decode raw record: %v", err)
	}
	return raw
}

func TestNormalizeNameResolution(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"nested produk.name wins", `{"produk":{"name":"Cabai Merah"},"nama":"Cabai"}`, "Cabai Merah"},
		{"top-level name", `{"name":"Bawang Merah"}`, "Bawang Merah"},
		{"nama string", `{"nama":"Kentang"}`, "Kentang"},
		{"nama_komoditas object", `{"nama_komoditas":{"name":"Kubis"}}`, "Kubis"},
		{"komoditas field", `{"komoditas":"Tomat"}`, "Tomat"},
		{"commodity_name field", `{"commodity_name":"Wortel"}`, "Wortel"},
		{"nothing recognized", `{"foo":"bar"}`, UnknownName},
		{"empty string skipped", `{"nama":"","nama_produk":"Jagung"}`, "Jagung"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(decodeRaw(t, tt.json))
			if rec.Name != tt.want {
				t.Errorf("Name: got %q, want %q", rec.Name, tt.want)
			}
		})
	}
}

func TestNormalizePriceResolution(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{"harga_pasar preferred over harga", `{"harga_pasar":46000,"harga":45000}`, 46000},
		{"harga_petani over harga", `{"harga_petani":40000,"harga":45000}`, 40000},
		{"plain harga", `{"harga":45000}`, 45000},
		{"string price parsed", `{"harga":"12500.50"}`, 12500.50},
		{"rupiah display string", `{"harga":"Rp 12.500"}`, 12500},
		{"zero skipped for later field", `{"harga_pasar":0,"harga":9000}`, 9000},
		{"negative skipped", `{"harga_pasar":-5,"price":700}`, 700},
		{"null skipped", `{"harga_pasar":null,"harga_eceran":8000}`, 8000},
		{"empty string skipped", `{"harga_pasar":"","harga_jual":7500}`, 7500},
		{"no recognized field", `{"foo":1}`, 0},
		{"all non-positive", `{"harga":0,"price":-1}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(decodeRaw(t, tt.json))
			if rec.Price != tt.want {
				t.Errorf("Price: got %v, want %v", rec.Price, tt.want)
			}
		})
	}
}

func TestNormalizeUnitCategoryDate(t *testing.T) {
	raw := decodeRaw(t, `{
		"nama": "Cabai Rawit",
		"harga": 52000,
		"satuan": "kg",
		"kategori_komoditas": {"name": "Sayuran"},
		"tanggal": "2026-08-30"
	}`)

	rec := Normalize(raw)
	if rec.Unit != "kg" {
		t.Errorf("Unit: got %q", rec.Unit)
	}
	if rec.Category != "Sayuran" {
		t.Errorf("Category: got %q", rec.Category)
	}
	if rec.Date != "2026-08-30" {
		t.Errorf("Date: got %q", rec.Date)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	rec := Normalize(map[string]any{})
	if rec.Name != UnknownName {
		t.Errorf("Name default: got %q", rec.Name)
	}
	if rec.Price != 0 {
		t.Errorf("Price default: got %v", rec.Price)
	}
	if rec.Unit != DefaultUnit {
		t.Errorf("Unit default: got %q", rec.Unit)
	}
	if rec.Category != DefaultCategory {
		t.Errorf("Category default: got %q", rec.Category)
	}
	if rec.ChangeLabel != "0%" {
		t.Errorf("ChangeLabel default: got %q", rec.ChangeLabel)
	}
}

func TestNormalizeDatePriority(t *testing.T) {
	raw := decodeRaw(t, `{"nama":"Kol","harga":3000,"updated_at":"2026-08-01","tanggal":"2026-08-15"}`)
	rec := Normalize(raw)
	if rec.Date != "2026-08-15" {
		t.Errorf("tanggal should beat updated_at: got %q", rec.Date)
	}
}

func TestFromRowRoundTrip(t *testing.T) {
	// A database row and a raw API record for the same logical price must
	// normalize to the same name, price, and unit.
	row := models.MarketPrice{
		PriceID:       7,
		CommodityName: "Bawang Putih",
		Price:         38000,
		Unit:          "kg",
		Date:          "2026-08-29",
	}
	fromDB := FromRow(row)

	fromAPI := Normalize(decodeRaw(t, `{
		"nama_komoditas": "Bawang Putih",
		"harga": 38000,
		"satuan": "kg",
		"tgl": "2026-08-29T00:00:00Z"
	}`))

	if fromDB.Name != fromAPI.Name {
		t.Errorf("Name mismatch: db %q, api %q", fromDB.Name, fromAPI.Name)
	}
	if fromDB.Price != fromAPI.Price {
		t.Errorf("Price mismatch: db %v, api %v", fromDB.Price, fromAPI.Price)
	}
	if fromDB.Unit != fromAPI.Unit {
		t.Errorf("Unit mismatch: db %q, api %q", fromDB.Unit, fromAPI.Unit)
	}
	if fromDB.ID != 7 {
		t.Errorf("ID: got %d", fromDB.ID)
	}
	if fromDB.ChangeLabel != "0%" {
		t.Errorf("ChangeLabel: got %q", fromDB.ChangeLabel)
	}
}
