package forecast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientForecastCommodity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast/commodity/Cabai Rawit" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("days") != "14" {
			t.Errorf("days = %q, want 14", r.URL.Query().Get("days"))
		}
		w.Write([]byte(`{
			"success": true,
			"commodity": "Cabai Rawit",
			"current_price": 46000,
			"forecast_days": 14,
			"predictions": [
				{"date": "2026-09-05", "predicted_price": 47000, "lower_bound": 45000, "upper_bound": 49000}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.ForecastCommodity(context.Background(), "Cabai Rawit", 14)
	if err != nil {
		t.Fatalf("ForecastCommodity: %v", err)
	}
	if result.CurrentPrice != 46000 || len(result.Predictions) != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Predictions[0].PredictedPrice != 47000 {
		t.Errorf("prediction = %+v", result.Predictions[0])
	}
}

func TestClientServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "data historis tidak cukup", "commodity": "Salak"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ForecastCommodity(context.Background(), "Salak", 7)
	if err == nil {
		t.Fatal("expected error for success:false")
	}
	if !strings.Contains(err.Error(), "data historis tidak cukup") {
		t.Errorf("error should carry the service message, got %v", err)
	}
}

func TestClientBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast/batch" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"success": true, "forecasts": {
			"Beras": {"success": true, "commodity": "Beras", "current_price": 14500, "predictions": []},
			"Cabai Rawit": {"success": true, "commodity": "Cabai Rawit", "current_price": 46000, "predictions": []}
		}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	all, err := c.ForecastBatch(context.Background(), 30)
	if err != nil {
		t.Fatalf("ForecastBatch: %v", err)
	}
	if len(all) != 2 || all["Beras"].CurrentPrice != 14500 {
		t.Errorf("batch = %+v", all)
	}
}

func TestClientCommodities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"commodities": ["Beras", "Cabai Rawit", "Kentang"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	names, err := c.Commodities(context.Background())
	if err != nil {
		t.Fatalf("Commodities: %v", err)
	}
	if len(names) != 3 || names[1] != "Cabai Rawit" {
		t.Errorf("commodities = %v", names)
	}
}
