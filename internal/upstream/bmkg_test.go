package upstream

import (
	"errors"
	"testing"
)

func TestParseBMKGModern(t *testing.T) {
	payload := []byte(`{
		"lokasi": {"adm4": "33.07.09.1020", "desa": "Wonosobo Barat", "kecamatan": "Wonosobo", "kotkab": "Wonosobo", "provinsi": "Jawa Tengah"},
		"data": [{
			"cuaca": [
				[
					{"local_datetime": "2026-01-05 07:00:00", "t": 21.5, "hu": 88, "tp": 0.4, "ws": 5.2, "wd": "SE", "weather_desc": "Berawan"},
					{"local_datetime": "2026-01-05 10:00:00", "t": 24.0, "hu": 80, "tp": 0, "ws": 6.1, "wd": "S", "weather_desc": "Cerah Berawan"}
				],
				[
					{"local_datetime": "2026-01-06 07:00:00", "t": 20.8, "hu": 90, "tp": 2.1, "ws": 4.5, "wd": "SW", "weather_desc": "Hujan Ringan"}
				]
			]
		}]
	}`)

	forecast, err := ParseBMKG(payload)
	if err != nil {
		t.Fatalf("ParseBMKG: %v", err)
	}

	if forecast.Location.Kecamatan != "Wonosobo" {
		t.Errorf("kecamatan = %q, want Wonosobo", forecast.Location.Kecamatan)
	}
	if len(forecast.Forecasts) != 3 {
		t.Fatalf("got %d observations, want 3", len(forecast.Forecasts))
	}

	first := forecast.Forecasts[0]
	if first.Datetime != "2026-01-05 07:00:00" {
		t.Errorf("first datetime = %q", first.Datetime)
	}
	if first.TemperatureC != 21.5 {
		t.Errorf("first temp = %v, want 21.5", first.TemperatureC)
	}
	if first.WeatherDescription != "Berawan" {
		t.Errorf("first desc = %q", first.WeatherDescription)
	}

	// Nested days flatten in order.
	last := forecast.Forecasts[2]
	if last.RainMm != 2.1 || last.WeatherDescription != "Hujan Ringan" {
		t.Errorf("last observation = %+v", last)
	}
}

func TestParseBMKGLegacyColumnar(t *testing.T) {
	payload := []byte(`{
		"lokasi": {"adm4": "33.07.09.1020"},
		"parameter": [
			{"id": "t", "timerange": [
				{"datetime": "202601050700", "value": "21"},
				{"datetime": "202601051000", "value": "24"},
				{"datetime": "202601051300", "value": "26"}
			]},
			{"id": "weather", "timerange": [
				{"datetime": "202601050700", "value": "Berawan"},
				{"datetime": "202601051000", "value": "Cerah"}
			]},
			{"id": "hu", "timerange": [
				{"datetime": "202601050700", "value": "88"}
			]},
			{"id": "rain", "timerange": [
				{"datetime": "202601050700", "value": "0.5"},
				{"datetime": "202601051000", "value": "0"},
				{"datetime": "202601051300", "value": "3"}
			]},
			{"id": "wd", "timerange": [
				{"datetime": "202601050700", "value": "SE"}
			]}
		]
	}`)

	forecast, err := ParseBMKG(payload)
	if err != nil {
		t.Fatalf("ParseBMKG: %v", err)
	}
	if len(forecast.Forecasts) != 3 {
		t.Fatalf("got %d observations, want 3", len(forecast.Forecasts))
	}

	first := forecast.Forecasts[0]
	if first.TemperatureC != 21 || first.WeatherDescription != "Berawan" ||
		first.HumidityPct != 88 || first.RainMm != 0.5 || first.WindDirection != "SE" {
		t.Errorf("first observation merged wrong: %+v", first)
	}

	// Fields with shorter parameter arrays default to zero values.
	third := forecast.Forecasts[2]
	if third.TemperatureC != 26 {
		t.Errorf("third temp = %v, want 26", third.TemperatureC)
	}
	if third.WeatherDescription != "" {
		t.Errorf("third desc = %q, want empty (array too short)", third.WeatherDescription)
	}
	if third.HumidityPct != 0 {
		t.Errorf("third humidity = %v, want 0", third.HumidityPct)
	}
	if third.RainMm != 3 {
		t.Errorf("third rain = %v, want 3", third.RainMm)
	}
}

func TestParseBMKGEmpty(t *testing.T) {
	if _, err := ParseBMKG([]byte(`{"lokasi": {}}`)); !errors.Is(err, ErrBadPayload) {
		t.Errorf("empty payload error = %v, want ErrBadPayload", err)
	}
	if _, err := ParseBMKG([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
