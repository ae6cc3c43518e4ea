package utils

import "testing"

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "Rp 0"},
		{100, "Rp 100"},
		{1000, "Rp 1.000"},
		{45000, "Rp 45.000"},
		{52000, "Rp 52.000"},
		{123456, "Rp 123.456"},
		{1234567, "Rp 1.234.567"},
		{12500.50, "Rp 12.501"},
		{-14000, "-Rp 14.000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatRupiah(tt.input)
			if result != tt.expected {
				t.Errorf("FormatRupiah(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{"float64", float64(45000), 45000},
		{"int", 14000, 14000},
		{"int64", int64(52000), 52000},
		{"plain string", "12500", 12500},
		{"decimal string", "12500.50", 12500.50},
		{"display string", "Rp 12.500", 12500},
		{"display with decimal comma", "Rp 12.500,50", 12500.50},
		{"lowercase rp", "rp 45.000", 45000},
		{"empty string", "", 0},
		{"garbage", "gratis", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParsePrice(tt.input)
			if result != tt.expected {
				t.Errorf("ParsePrice(%v) = %f, want %f", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRound(t *testing.T) {
	if got := Round1(23.45); got != 23.5 {
		t.Errorf("Round1(23.45) = %f, want 23.5", got)
	}
	if got := Round1(0.04); got != 0 {
		t.Errorf("Round1(0.04) = %f, want 0", got)
	}
	if got := Round2(1.238); got != 1.24 {
		t.Errorf("Round2(1.238) = %f, want 1.24", got)
	}
}
