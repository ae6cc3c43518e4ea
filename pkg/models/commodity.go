// Package models defines the shared data types exchanged between the
// upstream clients, the normalization layer, the local store, and the API.
package models

import "time"

// CommodityRecord is the canonical commodity price record produced by
// normalization. Every upstream shape (Disdagkopukm JSON variants, the
// local database rows) ends up in this form.
type CommodityRecord struct {
	ID          int     `json:"id,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Date        string  `json:"date"` // ISO date (YYYY-MM-DD...), lexicographically ordered
	ChangeLabel string  `json:"change_label"`
	Category    string  `json:"category"`
}

// MarketPrice is a row of the local market_prices table, mirroring the
// shape the sync job persists.
type MarketPrice struct {
	PriceID        int       `json:"price_id"`
	CommodityName  string    `json:"commodity_name"`
	MarketLocation string    `json:"market_location"`
	Unit           string    `json:"unit"`
	Price          float64   `json:"price"`
	Date           string    `json:"date"` // YYYY-MM-DD
	CreatedAt      time.Time `json:"created_at"`
}

// PriceTrend summarizes the most recent price movement for one commodity.
type PriceTrend struct {
	Commodity     string  `json:"commodity"`
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Trend         string  `json:"trend"` // "up", "down", "stable"
}
