package models

import "time"

// Region is an administrative region record from the Disdukcapil API.
type Region struct {
	ID        int     `json:"id,omitempty"`
	Nama      string  `json:"nama"`
	Kode      string  `json:"kode,omitempty"`
	Penduduk  int     `json:"penduduk,omitempty"`
	LuasKm2   float64 `json:"luas_km2,omitempty"`
	Kecamatan string  `json:"kecamatan,omitempty"`
}

// Bulletin is a weather or agriculture bulletin from an RSS feed.
type Bulletin struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// User is a row of the users table.
type User struct {
	UserID    int        `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
