// Package store persists synced market prices and user accounts in a
// local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// ErrNoRows is returned when a lookup matches nothing.
var ErrNoRows = errors.New("store: no rows")

// DefaultDBPath returns the path of the shared database file.
func DefaultDBPath() string {
	return filepath.Join("data", "ecoscope.db")
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw connection for components that run their own queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_prices (
			price_id INTEGER PRIMARY KEY AUTOINCREMENT,
			commodity_name TEXT NOT NULL,
			market_location TEXT NOT NULL DEFAULT 'Pasar Induk Wonosobo',
			unit TEXT NOT NULL DEFAULT 'kg',
			price REAL NOT NULL,
			date TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_prices_commodity_date
			ON market_prices(commodity_name, market_location, date);
		CREATE INDEX IF NOT EXISTS idx_prices_date ON market_prices(date);

		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'petani',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_login DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// --- Market prices ---

// PriceFilter narrows ListPrices.
type PriceFilter struct {
	Commodity string
	Location  string
	StartDate string // YYYY-MM-DD inclusive
	EndDate   string // YYYY-MM-DD inclusive
	Limit     int
}

// SavePrices upserts the given records, keyed by commodity, market and
// date. Records without a name or with a non-positive price are skipped.
// Returns the number of rows written.
func (s *Store) SavePrices(ctx context.Context, records []models.CommodityRecord, location string) (int, error) {
	if location == "" {
		location = "Pasar Induk Wonosobo"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save prices: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_prices (commodity_name, market_location, unit, price, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(commodity_name, market_location, date)
		DO UPDATE SET price = excluded.price, unit = excluded.unit
	`)
	if err != nil {
		return 0, fmt.Errorf("save prices: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, rec := range records {
		if rec.Name == "" || rec.Price <= 0 {
			continue
		}
		date := rec.Date
		if date == "" {
			date = utils.FormatDateWIB(utils.NowWIB())
		}
		if len(date) > 10 {
			date = date[:10]
		}
		if _, err := stmt.ExecContext(ctx, rec.Name, location, rec.Unit, rec.Price, date); err != nil {
			return saved, fmt.Errorf("save price %s: %w", rec.Name, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save prices: %w", err)
	}
	return saved, nil
}

// AddPrice inserts a single manual price entry.
func (s *Store) AddPrice(ctx context.Context, p models.MarketPrice) (int64, error) {
	if p.CommodityName == "" || p.Price <= 0 {
		return 0, fmt.Errorf("add price: name and positive price required")
	}
	if p.MarketLocation == "" {
		p.MarketLocation = "Pasar Induk Wonosobo"
	}
	if p.Unit == "" {
		p.Unit = "kg"
	}
	if p.Date == "" {
		p.Date = utils.FormatDateWIB(utils.NowWIB())
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO market_prices (commodity_name, market_location, unit, price, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(commodity_name, market_location, date)
		DO UPDATE SET price = excluded.price, unit = excluded.unit
	`, p.CommodityName, p.MarketLocation, p.Unit, p.Price, p.Date)
	if err != nil {
		return 0, fmt.Errorf("add price: %w", err)
	}
	return res.LastInsertId()
}

// ListPrices returns rows matching the filter, newest first.
func (s *Store) ListPrices(ctx context.Context, f PriceFilter) ([]models.MarketPrice, error) {
	query := `SELECT price_id, commodity_name, market_location, unit, price, date, created_at
		FROM market_prices WHERE 1=1`
	var args []any

	if f.Commodity != "" {
		query += " AND commodity_name = ?"
		args = append(args, f.Commodity)
	}
	if f.Location != "" {
		query += " AND market_location = ?"
		args = append(args, f.Location)
	}
	if f.StartDate != "" {
		query += " AND date >= ?"
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += " AND date <= ?"
		args = append(args, f.EndDate)
	}

	query += " ORDER BY date DESC, commodity_name ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()

	var out []models.MarketPrice
	for rows.Next() {
		var p models.MarketPrice
		var createdAt sql.NullTime
		if err := rows.Scan(&p.PriceID, &p.CommodityName, &p.MarketLocation,
			&p.Unit, &p.Price, &p.Date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DistinctCommodities returns the commodity names present in the store,
// sorted alphabetically.
func (s *Store) DistinctCommodities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT commodity_name FROM market_prices ORDER BY commodity_name`)
	if err != nil {
		return nil, fmt.Errorf("distinct commodities: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// LatestPerCommodity returns the newest row per commodity, newest date
// first. Same-date rows across market locations resolve to the most
// recently inserted one.
func (s *Store) LatestPerCommodity(ctx context.Context, limit int) ([]models.MarketPrice, error) {
	query := `
		SELECT p.price_id, p.commodity_name, p.market_location, p.unit, p.price, p.date, p.created_at
		FROM market_prices p
		WHERE p.price_id = (
			SELECT q.price_id FROM market_prices q
			WHERE q.commodity_name = p.commodity_name
			ORDER BY q.date DESC, q.price_id DESC LIMIT 1
		)
		ORDER BY p.date DESC, p.commodity_name ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("latest per commodity: %w", err)
	}
	defer rows.Close()

	var out []models.MarketPrice
	for rows.Next() {
		var p models.MarketPrice
		var createdAt sql.NullTime
		if err := rows.Scan(&p.PriceID, &p.CommodityName, &p.MarketLocation,
			&p.Unit, &p.Price, &p.Date, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Trend compares the two most recent prices of one commodity.
func (s *Store) Trend(ctx context.Context, commodity string) (*models.PriceTrend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT price FROM market_prices
		WHERE commodity_name = ?
		ORDER BY date DESC LIMIT 2`, commodity)
	if err != nil {
		return nil, fmt.Errorf("trend %s: %w", commodity, err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("trend %s: %w", commodity, ErrNoRows)
	}

	trend := &models.PriceTrend{
		Commodity: commodity,
		Current:   prices[0],
		Previous:  prices[0],
		Trend:     "stable",
	}
	if len(prices) == 2 {
		trend.Previous = prices[1]
		trend.Change = utils.Round2(trend.Current - trend.Previous)
		if trend.Previous != 0 {
			trend.ChangePercent = utils.Round2(trend.Change / trend.Previous * 100)
		}
		switch {
		case trend.ChangePercent > 0.5:
			trend.Trend = "up"
		case trend.ChangePercent < -0.5:
			trend.Trend = "down"
		}
	}
	return trend, nil
}

// --- Users ---

// CreateUser inserts a user with a pre-hashed password.
func (s *Store) CreateUser(ctx context.Context, name, email, phone, passwordHash, role string) (int64, error) {
	if role == "" {
		role = "petani"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES (?, ?, ?, ?, ?)`,
		name, email, phone, passwordHash, role)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return res.LastInsertId()
}

// UserByEmail fetches one user row plus its password hash.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var u models.User
	var hash string
	var lastLogin sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, COALESCE(phone, ''), password_hash, role, created_at, last_login
		FROM users WHERE email = ?`, email).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Phone, &hash, &u.Role, &u.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("user %s: %w", email, ErrNoRows)
	}
	if err != nil {
		return nil, "", fmt.Errorf("user %s: %w", email, err)
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, hash, nil
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, userID int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE user_id = ?`, at, userID)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
