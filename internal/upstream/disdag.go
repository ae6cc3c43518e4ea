package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/infra"
	"github.com/ecoscope-id/ecoscope/internal/normalize"
	"github.com/ecoscope-id/ecoscope/pkg/models"
)

// DefaultDisdagBaseURL is the Disdagkopukm Wonosobo commodity price API.
const DefaultDisdagBaseURL = "https://disdagkopukm.wonosobokab.go.id"

// Disdag fetches commodity prices from the Disdagkopukm endpoints. The
// three routes expose overlapping data under different field names; all
// of them go through the normalize probe tables.
type Disdag struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewDisdag creates a Disdagkopukm client. An empty baseURL selects the
// production API.
func NewDisdag(baseURL string) *Disdag {
	if baseURL == "" {
		baseURL = DefaultDisdagBaseURL
	}
	return &Disdag{
		baseURL: baseURL,
		cache:   infra.NewCache(5 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
	}
}

// Name returns the data source name.
func (d *Disdag) Name() string { return "Disdagkopukm Wonosobo" }

// The known commodity list routes, in the order the dashboard merges them.
var disdagRoutes = []string{
	"/api/produk-komoditas",
	"/api/komoditas",
	"/api/produk",
}

// FetchRoute fetches one route and returns normalized records.
func (d *Disdag) FetchRoute(ctx context.Context, route string) ([]models.CommodityRecord, error) {
	cacheKey := "disdag:" + route
	if cached, ok := d.cache.Get(cacheKey); ok {
		return cached.([]models.CommodityRecord), nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	data, err := getJSON(ctx, d.baseURL+route)
	if err != nil {
		return nil, fmt.Errorf("disdag %s: %w", route, err)
	}

	raw, err := decodeListEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("disdag %s: %w", route, err)
	}

	records := normalize.NormalizeAll(raw)
	d.cache.Set(cacheKey, records)
	return records, nil
}

// FetchAll merges every route into a single list. Routes that fail are
// skipped; the merge only errors when no route produced data.
func (d *Disdag) FetchAll(ctx context.Context) ([]models.CommodityRecord, error) {
	var merged []models.CommodityRecord
	var lastErr error
	for _, route := range disdagRoutes {
		records, err := d.FetchRoute(ctx, route)
		if err != nil {
			lastErr = err
			continue
		}
		merged = append(merged, records...)
	}
	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return merged, nil
}

// Latest returns the deduplicated most-recent record per commodity,
// optionally truncated for summary views.
func (d *Disdag) Latest(ctx context.Context, limit int) ([]models.CommodityRecord, error) {
	all, err := d.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return normalize.LatestPerCommodity(all, limit), nil
}

// decodeListEnvelope tolerates the envelope variants the upstream emits:
// a bare array, {"data":[...]}, or {"success":true,"data":[...]}.
func decodeListEnvelope(data []byte) ([]map[string]any, error) {
	var arr []map[string]any
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, nil
	}

	var wrapped struct {
		Success *bool            `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return nil, ErrBadPayload
}
