package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/infra"
	"github.com/ecoscope-id/ecoscope/pkg/models"
)

// DefaultDisdukcapilBaseURL is the Wonosobo population office API.
const DefaultDisdukcapilBaseURL = "https://disdukcapil.wonosobokab.go.id"

// Disdukcapil proxies the administrative region list. The upstream is a
// small government site, so every response is cached aggressively.
type Disdukcapil struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewDisdukcapil creates a Disdukcapil client. An empty baseURL selects
// the production site.
func NewDisdukcapil(baseURL string) *Disdukcapil {
	if baseURL == "" {
		baseURL = DefaultDisdukcapilBaseURL
	}
	return &Disdukcapil{
		baseURL: baseURL,
		cache:   infra.NewCache(1 * time.Hour),
		limiter: infra.NewRateLimiter(1, time.Second),
	}
}

// Name returns the data source name.
func (d *Disdukcapil) Name() string { return "Disdukcapil" }

// ListRegions fetches every desa/kelurahan record.
func (d *Disdukcapil) ListRegions(ctx context.Context) ([]models.Region, error) {
	if cached, ok := d.cache.Get("wilayah:all"); ok {
		return cached.([]models.Region), nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	data, err := getJSON(ctx, d.baseURL+"/api/wilayah")
	if err != nil {
		return nil, fmt.Errorf("disdukcapil wilayah: %w", err)
	}

	regions, err := decodeRegions(data)
	if err != nil {
		return nil, fmt.Errorf("disdukcapil wilayah: %w", err)
	}

	d.cache.Set("wilayah:all", regions)
	return regions, nil
}

// ByKecamatan filters the region list to one kecamatan, matched
// case-insensitively.
func (d *Disdukcapil) ByKecamatan(ctx context.Context, nama string) ([]models.Region, error) {
	all, err := d.ListRegions(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(nama))
	var out []models.Region
	for _, r := range all {
		if strings.ToLower(r.Kecamatan) == want {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("kecamatan %q: %w", nama, ErrNotFound)
	}
	return out, nil
}

// Count returns the number of region records.
func (d *Disdukcapil) Count(ctx context.Context) (int, error) {
	all, err := d.ListRegions(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// decodeRegions tolerates both a bare array and a {"data": [...]} wrapper.
func decodeRegions(data []byte) ([]models.Region, error) {
	var bare []models.Region
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Data []models.Region `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return nil, ErrBadPayload
}
