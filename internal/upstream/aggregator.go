package upstream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// DashboardSnapshot is everything the dashboard home screen needs,
// fetched in one pass.
type DashboardSnapshot struct {
	Prices    []models.CommodityRecord  `json:"prices"`
	Weather   *models.WeatherForecast   `json:"weather,omitempty"`
	Current   *models.CurrentConditions `json:"current,omitempty"`
	Bulletins []models.Bulletin         `json:"bulletins,omitempty"`
	FetchedAt time.Time                 `json:"fetched_at"`
	Errors    []string                  `json:"errors,omitempty"`
}

// Aggregator fetches from all upstream sources concurrently.
type Aggregator struct {
	disdag      *Disdag
	bmkg        *BMKG
	openWeather *OpenWeather
	disdukcapil *Disdukcapil
	bulletins   *Bulletins
}

// NewAggregator creates an aggregator with all default sources.
// openWeatherKey may be empty; current conditions are then skipped.
func NewAggregator(openWeatherKey string) *Aggregator {
	return &Aggregator{
		disdag:      NewDisdag(""),
		bmkg:        NewBMKG(""),
		openWeather: NewOpenWeather("", openWeatherKey),
		disdukcapil: NewDisdukcapil(""),
		bulletins:   NewBulletins(),
	}
}

// NewAggregatorWith creates an aggregator from pre-configured sources,
// for callers that override the upstream endpoints.
func NewAggregatorWith(disdag *Disdag, bmkg *BMKG, ow *OpenWeather, regions *Disdukcapil, bulletins *Bulletins) *Aggregator {
	return &Aggregator{
		disdag:      disdag,
		bmkg:        bmkg,
		openWeather: ow,
		disdukcapil: regions,
		bulletins:   bulletins,
	}
}

// Disdag returns the commodity price source for direct access.
func (a *Aggregator) Disdag() *Disdag { return a.disdag }

// BMKG returns the forecast source for direct access.
func (a *Aggregator) BMKG() *BMKG { return a.bmkg }

// OpenWeather returns the current-conditions source for direct access.
func (a *Aggregator) OpenWeather() *OpenWeather { return a.openWeather }

// Disdukcapil returns the region source for direct access.
func (a *Aggregator) Disdukcapil() *Disdukcapil { return a.disdukcapil }

// Bulletins returns the bulletin source for direct access.
func (a *Aggregator) Bulletins() *Bulletins { return a.bulletins }

// FetchDashboard aggregates prices, forecast, current conditions and
// bulletins concurrently. Individual source failures are non-fatal and
// collected into the snapshot; an error is returned only when every
// source failed.
func (a *Aggregator) FetchDashboard(ctx context.Context, adm4 string) (*DashboardSnapshot, error) {
	snap := &DashboardSnapshot{FetchedAt: utils.NowWIB()}

	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		prices, err := a.disdag.Latest(gctx, 0)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("prices: %w", err))
			mu.Unlock()
			return nil // non-fatal
		}
		mu.Lock()
		snap.Prices = prices
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		forecast, err := a.bmkg.GetForecast(gctx, adm4)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("forecast: %w", err))
			mu.Unlock()
			return nil
		}
		mu.Lock()
		snap.Weather = forecast
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		current, err := a.openWeather.GetCurrent(gctx)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("current: %w", err))
			mu.Unlock()
			return nil
		}
		mu.Lock()
		snap.Current = current
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		bulletins, err := a.bulletins.Latest(gctx, 10)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("bulletins: %w", err))
			mu.Unlock()
			return nil
		}
		mu.Lock()
		snap.Bulletins = bulletins
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, e := range errs {
		snap.Errors = append(snap.Errors, e.Error())
	}

	// Fail only when not a single source responded.
	if snap.Prices == nil && snap.Weather == nil && snap.Current == nil && snap.Bulletins == nil {
		return nil, errors.Join(errs...)
	}

	return snap, nil
}
