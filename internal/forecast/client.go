// Package forecast talks to the external price forecasting service and
// runs harvest revenue simulations on top of its predictions.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/ecoscope-id/ecoscope/internal/infra"
	"github.com/ecoscope-id/ecoscope/internal/upstream"
	"github.com/ecoscope-id/ecoscope/pkg/models"
)

// DefaultForecastBaseURL is the forecasting service endpoint.
const DefaultForecastBaseURL = "http://localhost:8010"

// Forecaster is the price prediction surface the simulator depends on.
type Forecaster interface {
	ForecastCommodity(ctx context.Context, commodity string, days int) (*models.ForecastResult, error)
}

// Client calls the external forecasting service.
type Client struct {
	baseURL string
	cache   *infra.Cache
}

// NewClient creates a forecast client. An empty baseURL selects the
// default local service.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultForecastBaseURL
	}
	return &Client{
		baseURL: baseURL,
		cache:   infra.NewCache(10 * time.Minute),
	}
}

// ForecastCommodity fetches the prediction curve for one commodity.
// A service-level success:false is surfaced as an error.
func (c *Client) ForecastCommodity(ctx context.Context, commodity string, days int) (*models.ForecastResult, error) {
	if days <= 0 {
		days = 30
	}

	cacheKey := fmt.Sprintf("forecast:%s:%d", commodity, days)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*models.ForecastResult), nil
	}

	u := fmt.Sprintf("%s/forecast/commodity/%s?days=%d",
		c.baseURL, url.PathEscape(commodity), days)

	result, err := c.getResult(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", commodity, err)
	}

	c.cache.Set(cacheKey, result)
	return result, nil
}

// QuickPredict fetches the lightweight single-commodity prediction.
func (c *Client) QuickPredict(ctx context.Context, commodity string) (*models.ForecastResult, error) {
	u := fmt.Sprintf("%s/forecast/quick-predict/%s", c.baseURL, url.PathEscape(commodity))
	result, err := c.getResult(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("quick predict %s: %w", commodity, err)
	}
	return result, nil
}

// ForecastBatch fetches predictions for every known commodity at once.
func (c *Client) ForecastBatch(ctx context.Context, days int) (map[string]*models.ForecastResult, error) {
	if days <= 0 {
		days = 30
	}

	data, err := c.getJSON(ctx, fmt.Sprintf("%s/forecast/batch?days=%d", c.baseURL, days))
	if err != nil {
		return nil, fmt.Errorf("forecast batch: %w", err)
	}

	var wrapped struct {
		Success   bool                              `json:"success"`
		Message   string                            `json:"message"`
		Forecasts map[string]*models.ForecastResult `json:"forecasts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("forecast batch: parse: %w", err)
	}
	if !wrapped.Success {
		return nil, fmt.Errorf("forecast batch: service: %s", wrapped.Message)
	}
	return wrapped.Forecasts, nil
}

// Commodities lists the commodities the service can predict.
func (c *Client) Commodities(ctx context.Context) ([]string, error) {
	data, err := c.getJSON(ctx, c.baseURL+"/forecast/commodities")
	if err != nil {
		return nil, fmt.Errorf("forecast commodities: %w", err)
	}

	var wrapped struct {
		Commodities []string `json:"commodities"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("forecast commodities: parse: %w", err)
	}
	return wrapped.Commodities, nil
}

func (c *Client) getResult(ctx context.Context, u string) (*models.ForecastResult, error) {
	data, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	var result models.ForecastResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if !result.Success {
		if result.Message == "" {
			result.Message = "prediction unavailable"
		}
		return nil, fmt.Errorf("service: %s", result.Message)
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, u string) ([]byte, error) {
	return upstream.GetJSON(ctx, u)
}
