package forecast

import (
	"context"
	"fmt"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// MaxHarvestHorizonDays bounds how far ahead a harvest can be simulated.
const MaxHarvestHorizonDays = 90

// forecastPaddingDays extends the requested curve past the harvest date
// so a best-sell window exists.
const forecastPaddingDays = 14

// SimulationRequest describes one harvest scenario.
type SimulationRequest struct {
	Commodity   string  `json:"commodity"`
	Amount      float64 `json:"amount"`       // kg
	HarvestDate string  `json:"harvest_date"` // YYYY-MM-DD
}

// ValidationError marks a request the caller can fix.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Simulator runs harvest revenue simulations against a Forecaster.
type Simulator struct {
	forecaster Forecaster
}

// NewSimulator creates a simulator backed by the given forecaster.
func NewSimulator(f Forecaster) *Simulator {
	return &Simulator{forecaster: f}
}

// Simulate estimates the revenue of selling a harvest on its harvest
// date, and finds the better sell date if the forecast has one. A
// forecasting service failure aborts the simulation; no numbers are
// produced from partial data.
func (s *Simulator) Simulate(ctx context.Context, req SimulationRequest) (*models.SimulationResult, error) {
	if req.Commodity == "" {
		return nil, &ValidationError{Field: "commodity", Reason: "must not be empty"}
	}
	if req.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	harvest, err := utils.ParseDateWIB(req.HarvestDate)
	if err != nil {
		return nil, &ValidationError{Field: "harvest_date", Reason: "must be YYYY-MM-DD"}
	}

	today, _ := utils.ParseDateWIB(utils.FormatDateWIB(utils.NowWIB()))
	daysUntilHarvest := int(harvest.Sub(today).Hours() / 24)
	if daysUntilHarvest < 0 {
		return nil, &ValidationError{Field: "harvest_date", Reason: "must not be in the past"}
	}
	if daysUntilHarvest > MaxHarvestHorizonDays {
		return nil, &ValidationError{
			Field:  "harvest_date",
			Reason: fmt.Sprintf("must be within %d days", MaxHarvestHorizonDays),
		}
	}

	result, err := s.forecaster.ForecastCommodity(ctx, req.Commodity, daysUntilHarvest+forecastPaddingDays)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", req.Commodity, err)
	}

	harvestKey := utils.DayKey(harvest)
	estimated := estimatedPriceAt(result, harvestKey)

	bestDate, bestPrice := bestSellAfter(result.Predictions, harvestKey)
	if bestDate == "" {
		bestDate = harvestKey
		bestPrice = estimated
	}

	return &models.SimulationResult{
		Commodity:      req.Commodity,
		HarvestAmount:  req.Amount,
		HarvestDate:    harvestKey,
		EstimatedPrice: estimated,
		TotalRevenue:   utils.Round2(req.Amount * estimated),
		BestSellDate:   bestDate,
		BestSellPrice:  bestPrice,
	}, nil
}

// predictionDayKey reduces a prediction date to its YYYY-MM-DD key.
// Forecast services emit bare dates or full timestamps depending on
// version; both must compare equal to the harvest day key.
func predictionDayKey(date string) string {
	if t, err := utils.ParseFlexibleTime(date); err == nil {
		return utils.DayKey(t)
	}
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// estimatedPriceAt resolves the price for the harvest day: the
// prediction for that exact date, else the last prediction, else the
// current price.
func estimatedPriceAt(result *models.ForecastResult, day string) float64 {
	for _, p := range result.Predictions {
		if predictionDayKey(p.Date) == day {
			return p.PredictedPrice
		}
	}
	if n := len(result.Predictions); n > 0 {
		return result.Predictions[n-1].PredictedPrice
	}
	return result.CurrentPrice
}

// bestSellAfter finds the highest predicted price strictly after the
// harvest day. Equal maxima resolve to the earliest date. Returns empty
// strings when no prediction falls after the harvest.
func bestSellAfter(predictions []models.ForecastPrediction, day string) (string, float64) {
	bestDate := ""
	bestPrice := 0.0
	for _, p := range predictions {
		key := predictionDayKey(p.Date)
		if key <= day {
			continue
		}
		if bestDate == "" || p.PredictedPrice > bestPrice ||
			(p.PredictedPrice == bestPrice && key < bestDate) {
			bestDate = key
			bestPrice = p.PredictedPrice
		}
	}
	return bestDate, bestPrice
}
