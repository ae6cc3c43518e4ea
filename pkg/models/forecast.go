package models

// ForecastPrediction is one point of the price forecast curve returned by
// the external forecasting service.
type ForecastPrediction struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	PredictedPrice float64 `json:"predicted_price"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	ActualPrice    float64 `json:"actual_price,omitempty"`
}

// ForecastStatistics summarizes a forecast curve.
type ForecastStatistics struct {
	AveragePredictedPrice float64 `json:"average_predicted_price"`
	MinPredictedPrice     float64 `json:"min_predicted_price"`
	MaxPredictedPrice     float64 `json:"max_predicted_price"`
	PriceTrend            string  `json:"price_trend"` // "naik", "turun", "stabil"
	TrendPercentage       float64 `json:"trend_percentage"`
}

// ForecastResult is the full response of the forecasting service for one
// commodity. Success=false carries a message instead of predictions.
type ForecastResult struct {
	Success              bool                 `json:"success"`
	Message              string               `json:"message,omitempty"`
	Commodity            string               `json:"commodity"`
	Model                string               `json:"model,omitempty"`
	CurrentPrice         float64              `json:"current_price"`
	LastActualDate       string               `json:"last_actual_date,omitempty"`
	ForecastDays         int                  `json:"forecast_days"`
	HistoricalDataPoints int                  `json:"historical_data_points"`
	Statistics           *ForecastStatistics  `json:"statistics,omitempty"`
	Historical           []ForecastPrediction `json:"historical,omitempty"`
	Predictions          []ForecastPrediction `json:"predictions"`
}

// SimulationResult is the outcome of a harvest revenue simulation.
type SimulationResult struct {
	Commodity      string  `json:"commodity"`
	HarvestAmount  float64 `json:"harvest_amount"`
	HarvestDate    string  `json:"harvest_date"`
	EstimatedPrice float64 `json:"estimated_price"`
	TotalRevenue   float64 `json:"total_revenue"`
	BestSellDate   string  `json:"best_sell_date"`
	BestSellPrice  float64 `json:"best_sell_price,omitempty"`
}
