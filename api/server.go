// Package api provides the HTTP REST API server for EcoScope.
//
// It exposes endpoints for commodity prices, weather forecasts, region
// data, price forecasting, harvest simulation, and WebSocket streaming.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ecoscope-id/ecoscope/internal/config"
	"github.com/ecoscope-id/ecoscope/internal/crops"
	"github.com/ecoscope-id/ecoscope/internal/forecast"
	"github.com/ecoscope-id/ecoscope/internal/market"
	"github.com/ecoscope-id/ecoscope/internal/normalize"
	"github.com/ecoscope-id/ecoscope/internal/report"
	"github.com/ecoscope-id/ecoscope/internal/session"
	"github.com/ecoscope-id/ecoscope/internal/store"
	"github.com/ecoscope-id/ecoscope/internal/upstream"
	"github.com/ecoscope-id/ecoscope/internal/weather"
	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
	"github.com/ecoscope-id/ecoscope/web"
)

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	cfg        *config.Config
	agg        *upstream.Aggregator
	store      *store.Store
	sessions   *session.Manager
	forecaster *forecast.Client
	simulator  *forecast.Simulator
	syncer     *market.Syncer
	scheduler  *market.Scheduler
	wsHub      *WSHub
	serveUI    bool // when true, serve the embedded web UI at /
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	agg := upstream.NewAggregatorWith(
		upstream.NewDisdag(cfg.Upstream.DisdagURL),
		upstream.NewBMKG(cfg.Upstream.BMKGURL),
		upstream.NewOpenWeather("", cfg.Upstream.OpenWeatherKey),
		upstream.NewDisdukcapil(cfg.Upstream.DisdukcapilURL),
		upstream.NewBulletins(),
	)

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("store setup failed: %w", err)
	}

	fc := forecast.NewClient(cfg.Forecast.URL)
	syncer := market.NewSyncer(agg.Disdag(), st, cfg.Sync.MarketLocation)

	srv := &Server{
		cfg:        cfg,
		agg:        agg,
		store:      st,
		sessions:   session.NewManager(st),
		forecaster: fc,
		simulator:  forecast.NewSimulator(fc),
		syncer:     syncer,
		scheduler:  market.NewScheduler(syncer, time.Duration(cfg.Sync.IntervalMinutes)*time.Minute),
		wsHub:      NewWSHub(),
		serveUI:    true, // serve embedded web UI by default
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close releases the server's resources.
func (s *Server) Close() error {
	s.scheduler.Stop()
	return s.store.Close()
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Hourly market sync
	if s.cfg.Sync.Enabled {
		s.scheduler.Start(context.Background())
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")
	s.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Market prices
		r.Get("/market/prices", s.handleListPrices)
		r.Post("/market/prices", s.handleAddPrice)
		r.Get("/market/commodities", s.handleCommodityNames)
		r.Get("/market/realtime", s.handleRealtimePrices)
		r.Get("/market/realtime/komoditas", s.handleRealtimeKomoditas)
		r.Get("/market/realtime/produk", s.handleRealtimeProduk)
		r.Get("/market/trend/{name}", s.handleTrend)
		r.Post("/market/sync", s.handleSyncNow)
		r.Get("/market/sync/status", s.handleSyncStatus)

		// Weather
		r.Get("/weather/current", s.handleCurrentWeather)
		r.Get("/weather/predict", s.handleWeatherPredict)
		r.Get("/weather/bulletins", s.handleBulletins)

		// Crop recommendation
		r.Get("/crops/recommend", s.handleCropRecommend)
		r.Get("/crops/database", s.handleCropDatabase)

		// Regions
		r.Get("/wilayah/list", s.handleRegionList)
		r.Get("/wilayah/kecamatan/{nama}", s.handleRegionByKecamatan)
		r.Get("/wilayah/count", s.handleRegionCount)

		// Forecasting
		r.Get("/forecast/commodity/{name}", s.handleForecastCommodity)
		r.Get("/forecast/batch", s.handleForecastBatch)
		r.Get("/forecast/quick-predict/{name}", s.handleQuickPredict)
		r.Get("/forecast/commodities", s.handleForecastCommodities)

		// Harvest simulation
		r.Post("/simulate", s.handleSimulate)

		// Auth
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register-admin", s.handleRegisterAdmin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		// Reports
		r.Get("/report/prices.xlsx", s.handlePriceReport)

		// Dashboard snapshot
		r.Get("/dashboard", s.handleDashboard)

		// Configuration
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded web UI (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// mountSPA serves the embedded static export as a single-page app.
// Static assets are served directly with caching; all other paths fall
// back to index.html for client-side routing.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		// Try to open the requested file from the embedded FS
		f, err := distFS.Open(rPath)
		if err != nil {
			// File not found — serve index.html for SPA client-side routing
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		if strings.HasPrefix(rPath, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else if rPath == "index.html" || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html for SPA fallback.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AddPriceRequest is a manual price entry.
type AddPriceRequest struct {
	Commodity string  `json:"commodity"`
	Market    string  `json:"market,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Price     float64 `json:"price"`
	Date      string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

// LoginRequest carries the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the admin-registration form.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  "dev",
			"time_wib": utils.FormatDateTimeWIB(utils.NowWIB()),
		},
	})
}

// --- Market ---

func (s *Server) handleListPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.PriceFilter{
		Commodity: q.Get("commodity"),
		Location:  q.Get("market"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	prices, err := s.store.ListPrices(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: prices})
}

func (s *Server) handleAddPrice(w http.ResponseWriter, r *http.Request) {
	if s.requireAuth(w, r) == nil {
		return
	}

	var req AddPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Commodity == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "commodity and positive price are required")
		return
	}

	id, err := s.store.AddPrice(r.Context(), models.MarketPrice{
		CommodityName:  req.Commodity,
		MarketLocation: req.Market,
		Unit:           req.Unit,
		Price:          req.Price,
		Date:           req.Date,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "price_added",
		Data: map[string]interface{}{"commodity": req.Commodity, "price": req.Price},
	})

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"price_id": id},
	})
}

func (s *Server) handleCommodityNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.DistinctCommodities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: names})
}

func (s *Server) handleRealtimePrices(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	records, err := s.agg.Disdag().Latest(ctx, limit)
	if err != nil {
		// JSON routes down: try the HTML price table, then the last
		// synced rows from the local store.
		records, err = s.agg.Disdag().FetchPriceTable(ctx)
		if err != nil {
			rows, dbErr := s.store.LatestPerCommodity(ctx, limit)
			if dbErr != nil || len(rows) == 0 {
				writeError(w, http.StatusBadGateway, err.Error())
				return
			}
			records = make([]models.CommodityRecord, 0, len(rows))
			for _, row := range rows {
				records = append(records, normalize.FromRow(row))
			}
		} else {
			records = normalize.LatestPerCommodity(records, limit)
		}
	}

	if cat := r.URL.Query().Get("category"); cat != "" {
		records = normalize.FilterByCategory(records, cat)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		records = normalize.Search(records, q)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: records})
}

func (s *Server) handleRealtimeKomoditas(w http.ResponseWriter, r *http.Request) {
	s.handleRealtimeRoute(w, r, "/api/komoditas")
}

func (s *Server) handleRealtimeProduk(w http.ResponseWriter, r *http.Request) {
	s.handleRealtimeRoute(w, r, "/api/produk")
}

func (s *Server) handleRealtimeRoute(w http.ResponseWriter, r *http.Request, route string) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	records, err := s.agg.Disdag().FetchRoute(ctx, route)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: records})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "commodity name is required")
		return
	}

	trend, err := s.store.Trend(r.Context(), name)
	if errors.Is(err, store.ErrNoRows) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: trend})
}

func (s *Server) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.syncer.SyncOnce(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "prices_synced",
		Data: map[string]interface{}{"saved": result.Saved},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.scheduler.Status()})
}

// --- Weather ---

func (s *Server) handleCurrentWeather(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	current, err := s.agg.OpenWeather().GetCurrent(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: current})
}

func (s *Server) handleWeatherPredict(w http.ResponseWriter, r *http.Request) {
	adm4 := r.URL.Query().Get("adm4")
	if adm4 == "" {
		adm4 = s.cfg.Upstream.DefaultADM4
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	fc, err := s.agg.BMKG().GetForecast(ctx, adm4)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "weather_update",
		Data: map[string]interface{}{"location": fc.Location, "observations": len(fc.Forecasts)},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"location":  fc.Location,
			"forecasts": fc.Forecasts,
			"daily":     weather.DailySummaries(fc.Forecasts),
		},
	})
}

func (s *Server) handleBulletins(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	bulletins, err := s.agg.Bulletins().Latest(ctx, limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: bulletins})
}

// --- Crop recommendation ---

func (s *Server) handleCropRecommend(w http.ResponseWriter, r *http.Request) {
	adm4 := r.URL.Query().Get("adm4")
	if adm4 == "" {
		adm4 = s.cfg.Upstream.DefaultADM4
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	fc, err := s.agg.BMKG().GetForecast(ctx, adm4)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	location := fc.Location.Desa
	if location == "" {
		location = fc.Location.Kecamatan
	}

	rec := crops.Recommend(weather.DailySummaries(fc.Forecasts), location)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

func (s *Server) handleCropDatabase(w http.ResponseWriter, r *http.Request) {
	catalogue := crops.Database()

	var categories []string
	seen := make(map[string]bool)
	for _, c := range catalogue {
		if !seen[c.Category] {
			seen[c.Category] = true
			categories = append(categories, c.Category)
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"total_crops": len(catalogue),
			"categories":  categories,
			"crops":       catalogue,
		},
	})
}

// --- Regions ---

func (s *Server) handleRegionList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	regions, err := s.agg.Disdukcapil().ListRegions(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: regions})
}

func (s *Server) handleRegionByKecamatan(w http.ResponseWriter, r *http.Request) {
	nama := chi.URLParam(r, "nama")
	if nama == "" {
		writeError(w, http.StatusBadRequest, "kecamatan name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	regions, err := s.agg.Disdukcapil().ByKecamatan(ctx, nama)
	if errors.Is(err, upstream.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: regions})
}

func (s *Server) handleRegionCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	count, err := s.agg.Disdukcapil().Count(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"count": count},
	})
}

// --- Forecasting ---

func (s *Server) handleForecastCommodity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "commodity name is required")
		return
	}

	days := s.cfg.Forecast.DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.forecaster.ForecastCommodity(ctx, name, days)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleForecastBatch(w http.ResponseWriter, r *http.Request) {
	days := s.cfg.Forecast.DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	forecasts, err := s.forecaster.ForecastBatch(ctx, days)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: forecasts})
}

func (s *Server) handleQuickPredict(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "commodity name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := s.forecaster.QuickPredict(ctx, name)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleForecastCommodities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	names, err := s.forecaster.Commodities(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: names})
}

// --- Simulation ---

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req forecast.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.simulator.Simulate(ctx, req)
	var verr *forecast.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// --- Auth ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sess})
}

// handleRegisterAdmin creates an admin account. It is the setup path
// for a fresh database; login is impossible until at least one user
// exists.
func (s *Server) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	email := strings.ToLower(req.Email)
	if _, _, err := s.store.UserByEmail(r.Context(), email); err == nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	} else if !errors.Is(err, store.ErrNoRows) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	id, err := s.store.CreateUser(r.Context(), req.Name, email, req.Phone,
		session.HashPassword(req.Password), "admin")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"user_id": id},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.sessions.Logout(token)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := s.requireAuth(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sess.User})
}

// requireAuth validates the bearer token, writing the error response
// itself and returning nil when the request is not authenticated.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) *session.Session {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return nil
	}

	sess, err := s.sessions.Validate(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return nil
	}
	return sess
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// --- Reports ---

func (s *Server) handlePriceReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	prices, err := s.store.ListPrices(ctx, store.PriceFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Include the weather outlook when BMKG is reachable; the report is
	// still useful without it.
	var daily []models.DailyWeatherSummary
	if fc, err := s.agg.BMKG().GetForecast(ctx, s.cfg.Upstream.DefaultADM4); err == nil {
		daily = weather.DailySummaries(fc.Forecasts)
	}

	filename := fmt.Sprintf("harga-komoditas-%s.xlsx", utils.FormatDateWIB(utils.NowWIB()))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := report.PriceWorkbook(w, prices, daily); err != nil {
		log.Printf("price report failed: %v", err)
	}
}

// --- Dashboard ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	adm4 := r.URL.Query().Get("adm4")
	if adm4 == "" {
		adm4 = s.cfg.Upstream.DefaultADM4
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	snap, err := s.agg.FetchDashboard(ctx, adm4)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

// --- Configuration ---

func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage

	mu     sync.Mutex
	closed bool
}

// trySend queues a message without blocking. Returns false when the
// client is already closed or its buffer is full.
func (c *WSClient) trySend(msg WSMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close marks the client dead and closes its send channel exactly once.
// After this, trySend becomes a safe no-op, so the read pump can keep
// replying to in-flight messages without panicking.
func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.trySend(msg) {
					// Slow client; disconnect
					delete(h.clients, client)
					client.close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
