// EcoScope Wonosobo — agricultural commodity and weather dashboard.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecoscope-id/ecoscope/api"
	"github.com/ecoscope-id/ecoscope/internal/config"
	"github.com/ecoscope-id/ecoscope/internal/forecast"
	"github.com/ecoscope-id/ecoscope/internal/market"
	"github.com/ecoscope-id/ecoscope/internal/report"
	"github.com/ecoscope-id/ecoscope/internal/store"
	"github.com/ecoscope-id/ecoscope/internal/upstream"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecoscope",
	Short: "EcoScope Wonosobo — agricultural commodity & weather dashboard",
	Long: `EcoScope Wonosobo
A dashboard backend for Kabupaten Wonosobo combining local commodity
prices, BMKG weather forecasts, region data, price forecasting and
harvest revenue simulation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("EcoScope %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		defer srv.Close()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting EcoScope API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Sync Command ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch current commodity prices and store them locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		disdag := upstream.NewDisdag(cfg.Upstream.DisdagURL)
		syncer := market.NewSyncer(disdag, st, cfg.Sync.MarketLocation)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		fmt.Println("⬇️  Syncing commodity prices from Disdagkopukm...")
		result, err := syncer.SyncOnce(ctx)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("✅ Fetched %d records, saved %d (took %s)\n",
			result.Fetched, result.Saved, result.Duration)
		return nil
	},
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export stored prices to an XLSX workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		prices, err := st.ListPrices(ctx, store.PriceFilter{
			StartDate: mustFlag(cmd, "start"),
			EndDate:   mustFlag(cmd, "end"),
		})
		if err != nil {
			return err
		}

		filename := fmt.Sprintf("harga-komoditas-%s.xlsx", utils.FormatDateWIB(utils.NowWIB()))
		if len(args) == 1 {
			filename = args[0]
		}

		f, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := report.PriceWorkbook(f, prices, nil); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}

		fmt.Printf("✅ Exported %d price rows to %s\n", len(prices), filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("start", "", "start date filter (YYYY-MM-DD)")
	exportCmd.Flags().String("end", "", "end date filter (YYYY-MM-DD)")
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// --- Simulate Command ---

var simulateCmd = &cobra.Command{
	Use:   "simulate [commodity]",
	Short: "Simulate harvest revenue for a commodity",
	Long: `Simulate the revenue of selling a harvest on its harvest date,
using the price forecasting service.

Examples:
  ecoscope simulate "Cabai Rawit" --amount 150 --harvest 2026-09-20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetFloat64("amount")
		harvest, _ := cmd.Flags().GetString("harvest")

		client := forecast.NewClient(cfg.Forecast.URL)
		sim := forecast.NewSimulator(client)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := sim.Simulate(ctx, forecast.SimulationRequest{
			Commodity:   args[0],
			Amount:      amount,
			HarvestDate: harvest,
		})
		if err != nil {
			return err
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Simulasi Panen")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Komoditas:       %s\n", result.Commodity)
		fmt.Printf("  Jumlah:          %.1f kg\n", result.HarvestAmount)
		fmt.Printf("  Tanggal Panen:   %s\n", result.HarvestDate)
		fmt.Printf("  Estimasi Harga:  %s/kg\n", utils.FormatRupiah(result.EstimatedPrice))
		fmt.Printf("  Total Pendapatan: %s\n", utils.FormatRupiah(result.TotalRevenue))
		fmt.Printf("  Jual Terbaik:    %s (%s/kg)\n",
			result.BestSellDate, utils.FormatRupiah(result.BestSellPrice))
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func init() {
	simulateCmd.Flags().Float64("amount", 0, "harvest amount in kg (required)")
	simulateCmd.Flags().String("harvest", "", "harvest date, YYYY-MM-DD (required)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  EcoScope Wonosobo — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Time (WIB):  %s\n", utils.FormatDateTimeWIB(utils.NowWIB()))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Forecast URL:  %s\n", cfg.Forecast.URL)
		fmt.Printf("    Store Path:    %s\n", cfg.Store.Path)
		fmt.Printf("    Sync:          enabled=%v every %dm\n", cfg.Sync.Enabled, cfg.Sync.IntervalMinutes)
		fmt.Printf("    Default ADM4:  %s\n", cfg.Upstream.DefaultADM4)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
