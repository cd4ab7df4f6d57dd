package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"PumpScan/internal/domain/models"
	xhttp "PumpScan/pkg/http"

	"github.com/spf13/cobra"
)

var (
	apiURL  string
	asJSON  bool
	timeout time.Duration
	history bool

	analyzeReq models.AnalyzeRequest
	volume     int64
	pctChange  float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Terminal dashboard for the NEPSE pump scan service",
		Long: `Dashboard renders analyses served by the pump scan API.

Examples:
  dashboard stats
  dashboard suspicious
  dashboard stock NABIL --history
  dashboard analyze --symbol NABIL --volume 45000 --close 1180 --prev 1100`,
		SilenceUsage: true,
	}

	defaultURL := os.Getenv("PUMPSCAN_API")
	if defaultURL == "" {
		defaultURL = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of tables")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	stockCmd := &cobra.Command{
		Use:   "stock SYMBOL",
		Short: "Show the latest analysis for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runStock,
	}
	stockCmd.Flags().BoolVar(&history, "history", false, "show every analysis for the symbol")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit a daily record for analysis",
		RunE:  runAnalyze,
	}
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeReq.Symbol, "symbol", "", "stock symbol")
	f.StringVar(&analyzeReq.CompanyName, "company", "", "company name")
	f.Int64Var(&volume, "volume", 0, "traded volume")
	f.Float64Var(&analyzeReq.ClosingPrice, "close", 0, "closing price")
	f.Float64Var(&analyzeReq.PreviousClosing, "prev", 0, "previous closing price")
	f.Float64Var(&pctChange, "pct", 0, "reported percent change (derived from prices when omitted)")
	f.StringVar(&analyzeReq.Timestamp, "date", "", "trading date (YYYY-MM-DD)")
	_ = analyzeCmd.MarkFlagRequired("symbol")
	_ = analyzeCmd.MarkFlagRequired("close")
	_ = analyzeCmd.MarkFlagRequired("prev")

	rootCmd.AddCommand(
		&cobra.Command{Use: "stocks", Short: "List every analysis", Args: cobra.NoArgs, RunE: runList("/api/stocks")},
		&cobra.Command{Use: "suspicious", Short: "List suspicious analyses", Args: cobra.NoArgs, RunE: runList("/api/stocks/suspicious")},
		&cobra.Command{Use: "stats", Short: "Show risk counts", Args: cobra.NoArgs, RunE: runStats},
		stockCmd,
		analyzeCmd,
	)
	return rootCmd
}

// get calls path and decodes the envelope's data field into dest.
func get(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := xhttp.NewClient(apiURL, xhttp.WithTimeout(timeout)).Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if asJSON {
		fmt.Println(string(data))
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func runList(path string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		var rows []*models.Analysis
		if err := get(cmd.Context(), http.MethodGet, path, nil, &rows); err != nil {
			return err
		}
		if !asJSON {
			renderAnalyses(os.Stdout, rows)
		}
		return nil
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	var st models.Stats
	if err := get(cmd.Context(), http.MethodGet, "/api/stats", nil, &st); err != nil {
		return err
	}
	if !asJSON {
		renderStats(os.Stdout, st)
	}
	return nil
}

func runStock(cmd *cobra.Command, args []string) error {
	path := "/api/stocks/" + models.NormalizeSymbol(args[0])
	if history {
		var list struct {
			Rows []*models.Analysis `json:"rows"`
		}
		if err := get(cmd.Context(), http.MethodGet, path+"?history=true", nil, &list); err != nil {
			return err
		}
		if !asJSON {
			renderAnalyses(os.Stdout, list.Rows)
		}
		return nil
	}

	var a models.Analysis
	if err := get(cmd.Context(), http.MethodGet, path, nil, &a); err != nil {
		return err
	}
	if !asJSON {
		renderDetail(os.Stdout, &a)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	req := analyzeReq
	req.Volume = &volume
	if cmd.Flags().Changed("pct") {
		req.PercentChange = &pctChange
	}

	var a models.Analysis
	if err := get(cmd.Context(), http.MethodPost, "/api/stocks/analyze", req, &a); err != nil {
		return err
	}
	if !asJSON {
		renderDetail(os.Stdout, &a)
	}
	return nil
}
