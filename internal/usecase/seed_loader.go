package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"PumpScan/internal/domain/models"
	applogger "PumpScan/pkg/logger"
)

// nepseStock is one row of the NEPSE daily market JSON.
type nepseStock struct {
	BusinessDate    string   `json:"businessDate"`
	StockSymbol     string   `json:"stockSymbol"`
	CompanyName     string   `json:"companyName"`
	Volume          *int64   `json:"volume"`
	OpeningPrice    float64  `json:"openingPrice"`
	MaxPrice        float64  `json:"maxPrice"`
	MinPrice        float64  `json:"minPrice"`
	ClosingPrice    float64  `json:"closingPrice"`
	PreviousClosing float64  `json:"previousClosing"`
	PercentChange   *float64 `json:"percentChange"`
	Amount          float64  `json:"amount"`
	TotalTrades     int64    `json:"totalTrades"`
}

func (s nepseStock) request() *models.AnalyzeRequest {
	return &models.AnalyzeRequest{
		Symbol:          s.StockSymbol,
		CompanyName:     s.CompanyName,
		Volume:          s.Volume,
		OpeningPrice:    s.OpeningPrice,
		ClosingPrice:    s.ClosingPrice,
		MaxPrice:        s.MaxPrice,
		MinPrice:        s.MinPrice,
		PreviousClosing: s.PreviousClosing,
		PercentChange:   s.PercentChange,
		Amount:          s.Amount,
		Transactions:    s.TotalTrades,
		Timestamp:       s.BusinessDate,
	}
}

// SeedResult summarises a seed run.
type SeedResult struct {
	Loaded     int
	Rejected   int
	Suspicious int
}

// SeedLoader analyzes a NEPSE daily JSON file at start-up.
type SeedLoader struct {
	analyzer *Analyzer
	log      *applogger.Logger
}

func NewSeedLoader(analyzer *Analyzer, l *applogger.Logger) *SeedLoader {
	if l == nil {
		l = applogger.Nop()
	}
	return &SeedLoader{analyzer: analyzer, log: l}
}

// LoadFile analyzes every stock in path in file order. A missing file is
// not an error: it is logged and nothing is loaded.
func (s *SeedLoader) LoadFile(ctx context.Context, path string) (SeedResult, error) {
	if path == "" {
		return SeedResult{}, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Warn("seed file not found", applogger.String("path", path))
		return SeedResult{}, nil
	}
	if err != nil {
		return SeedResult{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	res, err := s.Load(ctx, f)
	if err != nil {
		return res, fmt.Errorf("load seed file %s: %w", path, err)
	}
	s.log.Info("seed data loaded",
		applogger.String("path", path),
		applogger.Int("loaded", res.Loaded),
		applogger.Int("rejected", res.Rejected),
		applogger.Int("suspicious", res.Suspicious),
	)
	return res, nil
}

// Load decodes the {"result":{"stocks":[...]}} document from r. Invalid rows
// are skipped and counted.
func (s *SeedLoader) Load(ctx context.Context, r io.Reader) (SeedResult, error) {
	var doc struct {
		Result struct {
			Stocks []nepseStock `json:"stocks"`
		} `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return SeedResult{}, fmt.Errorf("decode: %w", err)
	}

	var res SeedResult
	for i, st := range doc.Result.Stocks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		a, err := s.analyzer.AnalyzeRequest(ctx, SourceSeed, st.request())
		if err != nil {
			res.Rejected++
			s.log.Warn("seed record rejected",
				applogger.Int("index", i),
				applogger.String("symbol", st.StockSymbol),
				applogger.Error(err),
			)
			continue
		}
		res.Loaded++
		if a.Suspicious {
			res.Suspicious++
		}
	}
	return res, nil
}
