package models

import (
	"time"

	"PumpScan/pkg/util"

	"github.com/shopspring/decimal"
)

// Boundary payloads. The same shape is accepted over HTTP and Kafka.

type AnalyzeRequest struct {
	Symbol          string   `json:"symbol" validate:"required,max=20"`
	CompanyName     string   `json:"company_name" validate:"max=200"`
	Volume          *int64   `json:"volume" validate:"required,gte=0"`
	OpeningPrice    float64  `json:"opening_price" validate:"omitempty,gt=0"`
	ClosingPrice    float64  `json:"closing_price" validate:"required,gt=0"`
	MaxPrice        float64  `json:"max_price" validate:"omitempty,gt=0"`
	MinPrice        float64  `json:"min_price" validate:"omitempty,gt=0"`
	PreviousClosing float64  `json:"previous_closing" validate:"required,gt=0"`
	PercentChange   *float64 `json:"percent_change"`
	Amount          float64  `json:"amount" validate:"gte=0"`
	Transactions    int64    `json:"transactions" validate:"gte=0"`
	Timestamp       string   `json:"timestamp"`
}

type SymbolRequest struct {
	Symbol  string `param:"symbol" validate:"required,max=20"`
	History bool   `query:"history"`
}

type ArchiveRequest struct {
	Symbol string `param:"symbol" validate:"required,max=20"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// ToRecord converts a validated request into a StockRecord. Missing
// open/high/low prices fall back to the closing price; a missing timestamp
// falls back to now.
func (r *AnalyzeRequest) ToRecord(now time.Time) (StockRecord, error) {
	ts := now
	if r.Timestamp != "" {
		t, ok := util.ParseTime(r.Timestamp)
		if !ok {
			return StockRecord{}, &ValidationError{Fields: []FieldError{{
				Field:   "timestamp",
				Message: "timestamp must be RFC3339, a date, or unix seconds",
			}}}
		}
		ts = t
	}

	closing := decimal.NewFromFloat(r.ClosingPrice)
	orClose := func(v float64) decimal.Decimal {
		if v <= 0 {
			return closing
		}
		return decimal.NewFromFloat(v)
	}

	rec := StockRecord{
		Symbol:          NormalizeSymbol(r.Symbol),
		CompanyName:     r.CompanyName,
		Volume:          *r.Volume,
		OpeningPrice:    orClose(r.OpeningPrice),
		ClosingPrice:    closing,
		MaxPrice:        orClose(r.MaxPrice),
		MinPrice:        orClose(r.MinPrice),
		PreviousClosing: decimal.NewFromFloat(r.PreviousClosing),
		Amount:          decimal.NewFromFloat(r.Amount),
		Transactions:    r.Transactions,
		Timestamp:       ts.UTC(),
	}
	if r.PercentChange != nil {
		rec.PercentChange = decimal.NewNullDecimal(decimal.NewFromFloat(*r.PercentChange))
	}
	if rec.Symbol == "" {
		return StockRecord{}, &ValidationError{Fields: []FieldError{{Field: "symbol", Message: "symbol is required"}}}
	}
	return rec, nil
}
