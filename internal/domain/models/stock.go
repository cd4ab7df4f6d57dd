package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord is one daily trading observation for a listed symbol.
// Records are immutable once built by the ingestion boundary.
type StockRecord struct {
	Symbol          string              `json:"symbol"`
	CompanyName     string              `json:"company_name,omitempty"`
	Volume          int64               `json:"volume"`
	OpeningPrice    decimal.Decimal     `json:"opening_price"`
	ClosingPrice    decimal.Decimal     `json:"closing_price"`
	MaxPrice        decimal.Decimal     `json:"max_price"`
	MinPrice        decimal.Decimal     `json:"min_price"`
	PreviousClosing decimal.Decimal     `json:"previous_closing"`
	PercentChange   decimal.NullDecimal `json:"percent_change"`
	Amount          decimal.Decimal     `json:"amount"`
	Transactions    int64               `json:"transactions,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
}

// NormalizeSymbol upper-cases and trims a ticker so lookups are case-insensitive.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
