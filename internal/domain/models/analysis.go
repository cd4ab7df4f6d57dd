package models

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Rank orders risk levels so the classifier can take the maximum.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

type Pattern string

const (
	PatternNone        Pattern = "NONE"
	PatternPump        Pattern = "PUMP"
	PatternDump        Pattern = "DUMP"
	PatternPumpAndDump Pattern = "PUMP_AND_DUMP"
)

// Specificity: PumpAndDump > Pump/Dump > None.
func (p Pattern) Specificity() int {
	switch p {
	case PatternPumpAndDump:
		return 2
	case PatternPump, PatternDump:
		return 1
	default:
		return 0
	}
}

// Signals are the measured values a record is classified on.
type Signals struct {
	AverageVolume       float64 `json:"average_volume"`
	BaselineSamples     int     `json:"baseline_samples"`
	VolumeRatio         float64 `json:"volume_ratio"`
	PriceChangePercent  float64 `json:"price_change_percent"`
	PriceDropAfterSpike bool    `json:"price_drop_after_spike"`
	DropPercent         float64 `json:"drop_percent,omitempty"`
	PriorWasPump        bool    `json:"prior_was_pump,omitempty"`
}

type Classification struct {
	RiskLevel   RiskLevel `json:"risk_level"`
	Pattern     Pattern   `json:"pattern"`
	Explanation []string  `json:"explanation"`
}

// Analysis is the stored unit: a record together with the signals and
// the classification it received at ingestion time.
type Analysis struct {
	ID             uuid.UUID      `json:"id"`
	Record         StockRecord    `json:"record"`
	Signals        Signals        `json:"signals"`
	Classification Classification `json:"classification"`
	Suspicious     bool           `json:"is_suspicious"`
	AnalyzedAt     time.Time      `json:"analyzed_at"`
}

// IsSuspicious reports whether the analysis carries any risk above LOW.
func (a *Analysis) IsSuspicious() bool {
	return a.Classification.RiskLevel != RiskLow
}

type Stats struct {
	Total     int             `json:"total_stocks"`
	High      int             `json:"high_risk"`
	Medium    int             `json:"medium_risk"`
	Low       int             `json:"low_risk"`
	Symbols   int             `json:"symbols"`
	ByPattern map[Pattern]int `json:"by_pattern"`
}
