package detection

import (
	"math"

	"PumpScan/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Fixed detection thresholds.
const (
	// SpikeThreshold is the volume multiple of the rolling average that counts as a spike.
	SpikeThreshold = 3.0
	// RiseThreshold is the percent price increase that makes a spike a pump.
	RiseThreshold = 5.0
	// DropThreshold is the fractional fall in closing price after a spike.
	DropThreshold = 0.05
)

var (
	hundred       = decimal.NewFromInt(100)
	dropThreshold = decimal.NewFromFloat(DropThreshold)
)

// Evaluate computes the signals for rec given the baseline observed before it
// and the previous analysis for the same symbol (nil when there is none).
func Evaluate(rec models.StockRecord, base Baseline, prior *models.Analysis) models.Signals {
	s := models.Signals{
		AverageVolume:      base.Average,
		BaselineSamples:    base.Samples,
		VolumeRatio:        VolumeRatio(rec.Volume, base),
		PriceChangePercent: PriceChangePercent(rec),
	}

	if prior == nil || prior.Signals.VolumeRatio < SpikeThreshold {
		return s
	}
	prevClose := prior.Record.ClosingPrice
	if !prevClose.IsPositive() {
		return s
	}
	drop := prevClose.Sub(rec.ClosingPrice).Div(prevClose)
	if drop.GreaterThanOrEqual(dropThreshold) {
		s.PriceDropAfterSpike = true
		s.DropPercent = round2(drop.Mul(hundred).InexactFloat64())
		s.PriorWasPump = prior.Signals.PriceChangePercent >= RiseThreshold
	}
	return s
}

// VolumeRatio is volume over the baseline average, floored at 1 to avoid
// division by zero. Without history the ratio is exactly 1.
func VolumeRatio(volume int64, base Baseline) float64 {
	if base.Samples == 0 {
		return 1.0
	}
	return float64(volume) / math.Max(base.Average, 1)
}

// PriceChangePercent prefers the reported percent change and otherwise
// derives it from closing against previous closing.
func PriceChangePercent(rec models.StockRecord) float64 {
	if rec.PercentChange.Valid {
		return rec.PercentChange.Decimal.InexactFloat64()
	}
	if !rec.PreviousClosing.IsPositive() {
		return 0
	}
	return rec.ClosingPrice.Sub(rec.PreviousClosing).
		Div(rec.PreviousClosing).
		Mul(hundred).
		Round(4).
		InexactFloat64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
