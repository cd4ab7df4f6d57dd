package detection

import (
	"math"
	"testing"
	"time"

	"PumpScan/internal/domain/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func properties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	return gopter.NewProperties(parameters)
}

func TestProperty_FirstRecordIsNeutral(t *testing.T) {
	props := properties()

	props.Property("unseen symbol has ratio 1 and its own volume as baseline", prop.ForAll(
		func(volume int64, change float64) bool {
			e := NewEngine(NewTracker(5))
			sig, cls := e.Score(record("NEW", volume, 500, 480, &change), nil)
			return sig.VolumeRatio == 1.0 &&
				sig.AverageVolume == float64(volume) &&
				cls.Pattern != models.PatternPump &&
				cls.Pattern != models.PatternPumpAndDump
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Float64Range(-10, 10),
	))

	props.TestingRun(t)
}

func TestProperty_SpikeWithRiseIsPump(t *testing.T) {
	props := properties()

	props.Property("volume >= 3x average with price >= 5% is Pump and at least Medium", prop.ForAll(
		func(base int64, mult, change float64, window int) bool {
			e := NewEngine(NewTracker(window))
			for i := 0; i < window; i++ {
				e.Tracker().Observe("PMP", base)
			}
			volume := int64(math.Ceil(float64(base) * mult))
			_, cls := e.Score(record("PMP", volume, 560, 520, &change), nil)
			return cls.Pattern == models.PatternPump && cls.RiskLevel.Rank() >= models.RiskMedium.Rank()
		},
		gen.Int64Range(1, 1_000_000),
		gen.Float64Range(3, 20),
		gen.Float64Range(5, 60),
		gen.IntRange(1, 10),
	))

	props.TestingRun(t)
}

func TestProperty_PumpFollowedByDropIsPumpAndDump(t *testing.T) {
	props := properties()

	props.Property("successor of a pump closing >= 5% lower is High PumpAndDump", prop.ForAll(
		func(base int64, nextVolume int64, closing, drop float64) bool {
			e := NewEngine(NewTracker(5))
			for i := 0; i < 5; i++ {
				e.Tracker().Observe("PND", base)
			}
			rise := 8.0
			pumpRec := record("PND", base*4, closing, closing/1.08, &rise)
			sig, cls := e.Score(pumpRec, nil)
			if cls.Pattern != models.PatternPump {
				return false
			}
			prior := &models.Analysis{Record: pumpRec, Signals: sig, Classification: cls}

			next := pumpRec
			next.Volume = nextVolume
			next.PreviousClosing = pumpRec.ClosingPrice
			next.ClosingPrice = pumpRec.ClosingPrice.Mul(decimal.NewFromFloat(1 - drop)).Round(4)
			next.PercentChange = decimal.NullDecimal{}

			_, cls = e.Score(next, prior)
			return cls.RiskLevel == models.RiskHigh && cls.Pattern == models.PatternPumpAndDump
		},
		gen.Int64Range(1, 1_000_000),
		gen.Int64Range(0, 10_000_000),
		gen.Float64Range(100, 5000),
		gen.Float64Range(0.051, 0.5),
	))

	props.TestingRun(t)
}

func TestProperty_RiskIsMaximumOfMatches(t *testing.T) {
	props := properties()

	props.Property("LOW iff no rule matched", prop.ForAll(
		func(ratio, change float64, dropped, pumped bool) bool {
			s := models.Signals{
				VolumeRatio:         ratio,
				PriceChangePercent:  change,
				PriceDropAfterSpike: dropped,
				PriorWasPump:        dropped && pumped,
				DropPercent:         6,
			}
			c := Classify(s)
			quiet := ratio < SpikeThreshold && !dropped
			return (c.RiskLevel == models.RiskLow) == quiet && len(c.Explanation) > 0
		},
		gen.Float64Range(0, 10),
		gen.Float64Range(-20, 20),
		gen.Bool(),
		gen.Bool(),
	))

	props.TestingRun(t)
}
