package detection

import (
	"fmt"

	"PumpScan/internal/domain/models"
)

type rule struct {
	name     string
	match    func(models.Signals) bool
	pattern  models.Pattern
	risk     models.RiskLevel
	describe func(models.Signals) string
}

func spike(s models.Signals) bool { return s.VolumeRatio >= SpikeThreshold }

func volumeAndPrice(s models.Signals) string {
	return fmt.Sprintf("volume %.1fx average, price %+.1f%%", s.VolumeRatio, s.PriceChangePercent)
}

// rules is evaluated in full for every record; see Classify.
var rules = []rule{
	{
		name:    "pump-and-dump",
		match:   func(s models.Signals) bool { return s.PriceDropAfterSpike && s.PriorWasPump },
		pattern: models.PatternPumpAndDump,
		risk:    models.RiskHigh,
		describe: func(s models.Signals) string {
			return fmt.Sprintf("price down %.1f%% from previous close after a pump", s.DropPercent)
		},
	},
	{
		name:     "pump",
		match:    func(s models.Signals) bool { return spike(s) && s.PriceChangePercent >= RiseThreshold },
		pattern:  models.PatternPump,
		risk:     models.RiskMedium,
		describe: volumeAndPrice,
	},
	{
		name:     "dump",
		match:    func(s models.Signals) bool { return spike(s) && s.PriceChangePercent < 0 },
		pattern:  models.PatternDump,
		risk:     models.RiskMedium,
		describe: volumeAndPrice,
	},
	{
		name:    "drop-after-spike",
		match:   func(s models.Signals) bool { return s.PriceDropAfterSpike && !s.PriorWasPump },
		pattern: models.PatternDump,
		risk:    models.RiskMedium,
		describe: func(s models.Signals) string {
			return fmt.Sprintf("price down %.1f%% from previous close after a volume spike", s.DropPercent)
		},
	},
	{
		name: "volume-spike",
		match: func(s models.Signals) bool {
			return spike(s) && s.PriceChangePercent >= 0 && s.PriceChangePercent < RiseThreshold
		},
		pattern: models.PatternNone,
		risk:    models.RiskMedium,
		describe: func(s models.Signals) string {
			return fmt.Sprintf("volume %.1fx average without a matching price move (%+.1f%%)", s.VolumeRatio, s.PriceChangePercent)
		},
	},
}

// Classify applies every rule to s. The risk is the highest reached by any
// matching rule, the pattern is the most specific match, and the explanation
// lists each match in rule order.
func Classify(s models.Signals) models.Classification {
	out := models.Classification{
		RiskLevel: models.RiskLow,
		Pattern:   models.PatternNone,
	}
	for _, r := range rules {
		if !r.match(s) {
			continue
		}
		if r.risk.Rank() > out.RiskLevel.Rank() {
			out.RiskLevel = r.risk
		}
		if r.pattern.Specificity() > out.Pattern.Specificity() {
			out.Pattern = r.pattern
		}
		out.Explanation = append(out.Explanation, r.describe(s))
	}
	if len(out.Explanation) == 0 {
		out.Explanation = []string{volumeAndPrice(s) + ", within normal range"}
	}
	return out
}

// Rules returns the names of the rules in evaluation order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}
