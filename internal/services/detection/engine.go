package detection

import "PumpScan/internal/domain/models"

// Engine runs one record through baseline, evaluation and classification.
// It does not serialise callers; the pipeline holding it must.
type Engine struct {
	tracker *Tracker
}

func NewEngine(tracker *Tracker) *Engine {
	return &Engine{tracker: tracker}
}

func (e *Engine) Tracker() *Tracker { return e.tracker }

func (e *Engine) Score(rec models.StockRecord, prior *models.Analysis) (models.Signals, models.Classification) {
	base := e.tracker.Observe(rec.Symbol, rec.Volume)
	sig := Evaluate(rec, base, prior)
	return sig, Classify(sig)
}
