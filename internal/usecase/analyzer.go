package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PumpScan/internal/domain/models"
	domrepo "PumpScan/internal/domain/repository"
	"PumpScan/internal/services/detection"
	xhttp "PumpScan/pkg/http"
	applogger "PumpScan/pkg/logger"

	"github.com/google/uuid"
)

// Ingestion sources, used as the metrics label for rejected records.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceSeed  = "seed"
)

// Analyzer is the single ingestion path. Records from every source are
// scored and stored one at a time, so a symbol's baseline and its prior
// analysis always advance together. Archive and alert sinks receive
// analyses in the same order as the store.
type Analyzer struct {
	mu      sync.Mutex // scoring and store writes
	sinkMu  sync.Mutex // forwarding; taken before mu is released
	engine  *detection.Engine
	store   domrepo.AnalysisStore
	archive domrepo.Archive
	alerts  domrepo.AlertPublisher
	metrics domrepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

func NewAnalyzer(
	engine *detection.Engine,
	store domrepo.AnalysisStore,
	archive domrepo.Archive,
	alerts domrepo.AlertPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *Analyzer {
	if l == nil {
		l = applogger.Nop()
	}
	return &Analyzer{
		engine:  engine,
		store:   store,
		archive: archive,
		alerts:  alerts,
		metrics: metrics,
		log:     l,
		now:     time.Now,
	}
}

// AnalyzeRequest validates a boundary payload and analyzes the resulting
// record. Invalid payloads return a *models.ValidationError and leave all
// state untouched.
func (a *Analyzer) AnalyzeRequest(ctx context.Context, source string, req *models.AnalyzeRequest) (*models.Analysis, error) {
	if req == nil {
		a.metrics.RecordRejected(source)
		return nil, &models.ValidationError{Fields: []models.FieldError{{Message: "empty record"}}}
	}
	if errs := xhttp.ValidateStruct(ctx, req); errs != nil {
		a.metrics.RecordRejected(source)
		return nil, toValidationError(errs)
	}
	rec, err := req.ToRecord(a.now())
	if err != nil {
		a.metrics.RecordRejected(source)
		return nil, err
	}
	return a.Analyze(ctx, rec)
}

// Analyze scores rec against the symbol's baseline and prior analysis,
// stores the result and forwards it to the archive and alert sinks.
// Sink failures are logged, not returned.
func (a *Analyzer) Analyze(ctx context.Context, rec models.StockRecord) (*models.Analysis, error) {
	rec.Symbol = models.NormalizeSymbol(rec.Symbol)
	if rec.Symbol == "" {
		return nil, &models.ValidationError{Fields: []models.FieldError{{Field: "symbol", Message: "symbol is required"}}}
	}
	if rec.Volume < 0 {
		return nil, &models.ValidationError{Fields: []models.FieldError{{Field: "volume", Message: "volume must not be negative"}}}
	}

	start := time.Now()
	a.mu.Lock()
	analysis := a.score(rec)
	a.sinkMu.Lock()
	a.mu.Unlock()
	defer a.sinkMu.Unlock()
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	a.metrics.RecordAnalysis(string(analysis.Classification.RiskLevel), string(analysis.Classification.Pattern))
	a.metrics.RecordVolumeRatio(rec.Symbol, analysis.Signals.VolumeRatio)

	a.log.Debug("record analyzed",
		applogger.String("symbol", rec.Symbol),
		applogger.Float64("volume_ratio", analysis.Signals.VolumeRatio),
		applogger.Bool("suspicious", analysis.Suspicious),
	)
	if analysis.Suspicious {
		a.log.Info("suspicious activity",
			applogger.String("symbol", rec.Symbol),
			applogger.String("risk", string(analysis.Classification.RiskLevel)),
			applogger.String("pattern", string(analysis.Classification.Pattern)),
			applogger.Float64("volume_ratio", analysis.Signals.VolumeRatio),
			applogger.Float64("price_change", analysis.Signals.PriceChangePercent),
			applogger.Strings("explanation", analysis.Classification.Explanation),
		)
	}

	a.forward(ctx, analysis)
	return analysis, nil
}

// score must be called with a.mu held.
func (a *Analyzer) score(rec models.StockRecord) *models.Analysis {
	prior, err := a.store.Latest(rec.Symbol)
	if err != nil {
		prior = nil
	}
	sig, cls := a.engine.Score(rec, prior)
	analysis := &models.Analysis{
		ID:             uuid.New(),
		Record:         rec,
		Signals:        sig,
		Classification: cls,
		AnalyzedAt:     a.now().UTC(),
	}
	analysis.Suspicious = analysis.IsSuspicious()
	a.store.Put(analysis)
	return analysis
}

func (a *Analyzer) forward(ctx context.Context, analysis *models.Analysis) {
	if a.archive != nil {
		start := time.Now()
		if err := a.archive.Store(ctx, analysis); err != nil {
			a.metrics.RecordError("archive_store")
			a.log.Warn("archive store failed", applogger.String("symbol", analysis.Record.Symbol), applogger.Error(err))
		}
		a.metrics.RecordLatency("archive_store", time.Since(start).Seconds())
	}
	if a.alerts != nil && analysis.Suspicious {
		if err := a.alerts.Publish(ctx, analysis); err != nil {
			a.metrics.RecordError("alert_publish")
			a.log.Warn("alert publish failed", applogger.String("symbol", analysis.Record.Symbol), applogger.Error(err))
		}
	}
}

// Rejected counts a record refused at a boundary before it reached
// AnalyzeRequest.
func (a *Analyzer) Rejected(source string) {
	a.metrics.RecordRejected(source)
}

// Archive returns up to limit archived analyses for symbol, newest first.
func (a *Analyzer) Archive(ctx context.Context, symbol string, limit int) ([]*models.Analysis, error) {
	if a.archive == nil {
		return nil, models.ErrArchiveDisabled
	}
	out, err := a.archive.Query(ctx, models.NormalizeSymbol(symbol), limit)
	if err != nil && !errors.Is(err, models.ErrArchiveDisabled) {
		a.metrics.RecordError("archive_query")
		return nil, fmt.Errorf("query archive: %w", err)
	}
	return out, err
}

func toValidationError(errs []xhttp.ValidationError) *models.ValidationError {
	ve := &models.ValidationError{Fields: make([]models.FieldError, 0, len(errs))}
	for _, e := range errs {
		ve.Fields = append(ve.Fields, models.FieldError{Field: e.Field, Message: e.Message})
	}
	return ve
}
