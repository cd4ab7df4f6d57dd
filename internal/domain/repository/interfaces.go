package repository

import (
	"context"

	"PumpScan/internal/domain/models"
)

// AnalysisStore is the store of record for classified records.
type AnalysisStore interface {
	Put(a *models.Analysis)
	All() []*models.Analysis
	Suspicious() []*models.Analysis
	Latest(symbol string) (*models.Analysis, error)
	History(symbol string) ([]*models.Analysis, error)
	Stats() models.Stats
	Version() uint64
}

// Archive is an append-only copy of analyses for later querying.
type Archive interface {
	Store(ctx context.Context, a *models.Analysis) error
	Query(ctx context.Context, symbol string, limit int) ([]*models.Analysis, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher forwards suspicious analyses downstream.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.Analysis) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(risk, pattern string)
	RecordRejected(source string)
	RecordError(kind string)
	RecordVolumeRatio(symbol string, ratio float64)
	RecordLatency(op string, seconds float64)
}
