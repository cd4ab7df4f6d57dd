package repository

import (
	"context"

	"PumpScan/internal/domain/models"
)

// NoopArchive is used when ClickHouse is disabled.
type NoopArchive struct{}

func (NoopArchive) Store(context.Context, *models.Analysis) error { return nil }
func (NoopArchive) Query(context.Context, string, int) ([]*models.Analysis, error) {
	return nil, models.ErrArchiveDisabled
}
func (NoopArchive) Health(context.Context) error { return nil }
func (NoopArchive) Close() error                 { return nil }

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.Analysis) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
