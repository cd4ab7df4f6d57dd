package repository

import (
	"context"

	"PumpScan/internal/domain/models"
	domrepo "PumpScan/internal/domain/repository"
	pkgkafka "PumpScan/pkg/kafka"
)

// Alert is the message published for every suspicious analysis.
type Alert struct {
	ID          string   `json:"id"`
	Symbol      string   `json:"symbol"`
	RiskLevel   string   `json:"risk_level"`
	Pattern     string   `json:"pattern"`
	VolumeRatio float64  `json:"volume_ratio"`
	PriceChange float64  `json:"price_change_percent"`
	Close       string   `json:"closing_price"`
	Explanation []string `json:"explanation"`
	AnalyzedAt  int64    `json:"analyzed_at"`
}

func NewAlert(a *models.Analysis) Alert {
	return Alert{
		ID:          a.ID.String(),
		Symbol:      a.Record.Symbol,
		RiskLevel:   string(a.Classification.RiskLevel),
		Pattern:     string(a.Classification.Pattern),
		VolumeRatio: a.Signals.VolumeRatio,
		PriceChange: a.Signals.PriceChangePercent,
		Close:       a.Record.ClosingPrice.String(),
		Explanation: a.Classification.Explanation,
		AnalyzedAt:  a.AnalyzedAt.UnixMilli(),
	}
}

type publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaAlertPublisher publishes alerts keyed by symbol so a symbol's
// alerts stay ordered on one partition.
type KafkaAlertPublisher struct {
	producer publisher
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

// Publish skips analyses that are not suspicious.
func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.Analysis) error {
	if !a.IsSuspicious() {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(a.Record.Symbol), NewAlert(a))
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)
