package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"PumpScan/internal/domain/models"
	pkgkafka "PumpScan/pkg/kafka"
)

// KafkaRecordsHandler feeds records from the records topic into the
// Analyzer. The payload has the same shape as the HTTP analyze body.
type KafkaRecordsHandler struct {
	topic    string
	analyzer *Analyzer
}

func NewKafkaRecordsHandler(topic string, analyzer *Analyzer) *KafkaRecordsHandler {
	return &KafkaRecordsHandler{topic: topic, analyzer: analyzer}
}

func (h *KafkaRecordsHandler) Topic() string { return h.topic }

// Handle rejects malformed and invalid records as permanent so the consumer
// does not retry them.
func (h *KafkaRecordsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.AnalyzeRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.analyzer.metrics.RecordRejected(SourceKafka)
		return pkgkafka.Permanent(fmt.Errorf("decode record: %w", err))
	}
	if _, err := h.analyzer.AnalyzeRequest(ctx, SourceKafka, &req); err != nil {
		if models.IsValidation(err) {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRecordsHandler)(nil)
