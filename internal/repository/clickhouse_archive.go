package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"PumpScan/internal/domain/models"
	domrepo "PumpScan/internal/domain/repository"
	applogger "PumpScan/pkg/logger"
	"PumpScan/pkg/util"
)

// ArchiveSchema returns idempotent DDL for the analyses table.
func ArchiveSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			id UUID,
			symbol LowCardinality(String),
			trading_day Date,
			analyzed_at DateTime64(3),
			volume Int64,
			closing_price Decimal(18, 4),
			previous_closing Decimal(18, 4),
			volume_ratio Float64,
			price_change_percent Float64,
			drop_after_spike Bool,
			risk_level LowCardinality(String),
			pattern LowCardinality(String),
			explanation Array(String),
			payload String
		) ENGINE = ReplacingMergeTree ORDER BY (symbol, analyzed_at, id)`, database, table),
	}
}

// ClickHouseArchive implements Archive on a ClickHouse table.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseArchive creates the archive; table is fully qualified (db.table).
func NewClickHouseArchive(db *sql.DB, table string, l *applogger.Logger) *ClickHouseArchive {
	return &ClickHouseArchive{db: db, table: table, l: l}
}

func (s *ClickHouseArchive) Store(ctx context.Context, a *models.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, symbol, trading_day, analyzed_at, volume, closing_price, previous_closing,
		volume_ratio, price_change_percent, drop_after_spike, risk_level, pattern, explanation, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		a.ID,
		a.Record.Symbol,
		util.TradingDay(a.Record.Timestamp),
		a.AnalyzedAt,
		a.Record.Volume,
		a.Record.ClosingPrice,
		a.Record.PreviousClosing,
		a.Signals.VolumeRatio,
		a.Signals.PriceChangePercent,
		a.Signals.PriceDropAfterSpike,
		string(a.Classification.RiskLevel),
		string(a.Classification.Pattern),
		a.Classification.Explanation,
		string(payload),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse archive insert error",
				applogger.String("table", s.table),
				applogger.String("symbol", a.Record.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}

// Query returns the newest archived analyses for symbol, newest first.
func (s *ClickHouseArchive) Query(ctx context.Context, symbol string, limit int) ([]*models.Analysis, error) {
	q := fmt.Sprintf("SELECT payload FROM %s FINAL WHERE symbol = ? ORDER BY analyzed_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, models.NormalizeSymbol(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Analysis, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("archive scan: %w", err)
		}
		var a models.Analysis
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("archive decode: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *ClickHouseArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseArchive) Close() error {
	return nil // pool owned by pkg/clickhouse
}

var _ domrepo.Archive = (*ClickHouseArchive)(nil)
