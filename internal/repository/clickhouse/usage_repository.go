package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sola/internal/domain/usage"
	"sola/internal/metrics"
	"sola/pkg/clickhouse"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

// Compile-time check that we implement the interface
var _ usage.Repository = (*UsageRepository)(nil)

// UsageRepository implements usage.Repository for ClickHouse.
// Writes go through a batch writer since single row inserts are
// a ClickHouse anti-pattern.
type UsageRepository struct {
	conn        driver.Conn
	batchWriter *clickhouse.BatchWriter
}

// NewUsageRepository creates a new usage repository with batch writer
func NewUsageRepository(conn driver.Conn, maxBatchSize int, maxAge time.Duration) *UsageRepository {
	repo := &UsageRepository{conn: conn}

	repo.batchWriter = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig{
		FlushFunc:    repo.flushBatch,
		TableName:    "usage_records",
		MaxBatchSize: maxBatchSize,
		MaxAge:       maxAge,
	})

	return repo
}

// Start begins the background flush loop
func (r *UsageRepository) Start(ctx context.Context) {
	r.batchWriter.Start(ctx)
}

// Stop gracefully shuts down the batch writer
func (r *UsageRepository) Stop(ctx context.Context) error {
	return r.batchWriter.Stop(ctx)
}

// Record buffers a usage record for the next batch insert
func (r *UsageRepository) Record(ctx context.Context, rec *usage.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.batchWriter.Add(ctx, rec)
}

// flushBatch performs one batch INSERT for all buffered records.
// PrepareBatch accumulates rows in memory; Send executes a single
// INSERT over the wire.
func (r *UsageRepository) flushBatch(ctx context.Context, batch []interface{}) error {
	if len(batch) == 0 {
		return nil
	}

	log := logger.Get().With("component", "usage_batch")

	query := `
		INSERT INTO usage_records (
			id, user_id, session_id, provider, model,
			prompt_tokens, completion_tokens, cost_usd, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	start := time.Now()

	stmt, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}
	defer stmt.Close()

	validItems := 0
	for _, item := range batch {
		rec, ok := item.(*usage.Record)
		if !ok {
			log.Warnf("Skipping invalid item type: %T", item)
			continue
		}

		cost, _ := rec.CostUSD.Float64()
		err := stmt.Append(
			rec.ID.String(), rec.UserID.String(), rec.SessionID.String(),
			rec.Provider, rec.Model,
			rec.PromptTokens, rec.CompletionTokens, cost, rec.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append to batch")
		}
		validItems++
	}

	err = stmt.Send()
	metrics.RecordDBQuery("clickhouse", "insert_usage_batch", err)
	if err != nil {
		return errors.Wrap(err, "failed to send batch")
	}

	log.Infof("Batch inserted %d usage records in %v", validItems, time.Since(start))
	return nil
}

// SumCostSince returns the total USD cost for a user since the given time.
// Buffered records not yet flushed are flushed first so the gate never
// undercounts consumption.
func (r *UsageRepository) SumCostSince(ctx context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	if err := r.batchWriter.Flush(ctx); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to flush pending records")
	}

	query := `
		SELECT sum(cost_usd) AS total_cost
		FROM usage_records
		WHERE user_id = ? AND created_at >= ?
	`

	var totalCost float64
	err := r.conn.QueryRow(ctx, query, userID.String(), since).Scan(&totalCost)
	metrics.RecordDBQuery("clickhouse", "sum_usage_cost", err)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to sum usage cost")
	}

	return decimal.NewFromFloat(totalCost), nil
}

// RecentRecords returns a user's most recent usage records
func (r *UsageRepository) RecentRecords(ctx context.Context, userID uuid.UUID, limit int) ([]usage.Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, user_id, session_id, provider, model,
		       prompt_tokens, completion_tokens, cost_usd, created_at
		FROM usage_records
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, userID.String(), limit)
	metrics.RecordDBQuery("clickhouse", "recent_usage_records", err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query usage records")
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var (
			rec          usage.Record
			id, uid, sid string
			cost         float64
		)
		if err := rows.Scan(&id, &uid, &sid, &rec.Provider, &rec.Model,
			&rec.PromptTokens, &rec.CompletionTokens, &cost, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan usage record")
		}
		rec.ID, _ = uuid.Parse(id)
		rec.UserID, _ = uuid.Parse(uid)
		rec.SessionID, _ = uuid.Parse(sid)
		rec.CostUSD = decimal.NewFromFloat(cost)
		records = append(records, rec)
	}

	return records, nil
}
