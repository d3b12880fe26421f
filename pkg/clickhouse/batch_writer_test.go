package clickhouse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecorder struct {
	mu      sync.Mutex
	batches [][]interface{}
}

func (r *flushRecorder) flush(_ context.Context, batch []interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	return nil
}

func (r *flushRecorder) totalItems() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.batches {
		total += len(b)
	}
	return total
}

func TestBatchWriter_FlushOnMaxSize(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "usage_records",
		MaxBatchSize: 3,
		MaxAge:       10 * time.Second,
	})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, "row1"))
	require.NoError(t, bw.Add(ctx, "row2"))
	require.NoError(t, bw.Add(ctx, "row3"))

	rec.mu.Lock()
	assert.Equal(t, 1, len(rec.batches))
	assert.Equal(t, 3, len(rec.batches[0]))
	rec.mu.Unlock()

	assert.Equal(t, 0, bw.BufferSize())
}

func TestBatchWriter_FlushOnTimer(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "usage_records",
		MaxBatchSize: 100,
		MaxAge:       100 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, "row1"))
	require.NoError(t, bw.Add(ctx, "row2"))

	time.Sleep(250 * time.Millisecond)

	assert.GreaterOrEqual(t, rec.totalItems(), 2)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))
}

func TestBatchWriter_GracefulStop(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "usage_records",
		MaxBatchSize: 100,
		MaxAge:       10 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, "row1"))
	require.NoError(t, bw.Add(ctx, "row2"))
	require.NoError(t, bw.Add(ctx, "row3"))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))

	assert.Equal(t, 3, rec.totalItems(), "all rows should be flushed on stop")
}

func TestBatchWriter_ConcurrentAdds(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "usage_records",
		MaxBatchSize: 10,
		MaxAge:       time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bw.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_ = bw.Add(ctx, idx)
		}(i)
	}
	wg.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))

	assert.Equal(t, 50, rec.totalItems())
}
