package ingest

// batch.go persists accepted rows in fixed-size contiguous batches. The
// contract is isolation, not atomicity: a failed batch is recorded and the
// next batch still runs. Cancellation is cooperative between batches so a
// finished batch is never rolled back.

import "context"

// DefaultBatchSize is the batch size used when the caller supplies none.
const DefaultBatchSize = 50

// Upserter is the persistence collaborator. UpsertBatch writes one batch of
// rows keyed by (stock number, owner) and returns how many records were
// persisted. Re-submitting the same keys must update, not duplicate.
type Upserter interface {
	UpsertBatch(ctx context.Context, owner string, rows []Row) (int, error)
}

// BatchOutcome records one batch's persistence result. Error is empty on
// success.
type BatchOutcome struct {
	Index     int    `json:"index"`
	Attempted int    `json:"attempted"`
	Persisted int    `json:"persisted"`
	Error     string `json:"error,omitempty"`
}

// BatchProgressFunc is called after each batch with the 1-indexed batch
// number and the total batch count.
type BatchProgressFunc func(done, total int)

// PersistBatches partitions rows into contiguous batches of batchSize,
// preserving order, and upserts them sequentially. Every batch reports its
// own outcome; a failing batch never aborts its siblings. Between batches
// the context is checked: on cancellation the outcomes so far are returned
// together with the context's error, reflecting what actually persisted.
func PersistBatches(ctx context.Context, store Upserter, owner string, rows []Row, batchSize int, progress BatchProgressFunc) ([]BatchOutcome, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(rows) == 0 {
		return nil, nil
	}

	total := (len(rows) + batchSize - 1) / batchSize
	outcomes := make([]BatchOutcome, 0, total)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		lo := i * batchSize
		hi := min(lo+batchSize, len(rows))
		batch := rows[lo:hi]

		outcome := BatchOutcome{Index: i + 1, Attempted: len(batch)}
		n, err := store.UpsertBatch(ctx, owner, batch)
		outcome.Persisted = n
		if err != nil {
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)

		// A batch aborted by cancellation is cancellation, not a batch
		// failure.
		if err != nil && ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	return outcomes, nil
}
