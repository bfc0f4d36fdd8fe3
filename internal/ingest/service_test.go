package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingStore gates UpsertBatch on a channel so tests can hold an
// ingestion in the persisting phase.
type blockingStore struct {
	gate chan struct{}
	mu   sync.Mutex
	rows int
}

func (b *blockingStore) UpsertBatch(ctx context.Context, owner string, rows []Row) (int, error) {
	select {
	case <-b.gate:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	b.mu.Lock()
	b.rows += len(rows)
	b.mu.Unlock()
	return len(rows), nil
}

func TestService_StartIngestionAndResult(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, ServiceConfig{MaxConcurrent: 2, BatchSize: 50}, nil)

	id, err := svc.StartIngestion(context.Background(), "trader-1", "stock.csv", []byte(sampleCSV), 0)
	if err != nil {
		t.Fatalf("StartIngestion() error = %v", err)
	}
	if id == "" {
		t.Fatal("StartIngestion returned empty id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report, err := svc.Result(ctx, id)
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if report.AcceptedRows != 2 || report.RejectedRows != 1 {
		t.Errorf("accepted/rejected = %d/%d, want 2/1", report.AcceptedRows, report.RejectedRows)
	}

	progress, err := svc.Progress(id)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.Phase != PhaseComplete {
		t.Errorf("Phase = %q, want complete", progress.Phase)
	}
}

func TestService_RequiresOwner(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceConfig{}, nil)
	if _, err := svc.StartIngestion(context.Background(), "", "f.csv", []byte(sampleCSV), 0); err == nil {
		t.Fatal("StartIngestion with empty owner succeeded")
	}
}

func TestService_FatalFileFailsIngestion(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceConfig{}, nil)

	id, err := svc.StartIngestion(context.Background(), "o", "empty.csv", nil, 0)
	if err != nil {
		t.Fatalf("StartIngestion() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := svc.Result(ctx, id); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Result() error = %v, want ErrEmptyFile", err)
	}

	progress, err := svc.Progress(id)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.Phase != PhaseFailed {
		t.Errorf("Phase = %q, want failed", progress.Phase)
	}
}

func TestService_SubscribeProgressCloses(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceConfig{}, nil)

	id, err := svc.StartIngestion(context.Background(), "o", "stock.csv", []byte(sampleCSV), 0)
	if err != nil {
		t.Fatalf("StartIngestion() error = %v", err)
	}

	ch, err := svc.SubscribeProgress(id)
	if err != nil {
		t.Fatalf("SubscribeProgress() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	var last Progress
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				if last.Phase != PhaseComplete {
					t.Errorf("last phase = %q, want complete", last.Phase)
				}
				return
			}
			last = p
		case <-deadline:
			t.Fatal("progress channel never closed")
		}
	}
}

func TestService_Cancel(t *testing.T) {
	store := &blockingStore{gate: make(chan struct{})}
	svc := NewService(store, ServiceConfig{BatchSize: 1}, nil)

	id, err := svc.StartIngestion(context.Background(), "o", "stock.csv", []byte(sampleCSV), 0)
	if err != nil {
		t.Fatalf("StartIngestion() error = %v", err)
	}

	// Let the first batch through, then cancel while the second is gated.
	store.gate <- struct{}{}
	if err := svc.Cancel(id); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report, err := svc.Result(ctx, id)
	if err == nil {
		t.Fatal("Result() after cancel returned nil error")
	}
	if report == nil {
		t.Fatal("Result() after cancel returned nil report, want partial report")
	}
	if report.PersistedRows != 1 {
		t.Errorf("PersistedRows = %d, want 1 (first batch finished)", report.PersistedRows)
	}

	progress, err := svc.Progress(id)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.Phase != PhaseCancelled {
		t.Errorf("Phase = %q, want cancelled", progress.Phase)
	}
}

func TestService_LimiterReleased(t *testing.T) {
	svc := NewService(newFakeStore(), ServiceConfig{MaxConcurrent: 1}, nil)

	for i := 0; i < 3; i++ {
		id, err := svc.StartIngestion(context.Background(), "o", "stock.csv", []byte(sampleCSV), 0)
		if err != nil {
			t.Fatalf("run %d: StartIngestion() error = %v", i, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := svc.Result(ctx, id); err != nil {
			cancel()
			t.Fatalf("run %d: Result() error = %v", i, err)
		}
		cancel()
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Limiter().WaitForDrain(drainCtx); err != nil {
		t.Errorf("WaitForDrain = %v, want nil (slots released)", err)
	}
}
