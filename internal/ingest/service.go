package ingest

// service.go wraps the pipeline in an asynchronous service: a submission
// returns an ingestion id immediately, progress streams to subscribed
// listeners, and the final report is retrievable until the retention window
// expires. The worker goroutine recovers panics so a bad file can never
// leak a limiter slot.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase names the pipeline stage an ingestion is currently in.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseParsing    Phase = "parsing"
	PhaseMapping    Phase = "mapping"
	PhaseValidating Phase = "validating"
	PhasePersisting Phase = "persisting"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
	PhaseCancelled  Phase = "cancelled"
)

// Progress is a point-in-time snapshot of one ingestion.
type Progress struct {
	IngestionID  string `json:"ingestionId"`
	FileName     string `json:"fileName"`
	Phase        Phase  `json:"phase"`
	BatchesDone  int    `json:"batchesDone"`
	BatchesTotal int    `json:"batchesTotal"`
	Error        string `json:"error,omitempty"`
}

// ServiceConfig tunes the ingestion service.
type ServiceConfig struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
	BatchSize     int
	FlagDefaults  bool
	Retention     time.Duration
}

// DefaultTimeout bounds one ingestion end to end.
const DefaultTimeout = 10 * time.Minute

// DefaultRetention is how long a finished ingestion's report stays
// retrievable.
const DefaultRetention = 30 * time.Minute

type activeIngestion struct {
	ID       string
	FileName string
	Cancel   context.CancelFunc
	Done     chan struct{}

	mu        sync.Mutex
	progress  Progress
	listeners []chan Progress
	report    *Report
	err       error
}

// Service runs ingestions asynchronously against one Upserter.
type Service struct {
	store   Upserter
	limiter *Limiter
	cfg     ServiceConfig
	log     *slog.Logger

	mu         sync.RWMutex
	ingestions map[string]*activeIngestion
}

// NewService creates the ingestion service. logger may be nil.
func NewService(store Upserter, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:      store,
		limiter:    NewLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cfg:        cfg,
		log:        logger,
		ingestions: make(map[string]*activeIngestion),
	}
}

// Limiter exposes the submission limiter for shutdown draining.
func (s *Service) Limiter() *Limiter { return s.limiter }

// StartIngestion begins an asynchronous ingestion and returns its id
// immediately. Use SubscribeProgress for updates and Result for the report.
//
// Returns ErrTooManySubmissions if the concurrency limit is reached and no
// slot frees up within the wait window. batchSize <= 0 uses the service
// default.
func (s *Service) StartIngestion(ctx context.Context, owner, fileName string, fileData []byte, batchSize int) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("owner is required")
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	id := uuid.New().String()

	// The ingestion outlives the submitting request.
	runCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)

	ing := &activeIngestion{
		ID:       id,
		FileName: fileName,
		Cancel:   cancel,
		Done:     make(chan struct{}),
		progress: Progress{
			IngestionID: id,
			FileName:    fileName,
			Phase:       PhaseStarting,
		},
	}

	s.mu.Lock()
	s.ingestions[id] = ing
	s.mu.Unlock()

	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}

	go func() {
		defer s.limiter.Release()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in ingestion",
					"ingestion_id", id,
					"file", fileName,
					"panic", r,
				)
				ing.finish(nil, fmt.Errorf("internal error: %v", r), PhaseFailed)
				s.cleanup(id, s.cfg.Retention)
			}
		}()
		s.run(runCtx, ing, owner, fileData, fileName, batchSize)
	}()

	return id, nil
}

func (s *Service) run(ctx context.Context, ing *activeIngestion, owner string, data []byte, fileName string, batchSize int) {
	defer ing.Cancel()

	start := time.Now()
	opts := Options{
		BatchSize:    batchSize,
		FlagDefaults: s.cfg.FlagDefaults,
		OnPhase: func(p Phase) {
			ing.update(func(pr *Progress) { pr.Phase = p })
		},
		OnBatch: func(done, total int) {
			ing.update(func(pr *Progress) {
				pr.BatchesDone = done
				pr.BatchesTotal = total
			})
		},
	}

	report, err := Run(ctx, s.store, owner, data, fileName, opts)

	switch {
	case err == nil:
		s.log.Info("ingestion complete",
			"ingestion_id", ing.ID,
			"file", fileName,
			"total", report.TotalRows,
			"accepted", report.AcceptedRows,
			"rejected", report.RejectedRows,
			"persisted", report.PersistedRows,
			"duration", time.Since(start),
		)
		ing.finish(report, nil, PhaseComplete)

	case ctx.Err() != nil:
		// Cancelled: a partial report, if persistence had started, stands.
		persisted := 0
		if report != nil {
			persisted = report.PersistedRows
		}
		s.log.Warn("ingestion cancelled",
			"ingestion_id", ing.ID,
			"file", fileName,
			"persisted", persisted,
		)
		ing.finish(report, err, PhaseCancelled)

	default:
		s.log.Error("ingestion failed",
			"ingestion_id", ing.ID,
			"file", fileName,
			"error", err,
		)
		ing.finish(report, err, PhaseFailed)
	}

	s.cleanup(ing.ID, s.cfg.Retention)
}

// SubscribeProgress returns a channel receiving progress updates. The
// current snapshot is delivered first; the channel closes when the
// ingestion finishes.
func (s *Service) SubscribeProgress(id string) (<-chan Progress, error) {
	ing, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	ch := make(chan Progress, 10)

	ing.mu.Lock()
	defer ing.mu.Unlock()

	select {
	case <-ing.Done:
		ch <- ing.progress
		close(ch)
		return ch, nil
	default:
	}

	ing.listeners = append(ing.listeners, ch)
	select {
	case ch <- ing.progress:
	default:
	}
	return ch, nil
}

// Progress returns the current snapshot without blocking.
func (s *Service) Progress(id string) (Progress, error) {
	ing, err := s.lookup(id)
	if err != nil {
		return Progress{}, err
	}
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.progress, nil
}

// Cancel requests cooperative cancellation of an in-progress ingestion.
// Batches already persisted stay persisted.
func (s *Service) Cancel(id string) error {
	ing, err := s.lookup(id)
	if err != nil {
		return err
	}
	ing.Cancel()
	return nil
}

// Result returns the ingestion report, blocking until the run finishes.
// For a cancelled run the partial report is returned with the cause.
func (s *Service) Result(ctx context.Context, id string) (*Report, error) {
	ing, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	select {
	case <-ing.Done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ing.mu.Lock()
	defer ing.mu.Unlock()
	if ing.report == nil {
		return nil, ing.err
	}
	return ing.report, ing.err
}

func (s *Service) lookup(id string) (*activeIngestion, error) {
	s.mu.RLock()
	ing, ok := s.ingestions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ingestion not found: %s", id)
	}
	return ing, nil
}

// cleanup drops a finished ingestion after the retention window so late
// pollers can still fetch the report.
func (s *Service) cleanup(id string, after time.Duration) {
	time.AfterFunc(after, func() {
		s.mu.Lock()
		delete(s.ingestions, id)
		s.mu.Unlock()
	})
}

// update mutates the progress snapshot and notifies listeners.
func (a *activeIngestion) update(f func(*Progress)) {
	a.mu.Lock()
	f(&a.progress)
	snapshot := a.progress
	listeners := a.listeners
	a.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- snapshot:
		default:
			// Slow listener; it will catch up on the next update.
		}
	}
}

// finish records the terminal state, notifies listeners and closes them.
func (a *activeIngestion) finish(report *Report, err error, phase Phase) {
	a.mu.Lock()
	a.report = report
	a.err = err
	a.progress.Phase = phase
	if err != nil {
		a.progress.Error = err.Error()
	}
	snapshot := a.progress
	listeners := a.listeners
	a.listeners = nil
	a.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- snapshot:
		default:
		}
		close(ch)
	}
	close(a.Done)
}
