package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"apbdcli/internal/infrastructure"
	"apbdcli/pkg/contracts/domain"
)

// cachedRun pairs a report with its storage time for TTL checks.
type cachedRun struct {
	report   *domain.AnalysisReport
	storedAt time.Time
}

// RunStore is the in-memory cache of finished analysis runs. Reports stay
// retrievable by ID until their TTL passes or capacity pressure evicts the
// oldest entry. It is the only shared mutable state in the server.
type RunStore struct {
	mu       sync.Mutex
	runs     map[string]cachedRun
	ttl      time.Duration
	capacity int
	metrics  *infrastructure.AnalysisMetrics
	logger   *slog.Logger
}

// NewRunStore creates a run cache bounded by the given TTL and capacity.
// A non-positive TTL disables expiry; a non-positive capacity falls back
// to the config default.
func NewRunStore(ttl time.Duration, capacity int, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *RunStore {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		capacity = 128
	}

	return &RunStore{
		runs:     make(map[string]cachedRun),
		ttl:      ttl,
		capacity: capacity,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "run_store")),
	}
}

// Put stores a report, evicting the oldest entry when at capacity.
func (s *RunStore) Put(ctx context.Context, report *domain.AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[report.ID]; !exists {
		if len(s.runs) >= s.capacity {
			s.evictOldestLocked(ctx)
		}
		infrastructure.RecordRunCacheChange(ctx, s.metrics, 1)
	}
	s.runs[report.ID] = cachedRun{report: report, storedAt: time.Now()}
}

// Get returns a cached report. Expired entries are removed on access.
func (s *RunStore) Get(ctx context.Context, id string) (*domain.AnalysisReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Since(entry.storedAt) > s.ttl {
		delete(s.runs, id)
		infrastructure.RecordRunCacheChange(ctx, s.metrics, -1)
		infrastructure.RecordRunEviction(ctx, s.metrics, "ttl")
		return nil, false
	}
	return entry.report, true
}

// Len reports the number of cached runs.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Sweep removes every expired entry and returns how many were evicted. The
// server runs this on a ticker so stale runs do not linger until the next
// Get happens to touch them.
func (s *RunStore) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	now := time.Now()
	for id, entry := range s.runs {
		if now.Sub(entry.storedAt) > s.ttl {
			delete(s.runs, id)
			infrastructure.RecordRunCacheChange(ctx, s.metrics, -1)
			infrastructure.RecordRunEviction(ctx, s.metrics, "ttl")
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.DebugContext(ctx, "run cache swept",
			slog.Int("evicted", evicted),
			slog.Int("remaining", len(s.runs)))
	}
	return evicted
}

// evictOldestLocked drops the entry with the earliest storage time. The
// caller holds the lock.
func (s *RunStore) evictOldestLocked(ctx context.Context) {
	var oldestID string
	var oldestAt time.Time
	for id, entry := range s.runs {
		if oldestID == "" || entry.storedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.storedAt
		}
	}
	if oldestID == "" {
		return
	}

	delete(s.runs, oldestID)
	infrastructure.RecordRunCacheChange(ctx, s.metrics, -1)
	infrastructure.RecordRunEviction(ctx, s.metrics, "capacity")
	s.logger.DebugContext(ctx, "run evicted at capacity",
		slog.String("run_id", oldestID))
}
