// Package auditlog persists terminal execution outcomes in an
// append-only WAL so operators can audit every platform mutation the
// engine performed or failed to perform.
package auditlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/adkite/adkite/internal/domain"
)

const (
	DefaultDir   = "./wal/executions"
	segmentLimit = 1000
	maxSegments  = 20

	executionKeyPrefix = "execution_"
)

// WALStore is a WAL-backed execution audit log.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes the audit log in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "execution_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init execution audit WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one execution outcome to the log.
func (s *WALStore) Append(event domain.ExecutionEvent) error {
	if s == nil || s.wal == nil {
		return errors.New("audit log is not initialized")
	}
	if event.DecisionID == "" {
		return errors.New("execution event decision id is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal execution event")
	}

	key := fmt.Sprintf("%s%s", executionKeyPrefix, event.DecisionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all execution events written after the provided
// log index.
func (s *WALStore) EventsAfter(index uint64) ([]domain.ExecutionEventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("audit log is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.ExecutionEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		_, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}

		var event domain.ExecutionEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "decode execution event")
		}
		records = append(records, domain.ExecutionEventRecord{Index: idx, Event: event})
	}

	return records, nil
}

// CurrentIndex returns the latest log index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("audit log is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
