package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tkingovr/logfilter/api"
)

// DefaultMaxRecords bounds the in-memory index used for queries and stats.
const DefaultMaxRecords = 10000

// JSONLStore is an append-only JSONL file decision store with date-based rotation.
type JSONLStore struct {
	mu          sync.Mutex
	dir         string
	currentDate string
	file        *os.File
	writer      *bufio.Writer

	// In-memory buffer for queries and stats (bounded)
	records []*api.DecisionRecord
	maxMem  int

	// Subscribers for real-time streaming
	subMu   sync.RWMutex
	subs    map[int]chan *api.DecisionRecord
	nextSub int
}

// Option configures a JSONLStore.
type Option func(*JSONLStore)

// WithMaxRecords sets how many recent records are kept in memory.
func WithMaxRecords(n int) Option {
	return func(s *JSONLStore) {
		if n > 0 {
			s.maxMem = n
		}
	}
}

// NewJSONLStore creates a new JSONL decision store writing to the given directory.
func NewJSONLStore(dir string, opts ...Option) (*JSONLStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating decision log directory: %w", err)
	}
	s := &JSONLStore{
		dir:    dir,
		maxMem: DefaultMaxRecords,
		subs:   make(map[int]chan *api.DecisionRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *JSONLStore) Write(_ context.Context, record *api.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	// Rotate file if date changed
	dateStr := record.Timestamp.Format("2006-01-02")
	if dateStr != s.currentDate {
		if err := s.rotate(dateStr); err != nil {
			return err
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling decision record: %w", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}

	if len(s.records) >= s.maxMem {
		s.records = s.records[1:]
	}
	s.records = append(s.records, record)

	s.notifySubscribers(record)

	return nil
}

// Query pages through the in-memory records matching filter, oldest first
// unless filter.Newest is set.
func (s *JSONLStore) Query(_ context.Context, filter api.QueryFilter) ([]*api.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	at := func(i int) *api.DecisionRecord { return s.records[i] }
	if filter.Newest {
		at = func(i int) *api.DecisionRecord { return s.records[n-1-i] }
	}

	var results []*api.DecisionRecord
	skipped := 0
	for i := 0; i < n; i++ {
		if filter.Limit > 0 && len(results) == filter.Limit {
			break
		}
		r := at(i)
		if !matchesFilter(r, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *JSONLStore) Stats(_ context.Context) (*api.DecisionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &api.DecisionStats{
		ByChain:   make(map[string]int),
		ByLevel:   make(map[string]int),
		ByDecider: make(map[string]int),
	}

	for _, r := range s.records {
		stats.TotalEvents++
		switch r.Result {
		case api.ResultAccept:
			stats.AcceptCount++
		case api.ResultDeny:
			stats.DenyCount++
		}
		if r.Chain != "" {
			stats.ByChain[r.Chain]++
		}
		stats.ByLevel[r.Level.String()]++
		if r.DecidedBy != "" {
			stats.ByDecider[r.DecidedBy]++
		}
	}

	return stats, nil
}

func (s *JSONLStore) Subscribe(_ context.Context) (<-chan *api.DecisionRecord, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan *api.DecisionRecord, 100)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		err := s.file.Close()
		s.file, s.writer, s.currentDate = nil, nil, ""
		return err
	}
	return nil
}

func (s *JSONLStore) rotate(dateStr string) error {
	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return err
		}
	}

	path := filepath.Join(s.dir, dateStr+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening decision log file: %w", err)
	}

	s.file = f
	s.writer = bufio.NewWriter(f)
	s.currentDate = dateStr
	return nil
}

func (s *JSONLStore) notifySubscribers(record *api.DecisionRecord) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- record:
		default:
			// Drop if subscriber is slow
		}
	}
}

func matchesFilter(r *api.DecisionRecord, f api.QueryFilter) bool {
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Timestamp.After(f.Until) {
		return false
	}
	if f.Chain != "" && r.Chain != f.Chain {
		return false
	}
	if f.Logger != "" && r.Logger != f.Logger {
		return false
	}
	if f.Result != "" && r.Result != f.Result {
		return false
	}
	return true
}
