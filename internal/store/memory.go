package store

import (
	"context"
	"sync"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
)

type entry struct {
	report analyze.Report
	exp    time.Time
}

// Memory is an in-process TTL store, the default when no Redis address is
// configured. Expired entries are dropped lazily on read.
type Memory struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{m: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *Memory) Save(_ context.Context, r analyze.Report) error {
	s.mu.Lock()
	s.m[r.ID] = entry{report: r, exp: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *Memory) Get(_ context.Context, id string) (analyze.Report, error) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return analyze.Report{}, ErrNotFound
	}
	if s.now().After(e.exp) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return analyze.Report{}, ErrNotFound
	}
	return e.report, nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Memory) Close() error { return nil }
