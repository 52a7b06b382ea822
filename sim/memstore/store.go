// Package memstore is an in-memory sim.Backend. It keeps committed rows and
// an open transaction separately, so a rolled-back transaction leaves no trace.
package memstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

var (
	errTxActive   = errors.New("memstore: transaction already active")
	errNoTx       = errors.New("memstore: no active transaction")
	errRunUnknown = errors.New("memstore: unknown run")
)

type rowKey struct {
	kind sim.Kind
	id   sim.ID
}

// RunInfo mirrors one row of the run registry.
type RunInfo struct {
	ID            uuid.UUID
	Seed          int64
	StartDate     time.Time
	Days          int
	Status        string
	LastCommitted *time.Time
}

// Store implements sim.Backend in memory.
type Store struct {
	committed map[sim.Kind]map[sim.ID]sim.Record
	tx        map[rowKey]sim.Record
	inTx      bool
	commits   int

	runs map[uuid.UUID]*RunInfo
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		committed: make(map[sim.Kind]map[sim.ID]sim.Record),
		runs:      make(map[uuid.UUID]*RunInfo),
	}
}

func (s *Store) Begin(_ context.Context) error {
	if s.inTx {
		return errTxActive
	}
	s.tx = make(map[rowKey]sim.Record)
	s.inTx = true
	return nil
}

func (s *Store) Write(_ context.Context, rows []sim.Record) error {
	if !s.inTx {
		return errNoTx
	}
	for _, r := range rows {
		s.tx[rowKey{r.Kind(), r.RecordID()}] = r.Clone()
	}
	return nil
}

func (s *Store) Commit(_ context.Context) error {
	if !s.inTx {
		return errNoTx
	}
	for k, r := range s.tx {
		t, ok := s.committed[k.kind]
		if !ok {
			t = make(map[sim.ID]sim.Record)
			s.committed[k.kind] = t
		}
		t[k.id] = r
	}
	s.tx = nil
	s.inTx = false
	s.commits++
	return nil
}

func (s *Store) Rollback(_ context.Context) error {
	if !s.inTx {
		return errNoTx
	}
	s.tx = nil
	s.inTx = false
	return nil
}

// Reset drops every committed row. The run registry is kept.
func (s *Store) Reset(_ context.Context) error {
	s.committed = make(map[sim.Kind]map[sim.ID]sim.Record)
	s.tx = nil
	s.inTx = false
	return nil
}

// Commits returns the number of committed transactions.
func (s *Store) Commits() int { return s.commits }

// Count returns the number of committed rows of kind.
func (s *Store) Count(kind sim.Kind) int {
	return len(s.committed[kind])
}

// HasHistory reports whether a world has been committed.
func (s *Store) HasHistory(_ context.Context) (bool, error) {
	return s.Count(sim.KindWarehouse) > 0, nil
}

// Get returns a copy of a committed row.
func (s *Store) Get(kind sim.Kind, id sim.ID) (sim.Record, bool) {
	r, ok := s.committed[kind][id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Rows returns copies of the committed rows of T's kind in ID order.
func Rows[T sim.Record](s *Store) []T {
	var zero T
	t := s.committed[zero.Kind()]
	ids := make([]sim.ID, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t[id].Clone().(T))
	}
	return out
}

// StartRun registers a run.
func (s *Store) StartRun(_ context.Context, id uuid.UUID, seed int64, start time.Time, days int) error {
	s.runs[id] = &RunInfo{ID: id, Seed: seed, StartDate: start, Days: days, Status: "running"}
	return nil
}

// FinishRun records a run's outcome.
func (s *Store) FinishRun(_ context.Context, id uuid.UUID, status string, lastCommitted *time.Time) error {
	r, ok := s.runs[id]
	if !ok {
		return errRunUnknown
	}
	r.Status = status
	r.LastCommitted = lastCommitted
	return nil
}

// Run returns the registry entry for id.
func (s *Store) Run(id uuid.UUID) (RunInfo, bool) {
	r, ok := s.runs[id]
	if !ok {
		return RunInfo{}, false
	}
	return *r, true
}
