package sim

import (
	"context"
	"fmt"
)

// Backend receives flushed rows and transaction boundaries from a Session.
// Write must upsert rows by (Kind, ID) in the order given.
type Backend interface {
	Begin(ctx context.Context) error
	Write(ctx context.Context, rows []Record) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SessionStats counts session lifecycle operations.
type SessionStats struct {
	Flushes     int
	Commits     int
	Rollbacks   int
	RowsWritten int
}

type rowKey struct {
	kind Kind
	id   ID
}

type balanceKey struct {
	location ID
	product  ID
}

// table holds the live rows of one Kind in insertion (= ID) order.
type table struct {
	rows   map[ID]Record
	order  []ID
	nextID ID
}

// Session is the unit of work shared by builders and processors. It is the
// single writer: rows are staged with Add and Update, written to the Backend
// by Flush, and made durable by Commit. Rollback restores the last committed
// state in memory and discards the backend transaction.
//
// IDs are assigned at Add from a per-kind sequence so dependent rows can
// reference them before any flush. A row mutated in place must be passed to
// Update, otherwise neither Flush nor Rollback will see the change.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type Session struct {
	backend Backend
	tables  map[Kind]*table
	balance map[balanceKey]ID

	pending    []rowKey
	pendingSet map[rowKey]struct{}

	// changed holds every row added or updated since the last commit.
	// shadow holds the committed version of every committed row.
	changed       map[rowKey]struct{}
	shadow        map[rowKey]Record
	committedNext map[Kind]ID
	inTx          bool

	stats SessionStats
}

// NewSession creates an empty Session writing to backend.
func NewSession(backend Backend) *Session {
	return &Session{
		backend:       backend,
		tables:        make(map[Kind]*table),
		balance:       make(map[balanceKey]ID),
		pendingSet:    make(map[rowKey]struct{}),
		changed:       make(map[rowKey]struct{}),
		shadow:        make(map[rowKey]Record),
		committedNext: make(map[Kind]ID),
	}
}

func (s *Session) table(kind Kind) *table {
	t, ok := s.tables[kind]
	if !ok {
		t = &table{rows: make(map[ID]Record)}
		s.tables[kind] = t
	}
	return t
}

// Add stages a new row and assigns its ID. Adding a row that already has an
// ID is a programming error and panics.
func (s *Session) Add(rec Record) ID {
	if rec.RecordID() != 0 {
		panic(fmt.Sprintf("session: %s %d added twice", rec.Kind(), rec.RecordID()))
	}
	t := s.table(rec.Kind())
	t.nextID++
	rec.setID(t.nextID)
	t.rows[t.nextID] = rec
	t.order = append(t.order, t.nextID)
	if b, ok := rec.(*InventoryBalance); ok {
		s.balance[balanceKey{b.LocationID, b.ProductID}] = b.ID
	}
	s.markDirty(rowKey{rec.Kind(), t.nextID})
	return t.nextID
}

// Update marks a tracked row as changed. Updating a row this session does
// not hold panics.
func (s *Session) Update(rec Record) {
	cur, ok := s.table(rec.Kind()).rows[rec.RecordID()]
	if !ok || cur != rec {
		panic(fmt.Sprintf("session: update of untracked %s %d", rec.Kind(), rec.RecordID()))
	}
	s.markDirty(rowKey{rec.Kind(), rec.RecordID()})
}

func (s *Session) markDirty(key rowKey) {
	s.changed[key] = struct{}{}
	if _, ok := s.pendingSet[key]; ok {
		return
	}
	s.pendingSet[key] = struct{}{}
	s.pending = append(s.pending, key)
}

// Pending returns the number of rows staged since the last flush.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Stats returns lifecycle counters.
func (s *Session) Stats() SessionStats {
	return s.stats
}

// Get returns the live row of the given kind and ID.
func (s *Session) Get(kind Kind, id ID) (Record, bool) {
	t, ok := s.tables[kind]
	if !ok {
		return nil, false
	}
	rec, ok := t.rows[id]
	return rec, ok
}

// Count returns the number of live rows of kind.
func (s *Session) Count(kind Kind) int {
	if t, ok := s.tables[kind]; ok {
		return len(t.order)
	}
	return 0
}

// Balance returns the balance row for (location, product), or nil.
func (s *Session) Balance(locationID, productID ID) *InventoryBalance {
	id, ok := s.balance[balanceKey{locationID, productID}]
	if !ok {
		return nil
	}
	rec, _ := s.Get(KindBalance, id)
	return rec.(*InventoryBalance)
}

// Flush writes every staged row to the backend, opening a transaction first
// if none is active. On failure the staged rows are kept.
func (s *Session) Flush(ctx context.Context) error {
	s.stats.Flushes++
	if !s.inTx {
		if err := s.backend.Begin(ctx); err != nil {
			return &PersistenceError{Op: "begin", Err: err}
		}
		s.inTx = true
	}
	if len(s.pending) == 0 {
		return nil
	}
	rows := make([]Record, 0, len(s.pending))
	for _, key := range s.pending {
		rec, ok := s.Get(key.kind, key.id)
		if !ok {
			continue
		}
		rows = append(rows, rec.Clone())
	}
	if err := s.backend.Write(ctx, rows); err != nil {
		return &PersistenceError{Op: "flush", Err: err}
	}
	s.stats.RowsWritten += len(rows)
	s.pending = s.pending[:0]
	clear(s.pendingSet)
	return nil
}

// Commit flushes staged rows and commits the backend transaction. The
// resulting state becomes the Rollback target.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if err := s.backend.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	s.inTx = false
	s.stats.Commits++
	for key := range s.changed {
		if rec, ok := s.Get(key.kind, key.id); ok {
			s.shadow[key] = rec.Clone()
		}
	}
	clear(s.changed)
	for kind, t := range s.tables {
		s.committedNext[kind] = t.nextID
	}
	return nil
}

// Rollback discards the backend transaction and restores every row to its
// last committed version. Rows added since the commit are dropped and their
// IDs are reissued.
func (s *Session) Rollback(ctx context.Context) error {
	s.stats.Rollbacks++
	var backendErr error
	if s.inTx {
		backendErr = s.backend.Rollback(ctx)
		s.inTx = false
	}
	for key := range s.changed {
		t := s.table(key.kind)
		if b, ok := t.rows[key.id].(*InventoryBalance); ok {
			delete(s.balance, balanceKey{b.LocationID, b.ProductID})
		}
		committed, ok := s.shadow[key]
		if !ok {
			delete(t.rows, key.id)
			continue
		}
		restored := committed.Clone()
		t.rows[key.id] = restored
		if b, ok := restored.(*InventoryBalance); ok {
			s.balance[balanceKey{b.LocationID, b.ProductID}] = b.ID
		}
	}
	for kind, t := range s.tables {
		next := s.committedNext[kind]
		t.nextID = next
		for len(t.order) > 0 && t.order[len(t.order)-1] > next {
			t.order = t.order[:len(t.order)-1]
		}
	}
	clear(s.changed)
	s.pending = s.pending[:0]
	clear(s.pendingSet)
	if backendErr != nil {
		return &PersistenceError{Op: "rollback", Err: backendErr}
	}
	return nil
}

// Rows returns the live rows of T's kind in ID order.
func Rows[T Record](s *Session) []T {
	var zero T
	t, ok := s.tables[zero.Kind()]
	if !ok {
		return nil
	}
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id].(T))
	}
	return out
}

// Find returns the live rows of T's kind that satisfy keep, in ID order.
func Find[T Record](s *Session, keep func(T) bool) []T {
	var zero T
	t, ok := s.tables[zero.Kind()]
	if !ok {
		return nil
	}
	var out []T
	for _, id := range t.order {
		row := t.rows[id].(T)
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// Lookup returns the live row of T's kind with the given ID.
func Lookup[T Record](s *Session, id ID) (T, bool) {
	var zero T
	rec, ok := s.Get(zero.Kind(), id)
	if !ok {
		return zero, false
	}
	return rec.(T), true
}
