// Package inmemdb is a Store keeping records in memory.
package inmemdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
)

type (
	Store struct {
		mutex   sync.RWMutex
		tables  map[core.ResourceType]*table
		latency time.Duration
		now     func() time.Time
	}

	table struct {
		rows  map[string]core.Resource
		order []string // insertion order
	}
)

var (
	_ data.Store  = (*Store)(nil) // interface compliance check
	_ data.Seeder = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLatency delays every call, simulating a remote store.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func Open(opts ...Option) *Store {
	s := &Store{
		tables: make(map[core.ResourceType]*table, len(core.AllResourceTypes)),
		now:    time.Now,
	}
	for _, rt := range core.AllResourceTypes {
		s.tables[rt] = &table{rows: make(map[string]core.Resource)}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait simulates the store latency, giving up when ctx is done.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) tableOf(rt core.ResourceType) (*table, error) {
	t, ok := s.tables[rt]
	if !ok {
		return nil, errors.Wrapf(core.ErrNotFound, "resource type %q", rt)
	}
	return t, nil
}

func (t *table) put(r core.Resource) {
	id := r.ResourceID()
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = r
}

func (t *table) remove(id string) {
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (s *Store) List(ctx context.Context, rt core.ResourceType) ([]core.Resource, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, err := s.tableOf(rt)
	if err != nil {
		return nil, err
	}
	records := make([]core.Resource, 0, len(t.order))
	for _, id := range t.order {
		records = append(records, t.rows[id])
	}
	return records, nil
}

func (s *Store) Get(ctx context.Context, rt core.ResourceType, id string) (core.Resource, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, err := s.tableOf(rt)
	if err != nil {
		return nil, err
	}
	r, ok := t.rows[id]
	if !ok {
		return nil, errors.Wrapf(core.ErrNotFound, "%s %s", rt, id)
	}
	return r, nil
}

func (s *Store) Insert(ctx context.Context, draft core.Resource) (core.Resource, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.tableOf(draft.ResourceType())
	if err != nil {
		return nil, err
	}
	r := draft.Identify(uuid.New().String(), s.now())
	t.put(r)
	return r, nil
}

func (s *Store) Update(ctx context.Context, rt core.ResourceType, id string, patch core.Patch) (core.Resource, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.tableOf(rt)
	if err != nil {
		return nil, err
	}
	cur, ok := t.rows[id]
	if !ok {
		return nil, errors.Wrapf(core.ErrNotFound, "%s %s", rt, id)
	}
	next, err := patch.Apply(cur)
	if err != nil {
		return nil, err
	}
	if next.ResourceType() != rt || next.ResourceID() != id {
		return nil, errors.Errorf("%s %s: patch changed the record identity", rt, id)
	}
	next = next.Touch(s.now())
	t.put(next)
	return next, nil
}

func (s *Store) Delete(ctx context.Context, rt core.ResourceType, id string, preconditions ...func(core.Resource) error) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.tableOf(rt)
	if err != nil {
		return err
	}
	cur, ok := t.rows[id]
	if !ok {
		return errors.Wrapf(core.ErrNotFound, "%s %s", rt, id)
	}
	for _, check := range preconditions {
		if err := check(cur); err != nil {
			return err
		}
	}
	t.remove(id)
	return nil
}

// Seed saves records as they are, keeping their identifiers. Existing records are replaced.
func (s *Store) Seed(ctx context.Context, records ...core.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, r := range records {
		t, err := s.tableOf(r.ResourceType())
		if err != nil {
			return err
		}
		if r.ResourceID() == "" {
			return errors.Errorf("seeding %s: missing identifier", r.ResourceType())
		}
		t.put(r)
	}
	return nil
}

// Counts returns the number of records per resource type, sorted by type.
func (s *Store) Counts() []Count {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	counts := make([]Count, 0, len(s.tables))
	for rt, t := range s.tables {
		counts = append(counts, Count{Type: rt, Records: len(t.rows)})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Type < counts[j].Type })
	return counts
}

type Count struct {
	Type    core.ResourceType
	Records int
}
