// Package todo owns the authoritative todo collection.
//
// Every mutation replaces the collection wholesale, writes the encoded blob to
// the storage adapter and then notifies subscribers with the new snapshot.
// A Manager is driven by one goroutine at a time (a CLI command or the TUI
// event loop) and does no locking.
package todo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Ops is the mutation and read surface handed to presentation code.
type Ops interface {
	Add(ctx context.Context, title string) (model.Item, error)
	Toggle(ctx context.Context, id int64) error
	Edit(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
	MarkAll(ctx context.Context, mark bool) error
	Clear(ctx context.Context, all bool) error
	Items() []model.Item
	Subscribe(fn func([]model.Item)) (unsubscribe func())
}

// Manager is the Item Store.
type Manager struct {
	adapter store.Adapter
	now     func() time.Time
	logger  *log.Logger

	items []model.Item

	subs   map[int]func([]model.Item)
	nextID int
}

var _ Ops = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for id assignment.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the diagnostics logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New loads the persisted collection from adapter.
// A missing, unreadable or malformed blob yields an empty collection.
func New(ctx context.Context, adapter store.Adapter, opts ...Option) *Manager {
	m := &Manager{
		adapter: adapter,
		now:     time.Now,
		logger:  log.Default(),
		items:   []model.Item{},
		subs:    map[int]func([]model.Item){},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.items = m.load(ctx)
	return m
}

func (m *Manager) load(ctx context.Context) []model.Item {
	blob, err := m.adapter.Load(ctx, store.Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Printf("todo: load %q: %v; starting empty", store.Key, err)
		}
		return []model.Item{}
	}
	items, err := DecodeItems(blob)
	if err != nil {
		m.logger.Printf("todo: decode %q: %v; starting empty", store.Key, err)
		return []model.Item{}
	}
	return items
}

// Items returns a copy of the collection in storage order.
func (m *Manager) Items() []model.Item {
	return slices.Clone(m.items)
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (m *Manager) Subscribe(fn func([]model.Item)) func() {
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() { delete(m.subs, id) }
}

func (m *Manager) Add(ctx context.Context, title string) (model.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Item{}, ErrEmptyTitle
	}
	if m.titleTaken(title, 0, false) {
		return model.Item{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
	}
	it := model.Item{ID: m.newID(), Title: title}
	next := make([]model.Item, 0, len(m.items)+1)
	next = append(next, m.items...)
	next = append(next, it)
	return it, m.commit(ctx, next)
}

func (m *Manager) Toggle(ctx context.Context, id int64) error {
	i := m.index(id)
	if i < 0 {
		return nil
	}
	next := slices.Clone(m.items)
	next[i].Completed = !next[i].Completed
	return m.commit(ctx, next)
}

// Edit renames the item with id. The item's own current title does not count
// as a collision, so case-only renames are allowed.
func (m *Manager) Edit(ctx context.Context, id int64, title string) error {
	i := m.index(id)
	if i < 0 {
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if m.titleTaken(title, id, true) {
		return fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
	}
	next := slices.Clone(m.items)
	next[i].Title = title
	return m.commit(ctx, next)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	i := m.index(id)
	if i < 0 {
		return nil
	}
	next := make([]model.Item, 0, len(m.items)-1)
	next = append(next, m.items[:i]...)
	next = append(next, m.items[i+1:]...)
	return m.commit(ctx, next)
}

// MarkAll sets every item's completed flag to mark.
func (m *Manager) MarkAll(ctx context.Context, mark bool) error {
	next := slices.Clone(m.items)
	for i := range next {
		next[i].Completed = mark
	}
	return m.commit(ctx, next)
}

// Clear removes every item when all is true, otherwise only completed ones.
func (m *Manager) Clear(ctx context.Context, all bool) error {
	next := []model.Item{}
	if !all {
		for _, it := range m.items {
			if !it.Completed {
				next = append(next, it)
			}
		}
	}
	return m.commit(ctx, next)
}

// commit swaps in next, persists it and notifies subscribers.
func (m *Manager) commit(ctx context.Context, next []model.Item) error {
	m.items = next

	var persistErr error
	blob, err := EncodeItems(next)
	if err == nil {
		err = m.adapter.Save(ctx, store.Key, blob)
	}
	if err != nil {
		m.logger.Printf("todo: save %q: %v", store.Key, err)
		persistErr = fmt.Errorf("%w: %w", ErrPersist, err)
	}

	for _, fn := range m.subs {
		fn(slices.Clone(next))
	}
	return persistErr
}

func (m *Manager) index(id int64) int {
	return slices.IndexFunc(m.items, func(it model.Item) bool { return it.ID == id })
}

func (m *Manager) titleTaken(title string, self int64, skipSelf bool) bool {
	for _, it := range m.items {
		if skipSelf && it.ID == self {
			continue
		}
		if model.SameTitle(it.Title, title) {
			return true
		}
	}
	return false
}

// newID derives an id from the clock, bumped past the largest existing id.
func (m *Manager) newID() int64 {
	id := m.now().UnixMilli()
	for _, it := range m.items {
		if it.ID >= id {
			id = it.ID + 1
		}
	}
	return id
}
