package draft

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// DefaultKey is the storage key drafts are saved under.
const DefaultKey = "hfc_draft"

// Manager saves and restores the single draft of a form. Every persistence
// error is logged and swallowed.
type Manager struct {
	// mu orders autosave ticks against Clear.
	mu     sync.Mutex
	store  Store
	key    string
	logger logr.Logger
	now    func() time.Time
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithKey overrides the storage key.
func WithKey(key string) ManagerOption {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithLogger sets the logger used for swallowed errors.
func WithLogger(logger logr.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock sets the clock used to stamp snapshots.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager returns a Manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		key:    DefaultKey,
		logger: logr.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Key returns the storage key.
func (m *Manager) Key() string { return m.key }

// Save overwrites the draft. It reports whether the draft was written.
func (m *Manager) Save(ctx context.Context, s Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, s)
}

func (m *Manager) save(ctx context.Context, s Snapshot) bool {
	if s.Timestamp.IsZero() {
		s.Timestamp = m.now().UTC()
	}
	raw, err := Encode(s)
	if err != nil {
		m.logger.Error(err, "draft not saved", "key", m.key)
		return false
	}
	if err := m.store.Save(ctx, m.key, raw); err != nil {
		m.logger.Error(err, "draft not saved", "key", m.key)
		return false
	}
	m.logger.V(1).Info("draft saved", "key", m.key, "step", s.Step, "fields", len(s.Values))
	return true
}

// Load returns the saved draft. A missing or corrupt draft yields false.
func (m *Manager) Load(ctx context.Context) (Snapshot, bool) {
	raw, err := m.store.Load(ctx, m.key)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, false
	}
	if err != nil {
		m.logger.Error(err, "draft not loaded", "key", m.key)
		return Snapshot{}, false
	}
	s, err := Decode(raw)
	if err != nil {
		m.logger.Error(err, "ignoring corrupt draft", "key", m.key)
		return Snapshot{}, false
	}
	return s, true
}

// Exists reports whether a draft is saved.
func (m *Manager) Exists(ctx context.Context) bool {
	_, err := m.store.Load(ctx, m.key)
	return err == nil
}

// Clear removes the draft.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(ctx, m.key); err != nil {
		m.logger.Error(err, "draft not cleared", "key", m.key)
	}
}

// Autosave saves the snapshot produced by source every interval until ctx is
// done. A source returning false skips the tick. A tick holds off Clear
// from the moment source is read until the snapshot is stored.
func (m *Manager) Autosave(ctx context.Context, interval time.Duration, source func() (Snapshot, bool)) {
	if interval <= 0 || source == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx, source)
		}
	}
}

func (m *Manager) tick(ctx context.Context, source func() (Snapshot, bool)) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(nil, "autosave tick panicked", "panic", r)
		}
	}()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := source()
	if !ok {
		return
	}
	m.save(ctx, s)
}
