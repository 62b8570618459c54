package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	hitModel "healthcare-booking/models/ratelimit"

	"gorm.io/gorm"
)

// Decision is the outcome of one attempt against a key.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// CounterStore keeps a sliding window log of hits per key. Take records a hit only when fewer
// than max hits fall inside the window ending at now; Peek reports the same decision without
// recording anything.
type CounterStore interface {
	Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error)
	Peek(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error)
	Prune(ctx context.Context, prefix string, before time.Time) error
}

// Limiter is one named quota. Limiters may share a store; each one only sees and prunes the keys
// under its own name.
type Limiter struct {
	store  CounterStore
	name   string
	max    int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(store CounterStore, name string, max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Limiter{store: store, name: name, max: max, window: window, now: time.Now}
}

func (l *Limiter) Name() string { return l.name }

func (l *Limiter) key(client string) string {
	return l.name + ":" + client
}

// Allow counts an attempt by client when the quota permits it.
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	return l.store.Take(ctx, l.key(client), l.now(), l.window, l.max)
}

// Check reports whether client still has quota left without spending any.
func (l *Limiter) Check(ctx context.Context, client string) (Decision, error) {
	return l.store.Peek(ctx, l.key(client), l.now(), l.window, l.max)
}

// Prune drops this limiter's hits that can no longer affect a decision.
func (l *Limiter) Prune(ctx context.Context) error {
	return l.store.Prune(ctx, l.name+":", l.now().Add(-l.window))
}

// MemoryStore keeps hits in process; use it for a single instance.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

// live drops the hits of key that left the window. Callers hold m.mu.
func (m *MemoryStore) live(key string, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	live := m.hits[key][:0]
	for _, t := range m.hits[key] {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}
	m.hits[key] = live
	return live
}

func (m *MemoryStore) Take(_ context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.live(key, now, window)
	if len(live) >= max {
		return Decision{RetryAfter: live[0].Add(window).Sub(now)}, nil
	}
	m.hits[key] = append(live, now)
	return Decision{Allowed: true, Remaining: max - len(live) - 1}, nil
}

func (m *MemoryStore) Peek(_ context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.live(key, now, window)
	if len(live) >= max {
		return Decision{RetryAfter: live[0].Add(window).Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: max - len(live)}, nil
}

func (m *MemoryStore) Prune(_ context.Context, prefix string, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, hits := range m.hits {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if len(hits) == 0 || !hits[len(hits)-1].After(before) {
			delete(m.hits, key)
		}
	}
	return nil
}

// DBStore shares the window between instances through the rate_limit_hits table. Attempts on the
// same key are serialized with a transaction scoped advisory lock.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

type windowCount struct {
	Count  int
	Oldest *time.Time
}

func countWindow(tx *gorm.DB, key string, now time.Time, window time.Duration) (windowCount, error) {
	var recent windowCount
	err := tx.Model(&hitModel.Hit{}).
		Select("COUNT(*) AS count, MIN(hit_at) AS oldest").
		Where("key = ? AND hit_at > ?", key, now.Add(-window)).
		Scan(&recent).Error
	return recent, err
}

func (w windowCount) denied(now time.Time, window time.Duration) Decision {
	var d Decision
	if w.Oldest != nil {
		d.RetryAfter = w.Oldest.Add(window).Sub(now)
	}
	return d
}

func (s *DBStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	var decision Decision
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return err
		}
		recent, err := countWindow(tx, key, now, window)
		if err != nil {
			return err
		}
		if recent.Count >= max {
			decision = recent.denied(now, window)
			return nil
		}
		if err := tx.Create(&hitModel.Hit{Key: key, HitAt: now}).Error; err != nil {
			return err
		}
		decision = Decision{Allowed: true, Remaining: max - recent.Count - 1}
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record rate limit hit: %w", err)
	}
	return decision, nil
}

func (s *DBStore) Peek(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	recent, err := countWindow(s.db.WithContext(ctx), key, now, window)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read rate limit hits: %w", err)
	}
	if recent.Count >= max {
		return recent.denied(now, window), nil
	}
	return Decision{Allowed: true, Remaining: max - recent.Count}, nil
}

func (s *DBStore) Prune(ctx context.Context, prefix string, before time.Time) error {
	return s.db.WithContext(ctx).
		Where("key LIKE ? AND hit_at <= ?", prefix+"%", before).
		Delete(&hitModel.Hit{}).Error
}
