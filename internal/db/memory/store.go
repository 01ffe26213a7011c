package memory

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/kailas-cloud/teammaker/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultSweepInterval is how often expired keys are evicted.
const DefaultSweepInterval = time.Minute

type entry struct {
	value   []byte
	expires time.Time
}

// Store is an in-process db.Store. Keys expire lazily on read and are
// evicted by a background sweeper.
type Store struct {
	data *xsync.Map[string, entry]
	now  func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a memory store. sweep <= 0 uses DefaultSweepInterval.
func NewStore(sweep time.Duration) *Store {
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}
	s := &Store{
		data: xsync.NewMap[string, entry](),
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.sweepLoop(sweep)
	return s
}

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	select {
	case <-s.stop:
		return db.ErrClosed
	default:
		return nil
	}
}

// WaitForReady returns immediately; an open memory store is always ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close stops the sweeper. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.data.Load(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if s.expired(e) {
		s.data.Compute(key, func(old entry, loaded bool) (entry, xsync.ComputeOp) {
			if loaded && s.expired(old) {
				return old, xsync.DeleteOp
			}
			return old, xsync.CancelOp
		})
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a copy of value. ttl <= 0 never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)
	e := entry{value: v}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.data.Store(key, e)
	return nil
}

// Del removes a key. A missing or expired key returns db.ErrKeyNotFound.
func (s *Store) Del(_ context.Context, key string) error {
	e, ok := s.data.LoadAndDelete(key)
	if !ok || s.expired(e) {
		return db.ErrKeyNotFound
	}
	return nil
}

// Len returns the number of stored keys, expired ones included until swept.
func (s *Store) Len() int { return s.data.Size() }

func (s *Store) expired(e entry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	s.data.Range(func(key string, e entry) bool {
		if s.expired(e) {
			s.data.Compute(key, func(old entry, loaded bool) (entry, xsync.ComputeOp) {
				if loaded && s.expired(old) {
					return old, xsync.DeleteOp
				}
				return old, xsync.CancelOp
			})
		}
		return true
	})
}
