package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/teammaker/internal/db"
	"github.com/kailas-cloud/teammaker/internal/domain"
	domtable "github.com/kailas-cloud/teammaker/internal/domain/table"
)

// DefaultTTL is how long an uploaded table stays available.
const DefaultTTL = 30 * time.Minute

// store is the consumer interface for tables (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Config controls key naming, expiry and payload compression.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
	Compress  bool
}

// Repo implements usecase/table.Repository and the engine TableReaders.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
	comp   bool
	now    func() time.Time
}

// New creates a table repository.
func New(s store, cfg Config) *Repo {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = domain.KeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Repo{store: s, prefix: cfg.KeyPrefix, ttl: cfg.TTL, comp: cfg.Compress, now: time.Now}
}

// TTL returns how long stored tables live.
func (r *Repo) TTL() time.Duration { return r.ttl }

// Put stores t under id, replacing any previous table.
func (r *Repo) Put(ctx context.Context, id uuid.UUID, t domtable.Table) error {
	data, err := encodeTable(t, r.now().Unix(), r.comp)
	if err != nil {
		return err
	}
	if err := r.store.SetWithTTL(ctx, r.key(id), data, r.ttl); err != nil {
		return fmt.Errorf("store table: %w", err)
	}
	return nil
}

// Get loads the table stored under id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domtable.Table, error) {
	data, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domtable.Table{}, fmt.Errorf("table %s: %w", id, domain.ErrTableNotFound)
		}
		return domtable.Table{}, fmt.Errorf("load table: %w", err)
	}
	t, _, err := decodeTable(data)
	if err != nil {
		return domtable.Table{}, fmt.Errorf("table %s: %w", id, err)
	}
	return t, nil
}

// Delete removes the table stored under id.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("table %s: %w", id, domain.ErrTableNotFound)
		}
		return fmt.Errorf("delete table: %w", err)
	}
	return nil
}

func (r *Repo) key(id uuid.UUID) string {
	return r.prefix + "table:" + id.String()
}
