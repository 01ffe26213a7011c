package table

import (
	"context"
	"testing"
	"time"

	domtable "github.com/kailas-cloud/teammaker/internal/domain/table"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func sampleTable(t *testing.T) domtable.Table {
	t.Helper()
	tbl, err := domtable.New(
		[]string{"name", "skill", "role"},
		[][]string{
			{"Ann", "A", "dev"},
			{"Bob", "B", "qa"},
			{"Zoë", "A", "dev"},
		},
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}
