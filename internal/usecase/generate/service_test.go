package generate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
)

// --- Mocks ---

type mockTables struct {
	tables map[uuid.UUID]table.Table
	err    error
}

func (m *mockTables) Get(_ context.Context, id uuid.UUID) (table.Table, error) {
	if m.err != nil {
		return table.Table{}, m.err
	}
	t, ok := m.tables[id]
	if !ok {
		return table.Table{}, fmt.Errorf("table %s: %w", id, domain.ErrTableNotFound)
	}
	return t, nil
}

// --- Tests ---

func newTestService(t *testing.T, seed uint64) (*Service, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	tbl := groupTable(t, repeat([]string{"A", "B", "C"}, 12))
	tables := &mockTables{tables: map[uuid.UUID]table.Table{id: tbl}}
	return New(tables, NewGenerator(0), seed, zap.NewNop()), id
}

func TestService_Generate(t *testing.T) {
	svc, id := newTestService(t, 0)

	res, err := svc.Generate(context.Background(), Request{
		TableID:    id,
		Teams:      4,
		Strategy:   strategy.Categorical,
		Categories: []category.Spec{{Column: 1, Priority: 1}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Table.Len() != 12 {
		t.Errorf("table rows = %d, want 12", res.Table.Len())
	}
	if diff := cmp.Diff([]int{3, 3, 3, 3}, res.Partition.Sizes()); diff != "" {
		t.Errorf("sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestService_FixedSeedReproducible(t *testing.T) {
	svc, id := newTestService(t, 99)
	req := Request{TableID: id, Teams: 5, Strategy: strategy.Random}

	a, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Partition.Indices(), b.Partition.Indices()); diff != "" {
		t.Errorf("fixed seed produced different partitions:\n%s", diff)
	}
}

func TestService_Errors(t *testing.T) {
	svc, id := newTestService(t, 0)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"table not found", Request{TableID: uuid.New(), Teams: 2, Strategy: strategy.Random}, domain.ErrTableNotFound},
		{"unknown column", Request{
			TableID: id, Teams: 2, Strategy: strategy.Categorical,
			Categories: []category.Spec{{Column: 7, Priority: 1}},
		}, domain.ErrUnknownColumn},
		{"team count", Request{TableID: id, Teams: 13, Strategy: strategy.Random}, domain.ErrInvalidTeamCount},
		{"missing category", Request{TableID: id, Teams: 2, Strategy: strategy.Categorical}, domain.ErrMissingCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_StoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := New(&mockTables{err: boom}, NewGenerator(0), 0, zap.NewNop())

	_, err := svc.Generate(context.Background(), Request{TableID: uuid.New(), Teams: 1, Strategy: strategy.Random})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
