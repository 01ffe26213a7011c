package table

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain"
	domtable "github.com/kailas-cloud/teammaker/internal/domain/table"
)

// --- Mocks ---

type mockRepo struct {
	tables map[uuid.UUID]domtable.Table
	putErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{tables: map[uuid.UUID]domtable.Table{}}
}

func (m *mockRepo) Put(_ context.Context, id uuid.UUID, t domtable.Table) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.tables[id] = t
	return nil
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (domtable.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return domtable.Table{}, domain.ErrTableNotFound
	}
	return t, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.tables[id]; !ok {
		return domain.ErrTableNotFound
	}
	delete(m.tables, id)
	return nil
}

// --- Tests ---

func TestUpload(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, 0, zap.NewNop())

	info, err := svc.Upload(context.Background(), []byte("name;team\nann;A\nbob;B\n"), domtable.ParseOptions{})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if info.Rows != 2 || len(info.Header) != 2 || info.Header[1] != "team" {
		t.Errorf("unexpected info: %+v", info)
	}
	if _, ok := repo.tables[info.ID]; !ok {
		t.Error("table not stored under returned id")
	}

	got, err := svc.Describe(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got.Rows != 2 {
		t.Errorf("Describe rows = %d", got.Rows)
	}
}

func TestUpload_MaxRows(t *testing.T) {
	svc := New(newMockRepo(), 1, zap.NewNop())
	_, err := svc.Upload(context.Background(), []byte("name,team\na,A\nb,B\n"), domtable.ParseOptions{MaxRows: 100})
	if !errors.Is(err, domain.ErrMalformedInput) {
		t.Errorf("err = %v, want ErrMalformedInput", err)
	}
}

func TestUpload_ParseErrors(t *testing.T) {
	svc := New(newMockRepo(), 0, zap.NewNop())
	tests := []struct {
		name string
		data string
		opts domtable.ParseOptions
		want error
	}{
		{"malformed", "single\nrow\n", domtable.ParseOptions{}, domain.ErrMalformedInput},
		{"encoding", "a,b\n\xff,1\n", domtable.ParseOptions{}, domain.ErrEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), []byte(tt.data), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpload_StoreError(t *testing.T) {
	repo := newMockRepo()
	repo.putErr = errors.New("store down")
	svc := New(repo, 0, zap.NewNop())

	_, err := svc.Upload(context.Background(), []byte("a,b\n1,2\n"), domtable.ParseOptions{})
	if !errors.Is(err, repo.putErr) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, 0, zap.NewNop())
	info, err := svc.Upload(context.Background(), []byte("a,b\n1,2\n"), domtable.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), info.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Describe(context.Background(), info.ID); !errors.Is(err, domain.ErrTableNotFound) {
		t.Errorf("Describe after Delete: err = %v", err)
	}
}
