package table

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domtable "github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/metrics"
)

// Info describes a stored table.
type Info struct {
	ID     uuid.UUID
	Header []string
	Rows   int
}

// Service handles table upload and lookup.
type Service struct {
	repo    Repository
	maxRows int
	newID   func() uuid.UUID
	logger  *zap.Logger
}

// New creates a table service. maxRows <= 0 means unlimited.
func New(repo Repository, maxRows int, logger *zap.Logger) *Service {
	return &Service{repo: repo, maxRows: maxRows, newID: uuid.New, logger: logger}
}

// Upload parses raw table bytes and stores the table under a fresh id.
// Charset and delimiter come from the caller; MaxRows is enforced here.
func (s *Service) Upload(ctx context.Context, data []byte, opts domtable.ParseOptions) (Info, error) {
	opts.MaxRows = s.maxRows
	t, err := domtable.Parse(data, opts)
	if err != nil {
		s.logger.Warn("Table rejected", zap.Int("bytes", len(data)), zap.Error(err))
		return Info{}, err
	}

	id := s.newID()
	if err := s.repo.Put(ctx, id, t); err != nil {
		return Info{}, fmt.Errorf("save table: %w", err)
	}
	metrics.TableRows.Observe(float64(t.Len()))

	s.logger.Info("Table uploaded",
		zap.Stringer("table_id", id),
		zap.Int("rows", t.Len()),
		zap.Int("columns", t.Columns()),
	)
	return Info{ID: id, Header: t.Header(), Rows: t.Len()}, nil
}

// Describe returns the header and row count of a stored table.
func (s *Service) Describe(ctx context.Context, id uuid.UUID) (Info, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Info{}, fmt.Errorf("get table: %w", err)
	}
	return Info{ID: id, Header: t.Header(), Rows: t.Len()}, nil
}

// Delete removes a stored table.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	return nil
}
