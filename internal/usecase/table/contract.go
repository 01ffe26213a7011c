package table

import (
	"context"

	"github.com/google/uuid"

	domtable "github.com/kailas-cloud/teammaker/internal/domain/table"
)

// Repository defines the storage contract for uploaded tables.
type Repository interface {
	Put(ctx context.Context, id uuid.UUID, t domtable.Table) error
	Get(ctx context.Context, id uuid.UUID) (domtable.Table, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
