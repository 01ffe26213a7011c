package generate

import (
	"context"

	"github.com/google/uuid"

	"github.com/kailas-cloud/teammaker/internal/domain/table"
)

// Rand is the randomness consumed by the generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
	Uint64() uint64
}

// TableReader loads uploaded tables.
type TableReader interface {
	Get(ctx context.Context, id uuid.UUID) (table.Table, error)
}
