package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/usecase/generate"
)

// Generator produces one candidate partition per trial.
type Generator interface {
	Generate(
		rng generate.Rand, t table.Table, k int, s strategy.Strategy, cats []category.Category,
	) (partition.Partition, error)
}

// ScoreFunc rates a partition against a category; lower is better.
type ScoreFunc func(p partition.Partition, c category.Category) float64

// TableReader loads uploaded tables.
type TableReader interface {
	Get(ctx context.Context, id uuid.UUID) (table.Table, error)
}
