package search

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/usecase/generate"
)

// DefaultMaxTrialBudget caps the trials of a single search.
const DefaultMaxTrialBudget = 10000

// Params describes one search run over a bound table.
type Params struct {
	Teams      int
	Strategy   strategy.Strategy
	Categories []category.Category
	// Target indexes Categories; that category is the one scored.
	Target int
	Budget int
}

// Result is the best partition found by a search run.
type Result struct {
	Partition partition.Partition
	Score     float64
	Trials    int
	// BestTrial is the 0-based trial that produced Partition.
	BestTrial int
}

// Optimizer runs best-of-N partition searches.
type Optimizer struct {
	gen       Generator
	score     ScoreFunc
	workers   int
	maxBudget int
}

// NewOptimizer creates an optimizer. workers <= 0 uses GOMAXPROCS,
// maxBudget <= 0 uses DefaultMaxTrialBudget.
func NewOptimizer(gen Generator, score ScoreFunc, workers, maxBudget int) *Optimizer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if maxBudget <= 0 {
		maxBudget = DefaultMaxTrialBudget
	}
	return &Optimizer{gen: gen, score: score, workers: workers, maxBudget: maxBudget}
}

// MaxBudget returns the largest accepted trial budget.
func (o *Optimizer) MaxBudget() int { return o.maxBudget }

// Run generates p.Budget candidate partitions and returns the one with the
// lowest score; ties keep the earliest trial. Every trial gets its own source
// forked from rng in trial order, so the result does not depend on the
// number of workers.
func (o *Optimizer) Run(ctx context.Context, rng generate.Rand, t table.Table, p Params) (Result, error) {
	if p.Budget <= 0 {
		return Result{}, fmt.Errorf("%w: %d, must be at least 1", domain.ErrInvalidTrialBudget, p.Budget)
	}
	if p.Budget > o.maxBudget {
		return Result{}, fmt.Errorf("%w: %d exceeds the configured maximum of %d",
			domain.ErrInvalidTrialBudget, p.Budget, o.maxBudget)
	}
	if len(p.Categories) == 0 {
		return Result{}, fmt.Errorf("%w: search needs a target category", domain.ErrMissingCategory)
	}
	if p.Target < 0 || p.Target >= len(p.Categories) {
		return Result{}, fmt.Errorf("%w: target %d outside 0..%d",
			domain.ErrMissingCategory, p.Target, len(p.Categories)-1)
	}
	target := p.Categories[p.Target]

	sources := make([]generate.Rand, p.Budget)
	for i := range sources {
		sources[i] = generate.Fork(rng)
	}

	var (
		mu    sync.Mutex
		best  Result
		found bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range p.Budget {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // context error passes through
			}
			part, err := o.gen.Generate(sources[i], t, p.Teams, p.Strategy, p.Categories)
			if err != nil {
				return err //nolint:wrapcheck // generator errors are returned unmodified
			}
			s := o.score(part, target)

			mu.Lock()
			defer mu.Unlock()
			if !found || s < best.Score || (s == best.Score && i < best.BestTrial) {
				best = Result{Partition: part, Score: s, BestTrial: i}
				found = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err //nolint:wrapcheck // see above
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err //nolint:wrapcheck // cancelled by caller
	}
	best.Trials = p.Budget
	return best, nil
}
