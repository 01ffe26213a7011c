package teammaker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/usecase/generate"
	"github.com/kailas-cloud/teammaker/internal/usecase/search"
)

// Teams is a generated partition.
type Teams struct {
	// Rows holds the row indices of every team, ascending, in team order.
	Rows [][]int
	// Members holds the first-column value of every row, parallel to Rows.
	Members [][]string
}

// SearchResult is the best partition found by a search.
type SearchResult struct {
	Teams
	Score     float64
	Trials    int
	BestTrial int
	// Distribution maps, per team, each target category value to its weighted count.
	Distribution []map[string]float64
}

// CategoryOption configures one category of a TeamsBuilder.
type CategoryOption func(*category.Spec)

// Priority sets the category weight relative to the other categories. Default: 1.
func Priority(w float64) CategoryOption {
	return func(s *category.Spec) { s.Priority = w }
}

// Named sets a display name for the category. Default: the column header.
func Named(name string) CategoryOption {
	return func(s *category.Spec) { s.Name = name }
}

// ValueWeight weights one value of the category column, addressed by its raw text.
// Once any value is weighted, unlisted values weigh 0.
func ValueWeight(value string, w float64) CategoryOption {
	return func(s *category.Spec) {
		s.Entries = append(s.Entries, category.Entry{Value: value, Weight: w})
	}
}

// ValueIndexWeight weights the i-th value of the column's sorted distinct values.
func ValueIndexWeight(i int, w float64) CategoryOption {
	return func(s *category.Spec) {
		s.Entries = append(s.Entries, category.Entry{ValueIndex: &i, Weight: w})
	}
}

// TeamsBuilder is a fluent builder for one generation or search.
type TeamsBuilder struct {
	client   *Client
	table    *Table
	count    int
	strategy Strategy
	specs    []category.Spec
}

// Count sets the number of teams.
func (b *TeamsBuilder) Count(k int) *TeamsBuilder {
	b.count = k
	return b
}

// Strategy sets the generation strategy. Default: Random.
func (b *TeamsBuilder) Strategy(s Strategy) *TeamsBuilder {
	b.strategy = s
	return b
}

// Category adds a column to balance on. Column 0 holds member labels and is
// rejected. Categories added first win ties in priority.
func (b *TeamsBuilder) Category(column int, opts ...CategoryOption) *TeamsBuilder {
	spec := category.Spec{Column: column, Priority: 1}
	for _, o := range opts {
		o(&spec)
	}
	b.specs = append(b.specs, spec)
	return b
}

// Generate produces one partition.
func (b *TeamsBuilder) Generate(ctx context.Context) (*Teams, error) {
	start := time.Now()
	teams, err := b.generate(ctx)
	b.client.obs.observe("generate", start, err,
		zap.String("strategy", b.strategy.Label()),
		zap.Int("teams", b.count),
	)
	return teams, err
}

func (b *TeamsBuilder) generate(ctx context.Context) (*Teams, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	cats, err := category.Build(b.table.t, b.specs)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	p, err := b.client.gen.Generate(generate.NewRand(b.client.seed), b.table.t, b.count, b.strategy, cats)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	teams := b.teamsOf(p)
	return &teams, nil
}

// Search runs budget generations and returns the one whose distribution of
// the target category (an index into the added categories) is most even.
func (b *TeamsBuilder) Search(ctx context.Context, target, budget int) (*SearchResult, error) {
	start := time.Now()
	res, err := b.search(ctx, target, budget)
	b.client.obs.observe("search", start, err,
		zap.String("strategy", b.strategy.Label()),
		zap.Int("teams", b.count),
		zap.Int("budget", budget),
	)
	return res, err
}

func (b *TeamsBuilder) search(ctx context.Context, target, budget int) (*SearchResult, error) {
	cats, err := category.Build(b.table.t, b.specs)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	res, err := b.client.opt.Run(ctx, generate.NewRand(b.client.seed), b.table.t, search.Params{
		Teams:      b.count,
		Strategy:   b.strategy,
		Categories: cats,
		Target:     target,
		Budget:     budget,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &SearchResult{
		Teams:        b.teamsOf(res.Partition),
		Score:        res.Score,
		Trials:       res.Trials,
		BestTrial:    res.BestTrial,
		Distribution: search.Distribution(res.Partition, cats[target]),
	}, nil
}

func (b *TeamsBuilder) teamsOf(p partition.Partition) Teams {
	rows := p.Indices()
	members := make([][]string, len(rows))
	for i, team := range rows {
		names := make([]string, len(team))
		for j, r := range team {
			names[j] = b.table.t.Label(r)
		}
		members[i] = names
	}
	return Teams{Rows: rows, Members: members}
}
