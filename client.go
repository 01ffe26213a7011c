package teammaker

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/usecase/generate"
	"github.com/kailas-cloud/teammaker/internal/usecase/search"
)

// Strategy selects how teams are generated.
type Strategy = strategy.Strategy

// Generation strategies.
const (
	Random            = strategy.Random
	Categorical       = strategy.Categorical
	RandomCategorical = strategy.RandomCategorical
)

// generator is the engine contract the Client depends on.
type generator interface {
	Generate(
		rng generate.Rand, t table.Table, k int, s strategy.Strategy, cats []category.Category,
	) (partition.Partition, error)
}

// optimizer is the search contract the Client depends on.
type optimizer interface {
	Run(ctx context.Context, rng generate.Rand, t table.Table, p search.Params) (search.Result, error)
}

// Client is the teammaker SDK entry point. It is safe for concurrent use.
type Client struct {
	gen     generator
	opt     optimizer
	seed    uint64
	maxRows int
	obs     *observer
}

// New creates a Client. The engine runs in-process; nothing is dialed.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{swapEvery: generate.DefaultSwapEvery}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	gen := generate.NewGenerator(cfg.swapEvery)
	return &Client{
		gen:     gen,
		opt:     search.NewOptimizer(gen, search.Score, cfg.workers, cfg.maxBudget),
		seed:    cfg.seed,
		maxRows: cfg.maxRows,
		obs:     obs,
	}, nil
}

// Table is a parsed input table.
type Table struct {
	t table.Table
}

// Header returns the column names.
func (t *Table) Header() []string { return t.t.Header() }

// Len returns the number of data rows.
func (t *Table) Len() int { return t.t.Len() }

// Label returns the first-column value of row i.
func (t *Table) Label(i int) string { return t.t.Label(i) }

// Row returns a copy of row i's values in header order.
func (t *Table) Row(i int) []string { return t.t.Row(i).Values() }

// Distinct returns the sorted distinct values of a column.
func (t *Table) Distinct(column int) ([]string, error) {
	vals, err := t.t.Distinct(column)
	if err != nil {
		return nil, fmt.Errorf("distinct: %w", err)
	}
	return vals, nil
}

// LoadTable reads and parses a delimited table from r.
func (c *Client) LoadTable(r io.Reader, opts ...LoadOption) (*Table, error) {
	start := time.Now()
	var lc loadConfig
	for _, o := range opts {
		o(&lc)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		c.obs.observe("load_table", start, err)
		return nil, fmt.Errorf("read table: %w", err)
	}
	t, err := table.Parse(data, table.ParseOptions{
		Charset:   lc.charset,
		Delimiter: lc.delimiter,
		MaxRows:   c.maxRows,
	})
	c.obs.observe("load_table", start, err, zap.Int("bytes", len(data)))
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return &Table{t: t}, nil
}

// NewTable builds a table from in-memory records; the first column labels rows.
func NewTable(header []string, records [][]string) (*Table, error) {
	t, err := table.New(header, records)
	if err != nil {
		return nil, fmt.Errorf("new table: %w", err)
	}
	return &Table{t: t}, nil
}

// Teams starts a generation over t.
func (c *Client) Teams(t *Table) *TeamsBuilder {
	return &TeamsBuilder{client: c, table: t, strategy: Random}
}
