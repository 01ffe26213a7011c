package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/partition"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/metrics"
)

// Request describes one generation over a stored table.
type Request struct {
	TableID    uuid.UUID
	Teams      int
	Strategy   strategy.Strategy
	Categories []category.Spec
}

// Result is a generated partition together with the table it partitions.
type Result struct {
	Table     table.Table
	Partition partition.Partition
}

// Service generates partitions for stored tables.
type Service struct {
	tables TableReader
	gen    *Generator
	seed   uint64
	logger *zap.Logger
}

// New creates a generate service. seed 0 means a fresh random source per call.
func New(tables TableReader, gen *Generator, seed uint64, logger *zap.Logger) *Service {
	return &Service{tables: tables, gen: gen, seed: seed, logger: logger}
}

// Generate loads the table, binds the categories and produces one partition.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := s.generate(ctx, req)

	label := req.Strategy.Label()
	metrics.GenerationsTotal.WithLabelValues(label, metrics.Status(err)).Inc()
	metrics.GenerationDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		logFailure(s.logger, "Generation failed", err,
			zap.Stringer("table_id", req.TableID),
			zap.String("strategy", string(req.Strategy)),
			zap.Int("teams", req.Teams),
		)
		return Result{}, err
	}
	s.logger.Debug("Generation completed",
		zap.Stringer("table_id", req.TableID),
		zap.String("strategy", string(req.Strategy)),
		zap.Int("teams", req.Teams),
		zap.Int("rows", res.Table.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *Service) generate(ctx context.Context, req Request) (Result, error) {
	t, err := s.tables.Get(ctx, req.TableID)
	if err != nil {
		return Result{}, fmt.Errorf("get table: %w", err)
	}
	cats, err := category.Build(t, req.Categories)
	if err != nil {
		return Result{}, err
	}
	p, err := s.gen.Generate(NewRand(s.seed), t, req.Teams, req.Strategy, cats)
	if err != nil {
		return Result{}, err
	}
	return Result{Table: t, Partition: p}, nil
}

// logFailure logs caller errors at Warn and internal faults at Error.
func logFailure(l *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if domain.IsCallerError(err) {
		l.Warn(msg, fields...)
		return
	}
	l.Error(msg, fields...)
}
