package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/domain"
	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/domain/strategy"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	"github.com/kailas-cloud/teammaker/internal/metrics"
	"github.com/kailas-cloud/teammaker/internal/usecase/generate"
)

// Request describes one search over a stored table.
type Request struct {
	TableID    uuid.UUID
	Teams      int
	Strategy   strategy.Strategy
	Categories []category.Spec
	Target     int
	Budget     int
}

// Outcome is a search result together with the table and the scored category.
type Outcome struct {
	Table  table.Table
	Target category.Category
	Result Result
}

// Service runs partition searches for stored tables.
type Service struct {
	tables TableReader
	opt    *Optimizer
	seed   uint64
	logger *zap.Logger
}

// New creates a search service. seed 0 means a fresh random source per call.
func New(tables TableReader, opt *Optimizer, seed uint64, logger *zap.Logger) *Service {
	return &Service{tables: tables, opt: opt, seed: seed, logger: logger}
}

// Search loads the table, binds the categories and runs the optimizer.
func (s *Service) Search(ctx context.Context, req Request) (Outcome, error) {
	start := time.Now()
	out, err := s.search(ctx, req)

	label := req.Strategy.Label()
	metrics.SearchesTotal.WithLabelValues(label, metrics.Status(err)).Inc()
	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		fields := []zap.Field{
			zap.Stringer("table_id", req.TableID),
			zap.String("strategy", string(req.Strategy)),
			zap.Int("budget", req.Budget),
			zap.Error(err),
		}
		if domain.IsCallerError(err) || ctx.Err() != nil {
			s.logger.Warn("Search failed", fields...)
		} else {
			s.logger.Error("Search failed", fields...)
		}
		return Outcome{}, err
	}

	metrics.SearchTrialsTotal.Add(float64(out.Result.Trials))
	metrics.SearchBestScore.Observe(out.Result.Score)
	s.logger.Debug("Search completed",
		zap.Stringer("table_id", req.TableID),
		zap.String("strategy", string(req.Strategy)),
		zap.Int("trials", out.Result.Trials),
		zap.Int("best_trial", out.Result.BestTrial),
		zap.Float64("score", out.Result.Score),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (s *Service) search(ctx context.Context, req Request) (Outcome, error) {
	t, err := s.tables.Get(ctx, req.TableID)
	if err != nil {
		return Outcome{}, fmt.Errorf("get table: %w", err)
	}
	cats, err := category.Build(t, req.Categories)
	if err != nil {
		return Outcome{}, err
	}
	res, err := s.opt.Run(ctx, generate.NewRand(s.seed), t, Params{
		Teams:      req.Teams,
		Strategy:   req.Strategy,
		Categories: cats,
		Target:     req.Target,
		Budget:     req.Budget,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Table: t, Target: cats[req.Target], Result: res}, nil
}
