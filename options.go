package teammaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	seed      uint64
	workers   int
	maxBudget int
	swapEvery int
	maxRows   int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSeed makes every generation and search reproducible.
// 0 (default) draws fresh randomness per call.
func WithSeed(seed uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.seed = seed
	})
}

// WithSearchWorkers sets how many search trials run in parallel.
// Default: GOMAXPROCS. Results do not depend on it.
func WithSearchWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithMaxTrialBudget caps the trial budget accepted by Search.
// Default: 10000.
func WithMaxTrialBudget(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBudget = n
	})
}

// WithSwapEvery sets how many rows share one random swap in the
// random_categorical strategy. Default: 10.
func WithSwapEvery(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.swapEvery = n
	})
}

// WithMaxRows rejects tables with more data rows. Default: unlimited.
func WithMaxRows(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRows = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// LoadOption configures how LoadTable decodes its input.
type LoadOption func(*loadConfig)

type loadConfig struct {
	charset   string
	delimiter rune
}

// WithCharset declares the IANA charset of the input. Default: UTF-8.
func WithCharset(name string) LoadOption {
	return func(c *loadConfig) { c.charset = name }
}

// WithDelimiter sets the field separator. Default: sniffed from the header
// line among comma, semicolon and tab.
func WithDelimiter(d rune) LoadOption {
	return func(c *loadConfig) { c.delimiter = d }
}
