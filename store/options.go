package store

import (
	"github.com/on-the-ground/effect_ive_store/config"
	"github.com/on-the-ground/effect_ive_store/internal/history"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/log"
	"github.com/on-the-ground/effect_ive_store/observability"
	"go.uber.org/zap"
)

type options struct {
	maxHistorySize int
	registryShards int
	logger         *zap.Logger
	metrics        observability.Metrics
	onError        func(error)
	cfg            *config.Config
}

func defaultOptions() options {
	return options{
		maxHistorySize: history.DefaultMaxSize,
		registryShards: registry.DefaultShards,
		metrics:        observability.Noop{},
	}
}

type Option func(*options)

// WithMaxHistorySize caps the number of actions History keeps. Values below
// one fall back to the default of 100.
func WithMaxHistorySize(n int) Option {
	return func(o *options) {
		o.maxHistorySize = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m observability.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithErrorHandler receives every *effects.ExecutionError raised by an
// effect. Without it errors are logged at error level.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func WithRegistryShards(n int) Option {
	return func(o *options) {
		o.registryShards = n
	}
}

// WithConfig applies the [store] table of cfg. When no logger is given the
// [log] table builds one.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.maxHistorySize = cfg.Store.MaxHistorySize
		o.registryShards = cfg.Store.RegistryShards
		o.cfg = &cfg
	}
}

func (o *options) resolveLogger() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	if o.cfg != nil {
		if logger, err := log.New(o.cfg.Level(), o.cfg.Log.Development); err == nil {
			return logger
		}
	}
	return zap.NewNop()
}
