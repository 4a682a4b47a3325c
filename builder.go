package goPerm

import (
	"errors"
	"strings"

	"github.com/MrEthical07/goPerm/jwt"
	"github.com/MrEthical07/goPerm/permission"
	"github.com/MrEthical07/goPerm/store"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goPerm APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	store     PermissionStore
	tokens    *jwt.Manager
	auditSink AuditSink
	trace     TraceFunc

	built bool
}

// New creates a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the default payload store.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore supplies a custom [PermissionStore], overriding the Redis
// default.
func (b *Builder) WithStore(s PermissionStore) *Builder {
	b.store = s
	return b
}

// WithTokenManager enables [Engine.SnapshotFromToken].
func (b *Builder) WithTokenManager(m *jwt.Manager) *Builder {
	b.tokens = m
	return b
}

// WithAuditSink receives payload lifecycle events when auditing is
// enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTraceHook installs the optional decision-trace callback.
func (b *Builder) WithTraceHook(fn TraceFunc) *Builder {
	b.trace = fn
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles load-latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the [Engine]. A
// builder can be used once.
//
// A store is optional: an engine without one still serves
// [Engine.SnapshotFromRaw] and [Engine.SnapshotFromToken], but Load and
// OnPermissionsInvalidated return [ErrStoreRequired].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st := b.store
	if st == nil && b.redis != nil {
		st = store.New(b.redis, store.Config{
			Prefix:     cfg.Store.RedisPrefix,
			PayloadTTL: cfg.Store.PayloadTTL,
		})
	}

	engine := &Engine{
		config:    cfg,
		rules:     permission.NewRuleset(cfg.Permission.MajorModules, cfg.Permission.ViewAliases),
		ownership: compileOwnership(cfg.Ownership),
		store:     st,
		tokens:    b.tokens,
		trace:     b.trace,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
	}

	b.built = true
	return engine, nil
}

// compileOwnership lower-cases rule keys and folds user-content types in.
// An explicit rule wins over user-content membership.
func compileOwnership(cfg OwnershipConfig) map[string]permission.OwnershipRule {
	out := make(map[string]permission.OwnershipRule, len(cfg.Rules)+len(cfg.UserContentTypes))
	for _, resourceType := range cfg.UserContentTypes {
		out[strings.ToLower(resourceType)] = permission.UserContentRule
	}
	for resourceType, rule := range cfg.Rules {
		out[strings.ToLower(resourceType)] = rule
	}
	return out
}
