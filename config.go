package goPerm

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goPerm/permission"
)

// Config defines a public type used by goPerm APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Permission PermissionConfig
	Ownership  OwnershipConfig
	Store      StoreConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
PERMISSION CONFIG
====================================
*/

// PermissionConfig carries the compatibility rules the evaluator applies.
// Both lists are configuration, not hard-coded policy: the exact alias
// set and module list were inferred from mixed historical data, and
// deployments that diverge should override rather than patch.
type PermissionConfig struct {
	// MajorModules is the reference list for the super-admin coverage
	// heuristic. nil selects [permission.DefaultMajorModules]; an empty
	// slice disables the heuristic.
	MajorModules []string
	// ViewAliases are the action tokens satisfying a "view" check.
	// nil selects [permission.DefaultViewAliases]; an empty slice
	// disables the alias.
	ViewAliases []string
}

/*
====================================
OWNERSHIP CONFIG
====================================
*/

// OwnershipConfig maps resource types to their owner override rules.
type OwnershipConfig struct {
	// UserContentTypes get [permission.UserContentRule]: the author of a
	// post or comment keeps edit/delete rights on it regardless of
	// module level.
	UserContentTypes []string
	// Rules are explicit per-resource-type overrides. Keys are
	// case-insensitive resource types. An explicit rule wins over
	// UserContentTypes membership.
	Rules map[string]permission.OwnershipRule
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goPerm APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	RedisPrefix string
	PayloadTTL  time.Duration // 0 keeps payloads until explicitly invalidated
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goPerm APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goPerm APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			RedisPrefix: "goperm",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the baseline configuration: package-default
// compatibility rules, metrics on, audit off.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate checks the configuration for structural mistakes. It does not
// second-guess policy choices such as an empty major-module list.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.RedisPrefix) == "" {
		return errors.New("store redis prefix cannot be blank")
	}
	if c.Store.PayloadTTL < 0 {
		return errors.New("store payload TTL cannot be negative")
	}
	if c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size cannot be negative")
	}
	for _, resourceType := range c.Ownership.UserContentTypes {
		if strings.TrimSpace(resourceType) == "" {
			return errors.New("ownership user content type cannot be blank")
		}
	}
	for resourceType := range c.Ownership.Rules {
		if strings.TrimSpace(resourceType) == "" {
			return errors.New("ownership rule resource type cannot be blank")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg

	out.Permission.MajorModules = cloneStrings(cfg.Permission.MajorModules)
	out.Permission.ViewAliases = cloneStrings(cfg.Permission.ViewAliases)
	out.Ownership.UserContentTypes = cloneStrings(cfg.Ownership.UserContentTypes)
	if cfg.Ownership.Rules != nil {
		out.Ownership.Rules = make(map[string]permission.OwnershipRule, len(cfg.Ownership.Rules))
		for resourceType, rule := range cfg.Ownership.Rules {
			out.Ownership.Rules[resourceType] = rule
		}
	}

	return out
}

// nil and empty are distinct configuration states (defaults vs disabled);
// a plain append would collapse empty to nil.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
