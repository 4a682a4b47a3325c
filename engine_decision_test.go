package goPerm

import (
	"testing"

	"github.com/MrEthical07/goPerm/permission"
)

func buildDecisionEngine(t *testing.T, cfg Config, trace TraceFunc) *Engine {
	t.Helper()

	engine, err := New().WithConfig(cfg).WithTraceHook(trace).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestHasPermissionTraceHook(t *testing.T) {
	var events []TraceEvent
	engine := buildDecisionEngine(t, DefaultConfig(), func(ev TraceEvent) {
		events = append(events, ev)
	})

	snap := engine.SnapshotFromRaw("u1", map[string]any{
		"feeds": []string{"view", "create"},
		"leads": "*",
	})

	if !engine.HasPermission(snap, "feeds", "create") {
		t.Fatal("expected feeds/create grant")
	}
	if !engine.HasPermission(snap, "leads", "delete") {
		t.Fatal("expected leads wildcard grant")
	}
	if engine.HasPermission(snap, "tasks", "view") {
		t.Fatal("expected tasks/view denial")
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 trace events, got %d", len(events))
	}
	if events[0].Rule != permission.MatchExact || !events[0].Granted {
		t.Fatalf("event 0 = %+v, want exact grant", events[0])
	}
	if events[1].Rule != permission.MatchWildcard {
		t.Fatalf("event 1 rule = %v, want wildcard", events[1].Rule)
	}
	if events[2].Granted || events[2].Rule != permission.MatchNone {
		t.Fatalf("event 2 = %+v, want denial", events[2])
	}
	if events[0].SubjectID != "u1" {
		t.Fatalf("trace subject = %q, want u1", events[0].SubjectID)
	}
}

func TestHasPermissionNilSnapshotDenies(t *testing.T) {
	engine := buildDecisionEngine(t, DefaultConfig(), nil)

	if engine.HasPermission(nil, "feeds", "view") {
		t.Fatal("nil snapshot must deny")
	}
	if got := engine.MetricsSnapshot().Counters[MetricDecisionDenied]; got != 1 {
		t.Fatalf("MetricDecisionDenied = %d, want 1", got)
	}
}

func TestPermissionLevelPrecedence(t *testing.T) {
	engine := buildDecisionEngine(t, DefaultConfig(), nil)

	tests := []struct {
		name string
		raw  any
		want permission.Level
	}{
		{"no grants", nil, permission.LevelOwn},
		{"own only", map[string]any{"leads": "own"}, permission.LevelOwn},
		{"junior", map[string]any{"leads": "junior"}, permission.LevelJunior},
		{"all token", map[string]any{"leads": "all"}, permission.LevelAll},
		{"junior and own", map[string]any{"leads": []string{"junior", "own"}}, permission.LevelJunior},
		{"wildcard", map[string]any{"leads": "*"}, permission.LevelAll},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := engine.SnapshotFromRaw("u1", tc.raw)
			if got := engine.PermissionLevel(snap, "Leads"); got != tc.want {
				t.Fatalf("level = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPermissionLevelSuperAdmin(t *testing.T) {
	engine := buildDecisionEngine(t, DefaultConfig(), nil)

	snap := engine.SnapshotFromRaw("root", []map[string]any{
		{"resource": "*", "actions": []string{"*"}},
	})
	if got := engine.PermissionLevel(snap, "anything"); got != permission.LevelAll {
		t.Fatalf("super-admin level = %v, want all", got)
	}
}

func TestCanEditOwnership(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ownership.UserContentTypes = []string{"Posts"}

	engine := buildDecisionEngine(t, cfg, nil)
	snap := engine.SnapshotFromRaw("u1", map[string]any{"posts": "own"})

	if !engine.CanEdit(snap, "posts", "u1") {
		t.Fatal("owner must edit own user content")
	}
	if engine.CanEdit(snap, "posts", "u2") {
		t.Fatal("non-owner at own level must not edit")
	}
	// Rule keys are case-insensitive; the config said "Posts".
	if !engine.CanEdit(snap, "POSTS", "u1") {
		t.Fatal("ownership lookup must be case-insensitive")
	}
}

func TestCanDeleteByLevel(t *testing.T) {
	engine := buildDecisionEngine(t, DefaultConfig(), nil)

	own := engine.SnapshotFromRaw("u1", map[string]any{"documents": "own"})
	if engine.CanDelete(own, "documents", "someone-else") {
		t.Fatal("own level must not delete another subject's record")
	}
	if !engine.CanDelete(own, "documents", "u1") {
		t.Fatal("exact ownership satisfies the own-level base rule")
	}

	elevated := engine.SnapshotFromRaw("u1", map[string]any{"documents": "all"})
	if !engine.CanDelete(elevated, "documents", "someone-else") {
		t.Fatal("all level must grant delete")
	}
}

func TestCanEditEmptyOwnerNeverMatches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ownership.UserContentTypes = []string{"posts"}

	engine := buildDecisionEngine(t, cfg, nil)
	snap := engine.SnapshotFromRaw("", map[string]any{"posts": "own"})

	if engine.CanEdit(snap, "posts", "") {
		t.Fatal("empty owner id must never satisfy the ownership override")
	}
}

func TestDecisionMetrics(t *testing.T) {
	engine := buildDecisionEngine(t, DefaultConfig(), nil)
	snap := engine.SnapshotFromRaw("u1", map[string]any{"feeds": "view"})

	engine.HasPermission(snap, "feeds", "view")
	engine.HasPermission(snap, "feeds", "delete")
	engine.CanEdit(snap, "feeds", "u1")

	counters := engine.MetricsSnapshot().Counters
	if counters[MetricDecisionGranted] != 1 {
		t.Fatalf("granted = %d, want 1", counters[MetricDecisionGranted])
	}
	if counters[MetricDecisionDenied] != 1 {
		t.Fatalf("denied = %d, want 1", counters[MetricDecisionDenied])
	}
	if counters[MetricOwnershipDenied] != 1 {
		t.Fatalf("ownership denied = %d, want 1", counters[MetricOwnershipDenied])
	}
}
