package goPerm

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goPerm/store"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditTestEngine(t *testing.T, cfg Config, sink AuditSink) *Engine {
	t.Helper()

	_, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine := buildAuditTestEngine(t, cfg, sink)

	_, _ = engine.Load(WithClientIP(context.Background(), "203.0.113.1"), "u1")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditPayloadLoadedEventFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = true

	sink := newCaptureSink(8)

	_, rdb := newTestRedis(t)
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	st := store.New(rdb, store.Config{Prefix: cfg.Store.RedisPrefix})
	revision, err := st.Save(context.Background(), "u1", map[string]any{"feeds": "view"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	if _, err := engine.Load(ctx, "u1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventPayloadLoaded {
			t.Fatalf("event type = %q, want %q", ev.EventType, auditEventPayloadLoaded)
		}
		if ev.SubjectID != "u1" {
			t.Fatalf("subject = %q, want u1", ev.SubjectID)
		}
		if ev.Revision != revision {
			t.Fatalf("revision = %q, want %q", ev.Revision, revision)
		}
		if ev.IP != "198.51.100.33" {
			t.Fatalf("IP = %q, want 198.51.100.33", ev.IP)
		}
		if !ev.Success {
			t.Fatal("expected success event")
		}
		if ev.Metadata["super_admin"] != "false" {
			t.Fatalf("metadata = %v, want super_admin=false", ev.Metadata)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event")
	}
}

func TestAuditMissingPayloadEvent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = true

	sink := newCaptureSink(8)
	engine := buildAuditTestEngine(t, cfg, sink)

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	if _, err := engine.Load(ctx, "ghost"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventPayloadMissing {
			t.Fatalf("event type = %q, want %q", ev.EventType, auditEventPayloadMissing)
		}
		if ev.SubjectID != "ghost" {
			t.Fatalf("subject = %q, want ghost", ev.SubjectID)
		}
		if ev.IP != "198.51.100.33" {
			t.Fatalf("IP = %q, want 198.51.100.33", ev.IP)
		}
		if !ev.Success {
			t.Fatal("a missing payload is a successful, empty outcome")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event")
	}
}

func TestAuditTokenRejectedEvent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = true

	sink := newCaptureSink(8)
	engine, err := New().
		WithConfig(cfg).
		WithTokenManager(newTestTokenManager(t)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	_, _ = engine.SnapshotFromToken(context.Background(), "not.a.token")

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventTokenRejected {
			t.Fatalf("event type = %q, want %q", ev.EventType, auditEventTokenRejected)
		}
		if ev.Success {
			t.Fatal("rejection must be recorded as failure")
		}
		if ev.Error != string(auditErrInvalidToken) {
			t.Fatalf("error code = %q, want %q", ev.Error, auditErrInvalidToken)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event")
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditEventPayloadLoaded,
		SubjectID: "u1",
		Revision:  "rev-9",
		IP:        "127.0.0.1",
		Success:   true,
	}
	sink.Emit(context.Background(), event)

	if !buf.Contains("payload_loaded") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"subject_id\":\"u1\"") {
		t.Fatal("expected JSON log line to contain subject id")
	}
	if !buf.Contains("\"revision\":\"rev-9\"") {
		t.Fatal("expected JSON log line to contain revision")
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}
