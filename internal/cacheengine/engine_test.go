package cacheengine

import (
	"context"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()

	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultTTL != 5*time.Minute {
		t.Errorf("expected DefaultTTL to be 5 minutes, got %v", cfg.DefaultTTL)
	}
	if cfg.MaxEntries != 10000 {
		t.Errorf("expected MaxEntries to be 10000, got %d", cfg.MaxEntries)
	}
	if cfg.EvictionInterval != 0 {
		t.Errorf("expected EvictionInterval to be disabled, got %v", cfg.EvictionInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
	}{
		{
			name:      "valid default config",
			cfg:       DefaultConfig(),
			wantError: false,
		},
		{
			name:      "zero default TTL",
			cfg:       Config{DefaultTTL: 0, MaxEntries: 10},
			wantError: true,
		},
		{
			name:      "negative default TTL",
			cfg:       Config{DefaultTTL: -time.Second, MaxEntries: 10},
			wantError: true,
		},
		{
			name:      "zero max entries",
			cfg:       Config{DefaultTTL: time.Minute, MaxEntries: 0},
			wantError: true,
		},
		{
			name:      "negative eviction interval",
			cfg:       Config{DefaultTTL: time.Minute, MaxEntries: 10, EvictionInterval: -time.Second},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("expected validation error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "MaxEntries", Message: "must be greater than 0"}
	want := "config error in field MaxEntries: must be greater than 0"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestEngine_ReadYourWrite(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "user:1", "alice", 0)

	got, ok := e.Get(ctx, "user:1")
	if !ok {
		t.Fatal("expected hit for freshly written key")
	}
	if got != "alice" {
		t.Errorf("expected %q, got %v", "alice", got)
	}
}

func TestEngine_SetReplaces(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "k", 1, 0)
	e.Set(ctx, "k", 2, 0)

	got, ok := e.Get(ctx, "k")
	if !ok || got != 2 {
		t.Errorf("expected replaced value 2, got %v (ok=%v)", got, ok)
	}
	if e.Len() != 1 {
		t.Errorf("expected a single entry after replace, got %d", e.Len())
	}
}

func TestEngine_Expiry(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "k", "v", 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, ok := e.Get(ctx, "k"); ok {
		t.Error("expected expired key to be reported absent")
	}
	if e.Has(ctx, "k") {
		t.Error("expected Has to be false after expiry")
	}
	if ttl := e.TTL(ctx, "k"); ttl != -1 {
		t.Errorf("expected TTL -1 for expired key, got %v", ttl)
	}
	if e.Len() != 0 {
		t.Errorf("expected lazy removal of the expired entry, got %d entries", e.Len())
	}
}

func TestEngine_DefaultTTLApplied(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "k", "v", 0)

	ttl := e.TTL(ctx, "k")
	if ttl <= 50*time.Second || ttl > time.Minute {
		t.Errorf("expected TTL close to the one minute default, got %v", ttl)
	}
}

func TestEngine_CapacityEviction(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 3})
	ctx := context.Background()

	e.Set(ctx, "a", 1, 0)
	e.Set(ctx, "b", 2, 0)
	e.Set(ctx, "c", 3, 0)

	// Touch "a" so "b" becomes the least recently accessed entry.
	if _, ok := e.Get(ctx, "a"); !ok {
		t.Fatal("expected hit for a")
	}

	e.Set(ctx, "d", 4, 0)

	if e.Len() != 3 {
		t.Fatalf("expected capacity bound of 3 to hold, got %d entries", e.Len())
	}
	if _, ok := e.Get(ctx, "b"); ok {
		t.Error("expected least recently used key b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := e.Get(ctx, k); !ok {
			t.Errorf("expected key %s to survive eviction", k)
		}
	}

	if evicted := e.Stats().Evictions; evicted != 1 {
		t.Errorf("expected 1 eviction, got %d", evicted)
	}
}

func TestEngine_HasDoesNotTouchRecency(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 2})
	ctx := context.Background()

	e.Set(ctx, "a", 1, 0)
	e.Set(ctx, "b", 2, 0)

	// Has is a probe: it must not promote "a" in the recency order.
	if !e.Has(ctx, "a") {
		t.Fatal("expected a to exist")
	}

	e.Set(ctx, "c", 3, 0)

	if _, ok := e.Get(ctx, "a"); ok {
		t.Error("expected a to be evicted; Has should not count as an access")
	}
	if _, ok := e.Get(ctx, "b"); !ok {
		t.Error("expected b to survive")
	}
}

func TestEngine_Delete(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "k", "v", 0)

	if !e.Delete(ctx, "k") {
		t.Error("expected Delete to report the key existed")
	}
	if e.Delete(ctx, "k") {
		t.Error("expected Delete of an absent key to report false")
	}
	if _, ok := e.Get(ctx, "k"); ok {
		t.Error("expected key to be gone after Delete")
	}
}

func TestEngine_MGet(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "x", 1, 0)
	e.Set(ctx, "z", 3, 0)

	got := e.MGet(ctx, []string{"x", "y", "z"})
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 results, got %d", len(got))
	}
	if got["x"] != 1 || got["z"] != 3 {
		t.Errorf("unexpected result map: %v", got)
	}
	if _, ok := got["y"]; ok {
		t.Error("expected missing key y to be absent from the result map")
	}
}

func TestEngine_Clear(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.SetWithTags(ctx, "a", 1, 0, "tag")
	e.Set(ctx, "b", 2, 0)

	e.Clear(ctx)

	if e.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", e.Len())
	}
	if removed := e.ClearTag(ctx, "tag"); removed != 0 {
		t.Errorf("expected tag index to be reset by Clear, removed %d", removed)
	}
}

func TestEngine_ClearTag(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.SetWithTags(ctx, "a", 1, 0, "billing")
	e.SetWithTags(ctx, "b", 2, 0, "billing", "reports")
	e.Set(ctx, "c", 3, 0)

	if removed := e.ClearTag(ctx, "billing"); removed != 2 {
		t.Errorf("expected 2 entries removed, got %d", removed)
	}
	if _, ok := e.Get(ctx, "c"); !ok {
		t.Error("expected untagged entry to survive")
	}
	if removed := e.ClearTag(ctx, "reports"); removed != 0 {
		t.Errorf("expected reports index to be emptied with its entries, removed %d", removed)
	}
}

func TestEngine_Namespace(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10, Namespace: "app"})
	ctx := context.Background()

	e.Set(ctx, "k", "v", 0)

	// Namespacing is invisible to callers.
	if got, ok := e.Get(ctx, "k"); !ok || got != "v" {
		t.Fatalf("expected namespaced read-your-write, got %v (ok=%v)", got, ok)
	}

	// Patterns are rewritten into the namespace as well.
	if err := e.ClearPattern(ctx, "k"); err != nil {
		t.Fatalf("unexpected pattern error: %v", err)
	}
	if _, ok := e.Get(ctx, "k"); ok {
		t.Error("expected namespaced pattern clear to remove the key")
	}
}

func TestEngine_SweepRemovesExpired(t *testing.T) {
	e := newTestEngine(t, Config{
		DefaultTTL:       time.Minute,
		MaxEntries:       10,
		EvictionInterval: 10 * time.Millisecond,
	})
	ctx := context.Background()

	e.Set(ctx, "short", "v", 15*time.Millisecond)
	e.Set(ctx, "long", "v", time.Minute)

	deadline := time.Now().Add(time.Second)
	for e.Len() > 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if e.Len() != 1 {
		t.Fatalf("expected the sweep to collect the expired entry, %d entries left", e.Len())
	}
	if !e.Has(ctx, "long") {
		t.Error("expected the live entry to survive the sweep")
	}
}

func TestEngine_Stats(t *testing.T) {
	e := newTestEngine(t, Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	e.Set(ctx, "k", "v", 0)
	e.Get(ctx, "k")
	e.Get(ctx, "missing")

	stats := e.Stats()
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("expected constructor to reject the zero config")
	}
}
