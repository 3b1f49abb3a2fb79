package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// Fetcher is a scripted upstream fetch function for cache tests. It
// counts invocations, can simulate upstream latency, and can be told to
// fail, so tests can assert on stampede collapse and refresh behavior.
type Fetcher struct {
	mu     sync.Mutex
	calls  int
	delay  time.Duration
	err    error
	values []any
}

// NewFetcher creates a fetcher that returns the given values in order,
// repeating the last one once the script runs out.
func NewFetcher(values ...any) *Fetcher {
	return &Fetcher{values: values}
}

// WithDelay makes every fetch sleep for d before returning, simulating a
// slow upstream.
func (f *Fetcher) WithDelay(d time.Duration) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

// Fail makes subsequent fetches return err. Pass nil to recover.
func (f *Fetcher) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Fetch is the upstream call. It matches the cache fetch signature.
func (f *Fetcher) Fetch(ctx context.Context) (any, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	delay := f.delay
	err := f.err
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return nil, errors.New("testsupport: fetcher has no scripted values")
	}
	idx := n - 1
	if idx >= len(f.values) {
		idx = len(f.values) - 1
	}
	return f.values[idx], nil
}

// Calls returns how many times Fetch has been invoked.
func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Eventually polls cond until it returns true or the timeout elapses.
// Used to wait for background refreshes without fixed sleeps.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the
// testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
