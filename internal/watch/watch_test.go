package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// changeRecorder collects onChange invocations across goroutines.
type changeRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *changeRecorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *changeRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *changeRecorder) waitFor(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d change events, got %d", n, len(r.snapshot()))
	return nil
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "coverage.info")
	require.NoError(t, os.WriteFile(target, []byte("TN:\n"), 0o644))

	rec := &changeRecorder{}
	w, err := New([]string{target}, 0, nil, rec.record)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(target, []byte("TN:run\n"), 0o644))

	got := rec.waitFor(t, 1)
	abs, err := filepath.Abs(target)
	require.NoError(t, err)
	assert.Equal(t, abs, got[0])
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "coverage.info")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	rec := &changeRecorder{}
	w, err := New([]string{target}, 0, nil, rec.record)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("TN:\n"), 0o644))

	got := rec.waitFor(t, 1)
	abs, err := filepath.Abs(target)
	require.NoError(t, err)
	for _, p := range got {
		assert.Equal(t, abs, p)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "coverage.info")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	rec := &changeRecorder{}
	w, err := New([]string{target}, 300*time.Millisecond, nil, rec.record)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("TN:\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	// The burst coalesces into a single callback once the file goes quiet.
	rec.waitFor(t, 1)
	time.Sleep(500 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWatcher_ReportsFinalWriteOfBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "coverage.info")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	var (
		mu       sync.Mutex
		contents []string
	)
	onChange := func(path string) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		mu.Lock()
		contents = append(contents, string(data))
		mu.Unlock()
	}

	w, err := New([]string{target}, 300*time.Millisecond, nil, onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// A truncate-then-write save: the half-written state lands first, the
	// completing write follows inside the debounce window.
	require.NoError(t, os.WriteFile(target, []byte("partial"), 0o644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("final content"), 0o644))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(contents)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, contents, "no change was ever reported")
	assert.Equal(t, "final content", contents[len(contents)-1])
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "coverage.info")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	w, err := New([]string{target}, 0, nil, func(string) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}

func TestWatcher_StartTwice(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "coverage.info")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	w, err := New([]string{target}, 0, nil, func(string) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
}
