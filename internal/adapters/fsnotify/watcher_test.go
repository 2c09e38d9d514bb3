package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// fsnotify Watcher Adapter: detect PDDL file changes below a workspace root
// Expectation: included files reported once per burst of writes; ignored
// directories and other extensions stay silent
// =============================================================================

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, dir string) (*Watcher, <-chan string) {
	t.Helper()
	w, err := NewWatcher(nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "domain.pddl")
	require.NoError(t, os.WriteFile(testFile, []byte("(define (domain d))"), 0644))

	_, changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(testFile, []byte("(define (domain d2))"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, testFile, path)
}

func TestWatcher_DetectsNewFileOnce(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, dir)

	newFile := filepath.Join(dir, "p1.plan")
	require.NoError(t, os.WriteFile(newFile, []byte("0: (a)"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for new file")
	assert.Equal(t, newFile, path)

	_, again := waitForCallback(changed, 200*time.Millisecond)
	assert.False(t, again, "create and write are one burst")
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "old.pddl")
	require.NoError(t, os.WriteFile(testFile, []byte("(define)"), 0644))

	_, changed := startWatcher(t, dir)
	require.NoError(t, os.Remove(testFile))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted file")
	assert.Equal(t, testFile, path)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, dir)

	sub := filepath.Join(dir, "problems")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	f := filepath.Join(sub, "p2.pddl")
	require.NoError(t, os.WriteFile(f, []byte("(define)"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file in new directory")
	assert.Equal(t, f, path)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))

	_, changed := startWatcher(t, dir)

	os.WriteFile(filepath.Join(gitDir, "stash.pddl"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "domain.pddl.swp"), []byte("x"), 0644)

	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for ignored files")

	trace := filepath.Join(dir, "run.happenings")
	require.NoError(t, os.WriteFile(trace, []byte("0: (a)"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for happenings file")
	assert.Equal(t, trace, path)
}

func TestWatcher_Latency(t *testing.T) {
	// Time from file change to onChange callback: debounce window plus
	// fsnotify delivery.
	dir := t.TempDir()
	testFile := filepath.Join(dir, "latency.pddl")
	require.NoError(t, os.WriteFile(testFile, []byte("; initial"), 0644))

	w, err := NewWatcher(nil, nil)
	require.NoError(t, err)
	defer w.Stop()

	var callbackTime time.Time
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callbackTime = time.Now()
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	writeTime := time.Now()
	require.NoError(t, os.WriteFile(testFile, []byte("; changed"), 0644))

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	latency := callbackTime.Sub(writeTime)
	mu.Unlock()

	assert.Positive(t, latency)
	assert.Less(t, latency, 250*time.Millisecond, "callback latency %v", latency)
	t.Logf("Callback latency: %v", latency)
}

func TestWatcher_StopCleanup(t *testing.T) {
	// After Stop(), no more callbacks fire.
	dir := t.TempDir()

	w, err := NewWatcher(nil, nil)
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	err = w.Watch(dir, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	os.WriteFile(filepath.Join(dir, "after_stop.pddl"), []byte("; nope"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.Zero(t, callCount, "callbacks fired after Stop()")
	mu.Unlock()

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := NewWatcher(nil, nil)
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing"), func(string) {}))
}
