package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkscope-backend/domain/services"
)

type tuningRecorder struct {
	mu      sync.Mutex
	applied []services.Tuning
}

func (r *tuningRecorder) apply(t services.Tuning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, t)
}

func (r *tuningRecorder) last() (services.Tuning, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.applied) == 0 {
		return services.Tuning{}, 0
	}
	return r.applied[len(r.applied)-1], len(r.applied)
}

func startWatcher(t *testing.T, path string, rec *tuningRecorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewTuningWatcher(path, rec.apply, zap.NewNop()).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the directory watch a moment to attach before the test writes.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcherAppliesValidUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repulsion: 8000\n"), 0o600))

	rec := &tuningRecorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.WriteFile(path, []byte("repulsion: 9500\n"), 0o600))

	require.Eventually(t, func() bool {
		tuning, n := rec.last()
		return n > 0 && tuning.Repulsion == 9500
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcherKeepsLastGoodOnInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repulsion: 8000\n"), 0o600))

	rec := &tuningRecorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.WriteFile(path, []byte("damping: 7\n"), 0o600))

	// The invalid file never reaches the callback.
	time.Sleep(500 * time.Millisecond)
	_, n := rec.last()
	assert.Equal(t, 0, n)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repulsion: 8000\n"), 0o600))

	rec := &tuningRecorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("repulsion: 1\n"), 0o600))

	time.Sleep(500 * time.Millisecond)
	_, n := rec.last()
	assert.Equal(t, 0, n)
}
