package findings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkscope-backend/domain/core/entities"
	"linkscope-backend/pkg/errors"
)

func TestHTTPSourceListDecodesFindings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/investigations/inv-1/findings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]entities.Finding{
			{ID: "f1", Kind: entities.FindingUsernameScan, Payload: map[string]any{"username": "jdoe42"}},
		})
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, time.Second, 5, zap.NewNop())

	findings, err := source.List(context.Background(), "inv-1")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "f1", findings[0].ID)
	assert.Equal(t, entities.FindingUsernameScan, findings[0].Kind)
}

func TestHTTPSourceNotFoundMeansEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, time.Second, 5, zap.NewNop())

	findings, err := source.List(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestHTTPSourceUpstreamErrorIsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, time.Second, 5, zap.NewNop())

	_, err := source.List(context.Background(), "inv-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
}

func TestHTTPSourceBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, time.Second, 2, zap.NewNop())
	ctx := context.Background()

	_, err := source.List(ctx, "inv-1")
	require.Error(t, err)
	_, err = source.List(ctx, "inv-1")
	require.Error(t, err)

	// The breaker is open now; calls fail fast without reaching upstream.
	before := calls.Load()
	_, err = source.List(ctx, "inv-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnavailable))
	assert.Equal(t, before, calls.Load())
}

func TestHTTPSourceChangesCloseOnCancel(t *testing.T) {
	source := NewHTTPSource("http://localhost:0", time.Second, 5, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := source.Changes(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close")
	}
}
