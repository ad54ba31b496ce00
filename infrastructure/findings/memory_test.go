package findings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkscope-backend/domain/core/entities"
)

func testFinding(id string) entities.Finding {
	return entities.Finding{
		ID:      id,
		Kind:    entities.FindingUsernameScan,
		Payload: map[string]any{"username": "jdoe42"},
	}
}

func TestMemorySourceListIsEmptyByDefault(t *testing.T) {
	m := NewMemorySource(zap.NewNop())

	findings, err := m.List(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestMemorySourceAppendAndList(t *testing.T) {
	m := NewMemorySource(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, "inv-1", []entities.Finding{testFinding("f1")}))
	require.NoError(t, m.Append(ctx, "inv-1", []entities.Finding{testFinding("f2")}))
	require.NoError(t, m.Append(ctx, "inv-2", []entities.Finding{testFinding("f3")}))

	findings, err := m.List(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "f1", findings[0].ID)
	assert.Equal(t, "f2", findings[1].ID)

	other, err := m.List(ctx, "inv-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestMemorySourceListReturnsCopy(t *testing.T) {
	m := NewMemorySource(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, "inv-1", []entities.Finding{testFinding("f1")}))

	first, err := m.List(ctx, "inv-1")
	require.NoError(t, err)
	first[0].ID = "mutated"

	second, err := m.List(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "f1", second[0].ID)
}

func TestMemorySourceAppendNotifiesSubscribers(t *testing.T) {
	m := NewMemorySource(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := m.Changes(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Append(ctx, "inv-1", []entities.Finding{testFinding("f1")}))

	select {
	case note := <-changes:
		assert.Equal(t, "inv-1", note.InvestigationID)
	case <-time.After(time.Second):
		t.Fatal("no change notification received")
	}
}

func TestMemorySourceChangesCloseOnCancel(t *testing.T) {
	m := NewMemorySource(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := m.Changes(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok, "channel closes on cancellation")
	case <-time.After(time.Second):
		t.Fatal("channel did not close")
	}
}

func TestMemorySourceFullSubscriberDoesNotBlockAppend(t *testing.T) {
	m := NewMemorySource(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := m.Changes(ctx)
	require.NoError(t, err)

	// Nobody drains the subscription. Appends past the buffer drop
	// notifications instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = m.Append(ctx, "inv-1", []entities.Finding{testFinding("f")})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append blocked on a full subscriber")
	}
}
