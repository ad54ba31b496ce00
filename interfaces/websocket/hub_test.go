package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkscope-backend/application/queries/models"
	"linkscope-backend/domain/core/valueobjects"
	"linkscope-backend/domain/services"
)

func dialTestClient(t *testing.T, server *httptest.Server, investigationID string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?investigation=" + investigationID
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, investigationID string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(investigationID) == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSRequiresInvestigationParam(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(ServeWS(hub, zap.NewNop()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestPublishFrameReachesSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(ServeWS(hub, zap.NewNop()))
	defer server.Close()

	conn := dialTestClient(t, server, "inv-1")
	waitForSubscribers(t, hub, "inv-1", 1)

	hub.PublishFrame("inv-1", &models.RenderFrame{
		InvestigationID: "inv-1",
		Sequence:        7,
		Mode:            "idle",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string             `json:"type"`
		Data models.RenderFrame `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, "frame", env.Type)
	assert.Equal(t, "inv-1", env.Data.InvestigationID)
	assert.Equal(t, uint64(7), env.Data.Sequence)
}

func TestPublishPivotReachesSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(ServeWS(hub, zap.NewNop()))
	defer server.Close()

	conn := dialTestClient(t, server, "inv-1")
	waitForSubscribers(t, hub, "inv-1", 1)

	hub.PublishPivot("inv-1", services.PivotEvent{
		Kind:  valueobjects.KindEmail,
		Value: "jane@example.com",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string             `json:"type"`
		Data services.PivotEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, "pivot", env.Type)
	assert.Equal(t, "jane@example.com", env.Data.Value)
}

func TestBroadcastIsScopedToInvestigation(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(ServeWS(hub, zap.NewNop()))
	defer server.Close()

	watching := dialTestClient(t, server, "inv-1")
	other := dialTestClient(t, server, "inv-2")
	waitForSubscribers(t, hub, "inv-1", 1)
	waitForSubscribers(t, hub, "inv-2", 1)

	hub.PublishFrame("inv-1", &models.RenderFrame{InvestigationID: "inv-1"})

	watching.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := watching.ReadMessage()
	require.NoError(t, err)

	// The other investigation's subscriber sees nothing.
	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestDisconnectRemovesSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(ServeWS(hub, zap.NewNop()))
	defer server.Close()

	conn := dialTestClient(t, server, "inv-1")
	waitForSubscribers(t, hub, "inv-1", 1)

	conn.Close()
	waitForSubscribers(t, hub, "inv-1", 0)
}

func TestPublishToEmptyHubIsNoOp(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.PublishFrame("nobody", &models.RenderFrame{InvestigationID: "nobody"})
	assert.Equal(t, 0, hub.SubscriberCount("nobody"))
}
