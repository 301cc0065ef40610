package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func testClient(h *Hub, projectID, userID int64, username string) *Client {
	return &Client{ID: uuid.New(), ProjectID: projectID, UserID: userID, Username: username, hub: h, send: make(chan []byte, clientSendSize)}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func TestHub_PublishReachesOnlyProjectRoom(t *testing.T) {
	h := startHub(t)
	a := testClient(h, 1, 10, "ada")
	b := testClient(h, 1, 11, "grace")
	other := testClient(h, 2, 12, "linus")
	for _, c := range []*Client{a, b, other} {
		require.True(t, h.Register(c))
	}
	drain(a)
	drain(b)
	drain(other)

	h.Publish(1, 10, EventProjectUpdated, map[string]int{"files": 3})

	for _, c := range []*Client{a, b} {
		ev := receive(t, c)
		assert.Equal(t, EventProjectUpdated, ev.Type)
		assert.Equal(t, int64(1), ev.ProjectID)
		assert.Equal(t, int64(10), ev.ActorID)
		assert.JSONEq(t, `{"files":3}`, string(ev.Payload))
	}
	select {
	case <-other.send:
		t.Fatal("event leaked into another project")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PresenceOnJoinAndLeave(t *testing.T) {
	h := startHub(t)
	a := testClient(h, 1, 10, "ada")
	b := testClient(h, 1, 11, "grace")

	require.True(t, h.Register(a))
	ev := receive(t, a)
	assert.Equal(t, EventPresence, ev.Type)

	require.True(t, h.Register(b))
	ev = receive(t, a)
	assert.JSONEq(t, `{"users":[{"id":10,"username":"ada"},{"id":11,"username":"grace"}]}`, string(ev.Payload))
	drain(b)

	h.Unregister(b)
	ev = receive(t, a)
	assert.JSONEq(t, `{"users":[{"id":10,"username":"ada"}]}`, string(ev.Payload))

	_, open := <-b.send
	assert.False(t, open)
}

func TestHub_DisconnectClosesUserConnections(t *testing.T) {
	h := startHub(t)
	a := testClient(h, 1, 10, "ada")
	b := testClient(h, 1, 11, "grace")
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))
	drain(a)
	drain(b)

	h.Disconnect(1, 11)

	ev := receive(t, a)
	assert.Equal(t, EventPresence, ev.Type)
	_, open := <-b.send
	assert.False(t, open)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	a := testClient(h, 1, 10, "ada")
	require.True(t, h.Register(a))
	drain(a)

	cancel()
	<-h.Done()

	_, open := <-a.send
	assert.False(t, open)
	assert.False(t, h.Register(testClient(h, 1, 11, "grace")))
	h.Publish(1, 10, EventProjectUpdated, nil)
}

func TestClient_ServeOverWebsocket(t *testing.T) {
	h := startHub(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(h, conn, 5, 20, "ada").Serve()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventPresence, ev.Type)

	h.Publish(5, 21, EventFileEditing, map[string]int64{"fileId": 3})
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventFileEditing, ev.Type)
	assert.Equal(t, int64(5), ev.ProjectID)
}
