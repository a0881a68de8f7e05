package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(id string, buffer int) *Client {
	return &Client{
		id:          id,
		send:        make(chan []byte, buffer),
		connectedAt: time.Now(),
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.ClientCount() == want
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubRegisterSendsConnectionMessage(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	client := testClient("c1", 8)
	hub.register <- client
	waitForClients(t, hub, 1)

	msg := receive(t, client)
	assert.Equal(t, TypeConnection, msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, "connected", data["status"])
	assert.Equal(t, "c1", data["client_id"])
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	client := testClient("c1", 8)
	hub.register <- client
	waitForClients(t, hub, 1)

	hub.unregister <- client
	waitForClients(t, hub, 0)

	// The send channel is closed; drain the connection message first.
	<-client.send
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	first := testClient("c1", 8)
	second := testClient("c2", 8)
	hub.register <- first
	hub.register <- second
	waitForClients(t, hub, 2)
	receive(t, first) // connection messages
	receive(t, second)

	hub.BroadcastDataUpdate(1185)

	for _, c := range []*Client{first, second} {
		msg := receive(t, c)
		assert.Equal(t, TypeDataUpdate, msg["type"])
		data := msg["data"].(map[string]interface{})
		assert.Equal(t, "refresh", data["action"])
		assert.Equal(t, float64(1185), data["rows"])
	}
}

func TestHubBroadcastStageStatus(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	client := testClient("c1", 8)
	hub.register <- client
	waitForClients(t, hub, 1)
	receive(t, client)

	hub.BroadcastStageStatus("pipeline", "running", "")

	msg := receive(t, client)
	assert.Equal(t, TypeStageStatus, msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, "pipeline", data["stage"])
	assert.Equal(t, "running", data["status"])
}

func TestHubBroadcastProgress(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	client := testClient("c1", 8)
	hub.register <- client
	waitForClients(t, hub, 1)
	receive(t, client)

	hub.BroadcastProgress("generate", 80, "writing raw files")

	msg := receive(t, client)
	assert.Equal(t, TypeProgress, msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, float64(80), data["progress"])
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	defer hub.Stop()

	slow := testClient("slow", 1) // connection message fills the buffer
	hub.register <- slow
	waitForClients(t, hub, 1)

	hub.BroadcastDataUpdate(1)
	waitForClients(t, hub, 0)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()

	client := testClient("c1", 8)
	hub.register <- client
	waitForClients(t, hub, 1)

	hub.Stop()
	assert.Equal(t, 0, hub.ClientCount())

	// Stop twice is safe.
	hub.Stop()
}

func TestHubStopWhileBroadcasting(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()

	for _, id := range []string{"c1", "c2", "c3"} {
		client := testClient(id, 1) // connection message fills the buffer
		hub.register <- client
	}
	waitForClients(t, hub, 3)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.BroadcastProgress("pipeline", i%100, "cleansing")
		}
	}()

	hub.Stop()
	<-done
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubStartIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	hub.Start()
	defer hub.Stop()

	client := testClient("c1", 8)
	hub.register <- client
	waitForClients(t, hub, 1)
}
