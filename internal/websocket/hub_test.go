package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvhealth/internal/operations"
)

type stubConnection struct {
	closed chan struct{}
}

func newStubConnection() *stubConnection {
	return &stubConnection{closed: make(chan struct{})}
}

func (s *stubConnection) ReadMessage() (int, []byte, error) {
	<-s.closed
	return 0, nil, assert.AnError
}

func (s *stubConnection) WriteMessage(messageType int, data []byte) error { return nil }
func (s *stubConnection) SetReadLimit(limit int64)                        {}
func (s *stubConnection) SetReadDeadline(t time.Time) error               { return nil }
func (s *stubConnection) SetWriteDeadline(t time.Time) error              { return nil }
func (s *stubConnection) SetPongHandler(h func(string) error)             {}
func (s *stubConnection) RemoteAddr() string                              { return "127.0.0.1:12345" }

func (s *stubConnection) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func registerClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClientWithConnection(hub, newStubConnection(), "", testLogger())
	hub.register <- client

	// First message on the send channel is the connection ack
	select {
	case msg := <-client.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		require.Equal(t, TypeConnection, env.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for connection ack")
	}
	return client
}

func receive(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case msg := <-client.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return Envelope{}
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := registerClient(t, hub)

	hub.BroadcastEvent("test", map[string]interface{}{"k": "v"})

	env := receive(t, client)
	assert.Equal(t, "test", env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "v", data["k"])
	assert.NotEmpty(t, env.Timestamp)
}

func TestHub_RunStatusChanged(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := registerClient(t, hub)

	hub.RunStatusChanged("run-9", operations.RunStatusRunning)

	env := receive(t, client)
	assert.Equal(t, TypeRunStatus, env.Type)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "run-9", data["run_id"])
	assert.Equal(t, "running", data["status"])
}

func TestHub_StepStatusChanged(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := registerClient(t, hub)

	step := operations.NewStepState("profile", "Profile quality")
	step.Start()
	hub.StepStatusChanged("run-9", step)

	env := receive(t, client)
	assert.Equal(t, TypeStepStatus, env.Type)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "profile", data["step"])
	assert.Equal(t, "active", data["status"])
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	client := registerClient(t, hub)

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	// Channel closed by the hub
	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Start()
	defer hub.Stop()

	first := registerClient(t, hub)
	second := registerClient(t, hub)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	hub.RunStatusChanged("run-1", operations.RunStatusCompleted)

	for _, client := range []*Client{first, second} {
		env := receive(t, client)
		assert.Equal(t, TypeRunStatus, env.Type)
	}
}
