package api

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitTimeout() <-chan time.Time {
	return time.After(time.Second)
}

// ════════════════════════════════════════════════════════════════════
// WebSocket Hub tests
// ════════════════════════════════════════════════════════════════════

func TestWSHub_NewWSHub(t *testing.T) {
	hub := NewWSHub()
	if hub == nil {
		t.Fatal("NewWSHub returned nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount: got %d, want 0", hub.ClientCount())
	}
}

func TestWSHub_RegisterAndUnregister(t *testing.T) {
	hub := NewWSHub()
	client := &WSClient{hub: hub, send: make(chan WSMessage, 256)}

	hub.Register(client)
	if hub.ClientCount() != 1 {
		t.Errorf("after register: ClientCount=%d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("after unregister: ClientCount=%d, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}

	// A second unregister is a no-op.
	hub.Unregister(client)
}

func TestWSHub_Broadcast(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client1 := &WSClient{hub: hub, send: make(chan WSMessage, 256)}
	client2 := &WSClient{hub: hub, send: make(chan WSMessage, 256)}
	hub.Register(client1)
	hub.Register(client2)

	hub.Broadcast(WSMessage{Type: "test", Data: "hello"})

	for i, c := range []*WSClient{client1, client2} {
		select {
		case got := <-c.send:
			if got.Type != "test" {
				t.Errorf("client%d got type=%q, want 'test'", i+1, got.Type)
			}
		case <-waitTimeout():
			t.Errorf("client%d did not receive message", i+1)
		}
	}

	hub.Unregister(client1)
	hub.Unregister(client2)
}

func TestWSHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewWSHub()

	// No Run loop: the broadcast buffer fills and further messages drop.
	done := make(chan bool)
	go func() {
		for i := 0; i < 300; i++ {
			hub.Broadcast(WSMessage{Type: "test"})
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked when buffer was full")
	}
}

func TestWSHub_SlowClientDisconnected(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	slow := &WSClient{hub: hub, send: make(chan WSMessage)} // unbuffered, never read
	hub.Register(slow)
	hub.Broadcast(WSMessage{Type: "test"})

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Error("slow client was not removed")
	}
}

func TestWSHub_Send(t *testing.T) {
	hub := NewWSHub()
	client := &WSClient{hub: hub, send: make(chan WSMessage, 1)}

	if hub.Send(client, WSMessage{Type: "x"}) {
		t.Error("Send to unregistered client should fail")
	}

	hub.Register(client)
	if !hub.Send(client, WSMessage{Type: "x"}) {
		t.Error("Send to registered client failed")
	}
	if hub.Send(client, WSMessage{Type: "y"}) {
		t.Error("Send to full buffer should fail")
	}

	hub.Unregister(client)
	if hub.Send(client, WSMessage{Type: "z"}) {
		t.Error("Send after unregister should fail")
	}
}

func TestWSHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	var wg sync.WaitGroup
	numClients := 50

	clients := make([]*WSClient, numClients)
	for i := 0; i < numClients; i++ {
		clients[i] = &WSClient{hub: hub, send: make(chan WSMessage, 256)}
	}

	// Register all concurrently
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(c *WSClient) {
			defer wg.Done()
			hub.Register(c)
			hub.Broadcast(WSMessage{Type: "join"})
		}(clients[i])
	}
	wg.Wait()

	if count := hub.ClientCount(); count != numClients {
		t.Errorf("after all registered: ClientCount=%d, want %d", count, numClients)
	}

	// Unregister all concurrently
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(c *WSClient) {
			defer wg.Done()
			hub.Unregister(c)
		}(clients[i])
	}
	wg.Wait()

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("after all unregistered: ClientCount=%d, want 0", count)
	}
}

func TestWSHub_MultipleMessages(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 256)}
	hub.Register(client)

	for i := 1; i <= 3; i++ {
		hub.Broadcast(WSMessage{Type: fmt.Sprintf("type%d", i)})
	}

	for i := 1; i <= 3; i++ {
		select {
		case m := <-client.send:
			if want := fmt.Sprintf("type%d", i); m.Type != want {
				t.Errorf("msg[%d].Type: got %q, want %q", i, m.Type, want)
			}
		case <-waitTimeout():
			t.Fatalf("message %d not received", i)
		}
	}

	hub.Unregister(client)
}

// ════════════════════════════════════════════════════════════════════
// WSMessage JSON tests
// ════════════════════════════════════════════════════════════════════

func TestWSMessageJSON_NoData(t *testing.T) {
	data, err := json.Marshal(WSMessage{Type: "pong"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"pong"}` {
		t.Errorf("got %s", data)
	}
}

// ════════════════════════════════════════════════════════════════════
// Live preview over a real connection
// ════════════════════════════════════════════════════════════════════

func dialPreview(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := testServer(t)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type previewReply struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestWebSocketPreview(t *testing.T) {
	conn := dialPreview(t)

	req := map[string]interface{}{
		"type": "preview",
		"data": map[string]interface{}{"text": "x @graph[1,2];{T} y"},
	}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reply previewReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "preview" {
		t.Fatalf("type: got %q, data %s", reply.Type, reply.Data)
	}
	var out RenderResponse
	if err := json.Unmarshal(reply.Data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Rendered != 1 || !strings.HasPrefix(out.Output, "x <svg") || !strings.HasSuffix(out.Output, "</svg> y") {
		t.Errorf("preview = %+v", out)
	}
}

func TestWebSocketPingAndErrors(t *testing.T) {
	conn := dialPreview(t)

	tests := []struct {
		send string
		want string
	}{
		{`{"type":"ping"}`, "pong"},
		{`not json`, "error"},
		{`{"type":"subscribe"}`, "error"},
		{`{"type":"preview","data":"text"}`, "error"},
	}
	for _, tt := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.send)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var reply previewReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		if reply.Type != tt.want {
			t.Errorf("%s: got type %q, want %q", tt.send, reply.Type, tt.want)
		}
	}
}
