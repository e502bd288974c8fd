package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vaanihq/vaani-core/core/events"
	"github.com/vaanihq/vaani-core/core/realtime"
)

func liveServer(t *testing.T, serve func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(server.Close)

	return server
}

func wsEndpoint(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestDialConfirmsSetupAndDeliversEvents(t *testing.T) {
	server := liveServer(t, func(conn *websocket.Conn) {
		var setup setupMessage
		if err := conn.ReadJSON(&setup); err != nil {
			t.Errorf("failed to read setup message: %v", err)
			return
		}
		if setup.Setup.Model != "models/test-live" {
			t.Errorf("unexpected model in setup: %q", setup.Setup.Model)
		}
		if setup.Setup.SystemInstruction == nil || setup.Setup.SystemInstruction.Parts[0].Text != "Be brief." {
			t.Errorf("expected the instruction in setup, got %+v", setup.Setup.SystemInstruction)
		}

		_ = conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}})
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	received := make(chan events.Event, 8)
	dialer := NewDialer(WithAPIKey("test-key"), WithEndpoint(wsEndpoint(server)))

	session, err := dialer.Dial(context.Background(), realtime.SessionConfig{
		Model:       "models/test-live",
		Instruction: "Be brief.",
	}, func(event events.Event) { received <- event })
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer session.Close()

	select {
	case event := <-received:
		if _, ok := event.(events.TurnComplete); !ok {
			t.Fatalf("expected a turn completion event, got %T", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the translated event")
	}
}

func TestDialTimesOutWithoutSetupConfirmation(t *testing.T) {
	server := liveServer(t, func(conn *websocket.Conn) {
		// Accept the socket, read the setup, confirm nothing.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	dialer := NewDialer(WithAPIKey("test-key"), WithEndpoint(wsEndpoint(server)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := dialer.Dial(ctx, realtime.SessionConfig{}, nil)
	if err == nil {
		t.Fatal("expected dial to fail when setup is never confirmed")
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("dial blocked for %v instead of honoring the context", elapsed)
	}
}
