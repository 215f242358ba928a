package stream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

// fakeTokens maps a token to the user it belongs to.
type fakeTokens map[string]string

func (f fakeTokens) Validate(_ context.Context, token string) (string, error) {
	userID, ok := f[token]
	if !ok {
		return "", errors.New("token invalid")
	}
	return userID, nil
}

var testTokens = fakeTokens{"tok-1": "user-1", "tok-2": "user-2", "tok-3": "user-3"}

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil, nil), testTokens)

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/user-1?token=tok-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected 426 for non-websocket request, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersRejectUnauthenticated(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil, nil), testTokens)

	for _, target := range []string{
		"/stream/ws/user-1",
		"/stream/ws/user-1?token=bogus",
		"/stream/ws/user-1?token=tok-2",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("%s: request error: %v", target, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, resp.StatusCode)
		}
	}
}

func TestStreamHandlersRejectForeignDial(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	base := startApp(t, hub)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/stream/ws/user-1?token=tok-2", nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func startApp(t *testing.T, hub *Hub) string {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub, testTokens)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func TestStreamHandlersWebsocketEvent(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	base := startApp(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/stream/ws/user-1?token=tok-1", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// registration happens inside the upgraded handler
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients["user-1"])
		hub.mu.RUnlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(context.Background(), "user-1", []byte("hello"))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "hello" {
		t.Fatalf("unexpected message %q", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("client")); err != nil {
		t.Fatalf("write error: %v", err)
	}
}

func TestStreamHandlersWebsocketClose(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	base := startApp(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/stream/ws/user-3?token=tok-3", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	hub.Broadcast(context.Background(), "user-3", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
