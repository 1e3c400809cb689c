package inspect

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fluxion/pkg/fluxion"
)

func readStreamMessage(t *testing.T, conn *websocket.Conn) streamMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read stream message: %v", err)
	}
	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode stream message: %v", err)
	}
	return msg
}

func TestWebSocketStream(t *testing.T) {
	ins := New(Options{})
	defer ins.Close()

	rt := fluxion.New()
	ins.Attach(rt)

	count := fluxion.CreateSignal(rt, 0)
	fluxion.CreateEffect(rt, func() { count.Get() })

	srv := httptest.NewServer(ins.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := readStreamMessage(t, conn)
	if hello.Type != "hello" {
		t.Fatalf("expected hello message first, got %q", hello.Type)
	}
	if hello.Stats == nil {
		t.Fatal("expected hello message to carry a stats snapshot")
	}

	count.Set(1)

	flush := readStreamMessage(t, conn)
	if flush.Type != "flush" {
		t.Fatalf("expected flush message, got %q", flush.Type)
	}
	if flush.Flush == nil || flush.Flush.Seq != 1 {
		t.Fatalf("expected flush seq 1, got %+v", flush.Flush)
	}
	if flush.Flush.EffectRuns != 1 {
		t.Errorf("expected 1 effect run in flush record, got %d", flush.Flush.EffectRuns)
	}
}

func TestWebSocketClientCountedInStats(t *testing.T) {
	ins := New(Options{})
	defer ins.Close()

	srv := httptest.NewServer(ins.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The hello write happens after registration, so once it arrives the
	// client is visible in stats.
	hello := readStreamMessage(t, conn)
	if hello.Stats.StreamClients != 1 {
		t.Errorf("expected 1 stream client in hello stats, got %d", hello.Stats.StreamClients)
	}
	if got := ins.Stats().StreamClients; got != 1 {
		t.Errorf("expected 1 stream client, got %d", got)
	}
}
