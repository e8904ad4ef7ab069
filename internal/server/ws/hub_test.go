package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/polkiloo/courieragent/internal/metrics"
	"github.com/polkiloo/courieragent/internal/notify"
)

func startHub(t *testing.T) (*Hub, *metrics.Metrics, context.CancelFunc) {
	t.Helper()
	m := metrics.New()
	hub := NewHub(m, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub, m, cancel
}

func dial(t *testing.T, hub *Hub, topic string, onConnect func(*Client)) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := hub.ServeWS(w, r, topic)
		if err != nil {
			return
		}
		if onConnect != nil {
			onConnect(c)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, topic string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(topic) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients on %s, got %d", n, topic, hub.ClientCount(topic))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Data
}

func TestHubPublishesByTopic(t *testing.T) {
	hub, m, _ := startHub(t)
	feed := dial(t, hub, TopicFeed, nil)
	order := dial(t, hub, OrderTopic(42), nil)
	waitClients(t, hub, TopicFeed, 1)
	waitClients(t, hub, OrderTopic(42), 1)

	if got := testutil.ToFloat64(m.StreamClients); got != 2 {
		t.Fatalf("expected 2 stream clients, got %v", got)
	}

	if err := hub.Publish(OrderTopic(42), "order_updated", map[string]int{"orderId": 42}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	hub.ShowPopup(notify.Popup{ID: "p1", Kind: notify.KindOrder})

	typ, data := readMessage(t, order)
	if typ != "order_updated" || !strings.Contains(string(data), `"orderId":42`) {
		t.Fatalf("unexpected order frame %s %s", typ, data)
	}
	typ, data = readMessage(t, feed)
	if typ != TypePopup || !strings.Contains(string(data), `"id":"p1"`) {
		t.Fatalf("unexpected feed frame %s %s", typ, data)
	}

	if got := testutil.ToFloat64(m.TrackingEvents.WithLabelValues("order", "order_updated")); got != 1 {
		t.Fatalf("expected one order event counted, got %v", got)
	}
}

func TestHubInitialFrame(t *testing.T) {
	hub, _, _ := startHub(t)
	conn := dial(t, hub, OrderTopic(1), func(c *Client) {
		if err := c.Send("snapshot", map[string]string{"status": "PENDING"}); err != nil {
			t.Errorf("send: %v", err)
		}
	})

	typ, data := readMessage(t, conn)
	if typ != "snapshot" || !strings.Contains(string(data), "PENDING") {
		t.Fatalf("unexpected frame %s %s", typ, data)
	}
}

func TestHubMessageHandler(t *testing.T) {
	hub, _, _ := startHub(t)
	got := make(chan string, 1)
	hub.SetMessageHandler(func(c *Client, msgType string, data json.RawMessage) error {
		var body struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(data, &body)
		got <- msgType + ":" + body.ID
		return nil
	})

	conn := dial(t, hub, TopicFeed, nil)
	if err := conn.WriteJSON(map[string]any{"type": TypeDismiss, "data": map[string]string{"id": "p9"}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case v := <-got:
		if v != "dismiss:p9" {
			t.Fatalf("unexpected frame %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, m, _ := startHub(t)
	conn := dial(t, hub, TopicFeed, nil)
	waitClients(t, hub, TopicFeed, 1)

	_ = conn.Close()
	waitClients(t, hub, TopicFeed, 0)
	if got := testutil.ToFloat64(m.StreamClients); got != 0 {
		t.Fatalf("expected gauge back to 0, got %v", got)
	}
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub, _, cancel := startHub(t)
	conn := dial(t, hub, TopicFeed, nil)
	waitClients(t, hub, TopicFeed, 1)

	cancel()
	<-hub.done

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed")
	}
	if err := hub.Publish(TopicFeed, "x", nil); err != nil {
		t.Fatalf("publish after stop must not fail, got %v", err)
	}
}

func TestOrderTopic(t *testing.T) {
	if OrderTopic(7) != "order:7" || streamLabel(OrderTopic(7)) != "order" || streamLabel(TopicFeed) != TopicFeed {
		t.Fatal("unexpected topic naming")
	}
}
