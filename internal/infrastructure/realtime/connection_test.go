package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialConnection upgrades a loopback websocket and wraps its server side.
func dialConnection(t *testing.T, userID string) *Connection {
	t.Helper()

	connCh := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- NewConnection(userID, ws)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-connCh:
		return conn
	case <-time.After(time.Second):
		t.Fatal("server side never upgraded")
		return nil
	}
}

func TestSendAfterCloseErrorsWithoutPanic(t *testing.T) {
	conn := dialConnection(t, "patient-1")
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "done")

	for i := 0; i < 1000; i++ {
		if err := conn.Send([]byte("late")); err == nil {
			t.Fatal("expected error sending on a closed connection")
		}
	}
}

func TestConcurrentSendAndCloseDoNotPanic(t *testing.T) {
	conn := dialConnection(t, "patient-1")
	conn.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				_ = conn.Send([]byte("payload"))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn.Close(websocket.CloseGoingAway, "racing close")
	}()
	wg.Wait()
}

func TestCloseIsIdempotent(t *testing.T) {
	conn := dialConnection(t, "patient-1")
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "first")
	conn.Close(websocket.CloseNormalClosure, "second")
}
