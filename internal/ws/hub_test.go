package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/vladimirvolkov/penalty/internal/middleware"
)

// echoCreator greets each connection with its nickname and preset, then
// echoes inbound frame types back until the client leaves.
type echoCreator struct {
	hub    *Hub
	reject error
}

func (e *echoCreator) CreateSession(conn *Conn) error {
	if e.reject != nil {
		return e.reject
	}
	conn.Send(NewMessage(MsgMatchStart, 0, map[string]string{"name": conn.Nickname, "preset": conn.Preset}))
	go func() {
		defer e.hub.SessionEnded()
		for in := range conn.ReadLoop(context.Background()) {
			conn.Send(NewMessage(MsgMatchEvent, in.Tick, map[string]uint8{"echo": in.Type}))
		}
	}()
	return nil
}

func newHubServer(t *testing.T, limiter *middleware.IPRateLimiter, reject error) (*httptest.Server, *Hub) {
	t.Helper()
	creator := &echoCreator{reject: reject}
	hub := NewHub(creator, limiter, nil)
	creator.hub = hub
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialHub(ctx context.Context, srv *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	return websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+query, nil)
}

func TestHubMsgpackSession(t *testing.T) {
	srv, hub := newHubServer(t, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := dialHub(ctx, srv, "?enc=msgpack&name=Striker&preset=arcade")
	if err != nil {
		t.Fatal(err)
	}
	defer c.CloseNow()

	codec := MsgpackCodec{}
	typ, data, err := c.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if typ != websocket.MessageBinary {
		t.Fatalf("expected binary frame, got %v", typ)
	}
	in, err := codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	var hello map[string]string
	if err := in.Bind(&hello); err != nil {
		t.Fatal(err)
	}
	if in.Type != MsgMatchStart || hello["name"] != "Striker" || hello["preset"] != "arcade" {
		t.Errorf("unexpected greeting 0x%02x %v", in.Type, hello)
	}

	frame, err := codec.Encode(NewMessage(MsgAimEnd, 9, nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Write(ctx, websocket.MessageBinary, frame); err != nil {
		t.Fatal(err)
	}
	_, data, err = c.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	in, _ = codec.Decode(data)
	var echo map[string]uint8
	if err := in.Bind(&echo); err != nil {
		t.Fatal(err)
	}
	if echo["echo"] != MsgAimEnd || in.Tick != 9 {
		t.Errorf("unexpected echo %v tick %d", echo, in.Tick)
	}
	if st := hub.Stats(); st.ActiveSessions != 1 || st.TotalConnections != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestHubConnectionLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 10, time.Second)
	defer limiter.Close()
	srv, hub := newHubServer(t, limiter, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, _, err := dialHub(ctx, srv, "")
	if err != nil {
		t.Fatal(err)
	}
	defer first.CloseNow()

	_, resp, err := dialHub(ctx, srv, "")
	if err == nil {
		t.Fatal("second connection from the same IP should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", resp)
	}
	if hub.Stats().Rejected != 1 {
		t.Errorf("expected one rejection, got %+v", hub.Stats())
	}
}

func TestHubSessionCap(t *testing.T) {
	srv, hub := newHubServer(t, nil, nil)
	hub.SetMaxSessions(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, _, err := dialHub(ctx, srv, "")
	if err != nil {
		t.Fatal(err)
	}
	defer first.CloseNow()
	if _, _, err := first.Read(ctx); err != nil {
		t.Fatal(err)
	}

	second, _, err := dialHub(ctx, srv, "")
	if err != nil {
		t.Fatal(err)
	}
	defer second.CloseNow()
	_, _, err = second.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusTryAgainLater {
		t.Errorf("expected try-again-later close, got %v", err)
	}
}

func TestHubCreatorError(t *testing.T) {
	srv, hub := newHubServer(t, nil, errors.New("unknown preset"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := dialHub(ctx, srv, "?preset=ghost")
	if err != nil {
		t.Fatal(err)
	}
	defer c.CloseNow()
	_, _, err = c.Read(ctx)
	var ce websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != websocket.StatusPolicyViolation || ce.Reason != "unknown preset" {
		t.Errorf("expected policy violation with reason, got %v", err)
	}
	if hub.Stats().ActiveSessions != 0 {
		t.Errorf("rejected session should not count, got %+v", hub.Stats())
	}
}
