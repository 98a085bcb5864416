package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/vladimirvolkov/penalty/internal/middleware"
)

const (
	defaultMaxSessions = 100
	defaultNickname    = "Player"
	maxNicknameRunes   = 12
	// Pointer frames are tiny; anything bigger is abuse.
	readLimit = 1024
)

func allowedNicknameRune(r rune) bool {
	switch {
	case r < utf8.RuneSelf:
		return r == '_' || r == '-' || r == ' ' ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
	default:
		return unicode.In(r, unicode.Cyrillic)
	}
}

// sanitizeNickname keeps allowed runes and caps the length; anything shorter
// than two runes becomes the default name.
func sanitizeNickname(raw string) string {
	if !utf8.ValidString(raw) {
		return defaultNickname
	}
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if !allowedNicknameRune(r) {
			continue
		}
		if n == maxNicknameRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	if n < 2 {
		return defaultNickname
	}
	return b.String()
}

// joinRequest holds the query parameters of a /ws request.
type joinRequest struct {
	Nickname string
	Codec    Codec
	Preset   string
}

func parseJoin(r *http.Request) joinRequest {
	q := r.URL.Query()
	return joinRequest{
		Nickname: sanitizeNickname(q.Get("name")),
		Codec:    CodecByName(q.Get("enc")),
		Preset:   q.Get("preset"),
	}
}

// SessionCreator starts a practice match for a freshly accepted connection.
// The session owns conn from then on.
type SessionCreator interface {
	CreateSession(conn *Conn) error
}

// HubStats holds live server metrics.
type HubStats struct {
	ActiveSessions   int64  `json:"activeSessions"`
	TotalConnections uint64 `json:"totalConnections"`
	Rejected         uint64 `json:"rejected"`
}

type Hub struct {
	creator SessionCreator

	activeSessions   atomic.Int64
	totalConnections atomic.Uint64
	rejected         atomic.Uint64
	maxSessions      int64

	limiter        *middleware.IPRateLimiter
	originPatterns []string
}

func NewHub(creator SessionCreator, limiter *middleware.IPRateLimiter, originPatterns []string) *Hub {
	return &Hub{
		creator:        creator,
		limiter:        limiter,
		originPatterns: originPatterns,
		maxSessions:    defaultMaxSessions,
	}
}

// SetMaxSessions caps concurrently running sessions; n <= 0 keeps the default.
func (h *Hub) SetMaxSessions(n int) {
	if n > 0 {
		h.maxSessions = int64(n)
	}
}

// Stats returns a snapshot of current server metrics.
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveSessions:   h.activeSessions.Load(),
		TotalConnections: h.totalConnections.Load(),
		Rejected:         h.rejected.Load(),
	}
}

// SessionEnded decrements the active session counter. Call when a session
// goroutine exits.
func (h *Hub) SessionEnded() {
	h.activeSessions.Add(-1)
}

func (h *Hub) releaseIP(ip string) {
	if h.limiter != nil {
		h.limiter.Disconnect(ip)
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		h.rejected.Add(1)
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.releaseIP(ip)
		log.Printf("ws accept error from %s: %v", ip, err)
		return
	}
	socket.SetReadLimit(readLimit)

	join := parseJoin(r)
	conn := h.newConn(socket, ip, join)
	log.Printf("new connection: %s [%s] from %s enc=%s preset=%q (total: %d)",
		conn.ID, conn.Nickname, ip, join.Codec.Name(), join.Preset, h.totalConnections.Load())

	// The write loop outlives the request context.
	go conn.WriteLoop(context.Background())
	go func() {
		<-conn.Done()
		h.releaseIP(ip)
	}()

	if !h.startSession(conn) {
		return
	}

	// Keep the handler alive so the underlying TCP connection stays open.
	<-conn.Done()
	st := conn.Stats()
	log.Printf("connection closed: %s (in %d, out %d, dropped %d, limited %d)",
		conn.ID, st.Received, st.Sent, st.Dropped, st.Limited)
}

func (h *Hub) newConn(socket *websocket.Conn, ip string, join joinRequest) *Conn {
	h.totalConnections.Add(1)
	var limiter MessageLimiter
	if h.limiter != nil {
		limiter = h.limiter
	}
	conn := NewConn(socket, "player-"+uuid.NewString()[:8], ip, join.Codec, limiter)
	conn.Nickname = join.Nickname
	conn.Preset = join.Preset
	return conn
}

func (h *Hub) startSession(conn *Conn) bool {
	if h.activeSessions.Add(1) > h.maxSessions {
		h.activeSessions.Add(-1)
		h.rejected.Add(1)
		log.Printf("max sessions reached, rejecting %s", conn.ID)
		conn.CloseWith(websocket.StatusTryAgainLater, "server full")
		return false
	}
	if err := h.creator.CreateSession(conn); err != nil {
		h.activeSessions.Add(-1)
		h.rejected.Add(1)
		log.Printf("%s: cannot start session: %v", conn.ID, err)
		conn.CloseWith(websocket.StatusPolicyViolation, err.Error())
		return false
	}
	log.Printf("session started for %s [%s] (sessions: %d)", conn.ID, conn.Nickname, h.activeSessions.Load())
	return true
}
