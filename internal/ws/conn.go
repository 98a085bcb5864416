package ws

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
	// maxBadFrames consecutive undecodable frames close the connection.
	maxBadFrames = 16
)

// MessageLimiter decides whether a frame from ip may be processed.
type MessageLimiter interface {
	MessageAllowed(ip string) bool
}

// ConnStats counts frames on one connection.
type ConnStats struct {
	Received uint64 `json:"received"`
	Sent     uint64 `json:"sent"`
	Dropped  uint64 `json:"dropped"`
	Limited  uint64 `json:"limited"`
}

type Conn struct {
	ws      *websocket.Conn
	codec   Codec
	limiter MessageLimiter

	sendCh chan []byte
	done   chan struct{}
	once   sync.Once

	ID       string
	Nickname string
	Preset   string
	IP       string

	received, sent, dropped, limited atomic.Uint64
}

func NewConn(ws *websocket.Conn, id string, ip string, codec Codec, limiter MessageLimiter) *Conn {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Conn{
		ws:      ws,
		codec:   codec,
		limiter: limiter,
		sendCh:  make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		ID:      id,
		IP:      ip,
	}
}

func (c *Conn) Codec() Codec { return c.codec }

func (c *Conn) Stats() ConnStats {
	return ConnStats{
		Received: c.received.Load(),
		Sent:     c.sent.Load(),
		Dropped:  c.dropped.Load(),
		Limited:  c.limited.Load(),
	}
}

// Send queues msg for the write loop. A slow client loses frames rather than
// stalling the game loop.
func (c *Conn) Send(msg Message) {
	data, err := c.codec.Encode(msg)
	if err != nil {
		log.Printf("conn %s: encode 0x%02x: %v", c.ID, msg.Type, err)
		return
	}
	select {
	case c.sendCh <- data:
	case <-c.done:
	default:
		if c.dropped.Add(1)%sendBuffer == 1 {
			log.Printf("conn %s: send buffer full, dropping frames (%d so far)", c.ID, c.dropped.Load())
		}
	}
}

// ReadLoop decodes incoming frames until the socket fails or ctx ends. The
// returned channel closes when reading stops.
func (c *Conn) ReadLoop(ctx context.Context) <-chan Inbound {
	ch := make(chan Inbound, sendBuffer)
	go func() {
		defer close(ch)
		bad := 0
		for {
			_, data, err := c.ws.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					log.Printf("conn %s: read error: %v", c.ID, err)
				}
				c.Close()
				return
			}
			c.received.Add(1)
			if c.limiter != nil && !c.limiter.MessageAllowed(c.IP) {
				c.limited.Add(1)
				continue
			}
			msg, err := c.codec.Decode(data)
			if err != nil {
				if bad++; bad >= maxBadFrames {
					log.Printf("conn %s: too many bad frames, last: %v", c.ID, err)
					c.CloseWith(websocket.StatusUnsupportedData, "bad frames")
					return
				}
				continue
			}
			bad = 0
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (c *Conn) WriteLoop(ctx context.Context) {
	for {
		select {
		case data := <-c.sendCh:
			if err := c.write(ctx, data); err != nil {
				log.Printf("conn %s: write error: %v", c.ID, err)
				c.Close()
				return
			}
			c.sent.Add(1)
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, c.codec.Frame(), data)
}

// Close closes the socket normally.
func (c *Conn) Close() {
	c.CloseWith(websocket.StatusNormalClosure, "")
}

// CloseWith closes the socket with the given status. Only the first close
// takes effect.
func (c *Conn) CloseWith(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(code, reason)
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}
