package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vladimirvolkov/penalty/internal/ws"
)

// StartPayload tells the client how to draw the pitch for this preset.
type StartPayload struct {
	Name            string  `json:"name" msgpack:"name"`
	Preset          string  `json:"preset" msgpack:"preset"`
	FieldWidth      float64 `json:"fieldWidth" msgpack:"fieldWidth"`
	FieldHeight     float64 `json:"fieldHeight" msgpack:"fieldHeight"`
	Goal            Rect    `json:"goal" msgpack:"goal"`
	BallStart       Vec2    `json:"ballStart" msgpack:"ballStart"`
	BallRadius      float64 `json:"ballRadius" msgpack:"ballRadius"`
	CurveRadius     float64 `json:"curveRadius" msgpack:"curveRadius"`
	SaveRadius      float64 `json:"saveRadius" msgpack:"saveRadius"`
	MaxPower        float64 `json:"maxPower" msgpack:"maxPower"`
	MaxRounds       int     `json:"maxRounds" msgpack:"maxRounds"`
	AimRequiresGoal bool    `json:"aimRequiresGoal" msgpack:"aimRequiresGoal"`
	TickRate        int     `json:"tickRate" msgpack:"tickRate"`
}

func startPayload(name string, cfg Config) StartPayload {
	return StartPayload{
		Name:            name,
		Preset:          cfg.Name,
		FieldWidth:      cfg.FieldWidth,
		FieldHeight:     cfg.FieldHeight,
		Goal:            cfg.Goal,
		BallStart:       cfg.BallStart,
		BallRadius:      cfg.BallRadius,
		CurveRadius:     cfg.CurveRadius,
		SaveRadius:      cfg.SaveRadius,
		MaxPower:        cfg.MaxPower,
		MaxRounds:       cfg.MaxRounds,
		AimRequiresGoal: cfg.AimRequiresGoal,
		TickRate:        cfg.TickRate,
	}
}

// Session hosts one practice match for one connection. Inputs arrive on the
// read goroutine and are queued; the game loop drains them before each tick
// so the Match only ever runs on the loop goroutine.
type Session struct {
	conn  *ws.Conn
	match *Match

	inputs  []ws.Inbound
	inputMu sync.Mutex

	pending []Event

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(conn *ws.Conn, cfg Config, rng RandomSource) *Session {
	s := &Session{
		conn:  conn,
		match: NewMatch(cfg, rng),
	}
	s.match.Subscribe(func(ev Event) {
		s.pending = append(s.pending, ev)
	})
	return s
}

func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.conn.Send(ws.NewMessage(ws.MsgMatchStart, 0, startPayload(s.conn.Nickname, s.match.Config())))

	go s.readLoop(ctx)

	// Start game loop (closes done channel on exit)
	go func() {
		s.gameLoop(ctx)
		s.match.Close()
		close(s.done)
	}()
}

// Done returns a channel that closes when the session's game loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) readLoop(ctx context.Context) {
	msgs := s.conn.ReadLoop(ctx)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("session %s: disconnected", s.conn.ID)
				s.cancel()
				return
			}
			s.inputMu.Lock()
			s.inputs = append(s.inputs, msg)
			s.inputMu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) pong(msg ws.Inbound) {
	var ping ws.PingPayload
	if err := msg.Bind(&ping); err != nil {
		return
	}
	s.conn.Send(ws.NewMessage(ws.MsgPong, s.match.Snapshot().Tick, ws.PongPayload{
		ClientTime: ping.ClientTime,
		ServerTime: uint64(time.Now().UnixMilli()),
	}))
}

// apply feeds one client message to the match.
func (s *Session) apply(msg ws.Inbound) {
	switch msg.Type {
	case ws.MsgAimBegin, ws.MsgAimMove:
		var p ws.PointerPayload
		if err := msg.Bind(&p); err != nil {
			log.Printf("session %s: bad pointer payload: %v", s.sessionID(), err)
			return
		}
		pos := Vec2{X: p.X, Y: p.Y}
		if !pos.Finite() {
			log.Printf("session %s: dropping non-finite pointer %v", s.sessionID(), pos)
			return
		}
		if msg.Type == ws.MsgAimBegin {
			s.match.AimBegin(pos)
		} else {
			s.match.AimMove(pos)
		}
	case ws.MsgAimEnd:
		s.match.AimEnd()
	case ws.MsgRestart:
		s.match.Restart()
	case ws.MsgPing:
		s.pong(msg)
	}
}

func (s *Session) sessionID() string {
	if s.conn == nil {
		return "-"
	}
	return s.conn.ID
}

func (s *Session) gameLoop(ctx context.Context) {
	step := time.Duration(float64(time.Second) * s.match.Config().StepSeconds())
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			s.tick(now.Sub(last).Seconds())
			last = now
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) tick(dt float64) {
	s.inputMu.Lock()
	inputs := s.inputs
	s.inputs = nil
	s.inputMu.Unlock()

	for _, in := range inputs {
		s.apply(in)
	}
	s.match.Tick(dt)

	s.flushEvents()
	s.broadcastState()
}

func (s *Session) flushEvents() {
	for _, ev := range s.pending {
		s.conn.Send(ws.NewMessage(ws.MsgMatchEvent, ev.Tick, ev))
	}
	s.pending = s.pending[:0]
}

func (s *Session) broadcastState() {
	snap := s.match.Snapshot()
	s.conn.Send(ws.NewMessage(ws.MsgMatchState, snap.Tick, snap))
}
