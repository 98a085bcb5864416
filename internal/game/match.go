package game

import (
	"log"
	"math"
)

// Match owns every piece of mutable game state and sequences
// aim → charge → shoot → resolve → next round. It is not safe for
// concurrent use: input calls and Tick must come from one goroutine.
type Match struct {
	cfg Config
	rng RandomSource

	phase   Phase
	ball    Ball
	keeper  Goalkeeper
	aim     *AimModel
	power   *PowerCharger
	referee Referee
	timer   roundTimer

	score   [2]int
	round   int
	tick    uint32
	acc     float64
	outcome Outcome

	listeners listenerSet
	closed    bool
}

// NewMatch starts a match in the ready phase of round 1. A nil rng gets a
// clock-seeded source.
func NewMatch(cfg Config, rng RandomSource) *Match {
	cfg = cfg.Normalize()
	if rng == nil {
		rng = NewRandomSource(0)
	}
	m := &Match{
		cfg:   cfg,
		rng:   rng,
		aim:   NewAimModel(cfg.CurveRadius),
		power: NewPowerCharger(cfg.PowerChargeSpeed, cfg.MaxPower),
		round: 1,
	}
	m.ball = NewBall(cfg)
	m.keeper = NewGoalkeeper(cfg)
	return m
}

// Subscribe registers fn for every event and returns a func that removes it.
func (m *Match) Subscribe(fn Listener) func() {
	return m.listeners.add(fn)
}

func (m *Match) emit(ev Event) {
	ev.Tick = m.tick
	m.listeners.emit(ev)
}

// AimBegin starts an aim gesture at pos. It is ignored unless the match is
// ready, and, for click-on-goal presets, unless pos is inside the goal.
func (m *Match) AimBegin(pos Vec2) bool {
	if m.closed || m.phase != PhaseReady || !pos.Finite() {
		return false
	}
	if m.cfg.AimRequiresGoal && !m.cfg.Goal.Contains(pos) {
		return false
	}
	m.aim.Begin(pos)
	m.power.Start()
	m.phase = PhaseCharging
	m.emit(Event{Kind: EventAimChanged, Target: pos})
	return true
}

// AimMove moves the curve-control point while charging.
func (m *Match) AimMove(pos Vec2) bool {
	if m.closed || m.phase != PhaseCharging || !pos.Finite() {
		return false
	}
	curve := m.aim.Update(pos)
	m.emit(Event{Kind: EventAimChanged, Target: m.aim.Anchor(), Curve: curve})
	return true
}

// AimEnd releases the shot. Too little power discards the attempt and
// returns to ready without using up the round. It reports whether a shot
// was launched.
func (m *Match) AimEnd() bool {
	if m.closed || m.phase != PhaseCharging {
		return false
	}
	level := m.power.Stop()
	res := m.aim.End()
	m.power.Reset()

	if level <= m.cfg.MinShotPower {
		m.phase = PhaseReady
		m.emit(Event{Kind: EventPowerChanged, Power: 0})
		return false
	}
	m.launch(res, level)
	return true
}

func (m *Match) launch(res AimResult, power float64) {
	LaunchBall(&m.ball, m.cfg, res.Target, power, res.Curve)
	ReactKeeper(&m.keeper, &m.ball, m.cfg, m.rng)
	m.referee.Reset()
	m.outcome = OutcomeNone
	m.phase = PhaseShooting

	log.Printf("SHOT: round=%d power=%.0f target=(%.1f,%.1f) curve=(%.2f,%.2f) -> V=(%.2f,%.2f) keeper->%.1f",
		m.round, power, res.Target.X, res.Target.Y, res.Curve.X, res.Curve.Y,
		m.ball.Vel.X, m.ball.Vel.Y, m.keeper.Target.X)

	m.emit(Event{Kind: EventShotLaunched, Target: res.Target, Curve: res.Curve, Power: power})
}

// Tick advances the simulation by dt seconds using fixed steps of
// 1/TickRate. Leftover time carries to the next call; a backlog beyond
// MaxStepsPerTick is dropped.
func (m *Match) Tick(dt float64) {
	if m.closed || dt <= 0 || math.IsNaN(dt) {
		return
	}
	step := m.cfg.StepSeconds()
	m.acc += dt
	n := 0
	for m.acc+1e-9 >= step && n < m.cfg.MaxStepsPerTick {
		m.acc -= step
		m.Step()
		n++
	}
	if m.acc >= step {
		m.acc = 0
	}
}

// Step runs exactly one simulation step: a due round transition first, then
// power, ball, keeper and referee.
func (m *Match) Step() {
	if m.closed {
		return
	}
	m.tick++
	m.timer.Advance(m.cfg.StepSeconds())

	switch m.phase {
	case PhaseCharging:
		if m.power.Tick() {
			m.emit(Event{Kind: EventPowerChanged, Power: m.power.Level()})
		}
	case PhaseShooting:
		StepBall(&m.ball)
		StepKeeper(&m.keeper, m.cfg.KeeperDeadband)
		if o := m.referee.Check(m.ball.Pos, m.keeper.Pos, m.cfg); o != OutcomeNone {
			m.resolve(o)
		}
	case PhaseScored, PhaseSaved, PhaseMissed:
		// the keeper finishes the dive during the pause
		StepKeeper(&m.keeper, m.cfg.KeeperDeadband)
	}
}

func (m *Match) resolve(o Outcome) {
	m.outcome = o
	m.phase = phaseFor(o)

	delay := m.cfg.MissDelay
	switch o {
	case OutcomeScore:
		m.score[PlayerSide]++
		delay = m.cfg.ScoreDelay
	case OutcomeSave:
		m.score[OpponentSide]++
		delay = m.cfg.SaveDelay
	}

	log.Printf("%s: round=%d ball=(%.1f,%.1f) keeper=(%.1f,%.1f) score=%d-%d",
		o, m.round, m.ball.Pos.X, m.ball.Pos.Y, m.keeper.Pos.X, m.keeper.Pos.Y,
		m.score[PlayerSide], m.score[OpponentSide])

	m.emit(Event{Kind: EventOutcome, Outcome: o, Round: m.round, Score: m.score})
	m.timer.Schedule(delay, m.advanceRound)
}

func (m *Match) advanceRound() {
	m.round++
	if m.round > m.cfg.MaxRounds {
		m.endMatch()
		return
	}
	m.resetRound()
	m.phase = PhaseReady
	m.emit(Event{Kind: EventRoundAdvanced, Round: m.round, Score: m.score})
}

func (m *Match) endMatch() {
	m.resetRound()
	m.phase = PhaseGameOver
	log.Printf("GAME OVER: score=%d-%d after %d rounds", m.score[PlayerSide], m.score[OpponentSide], m.cfg.MaxRounds)
	m.emit(Event{Kind: EventMatchEnded, Round: m.cfg.MaxRounds, Score: m.score})

	if m.cfg.AutoRestart {
		m.timer.Schedule(m.cfg.GameOverDelay, m.Restart)
	}
}

// Restart begins a new match from round 1, abandoning whatever is in
// progress, including a pending round transition.
func (m *Match) Restart() {
	if m.closed {
		return
	}
	m.timer.Cancel()
	m.score = [2]int{}
	m.round = 1
	m.resetRound()
	m.phase = PhaseReady
	m.emit(Event{Kind: EventMatchStarted, Round: m.round, Score: m.score})
}

func (m *Match) resetRound() {
	ResetBall(&m.ball, m.cfg)
	ResetKeeper(&m.keeper, m.cfg)
	m.aim.Cancel()
	m.power.Reset()
	m.referee.Reset()
	m.outcome = OutcomeNone
}

// Close stops the match for good: pending transitions are dropped and
// subscribers released. Further calls are no-ops.
func (m *Match) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.timer.Cancel()
	m.listeners.clear()
}

func (m *Match) Config() Config     { return m.cfg }
func (m *Match) Phase() Phase       { return m.phase }
func (m *Match) Score() [2]int      { return m.score }
func (m *Match) Round() int         { return m.round }
func (m *Match) Power() float64     { return m.power.Level() }
func (m *Match) Keeper() Goalkeeper { return m.keeper }
func (m *Match) Outcome() Outcome   { return m.outcome }
func (m *Match) Closed() bool       { return m.closed }

// Ball returns a copy of the ball; its trail does not alias the match's.
func (m *Match) Ball() Ball {
	b := m.ball
	b.Trail = NewTrail(m.ball.Trail.Cap())
	for _, p := range m.ball.Trail.All() {
		b.Trail.Push(p)
	}
	return b
}

// Snapshot captures the state a renderer needs for one frame.
func (m *Match) Snapshot() MatchState {
	return MatchState{
		Tick:  m.tick,
		Phase: m.phase,
		Ball: BallState{
			X:     m.ball.Pos.X,
			Y:     m.ball.Pos.Y,
			VX:    m.ball.Vel.X,
			VY:    m.ball.Vel.Y,
			Trail: m.ball.Trail.Points(),
		},
		Keeper: KeeperState{
			X:       m.keeper.Pos.X,
			Y:       m.keeper.Pos.Y,
			TargetX: m.keeper.Target.X,
			Diving:  m.keeper.HasTarget,
		},
		Aim: AimState{
			Active:   m.aim.Active(),
			Target:   m.aim.Anchor(),
			Handle:   m.aim.Handle(),
			Curve:    m.aim.Curve(),
			Charging: m.power.Charging(),
			Power:    m.power.Level(),
		},
		Score:     m.score,
		Round:     m.round,
		MaxRounds: m.cfg.MaxRounds,
		Outcome:   m.outcome,
	}
}
