package game

import (
	"iter"
	"math"
)

// Trail is a fixed-capacity FIFO of recent ball positions.
type Trail struct {
	buf   []Vec2
	start int
	n     int
}

func NewTrail(capacity int) Trail {
	if capacity < 0 {
		capacity = 0
	}
	return Trail{buf: make([]Vec2, capacity)}
}

// Push appends p, dropping the oldest sample when full.
func (t *Trail) Push(p Vec2) {
	if len(t.buf) == 0 {
		return
	}
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = p
		t.n++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

func (t *Trail) Len() int { return t.n }
func (t *Trail) Cap() int { return len(t.buf) }

func (t *Trail) Clear() {
	t.start = 0
	t.n = 0
}

// All yields the samples oldest first.
func (t *Trail) All() iter.Seq2[int, Vec2] {
	return func(yield func(int, Vec2) bool) {
		for i := 0; i < t.n; i++ {
			if !yield(i, t.buf[(t.start+i)%len(t.buf)]) {
				return
			}
		}
	}
}

// Points copies the samples oldest first.
func (t *Trail) Points() []Vec2 {
	out := make([]Vec2, 0, t.n)
	for _, p := range t.All() {
		out = append(out, p)
	}
	return out
}

// Ball is the physics body of the shot. It carries no rendering state.
type Ball struct {
	Pos     Vec2
	Vel     Vec2
	Curve   Vec2 // added to Vel every step
	Gravity float64
	Drag    float64
	Trail   Trail
}

func NewBall(cfg Config) Ball {
	return Ball{
		Pos:   cfg.BallStart,
		Drag:  1,
		Trail: NewTrail(cfg.TrailLength),
	}
}

// ResetBall puts the ball back on the spot, at rest.
func ResetBall(b *Ball, cfg Config) {
	b.Pos = cfg.BallStart
	b.Vel = Vec2{}
	b.Curve = Vec2{}
	b.Gravity = 0
	b.Drag = 1
	if b.Trail.Cap() != cfg.TrailLength {
		b.Trail = NewTrail(cfg.TrailLength)
	}
	b.Trail.Clear()
}

// launchSpeed is the initial speed along dir for the given power.
// Shots aimed above the ball get extra speed so gravity does not pull them
// down before they reach goal height.
func launchSpeed(cfg Config, dir Vec2, targetAbove bool, power float64) float64 {
	p := math.Min(power/cfg.MaxPower, 1)
	if p < 0 {
		p = 0
	}
	speed := cfg.BaseSpeed + p*cfg.PowerSpeedBonus
	if targetAbove {
		speed *= cfg.UpwardBoost + math.Abs(dir.Y)*cfg.UpwardBoostSlope
	}
	return speed
}

// LaunchBall sets the ball's initial velocity and curve force for a shot at
// target. A target on top of the ball shoots straight up the pitch.
func LaunchBall(b *Ball, cfg Config, target Vec2, power float64, curve Vec2) {
	dir := target.Sub(b.Pos).Normalize()
	if dir == (Vec2{}) {
		dir = Vec2{X: 0, Y: -1}
	}
	targetAbove := target.Y < b.Pos.Y || target == b.Pos

	b.Vel = dir.Scale(launchSpeed(cfg, dir, targetAbove, power))
	b.Curve = Vec2{
		X: clampF(curve.X, -1, 1) * cfg.CurveForceX,
		Y: clampF(curve.Y, -1, 1) * cfg.CurveForceY,
	}
	b.Gravity = cfg.Gravity
	b.Drag = cfg.Drag
	b.Trail.Clear()
}

// StepBall integrates one simulation step. Drag is a per-step decay factor.
func StepBall(b *Ball) {
	b.Pos = b.Pos.Add(b.Vel)

	b.Vel.Y += b.Gravity
	b.Vel = b.Vel.Add(b.Curve)
	b.Vel = b.Vel.Scale(b.Drag)

	b.Trail.Push(b.Pos)
}
