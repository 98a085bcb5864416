package game

import "math"

// Goalkeeper moves along the goal line (X only) toward a per-shot target.
type Goalkeeper struct {
	Pos       Vec2
	Target    Vec2
	Speed     float64
	HasTarget bool
}

func NewGoalkeeper(cfg Config) Goalkeeper {
	return Goalkeeper{Pos: cfg.KeeperHome(), Target: cfg.KeeperHome()}
}

func ResetKeeper(k *Goalkeeper, cfg Config) {
	*k = NewGoalkeeper(cfg)
}

// predictDive extrapolates where the shot will cross and clamps it to the
// keeper's reach inside the goal mouth.
func predictDive(ball *Ball, cfg Config) float64 {
	predicted := ball.Pos.X + ball.Vel.X*cfg.KeeperLookahead
	center := cfg.Goal.Center().X
	reach := cfg.Goal.Width()/2 - cfg.KeeperTravelInset
	if reach < 0 {
		reach = 0
	}
	return center + clampF(predicted-center, -reach, reach)
}

// ReactKeeper picks the keeper's target and speed for a freshly launched
// ball. The jitter keeps the keeper beatable.
func ReactKeeper(k *Goalkeeper, ball *Ball, cfg Config, rng RandomSource) {
	x := predictDive(ball, cfg)
	x += (rng.Float64() - 0.5) * cfg.KeeperJitter

	k.Target = Vec2{X: x, Y: k.Pos.Y}
	k.Speed = randRange(rng, cfg.KeeperSpeedMin, cfg.KeeperSpeedMax)
	k.HasTarget = true
}

// StepKeeper moves the keeper one capped step toward its target. It idles
// inside the dead-band so it never jitters around the target.
func StepKeeper(k *Goalkeeper, deadband float64) {
	if !k.HasTarget {
		return
	}
	dx := k.Target.X - k.Pos.X
	if math.Abs(dx) <= deadband {
		return
	}
	step := math.Min(k.Speed, math.Abs(dx))
	k.Pos.X += math.Copysign(step, dx)
}
