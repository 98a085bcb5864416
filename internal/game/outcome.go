package game

// Outcome is the verdict on a shot.
type Outcome uint8

const (
	OutcomeNone Outcome = iota // still in flight
	OutcomeScore
	OutcomeSave
	OutcomeMiss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScore:
		return "score"
	case OutcomeSave:
		return "save"
	case OutcomeMiss:
		return "miss"
	default:
		return "none"
	}
}

// Classify decides the fate of the ball at its current position. The goal
// mouth is tested before the goal line, so a ball entering the mouth on the
// same step it crosses the line still counts as on target.
func Classify(ball, keeper Vec2, cfg Config) Outcome {
	m := cfg.OutOfBoundsMargin
	if ball.X < -m || ball.X > cfg.FieldWidth+m || ball.Y > cfg.FieldHeight+m {
		return OutcomeMiss
	}

	if cfg.Goal.Contains(ball) {
		if ball.Dist(keeper) < cfg.SaveRadius {
			return OutcomeSave
		}
		return OutcomeScore
	}

	if ball.Y < cfg.GoalLineY {
		return OutcomeMiss
	}
	return OutcomeNone
}

// Referee issues at most one verdict per shot.
type Referee struct {
	decided Outcome
}

// Check classifies the ball unless this shot already has a verdict. It
// reports the new verdict, or OutcomeNone.
func (r *Referee) Check(ball, keeper Vec2, cfg Config) Outcome {
	if r.decided != OutcomeNone {
		return OutcomeNone
	}
	o := Classify(ball, keeper, cfg)
	r.decided = o
	return o
}

// Verdict is the decision for the current shot, if any.
func (r *Referee) Verdict() Outcome { return r.decided }

// Reset arms the referee for the next shot.
func (r *Referee) Reset() { r.decided = OutcomeNone }
