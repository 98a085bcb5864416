package game

type Phase uint8

const (
	PhaseReady Phase = iota
	PhaseCharging
	PhaseShooting
	PhaseScored
	PhaseSaved
	PhaseMissed
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseCharging:
		return "charging"
	case PhaseShooting:
		return "shooting"
	case PhaseScored:
		return "scored"
	case PhaseSaved:
		return "saved"
	case PhaseMissed:
		return "missed"
	case PhaseGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// Resolved reports whether p is one of the post-shot pauses.
func (p Phase) Resolved() bool {
	return p == PhaseScored || p == PhaseSaved || p == PhaseMissed
}

func phaseFor(o Outcome) Phase {
	switch o {
	case OutcomeScore:
		return PhaseScored
	case OutcomeSave:
		return PhaseSaved
	default:
		return PhaseMissed
	}
}

const (
	PlayerSide   = 0
	OpponentSide = 1
)

type BallState struct {
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	VX    float64 `json:"vx" msgpack:"vx"`
	VY    float64 `json:"vy" msgpack:"vy"`
	Trail []Vec2  `json:"trail,omitempty" msgpack:"trail,omitempty"`
}

type KeeperState struct {
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	TargetX float64 `json:"targetX" msgpack:"targetX"`
	Diving  bool    `json:"diving" msgpack:"diving"`
}

// AimState is the in-progress aim gesture as a renderer sees it.
type AimState struct {
	Active   bool    `json:"active" msgpack:"active"`
	Target   Vec2    `json:"target" msgpack:"target"`
	Handle   Vec2    `json:"handle" msgpack:"handle"`
	Curve    Vec2    `json:"curve" msgpack:"curve"`
	Charging bool    `json:"charging" msgpack:"charging"`
	Power    float64 `json:"power" msgpack:"power"`
}

// MatchState is the snapshot a presentation layer reads each frame.
type MatchState struct {
	Tick      uint32      `json:"tick" msgpack:"tick"`
	Phase     Phase       `json:"phase" msgpack:"phase"`
	Ball      BallState   `json:"ball" msgpack:"ball"`
	Keeper    KeeperState `json:"keeper" msgpack:"keeper"`
	Aim       AimState    `json:"aim" msgpack:"aim"`
	Score     [2]int      `json:"score" msgpack:"score"`
	Round     int         `json:"round" msgpack:"round"`
	MaxRounds int         `json:"maxRounds" msgpack:"maxRounds"`
	Outcome   Outcome     `json:"outcome" msgpack:"outcome"`
}
