package game

import (
	"sort"
	"time"
)

// Rect is an axis-aligned region; Top < Bottom since y grows downward.
type Rect struct {
	Left   float64 `json:"left" msgpack:"left" toml:"left"`
	Right  float64 `json:"right" msgpack:"right" toml:"right"`
	Top    float64 `json:"top" msgpack:"top" toml:"top"`
	Bottom float64 `json:"bottom" msgpack:"bottom" toml:"bottom"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Center() Vec2 {
	return Vec2{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Config holds every tunable of a match. Physics values are per simulation
// step, not per second: the simulation runs at a fixed TickRate.
type Config struct {
	Name string `toml:"-"`

	TickRate        int `toml:"tick_rate"`
	MaxStepsPerTick int `toml:"max_steps_per_tick"`

	FieldWidth        float64 `toml:"field_width"`
	FieldHeight       float64 `toml:"field_height"`
	OutOfBoundsMargin float64 `toml:"out_of_bounds_margin"`
	Goal              Rect    `toml:"goal"`
	GoalLineY         float64 `toml:"goal_line_y"`
	BallStart         Vec2    `toml:"ball_start"`
	BallRadius        float64 `toml:"ball_radius"`

	Gravity          float64 `toml:"gravity"`
	Drag             float64 `toml:"drag"`
	BaseSpeed        float64 `toml:"base_speed"`
	PowerSpeedBonus  float64 `toml:"power_speed_bonus"`
	UpwardBoost      float64 `toml:"upward_boost"`
	UpwardBoostSlope float64 `toml:"upward_boost_slope"`
	CurveForceX      float64 `toml:"curve_force_x"`
	CurveForceY      float64 `toml:"curve_force_y"`
	TrailLength      int     `toml:"trail_length"`

	PowerChargeSpeed float64 `toml:"power_charge_speed"`
	MaxPower         float64 `toml:"max_power"`
	MinShotPower     float64 `toml:"min_shot_power"`
	CurveRadius      float64 `toml:"curve_radius"`
	AimRequiresGoal  bool    `toml:"aim_requires_goal"`

	SaveRadius        float64 `toml:"save_radius"`
	KeeperLookahead   float64 `toml:"keeper_lookahead"`
	KeeperTravelInset float64 `toml:"keeper_travel_inset"`
	KeeperJitter      float64 `toml:"keeper_jitter"`
	KeeperSpeedMin    float64 `toml:"keeper_speed_min"`
	KeeperSpeedMax    float64 `toml:"keeper_speed_max"`
	KeeperDeadband    float64 `toml:"keeper_deadband"`

	MaxRounds     int           `toml:"max_rounds"`
	ScoreDelay    time.Duration `toml:"score_delay"`
	SaveDelay     time.Duration `toml:"save_delay"`
	MissDelay     time.Duration `toml:"miss_delay"`
	GameOverDelay time.Duration `toml:"game_over_delay"`
	AutoRestart   bool          `toml:"auto_restart"`
}

// StepSeconds is the duration of one simulation step.
func (c Config) StepSeconds() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(c.TickRate)
}

// KeeperHome is where the goalkeeper stands at the start of every round.
func (c Config) KeeperHome() Vec2 { return c.Goal.Center() }

// Normalize repairs values that would break the simulation and
// returns the adjusted copy.
func (c Config) Normalize() Config {
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.MaxStepsPerTick <= 0 {
		c.MaxStepsPerTick = 5
	}
	if c.MaxPower <= 0 {
		c.MaxPower = 100
	}
	if c.PowerChargeSpeed <= 0 {
		c.PowerChargeSpeed = 2
	}
	// Shots need power strictly above the threshold, so it must sit below max.
	if c.MinShotPower < 0 || c.MinShotPower >= c.MaxPower {
		c.MinShotPower = 0.15 * c.MaxPower
	}
	if c.CurveRadius <= 0 {
		c.CurveRadius = 50
	}
	if c.Drag <= 0 || c.Drag > 1 {
		c.Drag = 1
	}
	if c.TrailLength < 0 {
		c.TrailLength = 0
	}
	if c.KeeperSpeedMax < c.KeeperSpeedMin {
		c.KeeperSpeedMax = c.KeeperSpeedMin
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = 5
	}
	return c
}

// firstPerson mirrors the click-on-goal first-person game: the player clicks
// inside the goal mouth to pick the target and drags for curve.
func firstPerson() Config {
	const width, height = 1200.0, 700.0
	const goalW, goalH = 500.0, 200.0
	return Config{
		Name:              "first-person",
		TickRate:          60,
		MaxStepsPerTick:   5,
		FieldWidth:        width,
		FieldHeight:       height,
		OutOfBoundsMargin: 100,
		Goal: Rect{
			Left:   width/2 - goalW/2,
			Right:  width/2 + goalW/2,
			Top:    150,
			Bottom: 150 + goalH,
		},
		GoalLineY:         30,
		BallStart:         Vec2{X: width / 2, Y: height - 60},
		BallRadius:        15,
		Gravity:           0.05,
		Drag:              0.995,
		BaseSpeed:         15,
		PowerSpeedBonus:   15,
		UpwardBoost:       1.5,
		UpwardBoostSlope:  0.8,
		CurveForceX:       0.15,
		CurveForceY:       0.1,
		TrailLength:       8,
		PowerChargeSpeed:  2,
		MaxPower:          100,
		MinShotPower:      15,
		CurveRadius:       50,
		AimRequiresGoal:   true,
		SaveRadius:        40,
		KeeperLookahead:   10,
		KeeperTravelInset: 40,
		KeeperJitter:      30,
		KeeperSpeedMin:    4,
		KeeperSpeedMax:    6,
		KeeperDeadband:    3,
		MaxRounds:         5,
		ScoreDelay:        2000 * time.Millisecond,
		SaveDelay:         1500 * time.Millisecond,
		MissDelay:         1000 * time.Millisecond,
		GameOverDelay:     3 * time.Second,
		AutoRestart:       true,
	}
}

// topDown is the 2D pitch variant: drag anywhere to aim, goal at the top edge.
func topDown() Config {
	c := firstPerson()
	c.Name = "top-down"
	c.FieldWidth, c.FieldHeight = 800, 600
	c.Goal = Rect{Left: 280, Right: 520, Top: 20, Bottom: 80}
	c.GoalLineY = 10
	c.BallStart = Vec2{X: 400, Y: 480}
	c.BallRadius = 10
	c.Gravity = 0
	c.Drag = 0.99
	c.BaseSpeed = 8
	c.PowerSpeedBonus = 10
	c.UpwardBoost = 1
	c.UpwardBoostSlope = 0
	c.CurveForceX = 0.2
	c.CurveForceY = 0
	c.PowerChargeSpeed = 1.5
	c.MinShotPower = 10
	c.AimRequiresGoal = false
	c.SaveRadius = 30
	c.KeeperTravelInset = 30
	c.KeeperJitter = 24
	c.KeeperSpeedMin, c.KeeperSpeedMax = 3, 5
	c.AutoRestart = false
	return c
}

// arcade is a quick loop of the first-person game with a tougher keeper.
func arcade() Config {
	c := firstPerson()
	c.Name = "arcade"
	c.SaveRadius = 55
	c.KeeperJitter = 20
	c.KeeperSpeedMin, c.KeeperSpeedMax = 5, 7
	c.ScoreDelay = 1200 * time.Millisecond
	c.SaveDelay = 900 * time.Millisecond
	c.MissDelay = 700 * time.Millisecond
	c.GameOverDelay = 1500 * time.Millisecond
	c.MaxRounds = 10
	return c
}

// DefaultPreset is used when no preset is named.
const DefaultPreset = "first-person"

var builtinPresets = map[string]func() Config{
	"first-person": firstPerson,
	"top-down":     topDown,
	"arcade":       arcade,
}

// Preset returns a normalized copy of the named built-in preset.
func Preset(name string) (Config, bool) {
	if name == "" {
		name = DefaultPreset
	}
	mk, ok := builtinPresets[name]
	if !ok {
		return Config{}, false
	}
	return mk().Normalize(), true
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for n := range builtinPresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
