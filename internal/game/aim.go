package game

// AimResult is what a finished aim gesture hands to the launcher.
type AimResult struct {
	Target Vec2
	Curve  Vec2
}

// AimModel turns pointer positions into a shot target and a curve amount.
// The curve-control point is confined to a disk of radius Radius around the
// anchor, so each curve component stays in [-1, 1].
type AimModel struct {
	Radius float64

	active  bool
	anchor  Vec2
	pointer Vec2
	curve   Vec2
}

func NewAimModel(radius float64) *AimModel {
	if radius <= 0 {
		radius = 1
	}
	return &AimModel{Radius: radius}
}

// Begin anchors the aim at pos, which is also the shot target.
func (a *AimModel) Begin(pos Vec2) {
	a.active = true
	a.anchor = pos
	a.pointer = pos
	a.curve = Vec2{}
}

// Update recomputes the curve amount from the pointer's offset to the anchor.
func (a *AimModel) Update(pos Vec2) Vec2 {
	if !a.active || !pos.Finite() {
		return a.curve
	}
	offset := pos.Sub(a.anchor).ClampLen(a.Radius)
	a.pointer = a.anchor.Add(offset)
	a.curve = offset.Scale(1 / a.Radius)
	return a.curve
}

// End finalizes the gesture and clears the model.
func (a *AimModel) End() AimResult {
	res := AimResult{Target: a.anchor, Curve: a.curve}
	a.Cancel()
	return res
}

// Cancel drops the current gesture without producing a result.
func (a *AimModel) Cancel() {
	a.active = false
	a.anchor = Vec2{}
	a.pointer = Vec2{}
	a.curve = Vec2{}
}

func (a *AimModel) Active() bool { return a.active }
func (a *AimModel) Anchor() Vec2 { return a.anchor }
func (a *AimModel) Curve() Vec2  { return a.curve }

// Handle is the clamped curve-control point, for drawing the curve knob.
func (a *AimModel) Handle() Vec2 { return a.pointer }
