package game

// PowerCharger accumulates shot power while the charge input is held.
type PowerCharger struct {
	Speed float64 // added per simulation step
	Max   float64

	level    float64
	charging bool
}

func NewPowerCharger(speed, max float64) *PowerCharger {
	return &PowerCharger{Speed: speed, Max: max}
}

// Start zeroes the level and begins accrual.
func (p *PowerCharger) Start() {
	p.level = 0
	p.charging = true
}

// Tick advances one step. It reports whether the level changed.
func (p *PowerCharger) Tick() bool {
	if !p.charging || p.level >= p.Max {
		return false
	}
	next := p.level + p.Speed
	if next > p.Max {
		next = p.Max
	}
	if next <= p.level {
		return false
	}
	p.level = next
	return true
}

// Stop freezes accrual and returns the final level.
func (p *PowerCharger) Stop() float64 {
	p.charging = false
	return p.level
}

// Reset force-stops charging and clears the level.
func (p *PowerCharger) Reset() {
	p.charging = false
	p.level = 0
}

func (p *PowerCharger) Level() float64 { return p.level }
func (p *PowerCharger) Charging() bool { return p.charging }
