// Package sfx plays short synthesized cues for match events.
package sfx

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/vladimirvolkov/penalty/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// cue describes a tone: a start frequency sliding to an end frequency.
type cue struct {
	from, to float64
	length   time.Duration
	volume   float64
}

var cues = map[game.EventKind]cue{
	game.EventShotLaunched: {from: 220, to: 440, length: 120 * time.Millisecond, volume: 0.25},
	game.EventMatchEnded:   {from: 523, to: 262, length: 600 * time.Millisecond, volume: 0.3},
}

var outcomeCues = map[game.Outcome]cue{
	game.OutcomeScore: {from: 523, to: 1046, length: 400 * time.Millisecond, volume: 0.35},
	game.OutcomeSave:  {from: 330, to: 165, length: 300 * time.Millisecond, volume: 0.3},
	game.OutcomeMiss:  {from: 140, to: 110, length: 250 * time.Millisecond, volume: 0.3},
}

// Player turns match events into sounds. A Player whose speaker failed to
// open stays silent.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	enabled bool
}

// NewPlayer opens the default audio device.
func NewPlayer() (*Player, error) {
	p := &Player{mixer: &beep.Mixer{}}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return p, err
	}
	speaker.Play(p.mixer)
	p.enabled = true
	return p, nil
}

// Listener returns a match listener that plays the cue for each event.
func (p *Player) Listener() game.Listener {
	return func(ev game.Event) {
		c, ok := cueFor(ev)
		if !ok {
			return
		}
		p.play(c)
	}
}

func cueFor(ev game.Event) (cue, bool) {
	if ev.Kind == game.EventOutcome {
		c, ok := outcomeCues[ev.Outcome]
		return c, ok
	}
	c, ok := cues[ev.Kind]
	return c, ok
}

func (p *Player) play(c cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	speaker.Lock()
	p.mixer.Add(newTone(c))
	speaker.Unlock()
}

// Close silences the player.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	speaker.Clear()
	p.enabled = false
}

// tone is a sine sweep with a short fade in and a linear fade out.
type tone struct {
	c     cue
	total int
	pos   int
	phase float64
}

func newTone(c cue) *tone {
	return &tone{c: c, total: sampleRate.N(c.length)}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		progress := float64(t.pos) / float64(t.total)
		freq := t.c.from + (t.c.to-t.c.from)*progress
		t.phase += 2 * math.Pi * freq / float64(sampleRate)

		env := math.Min(float64(t.pos)/float64(sampleRate)/0.01, 1) * (1 - progress)
		s := math.Sin(t.phase) * env * t.c.volume
		samples[i][0] = s
		samples[i][1] = s
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
