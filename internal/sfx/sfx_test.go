package sfx

import (
	"math"
	"testing"
	"time"

	"github.com/vladimirvolkov/penalty/internal/game"
)

func TestCueForEvents(t *testing.T) {
	for _, o := range []game.Outcome{game.OutcomeScore, game.OutcomeSave, game.OutcomeMiss} {
		if _, ok := cueFor(game.Event{Kind: game.EventOutcome, Outcome: o}); !ok {
			t.Errorf("no cue for outcome %s", o)
		}
	}
	if _, ok := cueFor(game.Event{Kind: game.EventPowerChanged}); ok {
		t.Error("power changes should be silent")
	}
}

func TestToneLengthAndLevel(t *testing.T) {
	c := cue{from: 440, to: 880, length: 50 * time.Millisecond, volume: 0.5}
	tn := newTone(c)
	want := sampleRate.N(c.length)

	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := tn.Stream(buf)
		for _, s := range buf[:n] {
			if math.Abs(s[0]) > c.volume || s[0] != s[1] {
				t.Fatalf("sample out of range: %v", s)
			}
		}
		total += n
		if !ok {
			break
		}
	}
	if total != want {
		t.Errorf("expected %d samples, got %d", want, total)
	}
}

func TestSilentPlayerIgnoresEvents(t *testing.T) {
	p := &Player{}
	p.Listener()(game.Event{Kind: game.EventOutcome, Outcome: game.OutcomeScore})
	p.Close()
}
