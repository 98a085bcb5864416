package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/vladimirvolkov/penalty/internal/game"
)

const hudRows = 2

var (
	styleField  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleGoal   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleKeeper = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBall   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleAim    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHUD    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	styleBanner = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true).Reverse(true)
)

// viewport maps terminal cells onto the simulation field. The bottom
// hudRows rows are reserved for the status bar.
type viewport struct {
	cols, rows int
	field      game.Vec2
}

func newViewport(cols, rows int, cfg game.Config) viewport {
	return viewport{cols: cols, rows: max(rows-hudRows, 1), field: game.V(cfg.FieldWidth, cfg.FieldHeight)}
}

// toSim returns the field position at the center of a cell.
func (v viewport) toSim(x, y int) game.Vec2 {
	return game.V(
		(float64(x)+0.5)/float64(v.cols)*v.field.X,
		(float64(y)+0.5)/float64(v.rows)*v.field.Y,
	)
}

func (v viewport) toCell(p game.Vec2) (int, int) {
	x := int(math.Floor(p.X / v.field.X * float64(v.cols)))
	y := int(math.Floor(p.Y / v.field.Y * float64(v.rows)))
	return x, y
}

func (v viewport) inside(x, y int) bool {
	return x >= 0 && x < v.cols && y >= 0 && y < v.rows
}

func (v viewport) put(s tcell.Screen, p game.Vec2, r rune, style tcell.Style) {
	x, y := v.toCell(p)
	if v.inside(x, y) {
		s.SetContent(x, y, r, nil, style)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func banner(phase game.Phase) string {
	switch phase {
	case game.PhaseScored:
		return " GOAL! "
	case game.PhaseSaved:
		return " SAVED! "
	case game.PhaseMissed:
		return " MISSED! "
	case game.PhaseGameOver:
		return " FULL TIME - press r "
	}
	return ""
}

func powerBar(power, maxPower float64, width int) string {
	filled := 0
	if maxPower > 0 {
		filled = int(math.Round(power / maxPower * float64(width)))
	}
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", width-filled) + "]"
}

func hudLine(st game.MatchState, cfg game.Config) string {
	round := min(st.Round, st.MaxRounds)
	return fmt.Sprintf(" %s  round %d/%d  you %d - %d keeper  power %s  %s",
		cfg.Name, round, st.MaxRounds,
		st.Score[game.PlayerSide], st.Score[game.OpponentSide],
		powerBar(st.Aim.Power, cfg.MaxPower, 20), st.Phase)
}

func helpLine(cfg game.Config) string {
	where := "press anywhere"
	if cfg.AimRequiresGoal {
		where = "press inside the goal"
	}
	return " " + where + " and drag to aim, release to shoot  r restart  q quit"
}

func draw(s tcell.Screen, v viewport, st game.MatchState, cfg game.Config) {
	s.Clear()

	// Goal line and frame.
	_, lineY := v.toCell(game.V(0, cfg.GoalLineY))
	for x := 0; x < v.cols; x++ {
		if v.inside(x, lineY) {
			s.SetContent(x, lineY, '-', nil, styleField)
		}
	}
	gl, gt := v.toCell(game.V(cfg.Goal.Left, cfg.Goal.Top))
	gr, gb := v.toCell(game.V(cfg.Goal.Right, cfg.Goal.Bottom))
	for x := gl; x <= gr; x++ {
		for _, y := range []int{gt, gb} {
			if v.inside(x, y) {
				s.SetContent(x, y, '=', nil, styleGoal)
			}
		}
	}
	for y := gt; y <= gb; y++ {
		for _, x := range []int{gl, gr} {
			if v.inside(x, y) {
				s.SetContent(x, y, '|', nil, styleGoal)
			}
		}
	}

	// Keeper spans its save reach.
	keeper := game.V(st.Keeper.X, st.Keeper.Y)
	kl, ky := v.toCell(keeper.Sub(game.V(cfg.SaveRadius/2, 0)))
	kr, _ := v.toCell(keeper.Add(game.V(cfg.SaveRadius/2, 0)))
	for x := kl; x <= kr; x++ {
		if v.inside(x, ky) {
			s.SetContent(x, ky, '#', nil, styleKeeper)
		}
	}

	for _, p := range st.Ball.Trail {
		v.put(s, p, '.', styleField)
	}
	v.put(s, game.V(st.Ball.X, st.Ball.Y), 'o', styleBall)

	if st.Aim.Active {
		v.put(s, st.Aim.Target, '+', styleAim)
		v.put(s, st.Aim.Handle, '*', styleAim)
	}

	if text := banner(st.Phase); text != "" {
		drawText(s, (v.cols-len(text))/2, v.rows/2, text, styleBanner)
	}

	hud := hudLine(st, cfg)
	for y := v.rows; y < v.rows+hudRows; y++ {
		for x := 0; x < v.cols; x++ {
			s.SetContent(x, y, ' ', nil, styleHUD)
		}
	}
	drawText(s, 0, v.rows, hud, styleHUD)
	drawText(s, 0, v.rows+1, helpLine(cfg), styleHUD)
	s.Show()
}
