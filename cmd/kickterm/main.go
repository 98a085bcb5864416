// Command kickterm plays a penalty match in the terminal with the mouse.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/vladimirvolkov/penalty/internal/config"
	"github.com/vladimirvolkov/penalty/internal/game"
	"github.com/vladimirvolkov/penalty/internal/sfx"
)

type shell struct {
	screen tcell.Screen
	match  *game.Match
	view   viewport
	held   bool
}

// handle applies one terminal event to the match and reports whether the
// shell should keep running.
func (sh *shell) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				sh.held = false
				sh.match.Restart()
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		pos := sh.view.toSim(x, y)
		pressed := ev.Buttons()&tcell.Button1 != 0
		switch {
		case pressed && !sh.held:
			sh.held = sh.match.AimBegin(pos)
		case pressed && sh.held:
			sh.match.AimMove(pos)
		case !pressed && sh.held:
			sh.held = false
			sh.match.AimEnd()
		}
	case *tcell.EventResize:
		cols, rows := sh.screen.Size()
		sh.view = newViewport(cols, rows, sh.match.Config())
		sh.screen.Sync()
	}
	return true
}

func (sh *shell) run() {
	step := time.Duration(float64(time.Second) * sh.match.Config().StepSeconds())
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := sh.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !sh.handle(ev) {
				return
			}
		case now := <-ticker.C:
			sh.match.Tick(now.Sub(last).Seconds())
			last = now
			draw(sh.screen, sh.view, sh.match.Snapshot(), sh.match.Config())
		}
	}
}

func main() {
	presetName := flag.String("preset", "", "match preset (default: the built-in default)")
	presetFile := flag.String("presets", "", "TOML file with extra presets")
	seed := flag.Int64("seed", 0, "keeper random seed (0 = clock)")
	mute := flag.Bool("mute", false, "disable sound")
	logFile := flag.String("log", "", "write logs to this file")
	flag.Parse()

	// The screen owns the terminal, so logs go to a file or nowhere.
	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	presets := config.NewPresets()
	if *presetFile != "" {
		if err := presets.LoadFile(*presetFile); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := presets.Lookup(*presetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (available: %v)\n", err, presets.Names())
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseDragEvents)
	screen.HideCursor()

	match := game.NewMatch(cfg, game.NewRandomSource(*seed))
	defer match.Close()

	if !*mute {
		player, err := sfx.NewPlayer()
		if err != nil {
			log.Printf("audio disabled: %v", err)
		}
		defer player.Close()
		match.Subscribe(player.Listener())
	}

	cols, rows := screen.Size()
	sh := &shell{screen: screen, match: match, view: newViewport(cols, rows, cfg)}
	sh.run()
}
