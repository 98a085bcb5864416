package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vladimirvolkov/penalty/internal/game"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestServerDefaults(t *testing.T) {
	s, err := load(env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if s.Port != "8080" || s.StaticDir != "../client/dist" {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.MaxConnsPerIP != 4 || s.MsgRate != 120 || s.MsgWindow != time.Second {
		t.Errorf("unexpected limits: %+v", s)
	}
	if s.AllowedOrigins != nil {
		t.Errorf("expected no origins, got %v", s.AllowedOrigins)
	}
}

func TestServerFromValues(t *testing.T) {
	s, err := load(env(map[string]string{
		"PORT":             "9000",
		"ALLOWED_ORIGINS":  "example.com, *.example.org,",
		"PRESET":           "arcade",
		"SEED":             "42",
		"MAX_CONNS_PER_IP": "2",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if s.Port != "9000" || s.Preset != "arcade" || s.Seed != 42 || s.MaxConnsPerIP != 2 {
		t.Errorf("unexpected config: %+v", s)
	}
	if len(s.AllowedOrigins) != 2 || s.AllowedOrigins[1] != "*.example.org" {
		t.Errorf("unexpected origins: %v", s.AllowedOrigins)
	}
}

func TestServerRejectsBadNumbers(t *testing.T) {
	for _, tc := range []map[string]string{
		{"SEED": "abc"},
		{"MSG_RATE": "0"},
		{"MAX_CONNS_PER_IP": "-1"},
		{"MAX_SESSIONS": "many"},
	} {
		if _, err := load(env(tc)); err == nil {
			t.Errorf("expected error for %v", tc)
		}
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuiltinPresets(t *testing.T) {
	p := NewPresets()
	if p.Default() != game.DefaultPreset {
		t.Errorf("expected default %s, got %s", game.DefaultPreset, p.Default())
	}
	for _, name := range game.PresetNames() {
		cfg, err := p.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Name != name {
			t.Errorf("preset %s has name %q", name, cfg.Name)
		}
	}
	if _, err := p.Lookup("nope"); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestLoadFileOverridesBase(t *testing.T) {
	path := writeFile(t, `
default = "long"

[presets.long]
base = "arcade"
max_rounds = 10
score_delay = "1s"

[presets.longer]
base = "long"
max_rounds = 20

[presets.wide]
goal = { left = 100, right = 1100, top = 150, bottom = 350 }
`)
	p := NewPresets()
	if err := p.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if p.Default() != "long" {
		t.Errorf("expected default long, got %s", p.Default())
	}

	arcade, _ := game.Preset("arcade")
	long, err := p.Lookup("")
	if err != nil {
		t.Fatal(err)
	}
	if long.MaxRounds != 10 || long.ScoreDelay != time.Second {
		t.Errorf("overrides not applied: rounds=%d delay=%s", long.MaxRounds, long.ScoreDelay)
	}
	if long.Gravity != arcade.Gravity || long.SaveDelay != arcade.SaveDelay {
		t.Error("unset keys should come from the base preset")
	}

	longer, _ := p.Lookup("longer")
	if longer.MaxRounds != 20 || longer.ScoreDelay != time.Second {
		t.Errorf("chained base not applied: %+v", longer)
	}

	// wide has no base, so it builds on the built-in default.
	fp, _ := game.Preset(game.DefaultPreset)
	wide, _ := p.Lookup("wide")
	if wide.Goal.Width() != 1000 || wide.BallStart != fp.BallStart {
		t.Errorf("unexpected wide preset: %+v", wide)
	}
	if len(p.Names()) != len(game.PresetNames())+3 {
		t.Errorf("unexpected names: %v", p.Names())
	}
}

func TestLoadFileErrors(t *testing.T) {
	cases := map[string]string{
		"unknown base": "[presets.x]\nbase = \"missing\"\n",
		"cycle":        "[presets.a]\nbase = \"b\"\n[presets.b]\nbase = \"a\"\n",
		"unknown key":  "[presets.x]\ngravty = 1.0\n",
		"bad default":  "default = \"ghost\"\n",
		"syntax":       "[presets.x\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := NewPresets()
			if err := p.LoadFile(writeFile(t, body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	p := NewPresets()
	if err := p.SetDefault("top-down"); err != nil {
		t.Fatal(err)
	}
	cfg, _ := p.Lookup("")
	if cfg.Name != "top-down" {
		t.Errorf("expected top-down, got %s", cfg.Name)
	}
	if err := p.SetDefault("ghost"); err == nil {
		t.Error("unknown default should fail")
	}
}
