package game

import (
	"math"
	"testing"
)

func TestPresetsNormalized(t *testing.T) {
	names := PresetNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
	for _, name := range names {
		cfg, ok := Preset(name)
		if !ok {
			t.Fatalf("missing preset %s", name)
		}
		if cfg != cfg.Normalize() {
			t.Errorf("preset %s changes under Normalize", name)
		}
		if !cfg.Goal.Contains(cfg.KeeperHome()) || cfg.MinShotPower >= cfg.MaxPower {
			t.Errorf("preset %s is inconsistent", name)
		}
	}
	if _, ok := Preset("nope"); ok {
		t.Error("unknown preset should not resolve")
	}
	if cfg, _ := Preset(""); cfg.Name != DefaultPreset {
		t.Errorf("empty name should give %s", DefaultPreset)
	}
}

func TestNormalizeKeepsShotsPossible(t *testing.T) {
	cfg, _ := Preset(DefaultPreset)
	cfg.PowerChargeSpeed = 0
	cfg.MinShotPower = cfg.MaxPower
	cfg = cfg.Normalize()
	if cfg.PowerChargeSpeed <= 0 {
		t.Errorf("charge speed should be repaired, got %f", cfg.PowerChargeSpeed)
	}
	if cfg.MinShotPower >= cfg.MaxPower {
		t.Errorf("threshold %f must sit below max %f", cfg.MinShotPower, cfg.MaxPower)
	}

	cfg.AimRequiresGoal = false
	m := NewMatch(cfg, fixedRand(0.5))
	defer m.Close()
	steps := int(math.Ceil(cfg.MaxPower/cfg.PowerChargeSpeed)) + 1
	if !shoot(t, m, cfg.Goal.Center(), steps) {
		t.Error("a fully charged shot should launch")
	}
}
