package config

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/vladimirvolkov/penalty/internal/game"
)

// Presets resolves preset names to match configs. It starts with the
// built-in presets and can be extended from a TOML file.
type Presets struct {
	byName map[string]game.Config
	def    string
}

// NewPresets returns a registry holding the built-in presets.
func NewPresets() *Presets {
	p := &Presets{byName: make(map[string]game.Config), def: game.DefaultPreset}
	for _, name := range game.PresetNames() {
		cfg, _ := game.Preset(name)
		p.byName[name] = cfg
	}
	return p
}

// presetFile is the on-disk layout:
//
//	default = "penalty-shootout"
//
//	[presets.penalty-shootout]
//	base = "first-person"
//	max_rounds = 10
//	score_delay = "1s"
type presetFile struct {
	Default string                    `toml:"default"`
	Presets map[string]toml.Primitive `toml:"presets"`
}

type presetHeader struct {
	Base string `toml:"base"`
}

// LoadFile merges the presets defined in path into the registry. Each entry
// starts from its base preset (the default when unset) and overrides only
// the keys it names.
func (p *Presets) LoadFile(path string) error {
	var f presetFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("load presets %s: %w", path, err)
	}

	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	// Entries may build on each other, so resolve until no progress is made.
	pending := names
	for len(pending) > 0 {
		var next []string
		for _, name := range pending {
			prim := f.Presets[name]
			var hdr presetHeader
			if err := md.PrimitiveDecode(prim, &hdr); err != nil {
				return fmt.Errorf("preset %q: %w", name, err)
			}
			base := hdr.Base
			if base == "" {
				base = p.def
			}
			if base != name && contains(pending, base) {
				next = append(next, name)
				continue
			}
			cfg, ok := p.byName[base]
			if !ok {
				return fmt.Errorf("preset %q: unknown base preset %q", name, base)
			}
			if err := md.PrimitiveDecode(prim, &cfg); err != nil {
				return fmt.Errorf("preset %q: %w", name, err)
			}
			cfg.Name = name
			p.byName[name] = cfg.Normalize()
		}
		if len(next) == len(pending) {
			return fmt.Errorf("preset %q: base presets form a cycle", next[0])
		}
		pending = next
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load presets %s: unknown key %s", path, undecoded[0])
	}

	if f.Default != "" {
		if !p.has(f.Default) {
			return fmt.Errorf("default preset %q is not defined", f.Default)
		}
		p.def = f.Default
	}
	return nil
}

func (p *Presets) has(name string) bool {
	_, ok := p.byName[name]
	return ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SetDefault picks the preset used when a client does not ask for one.
func (p *Presets) SetDefault(name string) error {
	if !p.has(name) {
		return fmt.Errorf("unknown preset %q", name)
	}
	p.def = name
	return nil
}

// Default returns the name of the default preset.
func (p *Presets) Default() string { return p.def }

// Lookup returns the named preset; an empty name means the default.
func (p *Presets) Lookup(name string) (game.Config, error) {
	if name == "" {
		name = p.def
	}
	cfg, ok := p.byName[name]
	if !ok {
		return game.Config{}, fmt.Errorf("unknown preset %q", name)
	}
	return cfg, nil
}

// Names lists every registered preset in sorted order.
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.byName))
	for n := range p.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
