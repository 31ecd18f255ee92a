package config

import "sort"

// Presets tweak DefaultConfig into named fields.
var Presets = map[string]func(*Config){
	"triad": func(c *Config) {},
	"dipole": func(c *Config) {
		c.Field.Radius = 150
		c.Field.Sources = []SourceConfig{
			{AngleDeg: 0, Charge: 1},
			{AngleDeg: 180, Charge: -1},
		}
		c.Body.Offset = Point{X: 0, Y: 120}
	},
	"hexring": func(c *Config) {
		c.Field.Diameter = 60
		c.Field.Sources = []SourceConfig{
			{AngleDeg: 0, Charge: 1},
			{AngleDeg: 60, Charge: -1},
			{AngleDeg: 120, Charge: 1},
			{AngleDeg: 180, Charge: -1},
			{AngleDeg: 240, Charge: 1},
			{AngleDeg: 300, Charge: -1},
		}
		c.Body.Offset = Point{}
	},
	"empty": func(c *Config) {
		c.Field.Sources = nil
		c.Pointer.Kind = "orbit"
	},
	"bumper": func(c *Config) {
		c.Field.Radius = 0
		c.Field.Diameter = 160
		c.Field.Restitution = 0.9
		c.Field.Sources = []SourceConfig{{AngleDeg: 0, Charge: 1}}
		c.Body.Offset = Point{X: 180, Y: 40}
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Name = name
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
