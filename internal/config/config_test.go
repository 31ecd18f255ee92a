package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "triad" {
		t.Errorf("expected name triad, got %s", cfg.Name)
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if got := cfg.BodyStart(); got != dynamo.V(500, 300) {
		t.Errorf("expected body start (500, 300), got %s", got)
	}
}

func TestDefaultSourcesMatchReferenceRing(t *testing.T) {
	cfg := DefaultConfig()
	got, err := cfg.Sources()
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		x, y, charge float64
	}{
		{400, 500, -0.7},
		{400 - 200*math.Sqrt(3)/2, 400, 1},
		{400 - 200*math.Sqrt(3)/2, 200, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(got))
	}
	for i, w := range want {
		p := got[i].Position()
		if math.Abs(p.X-w.x) > 1e-9 || math.Abs(p.Y-w.y) > 1e-9 {
			t.Errorf("source %d: expected (%.3f, %.3f), got %s", i, w.x, w.y, p)
		}
		if got[i].Charge() != w.charge {
			t.Errorf("source %d: expected charge %v, got %v", i, w.charge, got[i].Charge())
		}
		if got[i].Diameter() != 100 {
			t.Errorf("source %d: expected diameter 100, got %v", i, got[i].Diameter())
		}
	}
}

func TestChargeScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Field.ChargeScale = 2

	sources, err := cfg.Sources()
	if err != nil {
		t.Fatal(err)
	}
	if sources[0].Charge() != -1.4 || sources[1].Charge() != 2 {
		t.Errorf("charges not scaled: %v, %v", sources[0].Charge(), sources[1].Charge())
	}
}

func TestNewBody(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Body.Drag = 0.1
	cfg.Body.Mass = 3

	b, err := cfg.NewBody()
	if err != nil {
		t.Fatal(err)
	}
	if b.Drag != 0.1 || b.Mass() != 3 || b.RestSpeed != 0.1 {
		t.Errorf("unexpected body: %+v mass=%v", b, b.Mass())
	}

	cfg.Body.Mass = 0
	if _, err := cfg.NewBody(); !errors.Is(err, dynamo.ErrInvalidMass) {
		t.Errorf("expected ErrInvalidMass, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"zero steps", func(c *Config) { c.Steps = 0 }, nil},
		{"zero mass", func(c *Config) { c.Body.Mass = 0 }, dynamo.ErrInvalidMass},
		{"negative diameter", func(c *Config) { c.Field.Diameter = -1 }, dynamo.ErrParameterBounds},
		{"negative drag", func(c *Config) { c.Body.Drag = -0.01 }, dynamo.ErrParameterBounds},
		{"negative threshold", func(c *Config) { c.Impulse.Threshold = -3 }, dynamo.ErrParameterBounds},
		{"inverted clamp", func(c *Config) { c.Field.MaxDistance = 10 }, dynamo.ErrParameterBounds},
		{"nan charge scale", func(c *Config) { c.Field.ChargeScale = math.NaN() }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.yaml")
	data := []byte(`
name: custom
steps: 500
field:
  diameter: 40
  sources:
    - {angle_deg: 0, charge: 2}
pointer:
  kind: orbit
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Name != "custom" || cfg.Steps != 500 || cfg.Pointer.Kind != "orbit" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.Field.Sources) != 1 || cfg.Field.Sources[0].Charge != 2 {
		t.Errorf("expected source list replaced, got %+v", cfg.Field.Sources)
	}
	// untouched keys keep their defaults
	if cfg.Field.Constant != 5000 || cfg.Body.Mass != 1 || cfg.Field.ChargeScale != 1 {
		t.Errorf("defaults lost: %+v", cfg.Field)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("steps: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("hexring")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "hexring" || len(loaded.Field.Sources) != 6 {
		t.Errorf("unexpected config after save: %+v", loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dipole")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Field.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(cfg.Field.Sources))
	}

	// presets are fresh copies
	cfg.Field.Sources[0].Charge = 99
	if GetPreset("dipole").Field.Sources[0].Charge == 99 {
		t.Error("preset mutated through returned config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i, name := range names {
		if i > 0 && names[i-1] > name {
			t.Errorf("presets not sorted: %v", names)
		}
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if _, err := cfg.Sources(); err != nil {
			t.Errorf("preset %s sources: %v", name, err)
		}
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.SetParam("restitution", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetParam("drag", 0); err != nil {
		t.Fatal(err)
	}
	if cfg.Field.Restitution != 0.9 || cfg.Body.Drag != 0 {
		t.Errorf("params not applied: %+v %+v", cfg.Field, cfg.Body)
	}
	if err := cfg.SetParam("gravity", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}

	if v, ok := cfg.Param("restitution"); !ok || v != 0.9 {
		t.Errorf("Param(restitution) = %v, %v", v, ok)
	}
	if _, ok := cfg.Param("gravity"); ok {
		t.Error("expected unknown parameter to be missing")
	}

	names := ParamNames()
	for _, n := range names {
		if _, ok := cfg.Param(n); !ok {
			t.Errorf("listed parameter %s has no getter", n)
		}
	}
	if len(names) == 0 || names[0] != "body_charge" {
		t.Errorf("unexpected param names %v", names)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.Clone()
	c.Field.Sources[0].Charge = 5
	c.Steps = 1

	if cfg.Field.Sources[0].Charge != -0.7 || cfg.Steps != DefaultSteps {
		t.Error("clone shares state with original")
	}
}
