package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
	"github.com/san-kum/fieldsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps   = 2000
	DefaultCenterX = 400.0
	DefaultCenterY = 300.0
	DefaultOffsetX = 100.0
	DefaultKp      = 0.2
	DefaultKi      = 0.0
	DefaultKd      = 0.5
)

type Config struct {
	Name    string        `yaml:"name"`
	Steps   int           `yaml:"steps"`
	Seed    int64         `yaml:"seed"`
	Field   FieldConfig   `yaml:"field"`
	Body    BodyConfig    `yaml:"body"`
	Impulse ImpulseConfig `yaml:"impulse"`
	Pointer PointerConfig `yaml:"pointer"`
	Logger  LoggerConfig  `yaml:"logger"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Vec() dynamo.Vec2 { return dynamo.V(p.X, p.Y) }

type SourceConfig struct {
	AngleDeg float64 `yaml:"angle_deg"`
	Charge   float64 `yaml:"charge"`
}

type FieldConfig struct {
	Constant    float64        `yaml:"constant"`
	Restitution float64        `yaml:"restitution"`
	MinDistance float64        `yaml:"min_distance"`
	MaxDistance float64        `yaml:"max_distance"`
	Center      Point          `yaml:"center"`
	Radius      float64        `yaml:"radius"`
	Diameter    float64        `yaml:"diameter"`
	ChargeScale float64        `yaml:"charge_scale"`
	Sources     []SourceConfig `yaml:"sources"`
}

type BodyConfig struct {
	Offset    Point   `yaml:"offset"`
	Charge    float64 `yaml:"charge"`
	Mass      float64 `yaml:"mass"`
	Drag      float64 `yaml:"drag"`
	RestSpeed float64 `yaml:"rest_speed"`
}

type ImpulseConfig struct {
	Threshold    float64 `yaml:"threshold"`
	MaxMagnitude float64 `yaml:"max_magnitude"`
	Damping      float64 `yaml:"damping"`
}

// PointerConfig selects the scripted pointer used by headless runs.
type PointerConfig struct {
	Kind      string  `yaml:"kind"`
	Radius    float64 `yaml:"radius"`
	Period    int     `yaml:"period"`
	Amplitude float64 `yaml:"amplitude"`
	Target    Point   `yaml:"target"`
	Kp        float64 `yaml:"kp"`
	Ki        float64 `yaml:"ki"`
	Kd        float64 `yaml:"kd"`
}

type LoggerConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:  "triad",
		Steps: DefaultSteps,
		Field: FieldConfig{
			Constant:    sim.DefaultFieldConstant,
			Restitution: sim.DefaultRestitution,
			MinDistance: sim.DefaultMinDistance,
			MaxDistance: sim.DefaultMaxDistance,
			Center:      Point{X: DefaultCenterX, Y: DefaultCenterY},
			Radius:      physics.DefaultRingRadius,
			Diameter:    physics.DefaultDiameter,
			ChargeScale: 1,
			Sources: []SourceConfig{
				{AngleDeg: 90, Charge: -0.7},
				{AngleDeg: 150, Charge: 1},
				{AngleDeg: 210, Charge: 1},
			},
		},
		Body: BodyConfig{
			Offset:    Point{X: DefaultOffsetX},
			Charge:    1,
			Mass:      1,
			Drag:      physics.DefaultDrag,
			RestSpeed: physics.DefaultRestSpeed,
		},
		Impulse: ImpulseConfig{
			Threshold:    control.DefaultThreshold,
			MaxMagnitude: control.DefaultMaxMagnitude,
			Damping:      control.DefaultDamping,
		},
		Pointer: PointerConfig{
			Kind:   "still",
			Radius: 150,
			Period: 240,
			Target: Point{X: DefaultCenterX, Y: DefaultCenterY},
			Kp:     DefaultKp,
			Ki:     DefaultKi,
			Kd:     DefaultKd,
		},
		Logger: LoggerConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything a run needs before any component is built.
func (c *Config) Validate() error {
	var errs []error
	if c.Steps <= 0 {
		errs = append(errs, fmt.Errorf("steps must be positive, got %d", c.Steps))
	}
	if err := c.SimParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Body.Mass <= 0 || !finite(c.Body.Mass) {
		errs = append(errs, fmt.Errorf("%w: body mass %v", dynamo.ErrInvalidMass, c.Body.Mass))
	}
	for name, v := range map[string]float64{
		"field.diameter":        c.Field.Diameter,
		"body.drag":             c.Body.Drag,
		"body.rest_speed":       c.Body.RestSpeed,
		"impulse.threshold":     c.Impulse.Threshold,
		"impulse.max_magnitude": c.Impulse.MaxMagnitude,
		"impulse.damping":       c.Impulse.Damping,
	} {
		if v < 0 || !finite(v) {
			errs = append(errs, fmt.Errorf("%w: %s must be non-negative, got %v", dynamo.ErrParameterBounds, name, v))
		}
	}
	if !finite(c.Field.ChargeScale) || !finite(c.Body.Charge) {
		errs = append(errs, fmt.Errorf("%w: charges must be finite", dynamo.ErrParameterBounds))
	}
	return errors.Join(errs...)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (c *Config) SimParams() sim.Params {
	return sim.Params{
		FieldConstant: c.Field.Constant,
		Restitution:   c.Field.Restitution,
		MinDistance:   c.Field.MinDistance,
		MaxDistance:   c.Field.MaxDistance,
	}
}

func (c *Config) ImpulseParams() control.ImpulseConfig {
	return control.ImpulseConfig{
		Threshold:    c.Impulse.Threshold,
		MaxMagnitude: c.Impulse.MaxMagnitude,
		Damping:      c.Impulse.Damping,
	}
}

func (c *Config) Center() dynamo.Vec2 { return c.Field.Center.Vec() }

// Ring converts the configured placements to radians and applies the
// charge scale.
func (c *Config) Ring() physics.Ring {
	placements := make([]physics.Placement, len(c.Field.Sources))
	for i, s := range c.Field.Sources {
		placements[i] = physics.Placement{
			Angle:  s.AngleDeg * math.Pi / 180,
			Charge: s.Charge * c.Field.ChargeScale,
		}
	}
	return physics.Ring{
		Center:     c.Center(),
		Radius:     c.Field.Radius,
		Diameter:   c.Field.Diameter,
		Placements: placements,
	}
}

func (c *Config) Sources() ([]physics.Source, error) {
	return c.Ring().Sources()
}

// BodyStart is where the body is placed at step 0.
func (c *Config) BodyStart() dynamo.Vec2 { return c.Center().Add(c.Body.Offset.Vec()) }

func (c *Config) NewBody() (*physics.Body, error) {
	b, err := physics.NewBody(c.BodyStart(), c.Body.Charge, c.Body.Mass)
	if err != nil {
		return nil, err
	}
	b.Drag = c.Body.Drag
	b.RestSpeed = c.Body.RestSpeed
	return b, nil
}

type param struct {
	get func(*Config) float64
	set func(*Config, float64)
}

var params = map[string]param{
	"field_constant": {func(c *Config) float64 { return c.Field.Constant }, func(c *Config, v float64) { c.Field.Constant = v }},
	"restitution":    {func(c *Config) float64 { return c.Field.Restitution }, func(c *Config, v float64) { c.Field.Restitution = v }},
	"min_distance":   {func(c *Config) float64 { return c.Field.MinDistance }, func(c *Config, v float64) { c.Field.MinDistance = v }},
	"max_distance":   {func(c *Config) float64 { return c.Field.MaxDistance }, func(c *Config, v float64) { c.Field.MaxDistance = v }},
	"diameter":       {func(c *Config) float64 { return c.Field.Diameter }, func(c *Config, v float64) { c.Field.Diameter = v }},
	"ring_radius":    {func(c *Config) float64 { return c.Field.Radius }, func(c *Config, v float64) { c.Field.Radius = v }},
	"charge_scale":   {func(c *Config) float64 { return c.Field.ChargeScale }, func(c *Config, v float64) { c.Field.ChargeScale = v }},
	"body_charge":    {func(c *Config) float64 { return c.Body.Charge }, func(c *Config, v float64) { c.Body.Charge = v }},
	"mass":           {func(c *Config) float64 { return c.Body.Mass }, func(c *Config, v float64) { c.Body.Mass = v }},
	"drag":           {func(c *Config) float64 { return c.Body.Drag }, func(c *Config, v float64) { c.Body.Drag = v }},
	"threshold":      {func(c *Config) float64 { return c.Impulse.Threshold }, func(c *Config, v float64) { c.Impulse.Threshold = v }},
	"damping":        {func(c *Config) float64 { return c.Impulse.Damping }, func(c *Config, v float64) { c.Impulse.Damping = v }},
	"max_impulse":    {func(c *Config) float64 { return c.Impulse.MaxMagnitude }, func(c *Config, v float64) { c.Impulse.MaxMagnitude = v }},
}

// SetParam sets a numeric parameter by name, for sweeps and scenarios.
func (c *Config) SetParam(name string, value float64) error {
	p, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	p.set(c, value)
	return nil
}

// Param reads a numeric parameter by name.
func (c *Config) Param(name string) (float64, bool) {
	p, ok := params[name]
	if !ok {
		return 0, false
	}
	return p.get(c), true
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Field.Sources = append([]SourceConfig(nil), c.Field.Sources...)
	return &out
}
