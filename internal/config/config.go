// Package config holds the animation tunables.
// Defaults are embedded; a YAML file on disk only needs the keys it overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Bounds policies understood by BoundsConfig.Policy.
const (
	PolicySpeedGated = "speed_gated"
	PolicyMargin     = "margin"
)

// Config holds all tunables for one animation session.
type Config struct {
	Window  WindowConfig      `yaml:"window"`
	Physics PhysicsConfig     `yaml:"physics"`
	Spawn   SpawnConfig       `yaml:"spawn"`
	Header  HeaderConfig      `yaml:"header"`
	Render  RenderConfig      `yaml:"render"`
	Color   ColorConfig       `yaml:"color"`
	Bounds  BoundsConfig      `yaml:"bounds"`
	Labels  map[string]string `yaml:"labels"` // key code -> display label
}

// WindowConfig controls the host window. Ignored in the browser.
type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	TPS       int    `yaml:"tps"`
	Resizable bool   `yaml:"resizable"`
}

// PhysicsConfig holds the per-tick kinematics constants.
type PhysicsConfig struct {
	Gravity  float64 `yaml:"gravity"`   // Subtracted from vertical speed every tick
	MaxSpeed float64 `yaml:"max_speed"` // Downward speed never exceeds this
}

// SpawnConfig holds the random ranges used when input spawns a key.
type SpawnConfig struct {
	MinSize          float64 `yaml:"min_size"`
	MaxSize          float64 `yaml:"max_size"`
	MinInitialSpeed  float64 `yaml:"min_initial_speed"`
	MaxInitialSpeed  float64 `yaml:"max_initial_speed"`
	MinInitialOffset float64 `yaml:"min_initial_offset"` // Below the bottom edge
	MaxInitialOffset float64 `yaml:"max_initial_offset"`
	MaxRotationSpeed float64 `yaml:"max_rotation_speed"` // Degrees per tick, either direction
	ClickLabel       string  `yaml:"click_label"`
}

// HeaderConfig controls the static title layout.
type HeaderConfig struct {
	Text                string  `yaml:"text"`
	MaxLetterRotation   float64 `yaml:"max_letter_rotation"` // Degrees, either direction
	MultilineBreakpoint float64 `yaml:"multiline_breakpoint"`
	LetterSpacing       float64 `yaml:"letter_spacing"`
	SizeDivisor         float64 `yaml:"size_divisor"`
	LineHeight          float64 `yaml:"line_height"` // Multiple of letter size
}

// RenderConfig holds colors and the proportions derived from key size.
type RenderConfig struct {
	Background  string       `yaml:"background"`
	Fill        string       `yaml:"fill"`
	Outline     string       `yaml:"outline"`
	Text        string       `yaml:"text"`
	CornerRatio float64      `yaml:"corner_ratio"`
	StrokeRatio float64      `yaml:"stroke_ratio"`
	MinStroke   float64      `yaml:"min_stroke"`
	WidthStep   float64      `yaml:"width_step"`
	LabelInset  float64      `yaml:"label_inset"`
	Glow        ShadowConfig `yaml:"glow"`
	LabelGlow   ShadowConfig `yaml:"label_glow"`
}

// ShadowConfig describes a glow. The color comes from the key.
type ShadowConfig struct {
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
	Blur    float64 `yaml:"blur"`
}

// ColorConfig fixes saturation and lightness for generated colors.
type ColorConfig struct {
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
}

// BoundsConfig selects how keys are culled at the bottom edge.
type BoundsConfig struct {
	Policy string  `yaml:"policy"`
	Margin float64 `yaml:"margin"` // Only used by PolicyMargin
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS <= 0 {
		bad("window.tps must be positive, got %d", c.Window.TPS)
	}

	if c.Physics.Gravity < 0 {
		bad("physics.gravity must not be negative, got %v", c.Physics.Gravity)
	}
	if c.Physics.MaxSpeed <= 0 {
		bad("physics.max_speed must be positive, got %v", c.Physics.MaxSpeed)
	}

	s := c.Spawn
	if s.MinSize <= 0 || s.MaxSize < s.MinSize {
		bad("spawn size range [%v, %v] must be positive and ordered", s.MinSize, s.MaxSize)
	}
	if s.MaxInitialSpeed < s.MinInitialSpeed {
		bad("spawn speed range [%v, %v] is reversed", s.MinInitialSpeed, s.MaxInitialSpeed)
	}
	if s.MaxInitialOffset < s.MinInitialOffset {
		bad("spawn offset range [%v, %v] is reversed", s.MinInitialOffset, s.MaxInitialOffset)
	}
	if s.MaxRotationSpeed < 0 {
		bad("spawn.max_rotation_speed must not be negative, got %v", s.MaxRotationSpeed)
	}
	if s.ClickLabel == "" {
		bad("spawn.click_label must not be empty")
	}

	if c.Header.SizeDivisor <= 0 {
		bad("header.size_divisor must be positive, got %v", c.Header.SizeDivisor)
	}
	if c.Header.LineHeight <= 0 {
		bad("header.line_height must be positive, got %v", c.Header.LineHeight)
	}

	for _, field := range []struct{ name, hex string }{
		{"background", c.Render.Background},
		{"fill", c.Render.Fill},
		{"outline", c.Render.Outline},
		{"text", c.Render.Text},
	} {
		if _, err := colorful.Hex(field.hex); err != nil {
			bad("render.%s %q is not a hex color", field.name, field.hex)
		}
	}
	if c.Render.WidthStep <= 0 {
		bad("render.width_step must be positive, got %v", c.Render.WidthStep)
	}
	if c.Render.CornerRatio < 0 || c.Render.StrokeRatio < 0 {
		bad("render ratios must not be negative")
	}

	if c.Color.Saturation < 0 || c.Color.Saturation > 1 || c.Color.Lightness < 0 || c.Color.Lightness > 1 {
		bad("color saturation/lightness must be within [0, 1]")
	}

	switch c.Bounds.Policy {
	case PolicySpeedGated:
	case PolicyMargin:
		// A margin smaller than the spawn offset kills keys the tick they appear.
		if c.Bounds.Margin < s.MaxInitialOffset {
			bad("bounds.margin %v must be at least spawn.max_initial_offset %v", c.Bounds.Margin, s.MaxInitialOffset)
		}
	default:
		bad("bounds.policy %q is not one of %s, %s", c.Bounds.Policy, PolicySpeedGated, PolicyMargin)
	}

	return errors.Join(errs...)
}

// Overrides are command-line values that win over the file. Zero values
// leave the file's setting alone.
type Overrides struct {
	Width  int
	Height int
	Policy string
}

// Load reads path like LoadConfig and applies o on top.
func Load(path string, o Overrides) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := o.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply copies the set overrides into c and revalidates.
func (o Overrides) Apply(c *Config) error {
	if o.Width > 0 {
		c.Window.Width = o.Width
	}
	if o.Height > 0 {
		c.Window.Height = o.Height
	}
	if o.Policy != "" {
		c.Bounds.Policy = o.Policy
	}
	return c.Validate()
}
