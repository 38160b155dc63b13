package casexpr

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds per-expression compilation and evaluation options.
type Config struct {
	// Settings holds the host-wide evaluation settings, normally loaded
	// from a settings file. Nil means defaults.
	Settings *Settings

	// NoOptimize disables constant folding and algebraic simplification.
	// The compiled program then mirrors the source structure exactly,
	// which is mainly useful for debugging postfix dumps.
	NoOptimize bool

	// TemporaryActive marks that the host has temporary transformations
	// in effect, which makes functions such as LAG warn that they read
	// the permanent data.
	TemporaryActive bool

	// Rand is the source for UNIFORM and NORMAL.
	// If nil, a source seeded from Settings.Seed (or the clock when the
	// seed is zero) is created at compile time.
	Rand *rand.Rand

	// Now supplies the current time for $DATE, $TIME and related system
	// variables. If nil, time.Now is used.
	Now func() time.Time

	// LagNum returns the value of a numeric variable n cases back, or
	// SysMis when unavailable. If nil, LAG always yields SysMis.
	LagNum func(v *Variable, n int) float64

	// LagStr returns the value of a string variable n cases back, or nil
	// when unavailable. If nil, LAG always yields blanks.
	LagStr func(v *Variable, n int) []byte
}

// Settings are the host-wide options that affect expression results.
// The zero value means defaults; applyDefaults fills them in.
type Settings struct {
	// Epoch is the first year of the 100-year window used to interpret
	// two-digit years in date constructors (default: 69 years before the
	// current year).
	Epoch int `yaml:"epoch"`

	// FuzzBits is the number of trailing mantissa bits TRUNC and RND
	// forgive when a computed value sits just under an integer
	// (default 6).
	FuzzBits int `yaml:"fuzzbits"`

	// ViewLength and ViewWidth are the screen dimensions reported by
	// $LENGTH and $WIDTH (defaults 24 and 79).
	ViewLength int `yaml:"viewlength"`
	ViewWidth  int `yaml:"viewwidth"`

	// Strict enables compatibility warnings for extension functions.
	Strict bool `yaml:"strict"`

	// Seed seeds the random source for UNIFORM and NORMAL. Zero seeds
	// from the clock.
	Seed int64 `yaml:"seed"`

	// MaxWarnings caps the runtime warnings kept per evaluation
	// (default 100).
	MaxWarnings int `yaml:"maxwarnings"`
}

// applyDefaults fills in default values for unset Settings fields.
func (s *Settings) applyDefaults() {
	if s.Epoch == 0 {
		s.Epoch = time.Now().Year() - 69
	}
	if s.FuzzBits == 0 {
		s.FuzzBits = 6
	}
	if s.ViewLength == 0 {
		s.ViewLength = 24
	}
	if s.ViewWidth == 0 {
		s.ViewWidth = 79
	}
	if s.MaxWarnings == 0 {
		s.MaxWarnings = 100
	}
}

// LoadSettings reads settings from a YAML file.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return ParseSettings(raw)
}

// ParseSettings parses YAML settings data.
func ParseSettings(raw []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return &s, nil
}
