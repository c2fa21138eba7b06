// Package scenario turns preset names or slider positions into normalized
// domain.Scenario values.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

// BaselinePreset is always available and leaves every hazard at 1.0.
const BaselinePreset = "Baseline"

//go:embed presets.yaml
var defaultPresetsYAML []byte

// Preset is a named, fixed combination of hazard multipliers.
type Preset struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description" json:"description,omitempty"`
	Multipliers map[string]float64 `yaml:"multipliers" json:"multipliers"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads presets from a YAML file, or the embedded defaults when
// path is empty.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return ParsePresets(defaultPresetsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes and validates a presets document.
func ParsePresets(data []byte) ([]Preset, error) {
	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(pf.Presets) == 0 {
		return nil, errors.New("parse presets: no presets defined")
	}
	return pf.Presets, nil
}

// Configurator maps presets and slider positions to scenarios. It is
// read-only after construction.
type Configurator struct {
	presets []Preset
	byName  map[string]domain.Scenario
}

// New validates presets and builds a Configurator. A Baseline preset is
// prepended when the list does not define one.
func New(presets []Preset) (*Configurator, error) {
	c := &Configurator{byName: make(map[string]domain.Scenario, len(presets)+1)}

	hasBaseline := false
	for _, p := range presets {
		if p.Name == BaselinePreset {
			hasBaseline = true
		}
	}
	if !hasBaseline {
		presets = append([]Preset{{Name: BaselinePreset, Description: "Current NRI hazard levels."}}, presets...)
	}

	for _, p := range presets {
		if p.Name == "" {
			return nil, errors.New("preset with empty name")
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}

		s := domain.NewScenario()
		s.Preset = p.Name
		for col, m := range p.Multipliers {
			h, ok := domain.ParseHazard(col)
			if !ok {
				return nil, fmt.Errorf("preset %q: unknown hazard %q", p.Name, col)
			}
			if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
				return nil, fmt.Errorf("preset %q: invalid multiplier %v for %s", p.Name, m, col)
			}
			s = s.With(h, m)
		}

		c.byName[p.Name] = s
		c.presets = append(c.presets, Preset{Name: p.Name, Description: p.Description, Multipliers: s.Multipliers()})
	}
	return c, nil
}

// Presets returns the presets in declaration order with all 18 hazards
// filled in.
func (c *Configurator) Presets() []Preset {
	return append([]Preset(nil), c.presets...)
}

// PresetNames returns the preset names in declaration order.
func (c *Configurator) PresetNames() []string {
	names := make([]string, len(c.presets))
	for i, p := range c.presets {
		names[i] = p.Name
	}
	return names
}

// FromPreset returns the scenario for a named preset.
func (c *Configurator) FromPreset(name string) (domain.Scenario, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// FromMultipliers builds a scenario from explicit slider values. Hazards
// not present in m stay at 1.0.
func (c *Configurator) FromMultipliers(m map[domain.Hazard]float64) domain.Scenario {
	s := domain.NewScenario()
	for h, v := range m {
		s = s.With(h, v)
	}
	return s
}

// CheckBounds reports every preset multiplier the sliders cannot display.
func (c *Configurator) CheckBounds(b SliderBounds) error {
	var errs []error
	for _, p := range c.presets {
		for _, h := range domain.AllHazards() {
			if v := p.Multipliers[h.Column()]; v < b.Min || v > b.Max {
				errs = append(errs, fmt.Errorf("preset %q: %s multiplier %v is outside the slider range [%v, %v]", p.Name, h.Column(), v, b.Min, b.Max))
			}
		}
	}
	return errors.Join(errs...)
}

// SliderBounds is the numeric range and step of every hazard slider.
type SliderBounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Validate checks the bounds are usable for a slider.
func (b SliderBounds) Validate() error {
	if b.Min < 0 || b.Max <= b.Min {
		return fmt.Errorf("slider range [%v, %v] is invalid", b.Min, b.Max)
	}
	if b.Step <= 0 || b.Step > b.Max-b.Min {
		return fmt.Errorf("slider step %v is invalid", b.Step)
	}
	if b.Min > 1 || b.Max < 1 {
		return fmt.Errorf("slider range [%v, %v] must include 1.0", b.Min, b.Max)
	}
	return nil
}

// Clamp limits v to [Min, Max].
func (b SliderBounds) Clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Min), b.Max)
}
