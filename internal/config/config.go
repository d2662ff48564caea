// Package config loads the time slider plugin configuration. JSON configs load unchanged since
// JSON is valid YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timeslider/internal/app/slider"
	"timeslider/internal/domain/temporal"
)

var ErrInvalidConfig = errors.New("invalid slider config")

const (
	NearestDiscrete = "discrete"
	NearestAbsolute = "absolute"
)

// Config is the plugin configuration: one entry per slider.
type Config struct {
	Sliders []Slider `yaml:"sliders"`
}

type Slider struct {
	Title             Localized         `yaml:"title"`
	Description       Localized         `yaml:"description"`
	Locked            bool              `yaml:"locked"`
	Reversed          bool              `yaml:"reversed"`
	Filtering         *bool             `yaml:"filtering"`
	DefaultValue      StringList        `yaml:"defaultValue"`
	DelayMS           int64             `yaml:"delay"`
	LayerPaths        []string          `yaml:"layerPaths"`
	TemporalDimension TemporalDimension `yaml:"temporalDimension"`
}

type TemporalDimension struct {
	Field         string     `yaml:"field"`
	FieldAlias    string     `yaml:"fieldAlias"`
	SingleHandle  bool       `yaml:"singleHandle"`
	NearestValues string     `yaml:"nearestValues"`
	StepMS        int64      `yaml:"step"`
	Range         StringList `yaml:"range"`
}

// StringList accepts a scalar or a sequence of strings.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return err
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// Localized is a per-language string. A plain scalar is stored under "en".
type Localized map[string]string

func (l *Localized) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = Localized{"en": node.Value}
		return nil
	}
	var out map[string]string
	if err := node.Decode(&out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Load reads and parses a config file. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Resolve turns every slider and layer path pair into a layer spec.
func (c *Config) Resolve() ([]slider.LayerSpec, error) {
	var out []slider.LayerSpec
	seen := map[string]bool{}
	for i, s := range c.Sliders {
		specs, err := s.resolve()
		if err != nil {
			return nil, fmt.Errorf("slider %d: %w", i, err)
		}
		for _, spec := range specs {
			if seen[spec.LayerPath] {
				return nil, fmt.Errorf("%w: slider %d: layer path %q configured twice", ErrInvalidConfig, i, spec.LayerPath)
			}
			seen[spec.LayerPath] = true
			out = append(out, spec)
		}
	}
	return out, nil
}

func (s Slider) resolve() ([]slider.LayerSpec, error) {
	paths := make([]string, 0, len(s.LayerPaths))
	for _, p := range s.LayerPaths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no layer paths", ErrInvalidConfig)
	}
	if s.DelayMS < 0 {
		return nil, fmt.Errorf("%w: negative delay %d", ErrInvalidConfig, s.DelayMS)
	}

	domain, err := s.TemporalDimension.domain()
	if err != nil {
		return nil, err
	}
	defaults, err := seed(domain, s.DefaultValue)
	if err != nil {
		return nil, err
	}

	filtering := true
	if s.Filtering != nil {
		filtering = *s.Filtering
	}
	delay := temporal.DefaultDelay
	if s.DelayMS > 0 {
		delay = time.Duration(s.DelayMS) * time.Millisecond
	}

	out := make([]slider.LayerSpec, 0, len(paths))
	for _, p := range paths {
		out = append(out, slider.LayerSpec{
			LayerPath:     p,
			Domain:        domain,
			Title:         s.Title,
			Description:   s.Description,
			Field:         s.TemporalDimension.Field,
			FieldAlias:    s.TemporalDimension.FieldAlias,
			Locked:        s.Locked,
			Reversed:      s.Reversed,
			Delay:         delay,
			Filtering:     filtering,
			DefaultValues: append([]int64(nil), defaults...),
		})
	}
	return out, nil
}

func (td TemporalDimension) domain() (temporal.Domain, error) {
	values, err := temporal.ParseOGCRange(td.Range)
	if err != nil {
		return temporal.Domain{}, fmt.Errorf("%w: range: %v", ErrInvalidConfig, err)
	}
	var d temporal.Domain
	switch td.NearestValues {
	case "", NearestDiscrete:
		d, err = temporal.NewDomain(0, 0, values, td.SingleHandle, 0)
	case NearestAbsolute:
		d, err = temporal.NewDomain(values[0], values[len(values)-1], nil, td.SingleHandle, td.StepMS)
	default:
		return temporal.Domain{}, fmt.Errorf("%w: unknown nearestValues %q", ErrInvalidConfig, td.NearestValues)
	}
	if err != nil {
		return temporal.Domain{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return d, nil
}

// seed picks the initial window: both default values when two are given, a single default
// found in the range for single-handle sliders, otherwise the first value or the full span.
func seed(d temporal.Domain, raw StringList) ([]int64, error) {
	parsed := make([]int64, 0, len(raw))
	for _, r := range raw {
		t, err := temporal.ParseInstant(r)
		if err != nil {
			return nil, fmt.Errorf("%w: defaultValue: %v", ErrInvalidConfig, err)
		}
		parsed = append(parsed, temporal.Millis(t))
	}

	switch {
	case len(parsed) == 2 && !d.SingleHandle:
		return temporal.Normalize(d, parsed), nil
	case len(parsed) == 1 && d.SingleHandle && inRange(d, parsed[0]):
		return parsed, nil
	case d.SingleHandle:
		return []int64{d.Min}, nil
	default:
		return []int64{d.Min, d.Max}, nil
	}
}

func inRange(d temporal.Domain, v int64) bool {
	if d.Discrete() {
		return d.IndexOf(v) >= 0
	}
	return d.Contains(v)
}
