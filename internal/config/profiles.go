package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"gopkg.in/yaml.v3"
)

// Built-in profile names.
const (
	ProfileImage  = "image"
	ProfileRaster = "raster"
	ProfileRobust = "robust"
)

// Profiles is a set of named codec configurations.
type Profiles struct {
	defaultName string
	configs     map[string]codec.Config
}

// Builtin returns the three built-in profiles with image as the default.
func Builtin() *Profiles {
	return &Profiles{
		defaultName: ProfileImage,
		configs: map[string]codec.Config{
			ProfileImage:  codec.DefaultConfig(),
			ProfileRaster: rasterConfig(),
			ProfileRobust: robustConfig(),
		},
	}
}

func rasterConfig() codec.Config {
	cfg := codec.DefaultConfig()
	cfg.Strategy = codec.StrategyAdditive
	cfg.Positions = []codec.Position{{Row: 2, Col: 3}}
	cfg.Strength = 10
	cfg.MaxModification = 20
	cfg.RepetitionCount = 9
	cfg.Selection = codec.DefaultSelection(codec.SelectAll)
	return cfg
}

func robustConfig() codec.Config {
	cfg := codec.DefaultConfig()
	cfg.Strength = 50
	cfg.MaxModification = 60
	cfg.RepetitionCount = 9
	cfg.Selection = codec.DefaultSelection(codec.SelectAll)
	return cfg
}

// file is the on-disk layout of a profile file.
type file struct {
	Default  string               `yaml:"default"`
	Profiles map[string]yaml.Node `yaml:"profiles"`
}

// Load reads a YAML profile file and merges it over the built-in profiles.
// An empty path returns the built-ins unchanged.
func Load(path string) (*Profiles, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse merges YAML profile data over the built-in profiles.
func Parse(data []byte) (*Profiles, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	p := Builtin()
	// Overrides of existing profiles are applied before new profiles so a
	// new profile can be based on an adjusted built-in.
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		_, bi := p.configs[names[i]]
		_, bj := p.configs[names[j]]
		if bi != bj {
			return bi
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		node := f.Profiles[name]
		cfg, err := p.merge(name, &node)
		if err != nil {
			return nil, err
		}
		p.configs[name] = cfg
	}

	if f.Default != "" {
		if _, ok := p.configs[f.Default]; !ok {
			return nil, fmt.Errorf("%w: default %q", ErrUnknownProfile, f.Default)
		}
		p.defaultName = f.Default
	}
	return p, nil
}

func (p *Profiles) merge(name string, node *yaml.Node) (codec.Config, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := node.Decode(&head); err != nil {
		return codec.Config{}, fmt.Errorf("profile %q: %w", name, err)
	}

	baseName := name
	if head.Base != "" {
		baseName = head.Base
	}
	base, ok := p.configs[baseName]
	if !ok {
		if head.Base != "" {
			return codec.Config{}, fmt.Errorf("profile %q: %w: base %q", name, ErrUnknownProfile, head.Base)
		}
		base = p.configs[p.defaultName]
	}

	cfg := base.Clone()
	if err := node.Decode(&cfg); err != nil {
		return codec.Config{}, fmt.Errorf("profile %q: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return codec.Config{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return cfg, nil
}

// Get returns a copy of the named profile. An empty name selects the
// default profile.
func (p *Profiles) Get(name string) (codec.Config, error) {
	if name == "" {
		name = p.defaultName
	}
	cfg, ok := p.configs[name]
	if !ok {
		return codec.Config{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return cfg.Clone(), nil
}

// DefaultName is the profile used when none is named.
func (p *Profiles) DefaultName() string {
	return p.defaultName
}

// Names lists the defined profiles in sorted order.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.configs))
	for name := range p.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithWorkers returns a copy of p whose profiles all use n workers.
func (p *Profiles) WithWorkers(n int) *Profiles {
	out := &Profiles{defaultName: p.defaultName, configs: make(map[string]codec.Config, len(p.configs))}
	for name, cfg := range p.configs {
		cfg = cfg.Clone()
		cfg.Workers = n
		out.configs[name] = cfg
	}
	return out
}
