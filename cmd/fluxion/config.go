package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type benchProfile struct {
	Name       string
	Shape      string
	Widths     []int
	Depths     []int
	Iterations int
	Warmup     int
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Name:       "fast",
		Shape:      "all",
		Widths:     []int{1, 10},
		Depths:     []int{1, 10},
		Iterations: 100,
		Warmup:     10,
	},
	"standard": {
		Name:       "standard",
		Shape:      "all",
		Widths:     []int{1, 10, 100},
		Depths:     []int{1, 10, 100},
		Iterations: 1000,
		Warmup:     100,
	},
	"stress": {
		Name:       "stress",
		Shape:      "all",
		Widths:     []int{1, 10, 100, 1000},
		Depths:     []int{1, 10, 100, 1000},
		Iterations: 1000,
		Warmup:     100,
	},
}

// benchConfig is a fully resolved benchmark run: profile defaults, then
// config file overrides, then flag overrides.
type benchConfig struct {
	Profile    string
	Shape      string
	Widths     []int
	Depths     []int
	Iterations int
	Warmup     int
	JSONOutput string
}

// bench.toml key mapping to benchmark settings.
type fileConfig struct {
	Profile    string `toml:"profile"`
	Shape      string `toml:"shape"`
	Widths     []int  `toml:"widths"`
	Depths     []int  `toml:"depths"`
	Iterations int    `toml:"iterations"`
	Warmup     int    `toml:"warmup"`
	JSON       string `toml:"json"`
}

func configFromProfile(base benchProfile) benchConfig {
	return benchConfig{
		Profile:    base.Name,
		Shape:      base.Shape,
		Widths:     append([]int(nil), base.Widths...),
		Depths:     append([]int(nil), base.Depths...),
		Iterations: base.Iterations,
		Warmup:     base.Warmup,
	}
}

// loadBenchConfig reads a bench config file and overlays it onto the
// named profile. An explicit profile name wins over the one in the
// file; keys absent from the file keep the profile's values.
func loadBenchConfig(path string, profileName string) (benchConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return benchConfig{}, fmt.Errorf("load bench config: %w", err)
	}

	name := strings.ToLower(strings.TrimSpace(profileName))
	if name == "" && meta.IsDefined("profile") {
		name = strings.ToLower(strings.TrimSpace(raw.Profile))
	}
	if name == "" {
		name = "standard"
	}

	base, ok := benchProfiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("load bench config: unknown profile %q", name)
	}
	cfg := configFromProfile(base)

	if meta.IsDefined("shape") {
		cfg.Shape = strings.ToLower(strings.TrimSpace(raw.Shape))
	}
	if meta.IsDefined("widths") {
		cfg.Widths = raw.Widths
	}
	if meta.IsDefined("depths") {
		cfg.Depths = raw.Depths
	}
	if meta.IsDefined("iterations") {
		cfg.Iterations = raw.Iterations
	}
	if meta.IsDefined("warmup") {
		cfg.Warmup = raw.Warmup
	}
	if meta.IsDefined("json") {
		cfg.JSONOutput = strings.TrimSpace(raw.JSON)
	}

	return cfg, nil
}

func (cfg benchConfig) validate() error {
	switch cfg.Shape {
	case "all", "chain", "diamond", "grid":
	default:
		return fmt.Errorf("invalid shape %q (want chain, diamond, grid, or all)", cfg.Shape)
	}
	if len(cfg.Widths) == 0 {
		return errors.New("widths must not be empty")
	}
	for _, w := range cfg.Widths {
		if w <= 0 {
			return fmt.Errorf("widths must be > 0, got %d", w)
		}
	}
	if len(cfg.Depths) == 0 {
		return errors.New("depths must not be empty")
	}
	for _, d := range cfg.Depths {
		if d <= 0 {
			return fmt.Errorf("depths must be > 0, got %d", d)
		}
	}
	if cfg.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if cfg.Warmup < 0 {
		return errors.New("warmup must be >= 0")
	}
	return nil
}
