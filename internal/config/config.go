// Package config loads bfjit settings from CUE or TOML files.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"

	"github.com/roach88/bfjit/internal/engine"
)

//go:embed schema.cue
var schemaCUE string

// ErrUnsupportedFormat is returned by Load for files that are neither
// .cue nor .toml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds the settings shared by the run, trace and test commands.
type Config struct {
	MemorySize int    `json:"memory_size" toml:"memory_size"`
	MaxSteps   int64  `json:"max_steps" toml:"max_steps"`
	Optimize   bool   `json:"optimize" toml:"optimize"`
	Database   string `json:"database" toml:"database"`
}

// Default returns the built-in settings: 4 MiB of memory, no step limit,
// optimizer on, no run history.
func Default() Config {
	return Config{
		MemorySize: engine.DefaultMemorySize,
		Optimize:   true,
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MemorySize <= 0 {
		return fmt.Errorf("memory_size must be positive, got %d", c.MemorySize)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}

// EngineOptions converts the settings into engine options.
func (c Config) EngineOptions() []engine.EngineOption {
	return []engine.EngineOption{
		engine.WithMemorySize(c.MemorySize),
		engine.WithMaxSteps(c.MaxSteps),
	}
}

// Load reads a config file, choosing the format by extension.
// Unset fields take their Default() values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		cfg, err = parseCUE(path, data)
	case ".toml":
		cfg, err = parseTOML(data)
	default:
		return Config{}, fmt.Errorf("%s: %w %q (want .cue or .toml)", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parseCUE unifies the file with the embedded #Config definition, which
// supplies defaults and rejects unknown fields.
func parseCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

func parseTOML(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}
