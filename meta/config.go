// Package meta ties the pipeline together: it parses a pattern, compiles
// it to a program, extracts prefix literals for a prefilter and runs the
// configured evaluator.
//
// An Engine is immutable after compilation and safe for concurrent use.
// Per-search scratch space (visited sets, work-stacks, thread lists) comes
// from a sync.Pool.
package meta

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls compilation limits and evaluation.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.Mode = meta.BreadthFirst
//	engine, err := meta.CompileWithConfig("a(b|c)*", config)
type Config struct {
	// Mode selects the evaluator.
	// Default: DepthFirst
	Mode Mode `yaml:"mode"`

	// EnablePrefilter enables literal-based candidate skipping for
	// unanchored search. Results never depend on it.
	// Default: true
	EnablePrefilter bool `yaml:"enable_prefilter"`

	// MaxLiterals limits the number of prefix literals extracted.
	// Default: 64
	MaxLiterals int `yaml:"max_literals"`

	// MaxLiteralLen limits the length of each prefix literal in bytes.
	// Default: 64
	MaxLiteralLen int `yaml:"max_literal_len"`

	// MaxInsts caps the program length. Zero means the whole address space.
	// Default: 0
	MaxInsts int `yaml:"max_insts"`

	// MaxRecursionDepth limits how deeply nested a pattern may be.
	// Default: 1000
	MaxRecursionDepth int `yaml:"max_recursion_depth"`

	// MaxVisitedBits bounds the depth-first visited set, which needs
	// program length × (input length + 1) bits.
	// Default: 2M bits (256KB)
	MaxVisitedBits int `yaml:"max_visited_bits"`

	// MaxStackFrames bounds the depth-first work-stack.
	// Default: 1 << 20
	MaxStackFrames int `yaml:"max_stack_frames"`

	// FallbackOnExhaustion retries a depth-first evaluation breadth-first
	// when it runs out of visited set or stack instead of failing.
	// Default: true
	FallbackOnExhaustion bool `yaml:"fallback_on_exhaustion"`

	// StrictParens rejects a ')' that closes no group. By default such a
	// paren is ignored.
	// Default: false
	StrictParens bool `yaml:"strict_parens"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:                 DepthFirst,
		EnablePrefilter:      true,
		MaxLiterals:          64,
		MaxLiteralLen:        64,
		MaxInsts:             0,
		MaxRecursionDepth:    1000,
		MaxVisitedBits:       256 * 1024 * 8,
		MaxStackFrames:       1 << 20,
		FallbackOnExhaustion: true,
		StrictParens:         false,
	}
}

// Validate checks if the configuration is valid.
// Returns a *ConfigError naming the first parameter out of range.
//
// Valid ranges:
//   - Mode: DepthFirst or BreadthFirst
//   - MaxLiterals: 1 to 1,000 (with EnablePrefilter)
//   - MaxLiteralLen: 1 to 256 (with EnablePrefilter)
//   - MaxInsts: 0 or more
//   - MaxRecursionDepth: 10 to 100,000
//   - MaxVisitedBits: 64 or more
//   - MaxStackFrames: 1 or more
func (c Config) Validate() error {
	if c.Mode != DepthFirst && c.Mode != BreadthFirst {
		return &ConfigError{
			Field:   "Mode",
			Message: "must be depth-first or breadth-first",
		}
	}

	if c.EnablePrefilter {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{
				Field:   "MaxLiterals",
				Message: "must be between 1 and 1,000",
			}
		}
		if c.MaxLiteralLen < 1 || c.MaxLiteralLen > 256 {
			return &ConfigError{
				Field:   "MaxLiteralLen",
				Message: "must be between 1 and 256",
			}
		}
	}

	if c.MaxInsts < 0 {
		return &ConfigError{
			Field:   "MaxInsts",
			Message: "must not be negative",
		}
	}

	if c.MaxRecursionDepth < 10 || c.MaxRecursionDepth > 100_000 {
		return &ConfigError{
			Field:   "MaxRecursionDepth",
			Message: "must be between 10 and 100,000",
		}
	}

	if c.MaxVisitedBits < 64 {
		return &ConfigError{
			Field:   "MaxVisitedBits",
			Message: "must be at least 64",
		}
	}

	if c.MaxStackFrames < 1 {
		return &ConfigError{
			Field:   "MaxStackFrames",
			Message: "must be at least 1",
		}
	}

	return nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "regvm: invalid config: " + e.Field + ": " + e.Message
}

// LoadConfig decodes a YAML configuration from r on top of DefaultConfig.
// Unknown keys are rejected, and an empty document yields the defaults.
//
// Example document:
//
//	mode: breadth-first
//	enable_prefilter: false
//	max_insts: 4096
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// LoadConfigFile reads a YAML configuration file. See LoadConfig.
func LoadConfigFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	config, err := LoadConfig(file)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}
