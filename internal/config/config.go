// Package config handles loading optimizer configuration from files.
//
// Configuration can be specified in a JSON file named yulopt.json or .yuloptrc.
// The config file is searched for in the current directory and parent directories.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Ahmed-Ali/solidity/internal/optimizer"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// IgnoreMemory disables elimination of memory stores
	IgnoreMemory *bool `json:"ignoreMemory,omitempty"`

	// LoopDepthLimit bounds the exact loop analysis depth
	LoopDepthLimit *int `json:"loopDepthLimit,omitempty"`

	// RemoveUnusedFunctions deletes unreachable function definitions
	RemoveUnusedFunctions *bool `json:"removeUnusedFunctions,omitempty"`

	// MinifyWhitespace prints the output with minimal whitespace
	MinifyWhitespace *bool `json:"minifyWhitespace,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"yulopt.json",
	".yuloptrc",
	".yuloptrc.json",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, no config found
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ToOptions converts a Config to optimizer.Options, using defaults for unset fields.
func (c *Config) ToOptions() optimizer.Options {
	var opts optimizer.Options

	if c.IgnoreMemory != nil {
		opts.IgnoreMemory = *c.IgnoreMemory
	}
	if c.LoopDepthLimit != nil {
		opts.LoopDepthLimit = *c.LoopDepthLimit
	}
	if c.RemoveUnusedFunctions != nil {
		opts.RemoveUnusedFunctions = *c.RemoveUnusedFunctions
	}
	if c.MinifyWhitespace != nil {
		opts.MinifyWhitespace = *c.MinifyWhitespace
	}

	return opts
}

// MergeOptions holds CLI flag values to merge with a config file.
// A nil field means the flag was not specified on the command line.
type MergeOptions struct {
	IgnoreMemory          *bool
	LoopDepthLimit        *int
	RemoveUnusedFunctions *bool
	MinifyWhitespace      *bool
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) optimizer.Options {
	opts := c.ToOptions()

	// CLI overrides
	if cli.IgnoreMemory != nil {
		opts.IgnoreMemory = *cli.IgnoreMemory
	}
	if cli.LoopDepthLimit != nil {
		opts.LoopDepthLimit = *cli.LoopDepthLimit
	}
	if cli.RemoveUnusedFunctions != nil {
		opts.RemoveUnusedFunctions = *cli.RemoveUnusedFunctions
	}
	if cli.MinifyWhitespace != nil {
		opts.MinifyWhitespace = *cli.MinifyWhitespace
	}

	return opts
}
