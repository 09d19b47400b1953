// Package config loads huffc's project-level configuration: the EVM
// dialect to target, the entry macro names, and the recursion ceiling
// codegen enforces against runaway macro expansion.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is huffc's project configuration, typically loaded from the
// file named by the CLI's --config flag (huffc.yaml in the working
// directory by default).
type Config struct {
	// Shanghai selects the PUSH0 zero-literal dialect over PUSH1 0x00.
	Shanghai bool `yaml:"shanghai"`
	// MainMacro is the macro expanded into runtime bytecode.
	MainMacro string `yaml:"main_macro"`
	// ConstructorMacro is the macro expanded into constructor logic, run
	// once at deploy time.
	ConstructorMacro string `yaml:"constructor_macro"`
	// MaxDepth bounds macro invocation recursion.
	MaxDepth int `yaml:"max_depth"`
}

// DefaultMainMacro and DefaultConstructorMacro are the conventional entry
// points huffc looks for when a config file doesn't override them.
const (
	DefaultMainMacro        = "MAIN"
	DefaultConstructorMacro = "CONSTRUCTOR"
	// DefaultMaxDepth bounds macro invocation recursion; deep enough for any
	// realistic macro tree, shallow enough to turn an accidental cycle into
	// a prompt error instead of a hang.
	DefaultMaxDepth = 256
)

// Default returns the configuration huffc uses when no huffc.yaml is
// present.
func Default() Config {
	return Config{
		Shanghai:         true,
		MainMacro:        DefaultMainMacro,
		ConstructorMacro: DefaultConstructorMacro,
		MaxDepth:         DefaultMaxDepth,
	}
}

// Load reads a huffc.yaml configuration file, filling in defaults for any
// field the file omits. A missing file is not an error: Load returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	// Unmarshal onto the defaults so omitted fields keep their default
	// value instead of zeroing out.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MainMacro == "" {
		cfg.MainMacro = DefaultMainMacro
	}
	if cfg.ConstructorMacro == "" {
		cfg.ConstructorMacro = DefaultConstructorMacro
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg, nil
}
