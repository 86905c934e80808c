// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads user defaults from .asmrc files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const FILENAME = ".asmrc"

// Base is the numeric base used to display register values.
type Base string

const (
	BASE_HEX = Base("hex")
	BASE_DEC = Base("dec")
	BASE_BIN = Base("bin")
)

// Valid returns true for a known base.
func (base Base) Valid() bool {
	switch base {
	case BASE_HEX, BASE_DEC, BASE_BIN:
		return true
	}
	return false
}

// Byte formats an 8-bit value.
func (base Base) Byte(value uint8) string {
	switch base {
	case BASE_DEC:
		return strconv.Itoa(int(value))
	case BASE_BIN:
		return fmt.Sprintf("%08b", value)
	}
	return fmt.Sprintf("%02X", value)
}

// Word formats a 16-bit value.
func (base Base) Word(value uint16) string {
	switch base {
	case BASE_DEC:
		return strconv.Itoa(int(value))
	case BASE_BIN:
		return fmt.Sprintf("%016b", value)
	}
	return fmt.Sprintf("%04X", value)
}

// Defaults are the [defaults] section of a configuration file.
type Defaults struct {
	Highlight     bool    `toml:"highlight"`      // Highlight changed registers.
	ShowRegisters bool    `toml:"show_registers"` // Show final registers.
	Binary        bool    `toml:"binary"`         // Show registers in binary.
	Verbose       bool    `toml:"verbose"`        // Verbose logging.
	Warnings      bool    `toml:"warnings"`       // Show analysis warnings.
	Base          Base    `toml:"base"`           // Register display base.
	Clock         float64 `toml:"clock"`          // Clock rate in MHz.
	Limit         int     `toml:"limit"`          // Step budget, -1 for none.
}

// Config is the merged user configuration.
type Config struct {
	Verbose bool `toml:"-"` // If set, enables verbose logging.

	Defaults Defaults `toml:"defaults"`

	Loaded []string `toml:"-"` // Files that were read, in order.
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Base:  BASE_HEX,
			Clock: 5.0,
			Limit: 1000,
		},
	}
}

// Paths returns the configuration files in load order: the home
// directory, then the working directory.
func Paths() (paths []string) {
	home, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(home, FILENAME))
	}

	cwd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(cwd, FILENAME)
		if len(paths) == 0 || paths[0] != local {
			paths = append(paths, local)
		}
	}

	return
}

// Load reads the default configuration files.
func Load() (cfg *Config, err error) {
	return LoadFrom(Paths()...)
}

// LoadFrom reads configuration files in order, later files overriding
// earlier ones. Missing files are skipped.
func LoadFrom(paths ...string) (cfg *Config, err error) {
	cfg = Default()

	for _, path := range paths {
		err = cfg.LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
			continue
		}
		if err != nil {
			return
		}
	}

	return
}

// LoadFile merges a single configuration file. Only keys present in the
// file replace current values.
func (cfg *Config) LoadFile(path string) (err error) {
	defer func() {
		if err != nil {
			err = &ErrConfig{Path: path, Err: err}
		}
	}()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) > 0 {
		var keys ErrKeyUnknown
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		err = keys
		return
	}

	err = cfg.Validate()
	if err != nil {
		return
	}

	if cfg.Verbose {
		log.Printf("config: loaded %v", path)
	}

	cfg.Loaded = append(cfg.Loaded, path)

	return
}

// Validate checks the configuration values.
func (cfg *Config) Validate() (err error) {
	var errs []error

	if !cfg.Defaults.Base.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBaseInvalid, cfg.Defaults.Base))
	}

	if cfg.Defaults.Clock <= 0 {
		errs = append(errs, ErrClockInvalid)
	}

	err = errors.Join(errs...)
	return
}

// DisplayBase returns the base for register display. The binary flag
// takes precedence over the base setting.
func (cfg *Config) DisplayBase() Base {
	if cfg.Defaults.Binary {
		return BASE_BIN
	}
	return cfg.Defaults.Base
}

// Write saves the configuration as TOML.
func (cfg *Config) Write(w io.Writer) (err error) {
	_, err = io.WriteString(w, "# asm8085 configuration\n\n")
	if err != nil {
		return
	}

	err = toml.NewEncoder(w).Encode(cfg)
	return
}
