// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/beevik/fake6502/cpu"
)

// Config describes how a host is set up: which chip it emulates, which
// images are loaded into memory at startup and the initial settings.
type Config struct {
	Variant     string     `toml:"variant"`
	Trace       bool       `toml:"trace"`
	ResetVector int        `toml:"reset_vector"` // -1 keeps the vector in memory
	Settings    Settings   `toml:"settings"`
	Load        []LoadSpec `toml:"load"`
}

// A LoadSpec names a memory image to load.
type LoadSpec struct {
	Path   string `toml:"path"`
	Addr   int    `toml:"addr"`   // load address for binary images
	Format string `toml:"format"` // "bin" or "hex"; empty picks by extension
}

var errConfig = errors.New("invalid config")

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Variant:     cpu.WDC65C02.Name,
		ResetVector: -1,
		Settings:    DefaultSettings(),
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q: %w", path, undec[0].String(), errConfig)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

func (c *Config) validate() error {
	if _, err := cpu.LookupVariant(c.Variant); err != nil {
		return fmt.Errorf("%v: %w", err, errConfig)
	}
	if c.ResetVector < -1 || c.ResetVector > 0xffff {
		return fmt.Errorf("reset_vector $%X out of range: %w", c.ResetVector, errConfig)
	}
	for _, l := range c.Load {
		switch l.Format {
		case "", "bin", "hex":
		default:
			return fmt.Errorf("load %s: unknown format %q: %w", l.Path, l.Format, errConfig)
		}
		if l.Addr < 0 || l.Addr > 0xffff {
			return fmt.Errorf("load %s: address $%X out of range: %w", l.Path, l.Addr, errConfig)
		}
	}
	return nil
}
