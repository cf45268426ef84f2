// This file is part of eforth - https://github.com/db47h/eforth
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the run-time configuration of the eforth command,
// read from a TOML file and overridable by command line flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileName is the configuration file looked up in the current directory and
// in the user configuration directory.
const FileName = "eforth.toml"

// Config represents the interpreter configuration.
type Config struct {
	Memory struct {
		Size  int    `toml:"size"`  // memory image size in bytes
		Image string `toml:"image"` // boot from this image instead of the built-in kernel
	} `toml:"memory"`

	Stacks struct {
		Data   int `toml:"data"`   // data stack size in cells, power of two
		Return int `toml:"return"` // return stack size in cells, power of two
	} `toml:"stacks"`

	Terminal struct {
		Raw  bool `toml:"raw"`  // switch the terminal to raw mode
		Line bool `toml:"line"` // line-edited input with history
	} `toml:"terminal"`

	Startup struct {
		Files []string `toml:"files"` // Forth source files fed before the console
	} `toml:"startup"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Memory.Size = 1 << 16
	cfg.Stacks.Data = 256
	cfg.Stacks.Return = 256
	cfg.Terminal.Raw = true
	return cfg
}

// ConfigPath returns the path of the configuration file in the user
// configuration directory.
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "user config dir")
	}
	return filepath.Join(dir, "eforth", FileName), nil
}

// LoadConfig reads the configuration from path. With an empty path, it looks
// for FileName in the current directory, then in the user configuration
// directory; a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		if _, err := os.Stat(FileName); err == nil {
			path = FileName
		} else if p, err := ConfigPath(); err == nil {
			if _, err = os.Stat(p); err == nil {
				path = p
			}
		}
		if path == "" {
			return cfg, nil
		}
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}
