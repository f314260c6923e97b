// cmd/briefsync/config.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"briefsync/log"
	"briefsync/util"
)

type Config struct {
	// PilotID is the SimBrief user id whose dispatches we follow.
	PilotID string

	// PlansDir is the simulator's saved-routes folder, where both the
	// route file and the uplink artifact land.
	PlansDir string

	// Airframes are model-path substrings of the aircraft this tool
	// should serve; empty serves any.
	Airframes []string

	// TelemetryFile is where the host adapter drops the aircraft-state
	// snapshot each frame.
	TelemetryFile string

	LogLevel string
}

func defaultConfig() *Config {
	return &Config{
		PlansDir:  filepath.Join(".", "FMS plans"),
		Airframes: []string{"B737-800X"},
		LogLevel:  "info",
	}
}

func configFilePath(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}

	dir = filepath.Join(dir, "briefsync")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		lg.Errorf("%s: unable to make directory for config file: %v", dir, err)
	}

	return filepath.Join(dir, "config.json")
}

func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}

// Save writes the config only if it differs from what is on disk.
func (c *Config) Save(lg *log.Logger) error {
	var b strings.Builder
	if err := c.Encode(&b); err != nil {
		return err
	}
	changed, err := util.ReplaceFile(configFilePath(lg), []byte(b.String()))
	if changed {
		lg.Infof("saved config to %s", configFilePath(lg))
	}
	return err
}

func LoadOrMakeDefaultConfig(lg *log.Logger) *Config {
	cfg := defaultConfig()

	fn := configFilePath(lg)
	data, err := os.ReadFile(fn)
	if err != nil {
		if !os.IsNotExist(err) {
			lg.Errorf("%s: unable to read config file: %v", fn, err)
		}
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		lg.Errorf("%s: unable to parse config file: %v", fn, err)
		return defaultConfig()
	}
	return cfg
}

// Validate reports problems a user can fix; the machine idles until they
// do.
func (c *Config) Validate(lg *log.Logger) {
	if c.PilotID == "" {
		lg.Warnf("no SimBrief pilot id configured; set one with -pilot")
	} else if !util.IsAllNumbers(c.PilotID) {
		lg.Warnf("%s: pilot id is usually numeric", c.PilotID)
	}
}
