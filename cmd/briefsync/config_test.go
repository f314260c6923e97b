// cmd/briefsync/config_test.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import "testing"

func TestConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := LoadOrMakeDefaultConfig(nil)
	if cfg.LogLevel != "info" {
		t.Errorf("got default log level %q", cfg.LogLevel)
	}
	if len(cfg.Airframes) == 0 {
		t.Error("no default airframe filter")
	}
}

// Saved settings, the log level included, must survive a reload; main
// applies them before the logger is built.
func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := LoadOrMakeDefaultConfig(nil)
	cfg.PilotID = "12345"
	cfg.LogLevel = "debug"
	if err := cfg.Save(nil); err != nil {
		t.Fatal(err)
	}

	loaded := LoadOrMakeDefaultConfig(nil)
	if loaded.PilotID != "12345" {
		t.Errorf("got pilot id %q", loaded.PilotID)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("got log level %q, expected the saved debug", loaded.LogLevel)
	}

	// Saving unchanged settings rewrites nothing.
	if err := loaded.Save(nil); err != nil {
		t.Fatal(err)
	}
}
