// cmd/briefsync/main.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// briefsync keeps a simulated airliner's FMS data in sync with the
// pilot's SimBrief dispatch cycle. While the aircraft is parked with
// engines off it polls for the latest OFP, writes the descent-winds
// uplink artifact, and creates or augments the saved-route file the
// avionics importer reads. SIGHUP forces a resync of the current leg.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"briefsync/fetch"
	"briefsync/log"
	"briefsync/route"
	"briefsync/sync"
)

var (
	pilotID   = flag.String("pilot", "", "SimBrief pilot id (overrides config)")
	plansDir  = flag.String("plans", "", "saved-routes directory (overrides config)")
	telemetry = flag.String("telemetry", "", "aircraft-state telemetry file (overrides config)")
	logLevel  = flag.String("loglevel", "", "log level: debug, info, warn, error")
	interval  = flag.Duration("interval", time.Second, "tick interval")
)

func main() {
	flag.Parse()

	// The configured log level has to be known before the logger exists;
	// load errors this early go to the default slog handler.
	cfg := LoadOrMakeDefaultConfig(nil)
	if *pilotID != "" {
		cfg.PilotID = *pilotID
	}
	if *plansDir != "" {
		cfg.PlansDir = *plansDir
	}
	if *telemetry != "" {
		cfg.TelemetryFile = *telemetry
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	lg := log.New(flagOr(cfg.LogLevel, "info"), "")
	defer lg.CatchAndLogCrash()

	cfg.Validate(lg)
	if err := cfg.Save(lg); err != nil {
		lg.Errorf("unable to save config: %v", err)
	}

	store, err := route.NewDirStore(cfg.PlansDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cfg.PlansDir, err)
		os.Exit(1)
	}

	m := sync.New(sync.Config{
		PilotID:   cfg.PilotID,
		Airframes: cfg.Airframes,
	}, fetch.NewClient(lg), store, lg)
	defer m.Stop()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var last sync.Status
	for {
		select {
		case <-quit:
			lg.Info("shutting down")
			return
		case <-reload:
			lg.Info("reload requested")
			m.RequestReload()
		case <-ticker.C:
			m.Tick(time.Now(), readAircraftState(cfg.TelemetryFile, lg))
			if st := m.Status(); st != last {
				lg.Info("status",
					"phase", st.Phase.String(), "origin", st.Origin,
					"destination", st.Destination, "error", st.LastError)
				last = st
			}
		}
	}
}

func flagOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// readAircraftState picks up the snapshot the host adapter drops each
// frame. No file (or a torn write mid-read) reads as no supported
// airframe, which idles the machine rather than failing it.
func readAircraftState(path string, lg *log.Logger) sync.AircraftState {
	var ac sync.AircraftState
	if path == "" {
		return ac
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			lg.Debugf("%s: %v", path, err)
		}
		return ac
	}

	var snap struct {
		Airframe       string `json:"airframe"`
		OnGround       bool   `json:"on_ground"`
		EnginesRunning bool   `json:"engines_running"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		lg.Debugf("%s: %v", path, err)
		return ac
	}
	return sync.AircraftState{
		Airframe:       snap.Airframe,
		OnGround:       snap.OnGround,
		EnginesRunning: snap.EnginesRunning,
	}
}
