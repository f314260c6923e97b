// sync/state.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sync

import (
	"time"

	"briefsync/ofp"
)

type Phase int

const (
	// Idle: unsupported airframe or no pilot id configured; no action.
	Idle Phase = iota
	// AwaitingGroundStop: waiting for on-ground, all-engines-off.
	AwaitingGroundStop
	// Polling: fetch in progress or retrying with backoff.
	Polling
	// Parsed: document normalized, reconciliation pending.
	Parsed
	// Reconciled: artifacts written; cycle complete.
	Reconciled
	// Standby: an engine started; the cycle result is frozen until a
	// turnaround is detected.
	Standby
)

func (p Phase) String() string {
	return [...]string{"Idle", "AwaitingGroundStop", "Polling", "Parsed", "Reconciled", "Standby"}[p]
}

// AircraftState is the host simulation's telemetry snapshot passed into
// each tick.
type AircraftState struct {
	Airframe       string
	OnGround       bool
	EnginesRunning bool
}

// AtGate reports on-ground with all engines shut down, the only
// condition under which polling is permitted.
func (a AircraftState) AtGate() bool {
	return a.OnGround && !a.EnginesRunning
}

// Cycle is the machine's working memory for one gate-to-gate cycle. It
// is exclusively owned by the Machine; the presentation layer only ever
// sees the Status projection.
type Cycle struct {
	Phase Phase

	// Identity of the last completed leg, used to tell a genuinely new
	// leg from a re-poll of the same one.
	LastOrigin      string
	LastDestination string
	LastRequestID   int64

	// Fetch bookkeeping.
	RetryCount  int
	LastAttempt time.Time
	LastErr     error

	plan     *ofp.FlightPlan // pending or completed parse result
	reqID    uint64          // correlation id of the in-flight fetch
	inFlight bool
	force    bool // reload requested: resync even for an unchanged document
	backoff  time.Duration
	retryAt  time.Time
}

// Status is the read-only projection exposed to the presentation layer.
type Status struct {
	Phase       Phase
	Origin      string
	Destination string
	LastError   string
}
