// sync/machine.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sync drives the gate-to-gate synchronization cycle: it watches
// the aircraft-state signal, polls the planning service while the
// aircraft is parked with engines off, and runs the parser, freshness
// evaluator, route synthesizer and uplink writer in order. It never
// polls mid-flight and never clobbers a completed cycle until a
// turnaround is detected.
package sync

import (
	"context"
	"errors"
	"strings"
	sa "sync/atomic"
	"time"

	"briefsync/fetch"
	"briefsync/log"
	"briefsync/ofp"
	"briefsync/route"
	"briefsync/uplink"
	"briefsync/util"
)

type Fetcher interface {
	FetchLatest(ctx context.Context, pilotID string) (*ofp.FlightPlan, error)
}

type Config struct {
	PilotID string

	// Airframes lists model-path substrings of the supported aircraft;
	// empty means any airframe.
	Airframes []string

	// Fetch retry pacing; zero values take the defaults below.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// Surface a warning to status after this many consecutive transient
	// fetch failures.
	WarnAfter int
}

const (
	defaultBaseBackoff = 15 * time.Second
	defaultMaxBackoff  = 4 * time.Minute
	defaultWarnAfter   = 5
)

// legCache persists the identity of the last completed leg across
// restarts so rejoining the simulator at the gate does not redo it.
type legCache struct {
	Origin      string
	Destination string
	RequestID   int64
}

const legCacheFile = "lastleg.msgpack"

// Machine owns the cycle state. Tick and Status must be called from the
// host tick thread; RequestReload may be called from anywhere.
type Machine struct {
	cfg    Config
	lg     *log.Logger
	store  route.Store
	worker *worker

	cycle   Cycle
	nextReq uint64
	reload  sa.Bool
}

func New(cfg Config, f Fetcher, st route.Store, lg *log.Logger) *Machine {
	if cfg.BaseBackoff == 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.WarnAfter == 0 {
		cfg.WarnAfter = defaultWarnAfter
	}

	m := &Machine{
		cfg:    cfg,
		lg:     lg,
		store:  st,
		worker: newWorker(f, lg),
	}

	var leg legCache
	if _, err := util.CacheRetrieveObject(legCacheFile, &leg); err == nil {
		m.cycle.LastOrigin = leg.Origin
		m.cycle.LastDestination = leg.Destination
		m.cycle.LastRequestID = leg.RequestID
		lg.Infof("restored last leg %s-%s (request id %d)", leg.Origin, leg.Destination, leg.RequestID)
	}

	return m
}

func (m *Machine) Stop() {
	m.worker.stop()
}

// RequestReload forces a resync. It takes effect on the next tick and
// only while the aircraft is on the ground with engines off; a reload
// issued while a fetch is in flight supersedes that fetch's result.
func (m *Machine) RequestReload() {
	m.reload.Store(true)
}

// Status returns the current cycle's read-only projection.
func (m *Machine) Status() Status {
	s := Status{
		Phase:       m.cycle.Phase,
		Origin:      m.cycle.LastOrigin,
		Destination: m.cycle.LastDestination,
	}
	if plan := m.cycle.plan; plan != nil {
		s.Origin, s.Destination = plan.Origin, plan.Destination
	}
	if m.cycle.LastErr != nil {
		s.LastError = m.cycle.LastErr.Error()
	}
	return s
}

// Tick advances the machine by at most one transition. It never blocks:
// fetches run on the worker and their results are drained here.
func (m *Machine) Tick(now time.Time, ac AircraftState) {
	if !m.airframeSupported(ac) || m.cfg.PilotID == "" {
		m.cycle.Phase = Idle
		return
	}
	if m.cycle.Phase == Idle {
		m.cycle.Phase = AwaitingGroundStop
	}

	reload := m.reload.Swap(false)
	if reload && !ac.AtGate() {
		// Reload is only honored at the gate.
		m.lg.Warnf("reload requested while not at gate; ignored")
		reload = false
	}

	switch m.cycle.Phase {
	case AwaitingGroundStop:
		if !ac.AtGate() {
			return
		}
		if m.cycle.plan != nil {
			// A turnaround probe already delivered the new document.
			m.cycle.Phase = Parsed
			return
		}
		m.beginPoll(now, reload)

	case Polling:
		if ac.EnginesRunning {
			// Engines started before a document showed up; freeze until
			// the next turnaround.
			m.cycle.Phase = Standby
			return
		}
		if reload {
			m.beginPoll(now, true)
			return
		}
		m.drainResult(now)
		if m.cycle.Phase == Polling {
			m.maybeRetry(now)
		}

	case Parsed:
		if reload {
			m.resetCycle()
			m.beginPoll(now, true)
			return
		}
		if now.Before(m.cycle.retryAt) {
			// A failed reconciliation booked a backoff window.
			return
		}
		m.reconcile(now)

	case Reconciled:
		if ac.EnginesRunning {
			m.cycle.Phase = Standby
		} else if reload {
			m.resetCycle()
			m.beginPoll(now, true)
		}

	case Standby:
		// Never leave Standby while an engine is running, regardless of
		// ground state.
		if ac.EnginesRunning || !ac.OnGround {
			return
		}
		if reload {
			m.resetCycle()
			m.beginPoll(now, true)
			return
		}
		// At the gate after a completed leg: probe for a new OFP. The
		// cycle is rebuilt only if the probe shows a different document.
		m.drainResult(now)
		if m.cycle.Phase == Standby {
			m.maybeRetry(now)
		}
	}
}

func (m *Machine) airframeSupported(ac AircraftState) bool {
	if len(m.cfg.Airframes) == 0 {
		return true
	}
	for _, af := range m.cfg.Airframes {
		if strings.Contains(ac.Airframe, af) {
			return true
		}
	}
	return false
}

func (m *Machine) resetCycle() {
	m.cycle = Cycle{
		Phase:           AwaitingGroundStop,
		LastOrigin:      m.cycle.LastOrigin,
		LastDestination: m.cycle.LastDestination,
		LastRequestID:   m.cycle.LastRequestID,
	}
}

func (m *Machine) beginPoll(now time.Time, force bool) {
	m.cycle.Phase = Polling
	m.cycle.force = m.cycle.force || force
	m.cycle.RetryCount = 0
	m.cycle.backoff = 0
	m.cycle.retryAt = time.Time{}
	m.issueFetch(now)
}

func (m *Machine) issueFetch(now time.Time) {
	id := m.nextReq + 1
	if !m.worker.submit(id, m.cfg.PilotID) {
		// Worker still busy; the previous result will be discarded as
		// stale once it lands. Try again next tick.
		return
	}
	m.nextReq = id
	m.cycle.reqID = id
	m.cycle.inFlight = true
	m.cycle.LastAttempt = now
	m.lg.Debugf("fetch %d issued for pilot %s", id, m.cfg.PilotID)
}

// maybeRetry issues the next fetch once the backoff window has elapsed;
// a zero retryAt means one is due immediately.
func (m *Machine) maybeRetry(now time.Time) {
	if m.cycle.inFlight || now.Before(m.cycle.retryAt) {
		return
	}
	m.issueFetch(now)
}

func (m *Machine) bumpBackoff(now time.Time) {
	if m.cycle.backoff == 0 {
		m.cycle.backoff = m.cfg.BaseBackoff
	} else {
		m.cycle.backoff = min(2*m.cycle.backoff, m.cfg.MaxBackoff)
	}
	m.cycle.retryAt = now.Add(m.cycle.backoff)
}

func (m *Machine) drainResult(now time.Time) {
	res, ok := m.worker.poll()
	if !ok {
		return
	}
	if res.id != m.cycle.reqID {
		m.lg.Debugf("discarding stale fetch result %d (current %d)", res.id, m.cycle.reqID)
		return
	}
	m.cycle.inFlight = false

	if res.err != nil {
		switch {
		case errors.Is(res.err, fetch.ErrNotYetAvailable):
			// Expected while the user hasn't generated a dispatch yet;
			// retry indefinitely (bounded rate) and keep quiet.
			m.cycle.RetryCount = 0
		case errors.Is(res.err, fetch.ErrTransient), errors.Is(res.err, fetch.ErrBadResponse):
			m.cycle.RetryCount++
			if m.cycle.RetryCount >= m.cfg.WarnAfter {
				m.cycle.LastErr = res.err
				m.lg.Warnf("%d consecutive fetch failures: %v", m.cycle.RetryCount, res.err)
			}
		default:
			// Parse error: this document is unusable. Surface it; keep
			// polling at a bounded rate, since only a newly generated
			// document can clear the condition.
			m.cycle.LastErr = res.err
			m.lg.Errorf("OFP unusable: %v", res.err)
		}
		m.bumpBackoff(now)
		return
	}

	// Success resets the retry pacing; reconciliation starts from a
	// clean backoff.
	plan := res.plan
	m.cycle.RetryCount = 0
	m.cycle.backoff = 0
	m.cycle.retryAt = time.Time{}

	if !m.cycle.force && plan.RequestID == m.cycle.LastRequestID &&
		plan.Origin == m.cycle.LastOrigin && plan.Destination == m.cycle.LastDestination {
		// Same document as the completed leg: no turnaround yet.
		m.lg.Debugf("no new dispatch (request id %d)", plan.RequestID)
		m.bumpBackoff(now)
		return
	}

	m.cycle.LastErr = nil
	if m.cycle.Phase == Standby {
		// Turnaround detected: rebuild the cycle, keep the document.
		m.resetCycle()
		m.cycle.plan = plan
		m.lg.Infof("turnaround: new leg %s-%s", plan.Origin, plan.Destination)
		return
	}
	m.cycle.plan = plan
	m.cycle.Phase = Parsed
}

// reconcile runs the freshness evaluator, route synthesizer and uplink
// writer. Any failure leaves the cycle in Parsed, retry eligible; a
// synthesis warning does not stop the uplink from being written.
func (m *Machine) reconcile(now time.Time) {
	plan := m.cycle.plan

	cand, err := route.ScanCandidates(m.store, plan.Origin, plan.Destination)
	if err != nil {
		m.cycle.LastErr = err
		m.bumpBackoff(now)
		return
	}

	res, err := route.Synthesize(m.store, plan, cand, now)
	if err != nil {
		m.cycle.LastErr = err
		m.bumpBackoff(now)
		return
	}
	if res.Warning != nil {
		m.lg.Warnf("route file kept as-is: %v", res.Warning)
	}

	if _, err := uplink.Write(m.store, res.Stem(), plan); err != nil {
		m.cycle.LastErr = err
		m.bumpBackoff(now)
		return
	}

	m.cycle.Phase = Reconciled
	m.cycle.LastOrigin = plan.Origin
	m.cycle.LastDestination = plan.Destination
	m.cycle.LastRequestID = plan.RequestID
	m.cycle.LastErr = res.Warning
	m.cycle.force = false

	leg := legCache{Origin: plan.Origin, Destination: plan.Destination, RequestID: plan.RequestID}
	if err := util.CacheStoreObject(legCacheFile, leg); err != nil {
		m.lg.Warnf("unable to cache leg: %v", err)
	}

	m.lg.Info("cycle reconciled",
		"origin", plan.Origin, "destination", plan.Destination,
		"route_file", res.Name, "created", res.Created, "augmented", res.Augmented)
}
