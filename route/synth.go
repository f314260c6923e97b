// route/synth.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"briefsync/ofp"
)

// ErrCannotAugment is a warning, not a failure: the cycle still completes
// with the existing route file untouched.
var ErrCannotAugment = errors.New("Existing route file cannot take procedure references")

// Result reports what Synthesize did.
type Result struct {
	// Name of the route file the avionics should load; its stem names
	// the uplink artifact too.
	Name      string
	Created   bool // a fresh file was written; false if an identical one was already there
	Augmented bool // procedure trailer appended to a kept file
	Warning   error
}

// Stem returns the route file name without its extension.
func (r Result) Stem() string {
	if i := strings.LastIndexByte(r.Name, '.'); i >= 0 {
		return r.Name[:i]
	}
	return r.Name
}

// Synthesize reconciles the on-disk route file with the parsed plan.
// If the candidate is missing or stale it writes a fresh file named
// OriginDestination.fms from the plan's navlog; otherwise it keeps the
// candidate's route untouched and at most appends procedure references.
// Synthesis is idempotent: identical inputs produce byte-identical
// output, and an unchanged file is not rewritten at all.
func Synthesize(st Store, plan *ofp.FlightPlan, cand *Candidate, now time.Time) (Result, error) {
	if ShouldReplace(cand, now) {
		name := plan.Origin + plan.Destination + ".fms"
		data := renderFMS(plan)
		changed, err := st.WriteFile(name, data)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", name, err)
		}
		return Result{Name: name, Created: changed}, nil
	}

	res := Result{Name: cand.Name}
	trailer := procedureTrailer(plan)
	if trailer == "" {
		return res, nil
	}

	data, err := st.ReadFile(cand.Name)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", cand.Name, err)
	}

	switch {
	case !isFMS(cand.Name, data):
		// The other sub-format (or something we don't recognize); route
		// correctness from the original source outranks uplink
		// convenience, so leave it alone.
		res.Warning = fmt.Errorf("%s: %w", cand.Name, ErrCannotAugment)
	case hasProcedureTrailer(data):
		if !strings.HasSuffix(normalizeNewlines(data), trailer) {
			// Conflicting procedure references already present.
			res.Warning = fmt.Errorf("%s: %w", cand.Name, ErrCannotAugment)
		}
	default:
		augmented := normalizeNewlines(data)
		if !strings.HasSuffix(augmented, "\n") {
			augmented += "\n"
		}
		augmented += trailer
		changed, err := st.WriteFile(cand.Name, []byte(augmented))
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", cand.Name, err)
		}
		res.Augmented = changed
	}
	return res, nil
}

// renderFMS builds an X-Plane FMS v3 route file: endpoint airports as
// type-1 records, navlog fixes as type-11 records, count line holding the
// number of records minus one.
func renderFMS(plan *ofp.FlightPlan) []byte {
	var b strings.Builder
	b.WriteString("I\n3 version\n1\n")

	n := len(plan.Fixes) + 2
	fmt.Fprintf(&b, "%d\n", n-1)

	writeFix := func(kind int, fix ofp.RouteFix) {
		fmt.Fprintf(&b, "%d %s 0.000000 %.6f %.6f\n", kind, fix.Ident, fix.Lat, fix.Lon)
	}
	writeFix(1, plan.OriginFix)
	for _, fix := range plan.Fixes {
		writeFix(11, fix)
	}
	writeFix(1, plan.DestinationFix)

	b.WriteString(procedureTrailer(plan))
	return []byte(b.String())
}

// procedureTrailer renders the departure/arrival references appended to a
// route file; the route importer skips ';' lines, downstream tooling
// reads them.
func procedureTrailer(plan *ofp.FlightPlan) string {
	var b strings.Builder
	writeProc := func(tag string, p *ofp.Procedure) {
		if p == nil || p.Name == "" {
			return
		}
		b.WriteString(";" + tag + " " + p.Name)
		if p.Transition != "" {
			b.WriteString("." + p.Transition)
		}
		b.WriteString("\n")
	}
	writeProc("SID", plan.Departure)
	writeProc("STAR", plan.Arrival)
	return b.String()
}

func hasProcedureTrailer(data []byte) bool {
	for line := range strings.Lines(normalizeNewlines(data)) {
		if strings.HasPrefix(line, ";SID ") || strings.HasPrefix(line, ";STAR ") {
			return true
		}
	}
	return false
}

// isFMS recognizes the plain-text sub-format we know how to augment.
func isFMS(name string, data []byte) bool {
	if !strings.HasSuffix(strings.ToLower(name), ".fms") {
		return false
	}
	s := normalizeNewlines(data)
	return strings.HasPrefix(s, "I\n") || strings.HasPrefix(s, "A\n")
}

func normalizeNewlines(data []byte) string {
	return strings.ReplaceAll(string(data), "\r\n", "\n")
}
