// ofp/ofp.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package ofp turns a raw SimBrief OFP document into a normalized flight
// plan record. The OFP's JSON envelope is the same for all airlines, but
// the dispatch text in text.plan_html follows the issuing airline's layout
// template; descent winds live only in that text and so are extracted by
// per-template parsers (see layout.go).
package ofp

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"briefsync/util"
)

// DescentWind is one line of the descent forecast winds table.
type DescentWind struct {
	AltitudeFt   int
	DirectionDeg int
	SpeedKt      int
	TemperatureC int
}

// Procedure names a departure or arrival procedure plus an optional
// transition.
type Procedure struct {
	Name       string
	Transition string
}

// RouteFix is a concrete navlog waypoint with its position; the route
// synthesizer needs positions to emit FMS waypoint lines.
type RouteFix struct {
	Ident string
	Lat   float64
	Lon   float64
}

// FlightPlan is the normalized result of parsing one OFP document. It is
// immutable after Parse returns.
type FlightPlan struct {
	Origin      string
	Destination string
	PilotID     string

	// RequestID is SimBrief's id for this OFP generation; a re-fetch that
	// returns the same id is the same document.
	RequestID int64
	IssuedAt  time.Time
	Layout    string

	// Route holds the filed route tokens (waypoints and airways, "DCT"
	// included) in order; Fixes holds the expanded navlog waypoints.
	// OriginFix and DestinationFix carry the airport positions for the
	// route file's endpoint records.
	Route          []string
	Fixes          []RouteFix
	OriginFix      RouteFix
	DestinationFix RouteFix

	// DescentWinds may be empty: some airline templates publish no
	// descent winds and that is not an error.
	DescentWinds []DescentWind

	Departure *Procedure
	Arrival   *Procedure

	// Carried through to the uplink artifact.
	DestISADeviation int
	DestMETAR        string
}

// flexInt tolerates SimBrief's habit of emitting numbers as JSON strings.
type flexInt int64

func (v *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some fields show up as "-5.0" style floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		n = int64(f)
	}
	*v = flexInt(n)
	return nil
}

type flexFloat float64

func (v *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v = flexFloat(f)
	return nil
}

type docAirport struct {
	ICAO  string    `json:"icao_code"`
	Lat   flexFloat `json:"pos_lat"`
	Lon   flexFloat `json:"pos_long"`
	METAR string    `json:"metar"`
}

type docFix struct {
	Ident     string    `json:"ident"`
	Type      string    `json:"type"`
	Lat       flexFloat `json:"pos_lat"`
	Lon       flexFloat `json:"pos_long"`
	OATISADev flexInt   `json:"oat_isa_dev"`
}

// document is the subset of the SimBrief OFP JSON envelope we consume.
type document struct {
	Params struct {
		RequestID     flexInt `json:"request_id"`
		OFPLayout     string  `json:"ofp_layout"`
		TimeGenerated flexInt `json:"time_generated"`
	} `json:"params"`
	General struct {
		Route      string  `json:"route"`
		AvgTempDev flexInt `json:"avg_temp_dev"`
		SIDIdent   string  `json:"sid_ident"`
		SIDTrans   string  `json:"sid_trans"`
		STARIdent  string  `json:"star_ident"`
		STARTrans  string  `json:"star_trans"`
	} `json:"general"`
	Origin      docAirport `json:"origin"`
	Destination docAirport `json:"destination"`
	Navlog      struct {
		Fix []docFix `json:"fix"`
	} `json:"navlog"`
	Text struct {
		PlanHTML string `json:"plan_html"`
	} `json:"text"`
}

// Parse converts one raw OFP document into a FlightPlan. Cosmetic
// formatting variance inside a recognized layout is tolerated; a document
// with no identifiable layout, no origin/destination pair, or no route is
// rejected.
func Parse(raw []byte, pilotID string) (*FlightPlan, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrNotJSON
	}

	origin := strings.ToUpper(strings.TrimSpace(doc.Origin.ICAO))
	dest := strings.ToUpper(strings.TrimSpace(doc.Destination.ICAO))
	if !util.IsICAO(origin) || !util.IsICAO(dest) {
		return nil, ErrMissingAirports
	}
	if origin == dest {
		return nil, ErrIdenticalAirports
	}

	lo, err := detectLayout(&doc)
	if err != nil {
		return nil, err
	}

	fp := &FlightPlan{
		Origin:      origin,
		Destination: dest,
		PilotID:     pilotID,
		RequestID:   int64(doc.Params.RequestID),
		IssuedAt:    time.Unix(int64(doc.Params.TimeGenerated), 0).UTC(),
		Layout:      lo.name,
		DestMETAR:   strings.TrimSpace(doc.Destination.METAR),

		OriginFix:      RouteFix{Ident: origin, Lat: float64(doc.Origin.Lat), Lon: float64(doc.Origin.Lon)},
		DestinationFix: RouteFix{Ident: dest, Lat: float64(doc.Destination.Lat), Lon: float64(doc.Destination.Lon)},
	}

	fp.Route = strings.Fields(doc.General.Route)
	for _, fix := range doc.Navlog.Fix {
		if fix.Ident == "TOC" || fix.Ident == "TOD" {
			continue
		}
		if fix.Type == "apt" || fix.Ident == origin || fix.Ident == dest {
			continue
		}
		fp.Fixes = append(fp.Fixes, RouteFix{
			Ident: fix.Ident,
			Lat:   float64(fix.Lat),
			Lon:   float64(fix.Lon),
		})
	}
	if len(fp.Route) == 0 {
		// Some templates leave general.route blank; fall back to the
		// navlog idents.
		for _, fix := range fp.Fixes {
			fp.Route = append(fp.Route, fix.Ident)
		}
	}
	if len(fp.Route) == 0 {
		return nil, ErrEmptyRoute
	}

	fp.DescentWinds = lo.extract(&doc)

	// Destination ISA deviation comes from the navlog's destination fix
	// when present, otherwise from the plan-wide average.
	fp.DestISADeviation = int(doc.General.AvgTempDev)
	if n := len(doc.Navlog.Fix); n > 0 {
		if last := doc.Navlog.Fix[n-1]; last.Ident == dest {
			fp.DestISADeviation = int(last.OATISADev)
		}
	}

	if doc.General.SIDIdent != "" {
		fp.Departure = &Procedure{Name: doc.General.SIDIdent, Transition: doc.General.SIDTrans}
	}
	if doc.General.STARIdent != "" {
		fp.Arrival = &Procedure{Name: doc.General.STARIdent, Transition: doc.General.STARTrans}
	}

	return fp, nil
}
