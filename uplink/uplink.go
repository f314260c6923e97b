// uplink/uplink.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package uplink serializes a parsed flight plan into the winds/
// performance artifact the avionics importer scans. The importer only
// understands the LIDO rendering of the dispatch text, so whatever
// template the OFP arrived in, the artifact is written back out in LIDO
// shape: summary block with the ISA deviation, descent wind table,
// destination weather.
package uplink

import (
	"encoding/xml"
	"fmt"
	"strings"

	"briefsync/ofp"
	"briefsync/route"
)

// The importer keys on these bookmark markers; they must match the LIDO
// template byte for byte.
const (
	summaryTag = "<div style=\"line-height:14px;font-size:13px\"><pre><!--BKMK///OFP///0--><!--BKMK///Summary and Fuel///1--><b>[ OFP ]\n--------------------------------------------------------------------</b>\nOFP 1\n\n"
	windTag    = "<h2 style=\"page-break-after: always;\"> </h2><!--BKMK///Wind Information///1-->--------------------------------------------------------------------\n WIND INFORMATION \nDESCENT\n"
	wxTag      = "<h2 style=\"page-break-after: always;\"> </h2><!--BKMK///Airport WX List///0--><b>[ Airport WX List ]\n--------------------------------------------------------------------</b>\nDestination:\n"
)

type uplinkDoc struct {
	XMLName xml.Name `xml:"OFP"`
	Text    struct {
		PlanHTML string `xml:"plan_html"`
	} `xml:"text"`
}

// Build renders the artifact bytes. Pure function of the plan; an empty
// descent wind table yields an empty table under the DESCENT header, not
// an error.
func Build(plan *ofp.FlightPlan) ([]byte, error) {
	var doc uplinkDoc
	doc.Text.PlanHTML = summaryTag + isaLine(plan.DestISADeviation) +
		windTag + windTable(plan.DescentWinds) +
		wxTag + destinationWX(plan.Destination, plan.DestMETAR)

	return xml.Marshal(doc)
}

// Write emits the artifact next to the route file, named after its stem.
// The file is overwritten wholesale each cycle; the returned bool
// reports whether it changed.
func Write(st route.Store, stem string, plan *ofp.FlightPlan) (bool, error) {
	data, err := Build(plan)
	if err != nil {
		return false, err
	}
	return st.WriteFile(stem+".xml", data)
}

func isaLine(dev int) string {
	sign := "P"
	if dev < 0 {
		sign = "M"
		dev = -dev
	}
	return fmt.Sprintf("AVG ISA       %s%03d\n\n", sign, dev)
}

func windTable(winds []ofp.DescentWind) string {
	var b strings.Builder
	for _, w := range winds {
		fmt.Fprintf(&b, "%d %03d/%03d %+03d\n", w.AltitudeFt/100, w.DirectionDeg, w.SpeedKt, w.TemperatureC)
	}
	b.WriteString("\n")
	return b.String()
}

// destinationWX reformats the destination METAR the way the importer
// expects: station dropped, the Zulu timestamp split from the wind group,
// an SA report prefix.
func destinationWX(icao, metar string) string {
	fields := strings.Fields(metar)
	if len(fields) < 2 {
		return icao + "\n"
	}
	fields = fields[1:]
	fields[0] = strings.Replace(fields[0], "Z", " ", 1)
	return icao + "\nSA  " + strings.Join(fields, " ") + "\n"
}
