// uplink/uplink_test.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package uplink

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"briefsync/ofp"
	"briefsync/route"
)

func testPlan() *ofp.FlightPlan {
	return &ofp.FlightPlan{
		Origin:      "EDDM",
		Destination: "EDDF",
		DescentWinds: []ofp.DescentWind{
			{AltitudeFt: 34000, DirectionDeg: 270, SpeedKt: 45, TemperatureC: -52},
			{AltitudeFt: 24000, DirectionDeg: 260, SpeedKt: 38, TemperatureC: -24},
			{AltitudeFt: 5000, DirectionDeg: 230, SpeedKt: 12, TemperatureC: 4},
		},
		DestISADeviation: 15,
		DestMETAR:        "EDDF 121150Z 24008KT 9999 FEW030 17/09 Q1021 NOSIG",
	}
}

// planHTML unwraps the artifact's XML envelope.
func planHTML(t *testing.T, data []byte) string {
	t.Helper()
	var doc struct {
		XMLName xml.Name `xml:"OFP"`
		Text    struct {
			PlanHTML string `xml:"plan_html"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("artifact is not the expected XML shape: %v", err)
	}
	return doc.Text.PlanHTML
}

func TestBuild(t *testing.T) {
	data, err := Build(testPlan())
	if err != nil {
		t.Fatal(err)
	}
	text := planHTML(t, data)

	if !strings.Contains(text, "AVG ISA       P015\n") {
		t.Error("ISA deviation line missing or malformed")
	}

	// Winds render in LIDO shape: altitude in hundreds of feet, then
	// direction/speed, then signed temperature.
	expected := "DESCENT\n340 270/045 -52\n240 260/038 -24\n50 230/012 +04\n\n"
	if !strings.Contains(text, expected) {
		t.Errorf("wind table missing or malformed:\n%s", text)
	}

	if !strings.Contains(text, "Destination:\nEDDF\nSA  121150  24008KT 9999 FEW030 17/09 Q1021 NOSIG\n") {
		t.Errorf("destination weather missing or malformed:\n%s", text)
	}

	// The importer's bookmark markers must survive serialization.
	for _, marker := range []string{
		"BKMK///Summary and Fuel///1",
		"BKMK///Wind Information///1",
		"BKMK///Airport WX List///0",
	} {
		if !strings.Contains(text, marker) {
			t.Errorf("marker %q missing", marker)
		}
	}
}

func TestBuildEmptyWinds(t *testing.T) {
	plan := testPlan()
	plan.DescentWinds = nil

	data, err := Build(plan)
	if err != nil {
		t.Fatal(err)
	}
	// An empty table under the header, not an omitted section.
	if !strings.Contains(planHTML(t, data), "DESCENT\n\n") {
		t.Error("empty wind table not rendered")
	}
}

func TestBuildNegativeISA(t *testing.T) {
	plan := testPlan()
	plan.DestISADeviation = -3

	data, err := Build(plan)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(planHTML(t, data), "AVG ISA       M003\n") {
		t.Error("negative ISA deviation not rendered as M003")
	}
}

func TestBuildNoMETAR(t *testing.T) {
	plan := testPlan()
	plan.DestMETAR = ""

	data, err := Build(plan)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(planHTML(t, data), "Destination:\nEDDF\n") {
		t.Error("destination line missing without a METAR")
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(testPlan())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(testPlan())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("two builds of the same plan differ")
	}
}

func TestWrite(t *testing.T) {
	st := route.NewMemStore(func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) })

	changed, err := Write(st, "EDDMEDDF", testPlan())
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("first write reported no change")
	}
	if _, err := st.ReadFile("EDDMEDDF.xml"); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	changed, err = Write(st, "EDDMEDDF", testPlan())
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("identical rewrite reported a change")
	}
}
