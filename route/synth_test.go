// route/synth_test.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"errors"
	"strings"
	"testing"
	"time"

	"briefsync/ofp"
)

func testPlan() *ofp.FlightPlan {
	return &ofp.FlightPlan{
		Origin:      "EDDM",
		Destination: "EDDF",
		RequestID:   82345671,
		Route:       []string{"GIVMI", "DCT", "ERNAS"},
		Fixes: []ofp.RouteFix{
			{Ident: "GIVMI", Lat: 48.701094, Lon: 11.364803},
			{Ident: "ERNAS", Lat: 48.844303, Lon: 11.219400},
		},
		OriginFix:      ofp.RouteFix{Ident: "EDDM", Lat: 48.353802, Lon: 11.786101},
		DestinationFix: ofp.RouteFix{Ident: "EDDF", Lat: 50.033306, Lon: 8.570456},
		Departure:      &ofp.Procedure{Name: "GIVMI1N"},
		Arrival:        &ofp.Procedure{Name: "DEXIT1A", Transition: "DEXIT"},
	}
}

const expectedFMS = `I
3 version
1
3
1 EDDM 0.000000 48.353802 11.786101
11 GIVMI 0.000000 48.701094 11.364803
11 ERNAS 0.000000 48.844303 11.219400
1 EDDF 0.000000 50.033306 8.570456
;SID GIVMI1N
;STAR DEXIT1A.DEXIT
`

func TestSynthesizeCreates(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return now })
	plan := testPlan()

	res, err := Synthesize(st, plan, nil, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "EDDMEDDF.fms" || !res.Created || res.Augmented || res.Warning != nil {
		t.Fatalf("got %+v", res)
	}
	if res.Stem() != "EDDMEDDF" {
		t.Errorf("got stem %q", res.Stem())
	}

	data, err := st.ReadFile(res.Name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != expectedFMS {
		t.Errorf("got route file:\n%s\nexpected:\n%s", data, expectedFMS)
	}

	// Running again with identical inputs must not rewrite the file.
	res, err = Synthesize(st, plan, nil, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created {
		t.Error("identical re-synthesis reported a write")
	}
}

func TestSynthesizeReplacesStale(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return now })
	st.Put("EDDM EDDF old.fms", []byte("I\n3 version\n1\n0\n"), now.Add(-49*time.Hour))

	cand, err := ScanCandidates(st, "EDDM", "EDDF")
	if err != nil {
		t.Fatal(err)
	}

	res, err := Synthesize(st, testPlan(), cand, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "EDDMEDDF.fms" || !res.Created {
		t.Fatalf("got %+v", res)
	}
	if data, _ := st.ReadFile("EDDMEDDF.fms"); string(data) != expectedFMS {
		t.Errorf("got route file:\n%s", data)
	}
	// The stale file is superseded, not deleted.
	if _, err := st.ReadFile("EDDM EDDF old.fms"); err != nil {
		t.Error("stale file was removed")
	}
}

func TestSynthesizeAugmentsFresh(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return now })
	orig := "I\n3 version\n1\n1\n1 EDDM 0.000000 48.353802 11.786101\n1 EDDF 0.000000 50.033306 8.570456\n"
	st.Put("EDDM EDDF planner.fms", []byte(orig), now.Add(-2*time.Hour))

	cand, err := ScanCandidates(st, "EDDM", "EDDF")
	if err != nil {
		t.Fatal(err)
	}

	plan := testPlan()
	res, err := Synthesize(st, plan, cand, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "EDDM EDDF planner.fms" || res.Created || !res.Augmented || res.Warning != nil {
		t.Fatalf("got %+v", res)
	}

	data, err := st.ReadFile(res.Name)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), orig) {
		t.Error("augmentation disturbed the original route")
	}
	if !strings.HasSuffix(string(data), ";SID GIVMI1N\n;STAR DEXIT1A.DEXIT\n") {
		t.Errorf("trailer missing:\n%s", data)
	}

	// A second pass sees the trailer already in place and writes nothing.
	cand, _ = ScanCandidates(st, "EDDM", "EDDF")
	res, err = Synthesize(st, plan, cand, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Augmented || res.Warning != nil {
		t.Errorf("got %+v on re-run", res)
	}
}

func TestSynthesizeConflictingTrailer(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return now })
	orig := "I\n3 version\n1\n0\n;SID OTHER1X\n"
	st.Put("EDDM EDDF planner.fms", []byte(orig), now.Add(-2*time.Hour))

	cand, _ := ScanCandidates(st, "EDDM", "EDDF")
	res, err := Synthesize(st, testPlan(), cand, now)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Warning, ErrCannotAugment) {
		t.Fatalf("got %+v, expected a cannot-augment warning", res)
	}
	if data, _ := st.ReadFile("EDDM EDDF planner.fms"); string(data) != orig {
		t.Error("conflicting file was modified")
	}
}

func TestSynthesizeKeepsForeignFormat(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return now })
	orig := []byte{0x46, 0x4d, 0x58, 0x00, 0x01}
	st.Put("EDDMEDDF.fmx", orig, now.Add(-2*time.Hour))

	cand, _ := ScanCandidates(st, "EDDM", "EDDF")
	res, err := Synthesize(st, testPlan(), cand, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "EDDMEDDF.fmx" || !errors.Is(res.Warning, ErrCannotAugment) {
		t.Fatalf("got %+v", res)
	}
	if data, _ := st.ReadFile("EDDMEDDF.fmx"); string(data) != string(orig) {
		t.Error("foreign-format file was modified")
	}
}

func TestSynthesizeNoProcedures(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return now })
	orig := "I\n3 version\n1\n0\n"
	st.Put("EDDMEDDF.fms", []byte(orig), now.Add(-time.Hour))

	plan := testPlan()
	plan.Departure, plan.Arrival = nil, nil

	cand, _ := ScanCandidates(st, "EDDM", "EDDF")
	res, err := Synthesize(st, plan, cand, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "EDDMEDDF.fms" || res.Created || res.Augmented || res.Warning != nil {
		t.Fatalf("got %+v", res)
	}
	if data, _ := st.ReadFile("EDDMEDDF.fms"); string(data) != orig {
		t.Error("file was modified with no procedures to add")
	}
}
