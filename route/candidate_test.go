// route/candidate_test.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"testing"
	"time"
)

func TestScanCandidates(t *testing.T) {
	t0 := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return t0 })

	st.Put("EDDMEDDF.fms", []byte("I\n"), t0.Add(-3*time.Hour))
	st.Put("EDDM-EDDF custom.fmx", []byte{0x01}, t0.Add(-1*time.Hour))
	st.Put("KLAXKSFO.fms", []byte("I\n"), t0)
	st.Put("notes.txt", []byte("EDDM EDDF"), t0)
	st.Put("EDDMonly.fms", []byte("I\n"), t0)

	c, err := ScanCandidates(st, "EDDM", "EDDF")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("no candidate found")
	}
	// Most recently created wins regardless of naming convention.
	if c.Name != "EDDM-EDDF custom.fmx" {
		t.Errorf("got %q", c.Name)
	}
	if c.Source != SourceThirdParty {
		t.Errorf("got source %v", c.Source)
	}
}

func TestScanCandidatesDownloaded(t *testing.T) {
	t0 := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return t0 })
	st.Put("EDDMEDDF.fms", []byte("I\n"), t0)

	c, err := ScanCandidates(st, "EDDM", "EDDF")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Source != SourceDownloaded {
		t.Fatalf("got %+v, expected a Downloaded candidate", c)
	}
	if c.Origin != "EDDM" || c.Destination != "EDDF" {
		t.Errorf("got leg %s-%s", c.Origin, c.Destination)
	}
}

func TestScanCandidatesCaseInsensitiveStem(t *testing.T) {
	t0 := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := NewMemStore(func() time.Time { return t0 })
	st.Put("eddm eddf v2.fms", []byte("I\n"), t0)

	c, err := ScanCandidates(st, "EDDM", "EDDF")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Name != "eddm eddf v2.fms" || c.Source != SourceThirdParty {
		t.Fatalf("got %+v", c)
	}
}

func TestScanCandidatesNone(t *testing.T) {
	st := NewMemStore(nil)
	st.Put("KJFKKBOS.fms", []byte("I\n"), time.Now())

	c, err := ScanCandidates(st, "EDDM", "EDDF")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("got unexpected candidate %+v", c)
	}
}
