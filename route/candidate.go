// route/candidate.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"path/filepath"
	"strings"
	"time"
)

type SourceKind int

const (
	// SourceDownloaded marks a file following our own naming convention
	// exactly; anything else was put there by the user or a third-party
	// planning tool.
	SourceDownloaded SourceKind = iota
	SourceThirdParty
)

func (s SourceKind) String() string {
	return [...]string{"Downloaded", "ThirdParty"}[s]
}

// Candidate is an on-disk route file relevant to the current leg.
type Candidate struct {
	Name        string
	CreatedAt   time.Time
	Origin      string
	Destination string
	Source      SourceKind
}

// The two accepted route-file sub-formats.
var routeFileExts = map[string]bool{".fms": true, ".fmx": true}

// ScanCandidates walks the store for route files whose name carries both
// ICAO codes of the leg and returns the most recently created one, or nil
// if there is none. Candidates are rediscovered every cycle; the leg can
// change between turnarounds so nothing is cached.
func ScanCandidates(st Store, origin, destination string) (*Candidate, error) {
	infos, err := st.List()
	if err != nil {
		return nil, err
	}

	var best *Candidate
	for _, fi := range infos {
		ext := strings.ToLower(filepath.Ext(fi.Name))
		if !routeFileExts[ext] {
			continue
		}
		stem := strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name))
		upper := strings.ToUpper(stem)
		if !strings.Contains(upper, origin) || !strings.Contains(upper, destination) {
			continue
		}

		c := &Candidate{
			Name:        fi.Name,
			CreatedAt:   fi.CreatedAt,
			Origin:      origin,
			Destination: destination,
			Source:      SourceThirdParty,
		}
		if fi.Name == origin+destination+".fms" {
			c.Source = SourceDownloaded
		}

		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	return best, nil
}
