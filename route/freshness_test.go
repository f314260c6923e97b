// route/freshness_test.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import (
	"testing"
	"time"
)

func TestShouldReplace(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name     string
		cand     *Candidate
		expected bool
	}{
		{name: "no candidate", cand: nil, expected: true},
		{
			name:     "brand new",
			cand:     &Candidate{CreatedAt: now},
			expected: false,
		},
		{
			name:     "one second inside the window",
			cand:     &Candidate{CreatedAt: now.Add(-FreshnessThreshold + time.Second)},
			expected: false,
		},
		{
			// The boundary itself counts as stale.
			name:     "exactly at the threshold",
			cand:     &Candidate{CreatedAt: now.Add(-FreshnessThreshold)},
			expected: true,
		},
		{
			name:     "days old",
			cand:     &Candidate{CreatedAt: now.Add(-90 * time.Hour)},
			expected: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldReplace(tc.cand, now); got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}
