// route/freshness.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package route

import "time"

// FreshnessThreshold is the maximum age an existing route file may reach
// before it is replaced by a fresh download. Files younger than this are
// kept even if we could regenerate them: a procedure-rich file exported
// from the user's planning tool outranks an automatic download.
const FreshnessThreshold = 48 * time.Hour

// ShouldReplace reports whether the candidate (nil if none was found for
// the leg) should be replaced by a newly synthesized route file. A file
// exactly at the threshold is stale.
func ShouldReplace(c *Candidate, now time.Time) bool {
	return c == nil || now.Sub(c.CreatedAt) >= FreshnessThreshold
}
