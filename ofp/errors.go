// ofp/errors.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package ofp

import "errors"

var (
	ErrAmbiguousLayout   = errors.New("Document matches more than one layout template")
	ErrEmptyRoute        = errors.New("Document has no route")
	ErrIdenticalAirports = errors.New("Origin and destination are the same airport")
	ErrMissingAirports   = errors.New("Document has no valid origin/destination pair")
	ErrNotJSON           = errors.New("Document is not a SimBrief JSON OFP")
	ErrUnknownLayout     = errors.New("Document has no identifiable layout template")
)
