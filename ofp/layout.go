// ofp/layout.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package ofp

import "strings"

// A layout is one airline OFP template: a structural signature that
// recognizes it plus a pure extraction function for the descent winds
// buried in the dispatch text. Adding support for a new template means
// adding one entry to the layouts table below.
//
// Extraction is best effort: rows that do not scan are skipped, and a
// recognized document whose wind section is missing yields an empty table
// rather than an error. Unusable documents are rejected upstream in Parse.
type layout struct {
	name    string
	match   func(doc *document) bool
	extract func(doc *document) []DescentWind
}

// The registry is checked in fixed order, but a document whose signature
// matches more than one template is rejected as ambiguous rather than
// silently assigned to the first.
var layouts = []layout{
	{name: "LIDO", match: matchLIDO, extract: extractLIDO},
	{name: "UAL 2018", match: matchUAL, extract: extractUAL},
	{name: "DAL", match: matchDAL, extract: extractDAL},
	{name: "SWA", match: matchSWA, extract: extractSWA},
	{name: "KLM", match: matchKLM, extract: extractKLM},
	{name: "windless", match: matchWindless, extract: extractWindless},
}

func detectLayout(doc *document) (layout, error) {
	var found []layout
	for _, lo := range layouts {
		if lo.match(doc) {
			found = append(found, lo)
		}
	}

	switch len(found) {
	case 0:
		return layout{}, ErrUnknownLayout
	case 1:
		return found[0], nil
	default:
		return layout{}, ErrAmbiguousLayout
	}
}

func declaredLayout(doc *document, names ...string) bool {
	decl := strings.ToUpper(strings.TrimSpace(doc.Params.OFPLayout))
	for _, n := range names {
		// Airline variants of a template declare themselves with the
		// airline code embedded, e.g. "RYR LIDO".
		if decl == n || strings.Contains(decl, n) {
			return true
		}
	}
	return false
}

func planText(doc *document) string {
	return strings.ReplaceAll(doc.Text.PlanHTML, "\r\n", "\n")
}

func matchLIDO(doc *document) bool {
	if declaredLayout(doc, "LIDO", "RYR", "THY", "ACA") {
		return true
	}
	text := planText(doc)
	return strings.Contains(text, "WIND INFORMATION") && strings.Contains(text, "DESCENT")
}

func matchUAL(doc *document) bool {
	if declaredLayout(doc, "UAL 2018") {
		return true
	}
	text := planText(doc)
	return strings.Contains(text, "DESCENT WINDS") && strings.Contains(text, "STARTFWZPAD")
}

func matchDAL(doc *document) bool {
	return declaredLayout(doc, "DAL") ||
		strings.Contains(planText(doc), "DESCENT FORECAST WINDS")
}

func matchSWA(doc *document) bool {
	if declaredLayout(doc, "SWA") {
		return true
	}
	text := planText(doc)
	return strings.Contains(text, "DESCENT WINDS") &&
		!strings.Contains(text, "STARTFWZPAD") &&
		!strings.Contains(text, "WIND INFORMATION")
}

func matchKLM(doc *document) bool {
	if declaredLayout(doc, "KLM") {
		return true
	}
	text := planText(doc)
	return strings.Contains(text, "CRZ ALT") && strings.Contains(text, "DEFRTE")
}

// AAL and QFA publish no descent winds in their OFP at all; the declared
// layout name is the only signature these templates have.
func matchWindless(doc *document) bool {
	return declaredLayout(doc, "AAL", "QFA")
}

func extractWindless(doc *document) []DescentWind {
	return nil
}
