// ofp/layouts.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package ofp

import (
	"strconv"
	"strings"
)

// Descent wind tables come in two broad shapes: row-per-altitude text
// (LIDO family, KLM), and column-per-altitude text that has to be
// transposed first (DAL, SWA). UAL wraps its rows in an HTML table.

// parseFlightLevel accepts "FL350", "350" (flight levels) or "35000"
// (plain feet) and returns feet.
func parseFlightLevel(tok string) (int, bool) {
	tok = strings.TrimPrefix(tok, "FL")
	v, err := strconv.Atoi(tok)
	if err != nil || v <= 0 {
		return 0, false
	}
	if v < 1000 {
		v *= 100
	}
	return v, true
}

// parseDirSpeed parses "330/022" style wind groups.
func parseDirSpeed(tok string) (dir, speed int, ok bool) {
	d, s, found := strings.Cut(tok, "/")
	if !found {
		return 0, 0, false
	}
	dir, err := strconv.Atoi(d)
	if err != nil || dir < 0 || dir > 360 {
		return 0, 0, false
	}
	speed, err = strconv.Atoi(s)
	if err != nil || speed < 0 {
		return 0, 0, false
	}
	return dir, speed, true
}

// parseTemp parses "-44", "+02" and the P/M teletype forms "P15", "M54".
func parseTemp(tok string) (int, bool) {
	switch {
	case strings.HasPrefix(tok, "M"):
		tok = "-" + tok[1:]
	case strings.HasPrefix(tok, "P"):
		tok = "+" + tok[1:]
	}
	v, err := strconv.Atoi(strings.TrimPrefix(tok, "+"))
	if err != nil {
		return 0, false
	}
	return v, true
}

// section returns the text between the first occurrence of from and the
// following occurrence of to (or the rest of the text if to is absent).
func section(text, from, to string) (string, bool) {
	_, after, ok := strings.Cut(text, from)
	if !ok {
		return "", false
	}
	if to != "" {
		if body, _, found := strings.Cut(after, to); found {
			return body, true
		}
	}
	return after, true
}

// extractLIDO handles the LIDO template and its airline variants (RYR,
// THY, ACA). The descent table is the block under the DESCENT header of
// the WIND INFORMATION section; the wind group is always in the last
// three fields of each line, whatever leading cruise columns the variant
// carries.
func extractLIDO(doc *document) []DescentWind {
	body, ok := section(planText(doc), "DESCENT", "\n\n")
	if !ok {
		return nil
	}

	var winds []DescentWind
	lines := strings.Split(body, "\n")
	for _, line := range lines[1:] { // skip remainder of the header line
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		fields = fields[len(fields)-3:]

		alt, ok := parseFlightLevel(fields[0])
		if !ok {
			continue
		}
		dir, speed, ok := parseDirSpeed(fields[1])
		if !ok {
			continue
		}
		temp, ok := parseTemp(fields[2])
		if !ok {
			continue
		}
		winds = append(winds, DescentWind{
			AltitudeFt:   alt,
			DirectionDeg: dir,
			SpeedKt:      speed,
			TemperatureC: temp,
		})
	}
	return winds
}

// extractUAL handles the UAL 2018 template, which publishes the descent
// winds as an HTML table between the DESCENT WINDS header and the
// STARTFWZPAD marker. Cells are altitude, wind group, and an optional
// temperature; a missing temperature means ISA standard +15.
func extractUAL(doc *document) []DescentWind {
	body, ok := section(planText(doc), "DESCENT WINDS", "STARTFWZPAD")
	if !ok {
		return nil
	}

	var winds []DescentWind
	rows := strings.Split(body, "</tr><tr>")
	if len(rows) < 2 {
		return nil
	}
	rows = rows[1:]
	if len(rows) > 4 {
		rows = rows[:4]
	}
	for _, row := range rows {
		cells := strings.Fields(stripTags(row))
		if len(cells) < 2 {
			continue
		}

		alt, ok := parseFlightLevel(cells[0])
		if !ok {
			continue
		}
		dir, speed, ok := parseDirSpeed(cells[1])
		if !ok {
			continue
		}
		temp := 15
		if len(cells) > 2 {
			if t, ok := parseTemp(cells[2]); ok {
				temp = t
			}
		}
		winds = append(winds, DescentWind{
			AltitudeFt:   alt,
			DirectionDeg: dir,
			SpeedKt:      speed,
			TemperatureC: temp,
		})
	}
	return winds
}

// extractDAL handles the DAL template: one line of altitudes in feet and
// one line of five-digit ddsss wind groups, columns aligned, terminated
// by a run of asterisks. The table continues past 10000 ft for the climb;
// only the descent portion down to 10000 ft inclusive is kept. DAL
// publishes no temperatures; ISA standard is assumed.
func extractDAL(doc *document) []DescentWind {
	body, ok := section(planText(doc), "DESCENT FORECAST WINDS", "*")
	if !ok {
		return nil
	}

	cols := transpose(body)
	var winds []DescentWind
	for _, col := range cols {
		if len(col) < 2 {
			continue
		}
		alt, ok := parseFlightLevel(col[0])
		if !ok {
			continue
		}
		dir, speed, ok := parseDDSSS(col[1])
		if !ok {
			continue
		}
		winds = append(winds, DescentWind{
			AltitudeFt:   alt,
			DirectionDeg: dir,
			SpeedKt:      speed,
			TemperatureC: 15,
		})
		if alt == 10000 {
			break
		}
	}
	return winds
}

// extractSWA handles the SWA template: transposed columns like DAL but
// with a third row of P/M temperatures.
func extractSWA(doc *document) []DescentWind {
	body, ok := section(planText(doc), "DESCENT WINDS", "\n\n")
	if !ok {
		return nil
	}

	cols := transpose(body)
	var winds []DescentWind
	for _, col := range cols {
		if len(col) < 3 {
			continue
		}
		alt, ok := parseFlightLevel(col[0])
		if !ok {
			continue
		}
		dir, speed, ok := parseDDSSS(col[1])
		if !ok {
			continue
		}
		temp, ok := parseTemp(col[2])
		if !ok {
			continue
		}
		winds = append(winds, DescentWind{
			AltitudeFt:   alt,
			DirectionDeg: dir,
			SpeedKt:      speed,
			TemperatureC: temp,
		})
	}
	return winds
}

// extractKLM handles the KLM template, which only publishes winds for the
// top three descent levels in its cruise altitude block; temperatures are
// not included.
func extractKLM(doc *document) []DescentWind {
	body, ok := section(planText(doc), "CRZ ALT", "DEFRTE")
	if !ok {
		return nil
	}
	body = strings.ReplaceAll(body, "FL", "")

	var winds []DescentWind
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		fields = fields[len(fields)-2:]

		alt, ok := parseFlightLevel(fields[0])
		if !ok {
			continue
		}
		dir, speed, ok := parseDirSpeed(fields[1])
		if !ok {
			continue
		}
		winds = append(winds, DescentWind{
			AltitudeFt:   alt,
			DirectionDeg: dir,
			SpeedKt:      speed,
			TemperatureC: 15,
		})
		if len(winds) == 3 {
			break
		}
	}
	return winds
}

// parseDDSSS parses the teletype five-digit wind group: two digits of
// direction in tens of degrees followed by three digits of speed, so
// "33045" is 330 degrees at 45 knots.
func parseDDSSS(tok string) (dir, speed int, ok bool) {
	if len(tok) != 5 || !isDigits(tok) {
		return 0, 0, false
	}
	d, _ := strconv.Atoi(tok[:2])
	speed, _ = strconv.Atoi(tok[2:])
	return d * 10, speed, true
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// transpose splits each non-empty line of body into whitespace-separated
// fields and returns the columns. Ragged rows are truncated to the
// shortest line.
func transpose(body string) [][]string {
	var rows [][]string
	width := -1
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
		if width < 0 || len(fields) < width {
			width = len(fields)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	cols := make([][]string, width)
	for i := range cols {
		for _, row := range rows {
			cols[i] = append(cols[i], row[i])
		}
	}
	return cols
}

// stripTags replaces HTML tags with spaces so the cell text can be
// tokenized with strings.Fields.
func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, ch := range s {
		switch {
		case ch == '<':
			depth++
			b.WriteRune(' ')
		case ch == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
