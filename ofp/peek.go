// ofp/peek.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package ofp

import "encoding/json"

// PeekRequestID decodes just enough of a raw OFP document to report its
// SimBrief request id, so callers can consult a cache of parsed plans
// before paying for a full Parse.
func PeekRequestID(raw []byte) (int64, error) {
	var doc struct {
		Params struct {
			RequestID flexInt `json:"request_id"`
		} `json:"params"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, ErrNotJSON
	}
	return int64(doc.Params.RequestID), nil
}
