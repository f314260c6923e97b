// fetch/fetch.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package fetch retrieves the latest published OFP for a pilot id from
// SimBrief. Dispatch documents are created by the user in SimBrief at
// unpredictable times, so "nothing published yet" is an expected answer
// and gets its own error, distinct from transient service faults.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"briefsync/log"
	"briefsync/ofp"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrNotYetAvailable = errors.New("No dispatch published yet for this pilot")
	ErrTransient       = errors.New("Transient error contacting the planning service")
	ErrBadResponse     = errors.New("Unexpected response from the planning service")
)

const DefaultBaseURL = "https://www.simbrief.com/api/xml.fetcher.php"

// Published documents appear on the fetch endpoint within ~20 seconds of
// generation; responses are small but the envelope carries the full
// dispatch text, so allow a few MB.
const maxResponseBytes = 8 << 20

type Client struct {
	// BaseURL is swapped out for an httptest server in tests.
	BaseURL string

	httpClient *http.Client
	lg         *log.Logger

	// Parsed plans keyed by SimBrief request id; re-polling an unchanged
	// OFP is the common case while waiting at the gate and should not
	// re-run the parser.
	cache *lru.Cache[int64, *ofp.FlightPlan]
}

func NewClient(lg *log.Logger) *Client {
	cache, _ := lru.New[int64, *ofp.FlightPlan](8)
	return &Client{
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		lg:         lg,
		cache:      cache,
	}
}

// FetchLatest returns the most recently published plan for the pilot.
// Errors are classified per the sentinel errors above; parse errors from
// an unusable document pass through unwrapped so callers can tell the
// difference between "retry later" and "this document is no good".
func (c *Client) FetchLatest(ctx context.Context, pilotID string) (*ofp.FlightPlan, error) {
	u := c.BaseURL + "?userid=" + url.QueryEscape(pilotID) + "&json=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		// SimBrief answers 400 with an error envelope when the pilot id
		// has no generated OFP (or none recent enough).
		c.lg.Debugf("%s: no OFP published", pilotID)
		return nil, ErrNotYetAvailable
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	if id, err := ofp.PeekRequestID(body); err == nil {
		if plan, ok := c.cache.Get(id); ok {
			c.lg.Debugf("%s: request id %d already parsed", pilotID, id)
			return plan, nil
		}
	}

	plan, err := ofp.Parse(body, pilotID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(plan.RequestID, plan)
	c.lg.Info("fetched OFP",
		"pilot", pilotID, "origin", plan.Origin, "destination", plan.Destination,
		"request_id", plan.RequestID, "layout", plan.Layout)
	return plan, nil
}
