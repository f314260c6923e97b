// sync/worker.go
// Copyright(c) 2026 briefsync contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sync

import (
	"context"

	"briefsync/log"
	"briefsync/ofp"

	"golang.org/x/sync/errgroup"
)

// The network fetch must never stall the host tick, so a single worker
// goroutine owns it; requests and results cross on buffered channels
// consumed non-blockingly by the tick handler. Results carry the request
// id they were issued under so a result that arrives after a newer
// request was issued is discarded.

type request struct {
	id      uint64
	pilotID string
}

type result struct {
	id   uint64
	plan *ofp.FlightPlan
	err  error
}

type worker struct {
	fetcher Fetcher
	lg      *log.Logger
	reqs    chan request
	results chan result
	cancel  context.CancelFunc
	eg      *errgroup.Group
}

func newWorker(f Fetcher, lg *log.Logger) *worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{
		fetcher: f,
		lg:      lg,
		reqs:    make(chan request, 1),
		results: make(chan result, 4),
		cancel:  cancel,
	}
	w.eg, ctx = errgroup.WithContext(ctx)
	w.eg.Go(func() error { w.run(ctx); return nil })
	return w
}

func (w *worker) run(ctx context.Context) {
	defer w.lg.CatchAndLogCrash()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.reqs:
			plan, err := w.fetcher.FetchLatest(ctx, req.pilotID)
			select {
			case <-ctx.Done():
				return
			case w.results <- result{id: req.id, plan: plan, err: err}:
			}
		}
	}
}

// submit hands a fetch to the worker without blocking; false means the
// worker is still busy with the previous request.
func (w *worker) submit(id uint64, pilotID string) bool {
	select {
	case w.reqs <- request{id: id, pilotID: pilotID}:
		return true
	default:
		return false
	}
}

// poll retrieves one completed fetch, if any, without blocking.
func (w *worker) poll() (result, bool) {
	select {
	case res := <-w.results:
		return res, true
	default:
		return result{}, false
	}
}

func (w *worker) stop() {
	w.cancel()
	w.eg.Wait()
}
