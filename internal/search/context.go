package search

import (
	"sync/atomic"
	"time"

	"honeycomb/internal/tt"
)

// telemetry holds the atomic counters a whole search() call accumulates,
// shared by every ctx derived from it (root sequential search, or every
// forked scout of a parallel search).
type telemetry struct {
	nodes          atomic.Int64
	cutoffs        atomic.Int64
	ttHits         atomic.Int64
	ttStores       atomic.Int64
	pvResearches   atomic.Int64
	maxActiveTasks atomic.Int64
	timedOut       atomic.Bool
}

// ctx carries what a single search node needs: the shared transposition
// table, a cooperative stop flag plus deadline, shared telemetry, and —
// for scouts forked off a parallel PV-split — a batch-local cancellation
// flag that lets a sibling's beta cutoff abandon the rest of the batch
// without touching the global stop flag or marking the whole search as
// timed out.
type ctx struct {
	table       *tt.Table
	deadline    time.Time // zero value means no deadline
	stop        *atomic.Bool
	telemetry   *telemetry
	localCancel *atomic.Bool // nil outside a fork batch
}

func newCtx(table *tt.Table, deadline time.Time, stop *atomic.Bool) *ctx {
	return &ctx{table: table, deadline: deadline, stop: stop, telemetry: &telemetry{}}
}

// forkChild derives a ctx for one scout of a PV-split, sharing everything
// except the batch-local cancellation flag.
func (c *ctx) forkChild(localCancel *atomic.Bool) *ctx {
	return &ctx{table: c.table, deadline: c.deadline, stop: c.stop, telemetry: c.telemetry, localCancel: localCancel}
}

// shouldAbort polls, in order: this node's batch-local cancellation (if
// any), the global stop flag, and the deadline. A tripped local
// cancellation is fork pruning, not a search timeout, so it does not set
// timedOut.
func (c *ctx) shouldAbort() bool {
	if c.localCancel != nil && c.localCancel.Load() {
		return true
	}
	if c.stop.Load() {
		c.telemetry.timedOut.Store(true)
		return true
	}
	if !c.deadline.IsZero() && time.Now().After(c.deadline) {
		c.telemetry.timedOut.Store(true)
		return true
	}
	return false
}

func (c *ctx) timedOut() bool { return c.telemetry.timedOut.Load() }

func (c *ctx) snapshot(depth int, elapsed time.Duration, pv []int, warning string) IterationRecord {
	t := c.telemetry
	return IterationRecord{
		Depth:              depth,
		Nodes:              t.nodes.Load(),
		Cutoffs:            t.cutoffs.Load(),
		TTHits:             t.ttHits.Load(),
		TTStores:           t.ttStores.Load(),
		PVResearches:       t.pvResearches.Load(),
		MaxActiveTasks:     t.maxActiveTasks.Load(),
		Elapsed:            elapsed,
		PrincipalVariation: pv,
		Warning:            warning,
	}
}

func (c *ctx) observeActiveTasks(n int64) {
	t := c.telemetry
	for {
		cur := t.maxActiveTasks.Load()
		if n <= cur || t.maxActiveTasks.CompareAndSwap(cur, n) {
			return
		}
	}
}
