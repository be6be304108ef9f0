package search

import (
	"sync/atomic"
	"time"

	"honeycomb/internal/board"
	"honeycomb/internal/geometry"
	"honeycomb/internal/tt"
)

// Searcher is the top-level entry point front-ends use to drive a search: it
// owns the shared transposition table, a cooperative stop flag, and the
// minimum-think-time floor, and dispatches each call to the sequential or
// parallel iterative-deepening driver.
type Searcher struct {
	table *tt.Table
	stop  atomic.Bool

	// MinThinkTime is the minimum wall-clock duration a completed (not
	// timed out) search sleeps before returning, so a shallow game-tree
	// position doesn't return instantly. Zero disables the floor.
	MinThinkTime time.Duration

	state *State
}

// NewSearcher constructs a Searcher backed by table, allocating its own
// reusable search State.
func NewSearcher(table *tt.Table) *Searcher {
	return &Searcher{table: table, state: New()}
}

// Table returns the Searcher's transposition table.
func (sr *Searcher) Table() *tt.Table { return sr.table }

// RequestStop sets the cooperative stop flag; the next abort-check poll in
// any in-flight search on this Searcher observes it and unwinds.
func (sr *Searcher) RequestStop() { sr.stop.Store(true) }

// Search runs one iterative-deepening search from state under constraints.
// It validates the call, bounds the requested depth to the number of
// playable cells remaining, computes a deadline from constraints.TimeLimit,
// dispatches to the sequential or parallel driver, and — once the search
// finishes without timing out — enforces the minimum think-time floor and
// schedules an asynchronous TT save if the game is down to its last cell.
func (sr *Searcher) Search(state board.GameState, constraints Constraints) (Result, error) {
	if state.IsGameOver() {
		return Result{}, &SearchError{Kind: ErrInvalidState, Msg: "cannot search from a terminal state"}
	}
	if constraints.DepthLimit < 1 {
		return Result{}, &SearchError{Kind: ErrInvalidArgument, Msg: "depth_limit must be >= 1"}
	}
	if constraints.TimeLimit < 0 {
		return Result{}, &SearchError{Kind: ErrInvalidArgument, Msg: "time_limit must be >= 0"}
	}

	remainingCells := geometry.NumCells - state.Board.CountOccupied()
	depthLimit := constraints.DepthLimit
	if remainingCells < depthLimit {
		depthLimit = remainingCells
	}
	if depthLimit < 1 {
		depthLimit = 1
	}

	start := time.Now()
	var deadline time.Time
	if constraints.TimeLimit > 0 {
		deadline = start.Add(constraints.TimeLimit)
	}

	sr.stop.Store(false)
	sr.state.Reset(state)

	var result Result
	mode := constraints.Mode
	switch mode {
	case PAR:
		result = runParallel(sr.table, sr.state, depthLimit, deadline, &sr.stop)
	default:
		result = runSequential(sr.table, sr.state, depthLimit, deadline, &sr.stop)
	}

	if !result.TimedOut {
		if sr.MinThinkTime > 0 {
			elapsed := time.Since(start)
			if elapsed < sr.MinThinkTime {
				time.Sleep(sr.MinThinkTime - elapsed)
			}
		}
		if remainingCells <= 1 {
			sr.table.SaveAsync()
		}
	}

	return result, nil
}

// FindBestMove is a convenience wrapper returning just the chosen move,
// optionally overriding the configured depth for this one call.
func (sr *Searcher) FindBestMove(state board.GameState, constraints Constraints, depthOverride int) (int, error) {
	if depthOverride > 0 {
		constraints.DepthLimit = depthOverride
	}
	result, err := sr.Search(state, constraints)
	if err != nil {
		return 0, err
	}
	return result.Move, nil
}
