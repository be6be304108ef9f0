package search

import (
	"sync/atomic"
	"time"

	"honeycomb/internal/board"
	"honeycomb/internal/tt"
)

// runSequential performs iterative deepening from depth 1 to depthLimit on
// the caller's goroutine with a single reusable State: each iteration
// searches the full (negativeInfinity, positiveInfinity) window at the
// root, and a per-iteration timeout returns the previous iteration's best
// move rather than a partial one.
func runSequential(table *tt.Table, s *State, depthLimit int, deadline time.Time, stop *atomic.Bool) Result {
	c := newCtx(table, deadline, stop)

	var result Result
	var lastGoodMove int = tt.NoMove
	var lastGoodDepth int

	for depth := 1; depth <= depthLimit; depth++ {
		iterStart := time.Now()
		score := negamax(c, s, depth, negativeInfinity, positiveInfinity)

		if c.timedOut() {
			break
		}

		rootKey := s.CanonicalKey()
		entry, _ := table.Get(rootKey)
		bestMove := int(entry.BestMove)
		if bestMove < 0 {
			bestMove = firstLegalMove(s)
		}
		lastGoodMove = bestMove
		lastGoodDepth = depth

		pv := reconstructPV(table, s.CurrentBoard(), depth)
		_ = score
		result.Telemetry = append(result.Telemetry, c.snapshot(depth, time.Since(iterStart), pv, ""))
	}

	result.Move = lastGoodMove
	result.DepthEvaluated = lastGoodDepth
	result.VisitedNodes = c.telemetry.nodes.Load()
	result.TimedOut = c.timedOut()
	if result.Move == tt.NoMove {
		result.Move = firstLegalMove(s)
	}
	return result
}

// firstLegalMove returns a guaranteed-legal fallback move: an abort before
// any iteration completes still leaves a legal move to report, because the
// generator visits the lowest-index candidate before anything else.
func firstLegalMove(s *State) int {
	count := s.GenerateMoves(tt.NoMove)
	if count == 0 {
		return tt.NoMove
	}
	return s.MoveAt(0).Move
}

// reconstructPV walks the TT best-move chain from root, stopping at
// maxLen moves, a terminal position, or a missing/unknown entry.
func reconstructPV(table *tt.Table, root board.Board, maxLen int) []int {
	pv := make([]int, 0, maxLen)
	node := root
	for i := 0; i < maxLen; i++ {
		key := board.CanonicalKey(node)
		entry, ok := table.Get(key)
		if !ok || entry.BestMove < 0 {
			break
		}
		pv = append(pv, int(entry.BestMove))
		next, err := node.Place(int(entry.BestMove))
		if err != nil {
			break
		}
		node = next
		if node.IsFull() {
			break
		}
	}
	return pv
}
