package search

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"honeycomb/internal/board"
	"honeycomb/internal/tt"
)

// statePool hands out *State values for forked scouts so no fork allocates
// a fresh stack; returned states are reset wholesale by copying the parent
// position, the same per-worker thread-local reuse pattern as the
// sequential searcher's single long-lived State.
var statePool = sync.Pool{New: func() any { return New() }}

// runParallel is the parallel counterpart to runSequential: the same
// iterative-deepening root driver, but each iteration calls pnegamax, which
// fork-joins at PV nodes instead of negamax's single-threaded PVS/LMR loop.
func runParallel(table *tt.Table, s *State, depthLimit int, deadline time.Time, stop *atomic.Bool) Result {
	c := newCtx(table, deadline, stop)

	var result Result
	lastGoodMove := tt.NoMove
	var lastGoodDepth int

	for depth := 1; depth <= depthLimit; depth++ {
		iterStart := time.Now()
		pnegamax(c, s, depth, negativeInfinity, positiveInfinity)

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

// pnegamax mirrors negamax's TT-probe/terminal/movegen prefix exactly, so
// the parallel and sequential searchers agree on every node's bounds and
// best move, but at PV nodes (window width > 1) forks everything but the
// first child: the first move is searched sequentially to establish a
// bound, remaining moves run as null-window scouts in parallel, and any
// scout that raises alpha is re-searched sequentially with the full window
// (Young Brothers Wait/PVS re-search). Non-PV nodes never fork — they fall
// through to the ordinary sequential negamax, including its LMR.
func pnegamax(c *ctx, s *State, depth int, alpha, beta int32) int32 {
	if c.shouldAbort() {
		return s.EvaluateCurrent(DefaultScoreWeight)
	}
	c.telemetry.nodes.Add(1)

	key := s.CanonicalKey()

	ttBestMove := tt.NoMove
	if entry, ok := c.table.Get(key); ok {
		ttBestMove = int(entry.BestMove)
		if int(entry.Depth) >= depth {
			c.telemetry.ttHits.Add(1)
			value := entry.Value
			switch entry.Flag {
			case tt.Exact:
				return value
			case tt.LowerBound:
				if value > alpha {
					alpha = value
				}
			case tt.UpperBound:
				if value < beta {
					beta = value
				}
			}
			if alpha >= beta {
				return value
			}
		}
	}

	if depth <= 0 || s.IsTerminal() {
		value := s.EvaluateCurrent(DefaultScoreWeight)
		storeDepth := depth
		if storeDepth < 0 {
			storeDepth = 0
		}
		store(c, key, value, int32(storeDepth), tt.Exact, tt.NoMove)
		return value
	}

	count := s.GenerateMoves(ttBestMove)
	if count == 0 {
		value := s.EvaluateCurrent(DefaultScoreWeight)
		store(c, key, value, int32(depth), tt.Exact, tt.NoMove)
		return value
	}

	isPVNode := beta-alpha > 1
	if !isPVNode {
		return sequentialMoveLoop(c, s, depth, alpha, beta, count, key)
	}

	return forkJoinMoveLoop(c, s, depth, alpha, beta, count, key)
}

// sequentialMoveLoop is a copy of negamax's move-iteration body, so
// pnegamax's non-PV nodes run the same loop instead of forking.
func sequentialMoveLoop(c *ctx, s *State, depth int, alpha, beta int32, count int, key uint64) int32 {
	isPVNode := beta-alpha > 1
	originalAlpha := alpha
	bestValue := negativeInfinity
	bestMove := tt.NoMove

	for i := 0; i < count; i++ {
		mv := s.MoveAt(i)

		reduction := 0
		if !isPVNode && depth > 2 && i > 0 && mv.Delta == 0 {
			reduction = 1
		}

		s.PushGenerated(i)
		var score int32
		if reduction > 0 {
			score = -negamax(c, s, depth-1-reduction, -alpha-1, -alpha)
			if score > alpha {
				c.telemetry.pvResearches.Add(1)
				score = -negamax(c, s, depth-1, -beta, -alpha)
			}
		} else {
			score = -negamax(c, s, depth-1, -beta, -alpha)
		}
		s.Pop()

		if c.shouldAbort() {
			return pickReturnValue(bestValue, s)
		}

		if score > bestValue {
			bestValue = score
			bestMove = mv.Move
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			c.telemetry.cutoffs.Add(1)
			break
		}
	}

	flag := tt.Exact
	switch {
	case bestValue <= originalAlpha:
		flag = tt.UpperBound
	case bestValue >= beta:
		flag = tt.LowerBound
	}
	store(c, key, bestValue, int32(depth), flag, bestMove)
	return bestValue
}

type scoutResult struct {
	move  int
	score int32
	ok    bool
}

// forkJoinMoveLoop implements the PV-node fork-join split: move 0 runs
// sequentially to establish alpha, the rest fan out as null-window scouts,
// and a scout that raises alpha is re-searched with the full window.
func forkJoinMoveLoop(c *ctx, s *State, depth int, alpha, beta int32, count int, key uint64) int32 {
	originalAlpha := alpha
	bestValue := negativeInfinity
	bestMove := tt.NoMove

	// Move 0: fully sequential, establishes the first bound.
	mv0 := s.MoveAt(0)
	s.PushGenerated(0)
	score0 := -pnegamax(c, s, depth-1, -beta, -alpha)
	s.Pop()

	if c.shouldAbort() {
		return pickReturnValue(bestValue, s)
	}
	bestValue = score0
	bestMove = mv0.Move
	if score0 > alpha {
		alpha = score0
	}

	if alpha >= beta {
		c.telemetry.cutoffs.Add(1)
		store(c, key, bestValue, int32(depth), tt.LowerBound, bestMove)
		return bestValue
	}

	if count > 1 {
		localCancel := &atomic.Bool{}
		childCtx := c.forkChild(localCancel)

		done := make([]chan scoutResult, count)
		var active atomic.Int64
		var g errgroup.Group

		parentOccupancy := s.CurrentBoard().Occupancy
		parentSide := s.SideToMove()
		parentScoreFirst := s.ScoreFirst()
		parentScoreSecond := s.ScoreSecond()

		for i := 1; i < count; i++ {
			i := i
			mv := s.MoveAt(i)
			ch := make(chan scoutResult, 1)
			done[i] = ch
			g.Go(func() error {
				n := active.Add(1)
				c.observeActiveTasks(n)
				defer active.Add(-1)

				child := statePool.Get().(*State)
				defer statePool.Put(child)

				child.Reset(board.GameState{
					Board: board.Board{
						Occupancy:   parentOccupancy,
						Side:        parentSide,
						BlockedCell: s.blockedCell,
						BlockedMask: s.blockedMask,
					},
					ScoreFirst:  parentScoreFirst,
					ScoreSecond: parentScoreSecond,
				})
				child.Push(mv.Move)

				score := -negamax(childCtx, child, depth-1, -alpha-1, -alpha)
				if childCtx.shouldAbort() {
					ch <- scoutResult{ok: false}
					return nil
				}
				ch <- scoutResult{move: mv.Move, score: score, ok: true}
				return nil
			})
		}

		// Gather in submission order. A goroutine whose sibling already
		// tripped localCancel still sends (possibly ok:false); we never
		// block past that send, so a cutoff discovered at index i lets us
		// stop gathering immediately without waiting on i+1..count-1 to
		// finish their own work first.
		for i := 1; i < count; i++ {
			r := <-done[i]
			if !r.ok {
				continue // cancelled or aborted join: "no information"
			}
			score := r.score
			if score > alpha {
				c.telemetry.pvResearches.Add(1)
				s.PushGenerated(i)
				score = -pnegamax(c, s, depth-1, -beta, -alpha)
				s.Pop()
				if c.shouldAbort() {
					break
				}
			}
			if score > bestValue {
				bestValue = score
				bestMove = r.move
				if score > alpha {
					alpha = score
				}
			}
			if alpha >= beta {
				localCancel.Store(true)
				c.telemetry.cutoffs.Add(1)
				break
			}
		}

		// Reap every scout goroutine before returning: cancelled ones
		// notice localCancel at their next node check and unwind quickly.
		localCancel.Store(true)
		_ = g.Wait()
	}

	flag := tt.Exact
	switch {
	case bestValue <= originalAlpha:
		flag = tt.UpperBound
	case bestValue >= beta:
		flag = tt.LowerBound
	}
	store(c, key, bestValue, int32(depth), flag, bestMove)
	return bestValue
}
