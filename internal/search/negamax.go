package search

import "honeycomb/internal/tt"

// negativeInfinity and positiveInfinity stand in for a root search window
// wide enough that no real evaluation can reach it, leaving headroom so
// negation never overflows.
const (
	negativeInfinity int32 = -(1 << 30)
	positiveInfinity int32 = 1 << 30
)

// negamax is the sequential search core: abort check, TT probe, terminal
// check, move generation with TT-hint ordering, a PVS/LMR move loop, and a
// TT store on the way out, following the overall shape of a worker's
// negamax loop in a concurrent chess engine; Honeycomb drops every
// chess-specific heuristic (quiescence, null-move, razoring, SEE, singular
// extensions) since exact scoring leaves no room for that kind of pruning.
func negamax(c *ctx, s *State, depth int, alpha, beta int32) int32 {
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

func pickReturnValue(bestValue int32, s *State) int32 {
	if bestValue == negativeInfinity {
		return s.EvaluateCurrent(DefaultScoreWeight)
	}
	return bestValue
}

func store(c *ctx, key uint64, value, depth int32, flag tt.Flag, bestMove int) {
	c.table.Put(key, tt.Entry{Value: value, Depth: depth, Flag: flag, BestMove: int32(bestMove)})
	c.telemetry.ttStores.Add(1)
}
