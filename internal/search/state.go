package search

import (
	"math/bits"

	"honeycomb/internal/board"
	"honeycomb/internal/geometry"
)

// MaxPly bounds the ply-indexed stacks: at most NumCells placements can ever
// be made, so ply never exceeds NumCells.
const MaxPly = geometry.NumCells + 1

// GeneratedMove is a candidate placement discovered by GenerateMoves,
// carrying its immediately-realized scoring delta so negamax and move
// ordering never recompute it.
type GeneratedMove struct {
	Move  int
	Delta int
}

// State is the engine's pre-allocated, ply-indexed search scratch space:
// fixed-size per-ply arrays plus a pre-allocated per-ply move buffer, so a
// full tree traversal never allocates. A State is created once per searcher
// (or once per pool slot under parallel search) and reused across searches
// via Reset.
type State struct {
	ply int

	occupancy   [MaxPly]board.Occupancy
	side        [MaxPly]board.Side
	scoreFirst  [MaxPly]int
	scoreSecond [MaxPly]int

	blockedCell int
	blockedMask board.Occupancy

	moveBuf   [MaxPly][geometry.NumCells]GeneratedMove
	moveCount [MaxPly]int
}

// New allocates a fresh, unreset State.
func New() *State {
	return &State{}
}

// Reset loads g as ply 0, discarding anything above it.
func (s *State) Reset(g board.GameState) {
	s.ply = 0
	s.occupancy[0] = g.Board.Occupancy
	s.side[0] = g.Board.Side
	s.scoreFirst[0] = g.ScoreFirst
	s.scoreSecond[0] = g.ScoreSecond
	s.blockedCell = g.Board.BlockedCell
	s.blockedMask = g.Board.BlockedMask
}

// Ply returns the current depth within the stack (0 = root of this search).
func (s *State) Ply() int { return s.ply }

// CurrentBoard reconstructs the Board value at the current ply.
func (s *State) CurrentBoard() board.Board {
	return board.Board{
		Occupancy:   s.occupancy[s.ply],
		Side:        s.side[s.ply],
		BlockedCell: s.blockedCell,
		BlockedMask: s.blockedMask,
	}
}

// ScoreFirst and ScoreSecond return the cumulative scores at the current ply.
func (s *State) ScoreFirst() int  { return s.scoreFirst[s.ply] }
func (s *State) ScoreSecond() int { return s.scoreSecond[s.ply] }

// SideToMove returns the side to move at the current ply.
func (s *State) SideToMove() board.Side { return s.side[s.ply] }

// IsTerminal reports whether every cell is occupied at the current ply.
func (s *State) IsTerminal() bool { return s.occupancy[s.ply] == board.BoardMask }

// CanonicalKey returns the combined TT key for the current ply.
func (s *State) CanonicalKey() uint64 { return board.CanonicalKey(s.CurrentBoard()) }

// GenerateMoves enumerates legal placements at the current ply into the
// per-ply buffer and returns the count. Bits of the empty-cell mask are
// visited in ascending index order; if ttHint names a currently-legal cell
// it is moved to index 0 and the remaining moves keep ascending order. This
// gives negamax a deterministic tie-break at equal scores (see DESIGN.md
// for why capture-first reordering was not adopted here).
func (s *State) GenerateMoves(ttHint int) int {
	ply := s.ply
	occ := s.occupancy[ply]
	remaining := uint64(board.BoardMask &^ occ)
	buf := &s.moveBuf[ply]
	count := 0

	if ttHint >= 0 && ttHint < geometry.NumCells && remaining&(uint64(1)<<uint(ttHint)) != 0 {
		delta := board.ScoreDelta(occ, occ.Set(ttHint), ttHint)
		buf[0] = GeneratedMove{Move: ttHint, Delta: delta}
		count = 1
		remaining &^= uint64(1) << uint(ttHint)
	}

	for remaining != 0 {
		cell := bits.TrailingZeros64(remaining)
		remaining &= remaining - 1
		delta := board.ScoreDelta(occ, occ.Set(cell), cell)
		buf[count] = GeneratedMove{Move: cell, Delta: delta}
		count++
	}

	s.moveCount[ply] = count
	return count
}

// MoveAt returns the index'th generated move at the current ply. Callers
// must have called GenerateMoves first and keep index within its returned
// count.
func (s *State) MoveAt(index int) GeneratedMove { return s.moveBuf[s.ply][index] }

// PushGenerated advances to the next ply by applying the index'th move
// produced by the most recent GenerateMoves call at the current ply, using
// its cached delta rather than recomputing it.
func (s *State) PushGenerated(index int) {
	mv := s.moveBuf[s.ply][index]
	s.applyMove(mv.Move, mv.Delta)
}

// Push advances to the next ply by applying move, computing its delta on
// the fly. Convenience for callers outside the generate/iterate loop (root
// move application, tests).
func (s *State) Push(move int) {
	occ := s.occupancy[s.ply]
	delta := board.ScoreDelta(occ, occ.Set(move), move)
	s.applyMove(move, delta)
}

func (s *State) applyMove(move, delta int) {
	cur := s.ply
	next := cur + 1
	mover := s.side[cur]

	s.occupancy[next] = s.occupancy[cur].Set(move)
	s.side[next] = mover.Other()
	s.scoreFirst[next] = s.scoreFirst[cur]
	s.scoreSecond[next] = s.scoreSecond[cur]
	if mover == board.First {
		s.scoreFirst[next] += delta
	} else {
		s.scoreSecond[next] += delta
	}
	s.ply = next
}

// Pop retreats one ply. Buffers above the new ply are left stale and must
// not be read until a later GenerateMoves/Push repopulates them.
func (s *State) Pop() error {
	if s.ply == 0 {
		return &SearchError{Kind: ErrInvalidState, Msg: "cannot pop the root ply"}
	}
	s.ply--
	return nil
}

// DefaultScoreWeight is the material-heuristic multiplier evaluate_current
// uses absent an override.
const DefaultScoreWeight = 100

// EvaluateCurrent returns the material heuristic (score differential from
// the side to move's perspective, scaled by scoreWeight) plus the best
// immediately achievable scoring delta for the side to move.
func (s *State) EvaluateCurrent(scoreWeight int) int32 {
	ply := s.ply
	var mine, theirs int
	if s.side[ply] == board.First {
		mine, theirs = s.scoreFirst[ply], s.scoreSecond[ply]
	} else {
		mine, theirs = s.scoreSecond[ply], s.scoreFirst[ply]
	}
	potential := board.BestImmediateDelta(s.CurrentBoard())
	return int32((mine-theirs)*scoreWeight + potential)
}
