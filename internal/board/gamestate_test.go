package board

import (
	"testing"

	"honeycomb/internal/geometry"
)

// Scenario 3 (spec §8): moves [1, 3, 2] applied in order from the empty
// board score first=2, second=0 — the first player completes the
// length-2 row (cells 1,2) on the third move.
func TestMoveSequenceScenario(t *testing.T) {
	g, err := NewGameState(NoBlockedCell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, mv := range []int{1, 3, 2} {
		g, err = g.ApplyMove(mv)
		if err != nil {
			t.Fatalf("applying move %d: %v", mv, err)
		}
	}
	if g.ScoreFirst != 2 {
		t.Fatalf("expected score_first=2, got %d", g.ScoreFirst)
	}
	if g.ScoreSecond != 0 {
		t.Fatalf("expected score_second=0, got %d", g.ScoreSecond)
	}
}

// Scenario 4 (spec §8): filling every cell in ascending order from the
// empty board ends the game with move_number=55 and a combined score of
// 165 (the sum of lengths of all 30 lines, each completed exactly once).
func TestFillBoardScenario(t *testing.T) {
	g, err := NewGameState(NoBlockedCell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < geometry.NumCells; i++ {
		g, err = g.ApplyMove(i)
		if err != nil {
			t.Fatalf("applying move %d: %v", i, err)
		}
	}
	if !g.IsGameOver() {
		t.Fatal("expected game to be over after filling every cell")
	}
	if g.MoveNumber() != geometry.NumCells {
		t.Fatalf("expected move_number=%d, got %d", geometry.NumCells, g.MoveNumber())
	}
	total := g.ScoreFirst + g.ScoreSecond
	if total != 165 {
		t.Fatalf("expected combined score 165, got %d", total)
	}
}

// Scenario 6 (spec §8): with blocked-cell=0, a fresh GameState has
// move_number=0, canonical board = 1 (the single blocked bit canonicalizes
// to cell 0, whose bit is 1), and applying the next move awards no score
// for the neutral blocked cell.
func TestBlockedCellScenario(t *testing.T) {
	g, err := NewGameState(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.MoveNumber() != 0 {
		t.Fatalf("expected move_number=0, got %d", g.MoveNumber())
	}
	canon := CanonicalKey(g.Board) >> 1
	if canon != 1 {
		t.Fatalf("expected canonical board 1, got %d", canon)
	}

	g2, err := g.ApplyMove(1)
	if err != nil {
		t.Fatalf("unexpected error applying move 1: %v", err)
	}
	canon2 := CanonicalKey(g2.Board) >> 1
	if canon2 == 0 {
		t.Fatal("expected canonical board to change after a placement")
	}
	// Cell 1's lines are row 1 (cells 1,2), the down-right diagonal from
	// (1,0), and the length-10 down-left diagonal from cell 0; none of them
	// is complete after this placement, so it scores nothing.
	if g2.ScoreFirst+g2.ScoreSecond != 0 {
		t.Fatalf("expected no score from this placement, got first=%d second=%d", g2.ScoreFirst, g2.ScoreSecond)
	}
}

// Round-trip invariant (spec §8): after playing every playable cell in any
// order, total score equals the sum of lengths of all 30 lines (each
// completes exactly once over a full game).
func TestRoundTripTotalScoreAnyOrder(t *testing.T) {
	orders := [][]int{
		sequential(geometry.NumCells),
		reversed(geometry.NumCells),
		interleaved(geometry.NumCells),
	}
	for oi, order := range orders {
		g, err := NewGameState(NoBlockedCell)
		if err != nil {
			t.Fatalf("order %d: unexpected error: %v", oi, err)
		}
		for _, mv := range order {
			g, err = g.ApplyMove(mv)
			if err != nil {
				t.Fatalf("order %d: applying move %d: %v", oi, mv, err)
			}
		}
		if total := g.ScoreFirst + g.ScoreSecond; total != 165 {
			t.Fatalf("order %d: expected total score 165, got %d", oi, total)
		}
	}
}

func sequential(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func reversed(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = n - 1 - i
	}
	return out
}

func interleaved(n int) []int {
	out := make([]int, 0, n)
	for lo, hi := 0, n-1; lo <= hi; {
		out = append(out, lo)
		lo++
		if lo > hi {
			break
		}
		out = append(out, hi)
		hi--
	}
	return out
}

func TestApplyMoveRejectsTerminalState(t *testing.T) {
	g, _ := NewGameState(NoBlockedCell)
	var err error
	for i := 0; i < geometry.NumCells; i++ {
		g, err = g.ApplyMove(i)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := g.ApplyMove(0); err == nil {
		t.Fatal("expected error applying a move to a terminal game state")
	}
}
