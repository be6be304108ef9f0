package search

import (
	"testing"

	"honeycomb/internal/board"
)

func newEmptyGameState(t *testing.T) board.GameState {
	t.Helper()
	g, err := board.NewGameState(board.NoBlockedCell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestResetLoadsRootPly(t *testing.T) {
	g := newEmptyGameState(t)
	s := New()
	s.Reset(g)

	if s.Ply() != 0 {
		t.Fatalf("expected ply 0, got %d", s.Ply())
	}
	if s.SideToMove() != board.First {
		t.Fatalf("expected First to move, got %v", s.SideToMove())
	}
	if !s.CurrentBoard().IsEmpty(0) {
		t.Fatal("expected empty board")
	}
}

func TestGenerateMovesAscendingWithHintFirst(t *testing.T) {
	s := New()
	s.Reset(newEmptyGameState(t))

	count := s.GenerateMoves(5)
	if count != 55 {
		t.Fatalf("expected 55 candidate moves, got %d", count)
	}
	if s.MoveAt(0).Move != 5 {
		t.Fatalf("expected hint move at index 0, got %d", s.MoveAt(0).Move)
	}
	// Remaining moves keep ascending order, skipping the hinted cell.
	prev := -1
	for i := 1; i < count; i++ {
		m := s.MoveAt(i).Move
		if m == 5 {
			t.Fatal("hinted move must not reappear later in the buffer")
		}
		if m <= prev {
			t.Fatalf("expected strictly ascending order, got %d after %d at index %d", m, prev, i)
		}
		prev = m
	}
}

func TestGenerateMovesIgnoresIllegalHint(t *testing.T) {
	s := New()
	s.Reset(newEmptyGameState(t))
	s.Push(0) // occupy cell 0

	count := s.GenerateMoves(0) // hint now illegal (occupied)
	if count != 54 {
		t.Fatalf("expected 54 remaining moves, got %d", count)
	}
	if s.MoveAt(0).Move != 1 {
		t.Fatalf("expected ascending order starting at 1, got %d", s.MoveAt(0).Move)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	s := New()
	s.Reset(newEmptyGameState(t))

	s.Push(0)
	if s.Ply() != 1 {
		t.Fatalf("expected ply 1 after push, got %d", s.Ply())
	}
	if s.SideToMove() != board.Second {
		t.Fatalf("expected Second to move after push, got %v", s.SideToMove())
	}
	if s.ScoreFirst() != 1 {
		t.Fatalf("expected first player to have scored 1, got %d", s.ScoreFirst())
	}

	if err := s.Pop(); err != nil {
		t.Fatalf("unexpected pop error: %v", err)
	}
	if s.Ply() != 0 {
		t.Fatalf("expected ply 0 after pop, got %d", s.Ply())
	}
	if s.ScoreFirst() != 0 {
		t.Fatalf("expected score restored to 0, got %d", s.ScoreFirst())
	}
}

func TestPopAtRootFails(t *testing.T) {
	s := New()
	s.Reset(newEmptyGameState(t))
	if err := s.Pop(); err == nil {
		t.Fatal("expected error popping the root ply")
	}
}

func TestPushGeneratedMatchesPush(t *testing.T) {
	a := New()
	a.Reset(newEmptyGameState(t))
	a.Push(3)

	b := New()
	b.Reset(newEmptyGameState(t))
	b.GenerateMoves(-1)
	for i := 0; i < b.moveCount[0]; i++ {
		if b.MoveAt(i).Move == 3 {
			b.PushGenerated(i)
			break
		}
	}

	if a.CurrentBoard().Occupancy != b.CurrentBoard().Occupancy {
		t.Fatal("PushGenerated and Push should reach the same occupancy")
	}
	if a.ScoreFirst() != b.ScoreFirst() {
		t.Fatal("PushGenerated and Push should produce the same score")
	}
}

func TestEvaluateCurrentOnEmptyBoard(t *testing.T) {
	s := New()
	s.Reset(newEmptyGameState(t))
	// Empty board: no score differential, but cell 0 offers delta 1.
	if got := s.EvaluateCurrent(DefaultScoreWeight); got != 1 {
		t.Fatalf("expected evaluate_current == 1 on empty board, got %d", got)
	}
}
