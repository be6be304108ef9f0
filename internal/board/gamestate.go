package board

import "math/rand"

// GameState wraps a Board with cumulative per-player scores and the move
// count. Like Board, GameState is an immutable value type: ApplyMove
// returns a new GameState rather than mutating the receiver.
type GameState struct {
	Board       Board
	ScoreFirst  int
	ScoreSecond int
	moveNumber  int
}

// NewGameState starts a fresh game with the given blocked-cell configuration.
func NewGameState(blockedCell int) (GameState, error) {
	b, err := NewBoard(blockedCell)
	if err != nil {
		return GameState{}, err
	}
	return GameState{Board: b}, nil
}

// NewGameStateRandomCorner starts a fresh game with a uniformly random
// corner blocked — the engine's default construction.
func NewGameStateRandomCorner(rng *rand.Rand) GameState {
	return GameState{Board: NewBoardRandomCorner(rng)}
}

// MoveNumber returns the number of placements made so far (excludes the
// initial blocked cell, if any).
func (g GameState) MoveNumber() int { return g.moveNumber }

// IsGameOver reports whether every cell is occupied.
func (g GameState) IsGameOver() bool { return g.Board.IsFull() }

// Score returns the cumulative score for the given side.
func (g GameState) Score(side Side) int {
	if side == First {
		return g.ScoreFirst
	}
	return g.ScoreSecond
}

// ApplyMove places a stone at cell i for the current side to move, awarding
// any newly completed lines' lengths to that side, and returns the
// resulting GameState.
func (g GameState) ApplyMove(i int) (GameState, error) {
	if g.IsGameOver() {
		return GameState{}, &InvalidStateError{Msg: "game is already over"}
	}
	mover := g.Board.Side
	prevOcc := g.Board.Occupancy
	nb, err := g.Board.Place(i)
	if err != nil {
		return GameState{}, err
	}

	delta := ScoreDelta(prevOcc, nb.Occupancy, i)

	ng := GameState{
		Board:       nb,
		ScoreFirst:  g.ScoreFirst,
		ScoreSecond: g.ScoreSecond,
		moveNumber:  g.moveNumber + 1,
	}
	if mover == First {
		ng.ScoreFirst += delta
	} else {
		ng.ScoreSecond += delta
	}
	return ng, nil
}
