// Package board implements the immutable Board and GameState value types
// for Honeycomb: a 55-bit occupancy bitboard plus side-to-move, and a
// cumulative-score wrapper around it. Value-oriented position handling
// generalized from a 64-square chess bitboard to a 55-cell triangular
// grid, dropping the undo-stack mutation style since Honeycomb positions
// are cheap enough to copy wholesale on every move.
package board

import (
	"fmt"
	"math/bits"
	"math/rand"

	"honeycomb/internal/geometry"
)

// Occupancy is a 55-bit set; bit i is set iff cell i is occupied.
type Occupancy uint64

// BoardMask is the universe of valid cell bits.
const BoardMask Occupancy = Occupancy(geometry.BoardMask)

// IsSet reports whether cell i is occupied.
func (o Occupancy) IsSet(i int) bool { return o&(1<<uint(i)) != 0 }

// Set returns occupancy with cell i additionally marked occupied.
func (o Occupancy) Set(i int) Occupancy { return o | (1 << uint(i)) }

// PopCount returns the number of occupied cells.
func (o Occupancy) PopCount() int { return bits.OnesCount64(uint64(o)) }

// Side identifies which player is to move.
type Side uint8

const (
	First Side = iota
	Second
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == First {
		return Second
	}
	return First
}

func (s Side) String() string {
	if s == First {
		return "FIRST"
	}
	return "SECOND"
}

// NoBlockedCell indicates a board variant with no neutral blocked cell.
const NoBlockedCell = -1

// Board is an immutable snapshot of cell occupancy, side to move, and the
// (optional) single blocked/neutral cell.
type Board struct {
	Occupancy   Occupancy
	Side        Side
	BlockedCell int // NoBlockedCell, or one of {0, 45, 54}
	BlockedMask Occupancy
}

var validCorners = map[int]bool{0: true, 45: true, 54: true}

// NewBoard constructs an empty board with the given blocked cell
// (NoBlockedCell, or one of the three triangle corners 0/45/54). The
// blocked cell, if any, is occupied from construction and never scores.
func NewBoard(blockedCell int) (Board, error) {
	if blockedCell != NoBlockedCell && !validCorners[blockedCell] {
		return Board{}, &InvalidArgumentError{Msg: fmt.Sprintf("blocked cell %d not in {-1,0,45,54}", blockedCell)}
	}
	b := Board{Side: First, BlockedCell: blockedCell}
	if blockedCell != NoBlockedCell {
		b.BlockedMask = Occupancy(1) << uint(blockedCell)
		b.Occupancy = b.BlockedMask
	}
	return b, nil
}

// NewBoardRandomCorner constructs a board with a uniformly random corner
// blocked, the engine's default variant.
func NewBoardRandomCorner(rng *rand.Rand) Board {
	corners := [3]int{0, 45, 54}
	var idx int
	if rng != nil {
		idx = rng.Intn(3)
	} else {
		idx = rand.Intn(3)
	}
	b, _ := NewBoard(corners[idx])
	return b
}

// IsEmpty reports whether cell i is unoccupied.
func (b Board) IsEmpty(i int) bool { return !b.Occupancy.IsSet(i) }

// IsBlocked reports whether cell i is the board's neutral blocked cell.
func (b Board) IsBlocked(i int) bool {
	return b.BlockedCell != NoBlockedCell && i == b.BlockedCell
}

// CountOccupied returns the number of occupied cells (including the blocked one, if any).
func (b Board) CountOccupied() int { return b.Occupancy.PopCount() }

// IsFull reports whether every cell is occupied.
func (b Board) IsFull() bool { return b.Occupancy == BoardMask }

// Place returns a new Board with cell i occupied and side to move flipped.
// Precondition: cell i must be empty and not blocked.
func (b Board) Place(i int) (Board, error) {
	if i < 0 || i >= geometry.NumCells {
		return Board{}, &InvalidArgumentError{Msg: fmt.Sprintf("cell %d out of range", i)}
	}
	if b.IsBlocked(i) || !b.IsEmpty(i) {
		return Board{}, &InvalidMoveError{Cell: i}
	}
	nb := b
	nb.Occupancy = b.Occupancy.Set(i)
	nb.Side = b.Side.Other()
	return nb, nil
}
