package board

import (
	"math/bits"

	"honeycomb/internal/geometry"
)

// ScoreDelta returns how many points placing at cell completes: for each of
// the (at most three) lines through cell, if the line was incomplete before
// the placement and complete after, its length is added to the total. No
// allocations; exactly three lines touch any cell and their lengths always
// sum to 21, so the result is in [0, 21], inside the [0, 27] bound.
func ScoreDelta(prevOcc, newOcc Occupancy, cell int) int {
	delta := 0
	for _, line := range geometry.LinesByCell[cell] {
		mask := Occupancy(geometry.LineMasks[line])
		if prevOcc&mask != mask && newOcc&mask == mask {
			delta += bits.OnesCount64(uint64(mask))
		}
	}
	return delta
}

// BestImmediateDelta returns the largest ScoreDelta achievable by a single
// placement on any currently-empty, unblocked cell of b. Returns 0 if no
// cell is available.
func BestImmediateDelta(b Board) int {
	best := 0
	remaining := uint64(BoardMask &^ b.Occupancy)
	for remaining != 0 {
		cell := bits.TrailingZeros64(remaining)
		remaining &= remaining - 1
		if d := ScoreDelta(b.Occupancy, b.Occupancy.Set(cell), cell); d > best {
			best = d
		}
	}
	return best
}
