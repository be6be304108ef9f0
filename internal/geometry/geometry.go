// Package geometry builds the static lookup tables that describe the
// Honeycomb board: the cell/row/column correspondence, the 30 scoring
// lines, and the 6-element dihedral symmetry group used for
// canonicalization. All tables are computed once at init() time, the same
// way a chess engine precomputes its attack tables in package-level init()
// blocks.
package geometry

import (
	"fmt"
	"math/bits"
)

// NumRows is the number of rows in the triangular grid (row r has r+1 cells).
const NumRows = 10

// NumCells is the total number of playable cells (0 + 1 + ... + 9 = 55).
const NumCells = NumRows * (NumRows + 1) / 2

// NumLines is the number of scoring lines: 10 rows + 10 right-diagonals + 10 left-diagonals.
const NumLines = 3 * NumRows

// NumSymmetries is the size of the board's symmetry group (dihedral group of the triangle).
const NumSymmetries = 6

// BoardMask has the low NumCells bits set; it is the universe of valid cell bits.
const BoardMask uint64 = (1 << NumCells) - 1

// LineMasks holds the 30 scoring-line bitmasks, indexed 0..9 for rows,
// 10..19 for down-right diagonals, 20..29 for down-left diagonals.
var LineMasks [NumLines]uint64

// LineLengths holds the popcount of each line, mirroring LineMasks.
var LineLengths [NumLines]int

// LinesByCell holds, for each cell, the three line indices it belongs to.
var LinesByCell [NumCells][3]int

// SymmetryPermutations[s][i] is the cell that cell i maps to under symmetry s.
var SymmetryPermutations [NumSymmetries][NumCells]int

func init() {
	buildLines()
	buildSymmetries()
	if err := Validate(); err != nil {
		panic("geometry: " + err.Error())
	}
}

// CellIndex returns the linear cell index for (row, col).
// Precondition: 0 <= col <= row < NumRows.
func CellIndex(row, col int) int {
	return row*(row+1)/2 + col
}

// RowCol returns the (row, col) for a linear cell index.
// Precondition: 0 <= i < NumCells.
func RowCol(i int) (row, col int) {
	for r := 0; r < NumRows; r++ {
		start := r * (r + 1) / 2
		end := start + r + 1
		if i < end {
			return r, i - start
		}
	}
	panic("geometry: cell index out of range")
}

func buildLines() {
	lineOf := 0
	cellLineCount := [NumCells]int{}

	addLine := func(cells []int) {
		var mask uint64
		for _, c := range cells {
			mask |= 1 << uint(c)
		}
		LineMasks[lineOf] = mask
		LineLengths[lineOf] = len(cells)
		for _, c := range cells {
			LinesByCell[c][cellLineCount[c]] = lineOf
			cellLineCount[c]++
		}
		lineOf++
	}

	// 10 horizontal rows.
	for r := 0; r < NumRows; r++ {
		cells := make([]int, 0, r+1)
		for c := 0; c <= r; c++ {
			cells = append(cells, CellIndex(r, c))
		}
		addLine(cells)
	}

	// 10 down-right diagonals, starting at (s, 0), stepping (row+1, col+1).
	for s := 0; s < NumRows; s++ {
		var cells []int
		r, c := s, 0
		for r < NumRows && c <= r {
			cells = append(cells, CellIndex(r, c))
			r++
			c++
		}
		addLine(cells)
	}

	// 10 down-left diagonals, starting at (s, s), stepping (row+1, col unchanged).
	for s := 0; s < NumRows; s++ {
		var cells []int
		r, c := s, s
		for r < NumRows && c <= r {
			cells = append(cells, CellIndex(r, c))
			r++
		}
		addLine(cells)
	}
}

// buildSymmetries derives the 6 symmetries of the board's dihedral group from
// cube coordinates (x = NumRows-1-r, y = c, z = r-c) permuted by the 6 axis
// permutations of the triangle, then projected back to (row, col) via
// row = y'+z', col = y'.
func buildSymmetries() {
	axisPerms := [NumSymmetries][3]int{
		{0, 1, 2},
		{1, 2, 0},
		{2, 0, 1},
		{0, 2, 1},
		{2, 1, 0},
		{1, 0, 2},
	}

	for s, perm := range axisPerms {
		for i := 0; i < NumCells; i++ {
			r, c := RowCol(i)
			x := (NumRows - 1) - r
			y := c
			z := r - c
			coords := [3]int{x, y, z}

			yp := coords[perm[1]]
			zp := coords[perm[2]]

			newRow := yp + zp
			newCol := yp
			SymmetryPermutations[s][i] = CellIndex(newRow, newCol)
		}
	}
}

// Validate checks the construction invariants required before the engine
// may start: every cell belongs to exactly three lines, every line's mask
// has the expected popcount, and every symmetry permutation is a bijection
// on {0..54}.
func Validate() error {
	var coverage [NumCells]int
	for line := 0; line < NumLines; line++ {
		if bits.OnesCount64(LineMasks[line]) != LineLengths[line] {
			return fmt.Errorf("line %d mask/length mismatch", line)
		}
		mask := LineMasks[line]
		for mask != 0 {
			cell := bits.TrailingZeros64(mask)
			mask &= mask - 1
			coverage[cell]++
		}
	}
	for cell, n := range coverage {
		if n != 3 {
			return fmt.Errorf("cell %d covered by %d lines, want 3", cell, n)
		}
	}

	for s := 0; s < NumSymmetries; s++ {
		var seen [NumCells]bool
		for i := 0; i < NumCells; i++ {
			img := SymmetryPermutations[s][i]
			if img < 0 || img >= NumCells {
				return fmt.Errorf("symmetry %d maps cell %d out of range: %d", s, i, img)
			}
			if seen[img] {
				return fmt.Errorf("symmetry %d is not a bijection: %d repeated", s, img)
			}
			seen[img] = true
		}
	}
	return nil
}
