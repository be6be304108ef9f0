package board

import "honeycomb/internal/geometry"

// CanonicalKey returns the symmetry-canonical transposition-table key for a
// board: the minimum symmetry image of occupancy, shifted left one bit and
// OR'd with the side-to-move bit.
func CanonicalKey(b Board) uint64 {
	canon := geometry.Canonical(uint64(b.Occupancy))
	key := canon << 1
	if b.Side == Second {
		key |= 1
	}
	return key
}
