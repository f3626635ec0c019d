package netblock

import "math/bits"

// TryMerge reports whether a and b are the low and high half of a common
// supernet and returns that supernet. It succeeds only when both blocks have
// the same prefix length, b starts immediately after a ends, and a sits on
// the supernet's alignment boundary. Two merely adjacent blocks that straddle
// an alignment boundary (e.g. 1.0.1.0/24 and 1.0.2.0/24) never merge.
// Prefix-0 blocks never merge since no coarser prefix exists.
func TryMerge(a, b Block) (Block, bool) {
	if a.prefixLen == 0 || a.prefixLen != b.prefixLen {
		return Block{}, false
	}
	if a.Last()+1 != b.network {
		return Block{}, false
	}

	combined := Size(a.prefixLen) + Size(b.prefixLen)
	prefixLen := uint8(32 - bits.TrailingZeros64(combined))
	if a.network&Mask(prefixLen) != a.network {
		// a is the high half of its own parent, so a+b span two supernets.
		return Block{}, false
	}
	return Block{network: a.network, prefixLen: prefixLen}, true
}
