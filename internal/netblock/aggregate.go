package netblock

import "sort"

// Aggregate reduces an arbitrary collection of blocks to the minimal set
// covering the same addresses: contained blocks are dropped and adjacent
// sibling blocks are cascaded into supernets. The input is not modified; the
// result is in ascending address order with coarser blocks first.
//
// The sweep keeps an explicit stack of accepted blocks. After each push the
// two topmost blocks are merged as long as they form an exact sibling pair,
// and a merge result that an earlier, coarser block already covers is
// discarded outright. Equal duplicate blocks are treated as covered, so the
// sweep stays correct even when the caller skips upstream deduplication.
func Aggregate(blocks []Block) []Block {
	if len(blocks) <= 1 {
		return append([]Block(nil), blocks...)
	}

	sorted := append([]Block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Compare(sorted[j]) < 0
	})

	stack := make([]Block, 0, len(sorted))
	for _, blk := range sorted {
		if n := len(stack); n > 0 && stack[n-1].Covers(blk) {
			continue
		}
		stack = append(stack, blk)

		for len(stack) >= 2 {
			a, b := stack[len(stack)-2], stack[len(stack)-1]
			merged, ok := TryMerge(a, b)
			if !ok {
				break
			}
			stack = stack[:len(stack)-2]
			if n := len(stack); n > 0 && stack[n-1].Covers(merged) {
				// The merge result was redundant relative to an already
				// accepted coarser ancestor; the pair beneath it may still
				// be mergeable.
				continue
			}
			stack = append(stack, merged)
		}
	}
	return stack
}
