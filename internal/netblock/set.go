package netblock

// Set is a deduplicating collection of blocks keyed by the full
// (network, prefix length) pair, so two blocks at the same base address but
// different prefix lengths stay distinct entries.
type Set struct {
	members map[Block]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{members: make(map[Block]struct{})}
}

// Add inserts b and reports whether it was not already present.
func (s *Set) Add(b Block) bool {
	if _, exists := s.members[b]; exists {
		return false
	}
	s.members[b] = struct{}{}
	return true
}

// Contains reports whether b is a member of the set.
func (s *Set) Contains(b Block) bool {
	_, exists := s.members[b]
	return exists
}

// Len returns the number of distinct blocks in the set.
func (s *Set) Len() int { return len(s.members) }

// Blocks returns the members as a slice in no particular order.
func (s *Set) Blocks() []Block {
	blocks := make([]Block, 0, len(s.members))
	for b := range s.members {
		blocks = append(blocks, b)
	}
	return blocks
}
