package netblock

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

// ErrInvalidPrefix indicates a prefix length outside the 0-32 range of IPv4.
var ErrInvalidPrefix = errors.New("netblock: prefix length exceeds 32")

// Block is an IPv4 CIDR block. The network address is stored in canonical
// form, already masked down to prefixLen bits, so two blocks covering the
// same range always compare equal and Block works directly as a map key.
type Block struct {
	network   uint32
	prefixLen uint8
}

// New builds a Block from a raw address, masking it down to prefixLen bits.
func New(addr uint32, prefixLen uint8) (Block, error) {
	if prefixLen > 32 {
		return Block{}, ErrInvalidPrefix
	}
	return Block{network: addr & Mask(prefixLen), prefixLen: prefixLen}, nil
}

// FromIPNet converts a parsed IPv4 network into a Block. IPv4-mapped IPv6
// networks (::ffff:a.b.c.d) are unwrapped; native IPv6 networks are rejected.
func FromIPNet(n *net.IPNet) (Block, error) {
	ip4 := n.IP.To4()
	if ip4 == nil {
		return Block{}, fmt.Errorf("netblock: %s is not an IPv4 network", n)
	}
	ones, total := n.Mask.Size()
	switch total {
	case 8 * net.IPv4len:
	case 8 * net.IPv6len:
		ones -= 96
	default:
		return Block{}, fmt.Errorf("netblock: %s has a malformed mask", n)
	}
	if ones < 0 || ones > 32 {
		return Block{}, fmt.Errorf("netblock: %s: %w", n, ErrInvalidPrefix)
	}
	return New(binary.BigEndian.Uint32(ip4), uint8(ones))
}

// ParseCIDR builds a Block from its "a.b.c.d/p" form.
func ParseCIDR(s string) (Block, error) {
	_, ipNet, err := net.ParseCIDR(s)
	if err != nil {
		return Block{}, fmt.Errorf("netblock: parse %q: %w", s, err)
	}
	return FromIPNet(ipNet)
}

// Mask returns the network mask for the given prefix length.
func Mask(prefixLen uint8) uint32 {
	if prefixLen == 0 {
		return 0
	}
	return ^uint32(0) << (32 - prefixLen)
}

// Size returns the number of addresses a block of the given prefix length
// spans. The result is a uint64 so a /0 does not overflow.
func Size(prefixLen uint8) uint64 {
	return 1 << (32 - prefixLen)
}

// Network returns the canonical base address of the block.
func (b Block) Network() uint32 { return b.network }

// PrefixLen returns the prefix length of the block.
func (b Block) PrefixLen() uint8 { return b.prefixLen }

// Last returns the highest address inside the block.
func (b Block) Last() uint32 {
	return b.network | ^Mask(b.prefixLen)
}

// Contains reports whether other lies strictly inside b. A block never
// contains itself or a block of equal or coarser prefix length.
func (b Block) Contains(other Block) bool {
	if b.prefixLen >= other.prefixLen {
		return false
	}
	return other.network&Mask(b.prefixLen) == b.network
}

// Covers is the non-strict variant of Contains: a block covers itself.
func (b Block) Covers(other Block) bool {
	if b.prefixLen > other.prefixLen {
		return false
	}
	return other.network&Mask(b.prefixLen) == b.network
}

// Compare orders blocks by network address, then by prefix length. Coarser
// blocks sort before finer blocks starting at the same address.
func (b Block) Compare(other Block) int {
	switch {
	case b.network < other.network:
		return -1
	case b.network > other.network:
		return 1
	case b.prefixLen < other.prefixLen:
		return -1
	case b.prefixLen > other.prefixLen:
		return 1
	}
	return 0
}

// String renders the block as "a.b.c.d/p" using the network address.
func (b Block) String() string {
	return fmt.Sprintf("%d.%d.%d.%d/%d",
		byte(b.network>>24), byte(b.network>>16), byte(b.network>>8), byte(b.network), b.prefixLen)
}
