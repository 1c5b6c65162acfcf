package subnet

import (
	"fmt"
	"net/netip"
	"strings"
)

// ParseBlock parses a CIDR string such as "10.0.0.0/16" into a network block.
// A bare address is read as a single-host block. The host bits of the address
// must be zero.
func ParseBlock(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)

	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil || addr.Zone() != "" {
			return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidBlock, s)
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidBlock, s)
	}
	if prefix != prefix.Masked() {
		return netip.Prefix{}, fmt.Errorf("%w: %q has host bits set", ErrInvalidBlock, s)
	}

	return prefix, nil
}

// ParseBlocks parses every entry of values with ParseBlock, stopping at the first error
func ParseBlocks(values []string) ([]netip.Prefix, error) {
	blocks := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		block, err := ParseBlock(v)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Within checks that every block is a sub-block of source and that no two
// blocks overlap.
func Within(source netip.Prefix, blocks ...netip.Prefix) error {
	for i, b := range blocks {
		if b.Addr().Is4() != source.Addr().Is4() || b.Bits() < source.Bits() || !source.Contains(b.Addr()) {
			return fmt.Errorf("%w: %s is not within %s", ErrOutsideBlock, b, source)
		}
		for _, other := range blocks[:i] {
			if b.Overlaps(other) {
				return fmt.Errorf("%w: %s and %s", ErrOverlap, other, b)
			}
		}
	}
	return nil
}

// Strings formats blocks in CIDR notation
func Strings(blocks []netip.Prefix) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.String()
	}
	return out
}
