package subnet

import (
	"fmt"
	"math/bits"
	"net/netip"
)

// DefaultMaxSubnets mirrors the default AWS quota of subnets per VPC.
const DefaultMaxSubnets = 200

// Layout is the result of splitting a VPC block into subnet pairs.
type Layout struct {
	// Source is the block the subnets were carved from
	Source netip.Prefix
	// PrefixLen is the prefix length shared by every subnet
	PrefixLen int
	// Public holds the first N sub-blocks in ascending order
	Public []netip.Prefix
	// Private holds the next N sub-blocks in ascending order
	Private []netip.Prefix
}

// Partitioner splits VPC blocks while enforcing a ceiling on the total number
// of subnets.
type Partitioner struct {
	maxSubnets int
}

// NewPartitioner returns a Partitioner allowing at most maxSubnets subnets.
// A non-positive value selects DefaultMaxSubnets.
func NewPartitioner(maxSubnets int) *Partitioner {
	if maxSubnets <= 0 {
		maxSubnets = DefaultMaxSubnets
	}
	return &Partitioner{maxSubnets: maxSubnets}
}

// MaxSubnets returns the ceiling on the total number of subnets
func (p *Partitioner) MaxSubnets() int {
	return p.maxSubnets
}

// MaxPairs returns the largest pair count accepted by Split
func (p *Partitioner) MaxPairs() int {
	return p.maxSubnets / 2
}

// Split carves source into pairs public and pairs private subnets of equal size.
func (p *Partitioner) Split(source netip.Prefix, pairs int) (*Layout, error) {
	if pairs < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, pairs)
	}

	// Compared as pairs so that 2*pairs cannot overflow
	if pairs > p.MaxPairs() {
		return nil, fmt.Errorf("%w: total subnets (2x%d) exceeds limit of %d",
			ErrTooManySubnets, pairs, p.maxSubnets)
	}
	total := 2 * pairs

	if !source.IsValid() || source != source.Masked() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBlock, source)
	}

	// Smallest b such that 2^b >= total
	extra := bits.Len(uint(total - 1))
	prefixLen := source.Bits() + extra
	maxLen := source.Addr().BitLen()
	if prefixLen > maxLen {
		return nil, fmt.Errorf("%w: %d subnets need a /%d prefix, %s allows at most /%d",
			ErrBlockTooSmall, total, prefixLen, source, maxLen)
	}

	is4 := source.Addr().Is4()
	step := uint128{lo: 1}.lsh(uint(maxLen - prefixLen))
	cur := fromAddr(source.Addr())

	blocks := make([]netip.Prefix, total)
	for i := range blocks {
		blocks[i] = netip.PrefixFrom(cur.toAddr(is4), prefixLen)
		cur = cur.add(step)
	}

	return &Layout{
		Source:    source,
		PrefixLen: prefixLen,
		Public:    blocks[:pairs:pairs],
		Private:   blocks[pairs:],
	}, nil
}

// Split carves source into subnet pairs using DefaultMaxSubnets as ceiling
func Split(source netip.Prefix, pairs int) (*Layout, error) {
	return NewPartitioner(DefaultMaxSubnets).Split(source, pairs)
}
