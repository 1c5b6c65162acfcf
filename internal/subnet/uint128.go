package subnet

import (
	"encoding/binary"
	"math/bits"
	"net/netip"
)

// uint128 holds an IPv4 or IPv6 address as an unsigned integer.
// IPv4 addresses only use the low 32 bits.
type uint128 struct {
	hi, lo uint64
}

// add returns the sum x + y
func (x uint128) add(y uint128) uint128 {
	lo, carry := bits.Add64(x.lo, y.lo, 0)
	hi, _ := bits.Add64(x.hi, y.hi, carry)
	return uint128{hi: hi, lo: lo}
}

// lsh shifts x left by k bits (0<=k<128)
func (x uint128) lsh(k uint) uint128 {
	if k >= 64 {
		return uint128{hi: x.lo << (k - 64), lo: 0}
	}
	return uint128{hi: x.hi<<k | x.lo>>(64-k), lo: x.lo << k}
}

func fromAddr(addr netip.Addr) uint128 {
	if addr.Is4() {
		b := addr.As4()
		return uint128{lo: uint64(binary.BigEndian.Uint32(b[:]))}
	}
	b := addr.As16()
	return uint128{
		hi: binary.BigEndian.Uint64(b[:8]),
		lo: binary.BigEndian.Uint64(b[8:]),
	}
}

// toAddr converts x back into an address of the given family
func (x uint128) toAddr(is4 bool) netip.Addr {
	if is4 {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(x.lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], x.hi)
	binary.BigEndian.PutUint64(b[8:], x.lo)
	return netip.AddrFrom16(b)
}
