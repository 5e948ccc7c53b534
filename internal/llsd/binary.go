package llsd

import (
	"encoding/binary"
	"net/netip"
)

// FromU32 packs val into 4 bytes in network order.
func FromU32(val uint32) Value {
	b := make(Binary, 4)
	binary.BigEndian.PutUint32(b, val)
	return b
}

// U32 unpacks a value produced by FromU32. Short or non-binary input yields 0.
func U32(v Value) uint32 {
	b := AsBinary(v)
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// FromU64 packs val into 8 bytes, high word first, each word in network order.
func FromU64(val uint64) Value {
	b := make(Binary, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(val>>32))
	binary.BigEndian.PutUint32(b[4:8], uint32(val))
	return b
}

// U64 unpacks a value produced by FromU64. Short or non-binary input yields 0.
func U64(v Value) uint64 {
	b := AsBinary(v)
	if len(b) < 8 {
		return 0
	}
	high := binary.BigEndian.Uint32(b[0:4])
	low := binary.BigEndian.Uint32(b[4:8])
	return uint64(high)<<32 | uint64(low)
}

// FromIPAddr stores an IPv4 address as its 4 bytes in network order. Other
// addresses produce an empty blob.
func FromIPAddr(addr netip.Addr) Value {
	if !addr.Is4() && !addr.Is4In6() {
		return Binary{}
	}
	a4 := addr.Unmap().As4()
	return Binary(a4[:])
}

// IPAddr unpacks a value produced by FromIPAddr. Short input yields the zero
// Addr.
func IPAddr(v Value) netip.Addr {
	b := AsBinary(v)
	if len(b) < 4 {
		return netip.Addr{}
	}
	return netip.AddrFrom4([4]byte{b[0], b[1], b[2], b[3]})
}

// StringFromBinary reinterprets the bytes of a binary value as a string.
func StringFromBinary(v Value) Value {
	return String(AsBinary(v))
}

// BinaryFromString returns the bytes of v's string form followed by a NUL
// terminator.
func BinaryFromString(v Value) Value {
	s := AsString(v)
	b := make(Binary, 0, len(s)+1)
	b = append(b, s...)
	return append(b, 0)
}
