// Package wrtbound implements the capacity-bounded collections of spec §3
// ("Capacity-bounded collections") and §4.2 ("Bounded Collections"):
// inline-capacity vectors, strings, maps, sets, queues, deques, and stacks
// stored *serialized* inside a wrtcap.Provider's byte buffer rather than as
// native Go values in place, "so that the same layout is usable across
// no_std and no-heap profiles and so that checksums can cover raw bytes"
// (spec §4.2 "Storage").
//
// Because elements live as bytes, Get returns T by value — there is no
// Index operation, matching spec §4.2 exactly.
package wrtbound

import "encoding/binary"

// Codec describes how to serialize/deserialize a fixed-width element type T
// to/from a byte buffer. Every bounded collection in this package requires
// a Codec because the provider-backed storage has no notion of Go types —
// it is raw bytes, validated by checksum, the same way wazero's bounded
// Table stores raw uint64-encoded references rather than interface values.
type Codec[T any] struct {
	// Size is the fixed encoded width in bytes of one T.
	Size int
	// Encode writes v into dst, which is exactly Size bytes long.
	Encode func(v T, dst []byte)
	// Decode reads a T from src, which is exactly Size bytes long.
	Decode func(src []byte) T
}

// Uint32Codec serializes uint32 little-endian, matching the Canonical ABI's
// "Integers: little-endian, natural alignment" rule (spec §4.4) so the same
// encoding convention holds end to end.
var Uint32Codec = Codec[uint32]{
	Size:   4,
	Encode: func(v uint32, dst []byte) { binary.LittleEndian.PutUint32(dst, v) },
	Decode: func(src []byte) uint32 { return binary.LittleEndian.Uint32(src) },
}

// Uint64Codec serializes uint64 little-endian.
var Uint64Codec = Codec[uint64]{
	Size:   8,
	Encode: func(v uint64, dst []byte) { binary.LittleEndian.PutUint64(dst, v) },
	Decode: func(src []byte) uint64 { return binary.LittleEndian.Uint64(src) },
}

// Int32Codec serializes int32 little-endian via its uint32 bit pattern.
var Int32Codec = Codec[int32]{
	Size:   4,
	Encode: func(v int32, dst []byte) { binary.LittleEndian.PutUint32(dst, uint32(v)) },
	Decode: func(src []byte) int32 { return int32(binary.LittleEndian.Uint32(src)) },
}

// ByteCodec serializes a single byte.
var ByteCodec = Codec[byte]{
	Size:   1,
	Encode: func(v byte, dst []byte) { dst[0] = v },
	Decode: func(src []byte) byte { return src[0] },
}

// FixedBytesCodec builds a Codec for a fixed-width []byte element, copying
// exactly width bytes. Used for elements like resource handles or function
// indices that are themselves small byte arrays.
func FixedBytesCodec(width int) Codec[[]byte] {
	return Codec[[]byte]{
		Size: width,
		Encode: func(v []byte, dst []byte) {
			copy(dst, v)
		},
		Decode: func(src []byte) []byte {
			out := make([]byte, len(src))
			copy(out, src)
			return out
		},
	}
}
