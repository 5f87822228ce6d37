package btree

import (
	"bytes"
	"encoding/binary"

	"coredb/common"
)

// KeySize is a supported fixed key width, mirroring bustub's GenericKey<N>
// template instantiations.
type KeySize int

const (
	KeySize4  KeySize = 4
	KeySize8  KeySize = 8
	KeySize16 KeySize = 16
	KeySize32 KeySize = 32
	KeySize64 KeySize = 64
)

// Key is a fixed-width, byte-comparable key. Its width is fixed at
// construction and every key compared against it must share that width —
// an index picks one KeySize for its lifetime, it is not negotiated
// per-comparison.
type Key struct {
	data []byte
}

// NewKey allocates a zero-valued key of the given width.
func NewKey(size KeySize) Key {
	return Key{data: make([]byte, size)}
}

// KeyFromInt64 builds a key of the given width whose last 8 bytes hold v,
// big-endian — the common case for integer-valued indexes, matching the
// teacher's PersistentKeySerializer's plain binary.Write of an int64.
func KeyFromInt64(size KeySize, v int64) Key {
	common.Assert(size >= KeySize8, "key size %d too small to hold an int64", size)
	k := NewKey(size)
	binary.BigEndian.PutUint64(k.data[len(k.data)-8:], uint64(v))
	return k
}

// KeyFromBytes wraps raw bytes as a key. A payload shorter than the width
// is left-padded with zero bytes; a longer one panics.
func KeyFromBytes(size KeySize, raw []byte) Key {
	common.Assert(len(raw) <= int(size), "key payload %d bytes exceeds width %d", len(raw), size)
	k := NewKey(size)
	copy(k.data[len(k.data)-len(raw):], raw)
	return k
}

// Bytes returns the key's underlying fixed-width byte string.
func (k Key) Bytes() []byte { return k.data }

// Size returns the key's width.
func (k Key) Size() KeySize { return KeySize(len(k.data)) }

// Compare returns -1, 0, or 1, treating the key as an unsigned big-endian
// byte string (plain lexicographic order over fixed-width buffers, which is
// what every B+ tree operation in this package relies on).
func (k Key) Compare(other Key) int {
	return bytes.Compare(k.data, other.data)
}

func (k Key) Less(other Key) bool    { return k.Compare(other) < 0 }
func (k Key) Equal(other Key) bool   { return k.Compare(other) == 0 }
func (k Key) Greater(other Key) bool { return k.Compare(other) > 0 }

func encodeKey(dest []byte, k Key) {
	copy(dest, k.data)
}

func decodeKey(src []byte, size KeySize) Key {
	return KeyFromBytes(size, src[:size])
}
