package btree

import "encoding/binary"

func beUint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

func putBeUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
