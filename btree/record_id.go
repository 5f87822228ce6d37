package btree

import (
	"encoding/binary"

	"coredb/disk"
)

// RecordID is the physical address of a table row: a page id plus a slot
// number within that page. It is the value type stored in leaf pages.
type RecordID struct {
	PageID   disk.PageID
	SlotIdx  int32
}

const recordIDSize = 8 + 4

func (r RecordID) IsValid() bool {
	return r.PageID != disk.InvalidPageID
}

func encodeRecordID(dest []byte, r RecordID) {
	binary.BigEndian.PutUint64(dest[0:], uint64(r.PageID))
	binary.BigEndian.PutUint32(dest[8:], uint32(r.SlotIdx))
}

func decodeRecordID(src []byte) RecordID {
	return RecordID{
		PageID:  disk.PageID(binary.BigEndian.Uint64(src[0:])),
		SlotIdx: int32(binary.BigEndian.Uint32(src[8:])),
	}
}
