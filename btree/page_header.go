package btree

import (
	"encoding/binary"

	"coredb/disk"
	"coredb/disk/pages"
)

// PageType discriminates the two layouts imposed on a raw page's bytes.
type PageType uint8

const (
	PageTypeInvalid  PageType = 0
	PageTypeInternal PageType = 1
	PageTypeLeaf     PageType = 2
)

// pageHeader is the shared prefix of every page this package owns. Leaves
// additionally store NextPageID; on internal pages that field is present
// but unused, keeping both layouts the same fixed width so slot offsets
// below the header never depend on page type.
type pageHeader struct {
	PageType     PageType
	LSN          pages.LSN
	Size         int32
	MaxSize      int32
	ParentPageID disk.PageID
	SelfPageID   disk.PageID
	NextPageID   disk.PageID
}

// headerSize is the fixed byte width of pageHeader on disk: 1 type byte, 7
// bytes of alignment padding, the 8-byte LSN, the 4-byte Size and MaxSize,
// then the three 8-byte page ids.
const headerSize = 1 + 7 + 8 + 4 + 4 + 8 + 8 + 8

func encodeHeader(dest []byte, h pageHeader) {
	dest[0] = byte(h.PageType)
	binary.BigEndian.PutUint64(dest[8:], uint64(h.LSN))
	binary.BigEndian.PutUint32(dest[16:], uint32(h.Size))
	binary.BigEndian.PutUint32(dest[20:], uint32(h.MaxSize))
	binary.BigEndian.PutUint64(dest[24:], uint64(h.ParentPageID))
	binary.BigEndian.PutUint64(dest[32:], uint64(h.SelfPageID))
	binary.BigEndian.PutUint64(dest[40:], uint64(h.NextPageID))
}

func decodeHeader(src []byte) pageHeader {
	return pageHeader{
		PageType:     PageType(src[0]),
		LSN:          pages.LSN(binary.BigEndian.Uint64(src[8:])),
		Size:         int32(binary.BigEndian.Uint32(src[16:])),
		MaxSize:      int32(binary.BigEndian.Uint32(src[20:])),
		ParentPageID: disk.PageID(binary.BigEndian.Uint64(src[24:])),
		SelfPageID:   disk.PageID(binary.BigEndian.Uint64(src[32:])),
		NextPageID:   disk.PageID(binary.BigEndian.Uint64(src[40:])),
	}
}
