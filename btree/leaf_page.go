package btree

import (
	"coredb/common"
	"coredb/disk"
	"coredb/disk/pages"
)

// LeafPage is a view over a raw page's bytes: a header followed by a
// slotted array of (Key, RecordID) pairs in strictly ascending key order,
// plus next_page_id linking leaves into a singly-linked list in key order.
type LeafPage struct {
	page    *pages.Page
	keySize KeySize
}

// WrapLeafPage views an already-fetched page as a LeafPage of the given
// key width.
func WrapLeafPage(p *pages.Page, keySize KeySize) *LeafPage {
	return &LeafPage{page: p, keySize: keySize}
}

func (p *LeafPage) slotSize() int { return int(p.keySize) + recordIDSize }

func (p *LeafPage) header() pageHeader   { return decodeHeader(p.page.Data) }
func (p *LeafPage) setHeader(h pageHeader) { encodeHeader(p.page.Data, h) }

// Init zeroes a leaf page's size, writes its header, and sets next_page_id
// to the invalid sentinel.
func (p *LeafPage) Init(selfID, parentID disk.PageID, maxSize int32) {
	p.setHeader(pageHeader{
		PageType:     PageTypeLeaf,
		Size:         0,
		MaxSize:      maxSize,
		ParentPageID: parentID,
		SelfPageID:   selfID,
		NextPageID:   disk.InvalidPageID,
	})
}

func (p *LeafPage) Size() int32              { return p.header().Size }
func (p *LeafPage) MaxSize() int32           { return p.header().MaxSize }
func (p *LeafPage) SelfPageID() disk.PageID  { return p.header().SelfPageID }
func (p *LeafPage) NextPageID() disk.PageID  { return p.header().NextPageID }

func (p *LeafPage) SetNextPageID(id disk.PageID) {
	h := p.header()
	h.NextPageID = id
	p.setHeader(h)
}

func (p *LeafPage) setSize(n int32) {
	h := p.header()
	h.Size = n
	p.setHeader(h)
}

func (p *LeafPage) slotOffset(i int32) int { return headerSize + int(i)*p.slotSize() }

func (p *LeafPage) KeyAt(i int32) Key {
	off := p.slotOffset(i)
	return decodeKey(p.page.Data[off:off+int(p.keySize)], p.keySize)
}

func (p *LeafPage) SetKeyAt(i int32, k Key) {
	off := p.slotOffset(i)
	encodeKey(p.page.Data[off:], k)
}

func (p *LeafPage) ValueAt(i int32) RecordID {
	off := p.slotOffset(i) + int(p.keySize)
	return decodeRecordID(p.page.Data[off:])
}

func (p *LeafPage) SetValueAt(i int32, v RecordID) {
	off := p.slotOffset(i) + int(p.keySize)
	encodeRecordID(p.page.Data[off:], v)
}

func (p *LeafPage) setEntry(i int32, k Key, v RecordID) {
	p.SetKeyAt(i, k)
	p.SetValueAt(i, v)
}

// KeyIndex returns the smallest i such that key[i] >= key, or Size() if no
// such i exists.
func (p *LeafPage) KeyIndex(key Key) int32 {
	n := p.Size()
	lo, hi := int32(0), n
	for lo < hi {
		mid := (lo + hi) / 2
		if p.KeyAt(mid).Less(key) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Insert shifts entries at and after KeyIndex(key) right by one and writes
// the new entry there. Duplicate keys are not deduplicated here — the
// driver enforces uniqueness when required. Returns the new size.
func (p *LeafPage) Insert(key Key, value RecordID) int32 {
	n := p.Size()
	common.Assert(n < p.MaxSize(), "leaf page insert into full page")

	index := p.KeyIndex(key)
	for i := n; i > index; i-- {
		p.setEntry(i, p.KeyAt(i-1), p.ValueAt(i-1))
	}
	p.setEntry(index, key, value)
	p.setSize(n + 1)
	return n + 1
}

// Lookup reports whether key is present, and if so, its value.
func (p *LeafPage) Lookup(key Key) (RecordID, bool) {
	i := p.KeyIndex(key)
	if i < p.Size() && p.KeyAt(i).Equal(key) {
		return p.ValueAt(i), true
	}
	return RecordID{}, false
}

// RemoveAndDeleteRecord removes key if present, shifting subsequent
// entries left. Returns the new size; a miss leaves the page unchanged.
func (p *LeafPage) RemoveAndDeleteRecord(key Key) int32 {
	n := p.Size()
	i := p.KeyIndex(key)
	if i >= n || !p.KeyAt(i).Equal(key) {
		return n
	}

	for j := i; j < n-1; j++ {
		p.setEntry(j, p.KeyAt(j+1), p.ValueAt(j+1))
	}
	p.setSize(n - 1)
	return n - 1
}

// MoveHalfTo moves the upper half of this page's entries to an empty
// recipient and stitches the sibling chain: recipient.next inherits this
// page's next, and this page's next becomes recipient.
func (p *LeafPage) MoveHalfTo(recipient *LeafPage) {
	n := p.Size()
	start := n / 2
	count := n - start

	for i := int32(0); i < count; i++ {
		recipient.setEntry(i, p.KeyAt(start+i), p.ValueAt(start+i))
	}
	recipient.setSize(count)
	p.setSize(start)

	recipient.SetNextPageID(p.NextPageID())
	p.SetNextPageID(recipient.SelfPageID())
}

// MoveAllTo appends every entry of this page to the end of recipient;
// recipient inherits this page's next pointer, and this page becomes
// empty.
func (p *LeafPage) MoveAllTo(recipient *LeafPage) {
	n := p.Size()
	base := recipient.Size()

	for i := int32(0); i < n; i++ {
		recipient.setEntry(base+i, p.KeyAt(i), p.ValueAt(i))
	}
	recipient.setSize(base + n)
	recipient.SetNextPageID(p.NextPageID())
	p.setSize(0)
}

// MoveFirstToEndOf moves this page's first entry to the end of recipient.
// No middle key is involved at the leaf level; the driver is responsible
// for updating the parent's separator.
func (p *LeafPage) MoveFirstToEndOf(recipient *LeafPage) {
	key, value := p.KeyAt(0), p.ValueAt(0)

	n := p.Size()
	for i := int32(0); i < n-1; i++ {
		p.setEntry(i, p.KeyAt(i+1), p.ValueAt(i+1))
	}
	p.setSize(n - 1)

	end := recipient.Size()
	recipient.setEntry(end, key, value)
	recipient.setSize(end + 1)
}

// MoveLastToFrontOf moves this page's last entry to the front of
// recipient.
func (p *LeafPage) MoveLastToFrontOf(recipient *LeafPage) {
	last := p.Size() - 1
	key, value := p.KeyAt(last), p.ValueAt(last)
	p.setSize(last)

	n := recipient.Size()
	for i := n; i > 0; i-- {
		recipient.setEntry(i, recipient.KeyAt(i-1), recipient.ValueAt(i-1))
	}
	recipient.setEntry(0, key, value)
	recipient.setSize(n + 1)
}
