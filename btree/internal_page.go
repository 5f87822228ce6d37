package btree

import (
	"coredb/buffer"
	"coredb/common"
	"coredb/disk"
	"coredb/disk/pages"
)

// InternalPage is a view over a raw page's bytes: a header followed by a
// slotted array of (Key, PageID) pairs. Slot 0's key is a sentinel, never
// compared by Lookup; for i >= 1, key[i-1] <= key[i]; value[i] is the page
// id of the child whose keys fall in [key[i], key[i+1]).
type InternalPage struct {
	page    *pages.Page
	keySize KeySize
}

// WrapInternalPage views an already-fetched page as an InternalPage of the
// given key width. The caller retains ownership of the underlying
// *pages.Page (fetch/unpin is its responsibility).
func WrapInternalPage(p *pages.Page, keySize KeySize) *InternalPage {
	return &InternalPage{page: p, keySize: keySize}
}

func (p *InternalPage) slotSize() int { return int(p.keySize) + 8 }

func (p *InternalPage) header() pageHeader { return decodeHeader(p.page.Data) }

func (p *InternalPage) setHeader(h pageHeader) { encodeHeader(p.page.Data, h) }

// Init zeroes an internal page's size and writes its header.
func (p *InternalPage) Init(selfID, parentID disk.PageID, maxSize int32) {
	p.setHeader(pageHeader{
		PageType:     PageTypeInternal,
		Size:         0,
		MaxSize:      maxSize,
		ParentPageID: parentID,
		SelfPageID:   selfID,
		NextPageID:   disk.InvalidPageID,
	})
}

func (p *InternalPage) Size() int32          { return p.header().Size }
func (p *InternalPage) MaxSize() int32       { return p.header().MaxSize }
func (p *InternalPage) SelfPageID() disk.PageID   { return p.header().SelfPageID }
func (p *InternalPage) ParentPageID() disk.PageID { return p.header().ParentPageID }

func (p *InternalPage) SetParentPageID(id disk.PageID) {
	h := p.header()
	h.ParentPageID = id
	p.setHeader(h)
}

func (p *InternalPage) setSize(n int32) {
	h := p.header()
	h.Size = n
	p.setHeader(h)
}

func (p *InternalPage) keyOffset(i int32) int { return headerSize + int(i)*p.slotSize() }

func (p *InternalPage) KeyAt(i int32) Key {
	off := p.keyOffset(i)
	return decodeKey(p.page.Data[off:off+int(p.keySize)], p.keySize)
}

func (p *InternalPage) SetKeyAt(i int32, k Key) {
	off := p.keyOffset(i)
	encodeKey(p.page.Data[off:], k)
}

func (p *InternalPage) ValueAt(i int32) disk.PageID {
	off := p.keyOffset(i) + int(p.keySize)
	return disk.PageID(beUint64(p.page.Data[off:]))
}

func (p *InternalPage) SetValueAt(i int32, v disk.PageID) {
	off := p.keyOffset(i) + int(p.keySize)
	putBeUint64(p.page.Data[off:], uint64(v))
}

func (p *InternalPage) setEntry(i int32, k Key, v disk.PageID) {
	p.SetKeyAt(i, k)
	p.SetValueAt(i, v)
}

// Lookup returns the child page id responsible for key: a binary search
// over [1, size) for the first slot whose key exceeds key, then the value
// one slot to the left of it (slot 0's sentinel covers everything smaller
// than key[1]).
func (p *InternalPage) Lookup(key Key) disk.PageID {
	n := p.Size()
	lo, hi := int32(1), n
	for lo < hi {
		mid := (lo + hi) / 2
		if p.KeyAt(mid).Greater(key) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return p.ValueAt(lo - 1)
}

// PopulateNewRoot initializes a freshly allocated root after a split: slot
// 0 is the left child (sentinel key), slot 1 is the right child under
// newKey.
func (p *InternalPage) PopulateNewRoot(oldValue disk.PageID, newKey Key, newValue disk.PageID) {
	p.setEntry(0, NewKey(p.keySize), oldValue)
	p.setEntry(1, newKey, newValue)
	p.setSize(2)
}

// InsertNodeAfter locates the slot holding oldValue (linear scan), shifts
// everything after it right by one, and writes the new entry immediately
// after it. Returns the new size.
func (p *InternalPage) InsertNodeAfter(oldValue disk.PageID, newKey Key, newValue disk.PageID) int32 {
	n := p.Size()
	common.Assert(n < p.MaxSize(), "internal page insert into full page")

	index := int32(-1)
	for i := int32(0); i < n; i++ {
		if p.ValueAt(i) == oldValue {
			index = i
			break
		}
	}
	common.Assert(index >= 0, "internal page insert after unknown child")

	for i := n; i > index+1; i-- {
		p.setEntry(i, p.KeyAt(i-1), p.ValueAt(i-1))
	}
	p.setEntry(index+1, newKey, newValue)
	p.setSize(n + 1)
	return n + 1
}

// Remove deletes the entry at index, shifting everything after it left.
func (p *InternalPage) Remove(index int32) {
	n := p.Size()
	common.Assert(index >= 0 && index < n, "internal page remove out of range")

	for i := index; i < n-1; i++ {
		p.setEntry(i, p.KeyAt(i+1), p.ValueAt(i+1))
	}
	p.setSize(n - 1)
}

// RemoveAndReturnOnlyChild requires size == 1 and empties the page,
// returning its sole child. Used when the root collapses.
func (p *InternalPage) RemoveAndReturnOnlyChild() disk.PageID {
	common.Assert(p.Size() == 1, "remove_and_return_only_child requires size == 1")
	v := p.ValueAt(0)
	p.setSize(0)
	return v
}

// MoveHalfTo moves the upper half of this page's entries to an empty
// recipient, reparenting every moved child to recipient via bpm.
func (p *InternalPage) MoveHalfTo(recipient *InternalPage, bpm *buffer.BufferPoolManager) {
	n := p.Size()
	start := n / 2
	count := n - start

	for i := int32(0); i < count; i++ {
		recipient.setEntry(i, p.KeyAt(start+i), p.ValueAt(start+i))
	}
	recipient.setSize(count)
	p.setSize(start)

	for i := int32(0); i < count; i++ {
		reparentChild(bpm, recipient.ValueAt(i), recipient.SelfPageID())
	}
}

// MoveAllTo appends every entry of this page to the end of recipient,
// using middleKey as the separator for the first moved entry (this page's
// sentinel slot 0), and reparents every moved child. This page's size
// becomes 0.
func (p *InternalPage) MoveAllTo(recipient *InternalPage, middleKey Key, bpm *buffer.BufferPoolManager) {
	n := p.Size()
	if n == 0 {
		return
	}

	p.SetKeyAt(0, middleKey)

	base := recipient.Size()
	for i := int32(0); i < n; i++ {
		recipient.setEntry(base+i, p.KeyAt(i), p.ValueAt(i))
	}
	recipient.setSize(base + n)
	p.setSize(0)

	for i := int32(0); i < n; i++ {
		reparentChild(bpm, recipient.ValueAt(base+i), recipient.SelfPageID())
	}
}

// MoveFirstToEndOf moves this page's first entry to the end of recipient,
// using middleKey as that entry's new separator key.
func (p *InternalPage) MoveFirstToEndOf(recipient *InternalPage, middleKey Key, bpm *buffer.BufferPoolManager) {
	value := p.ValueAt(0)
	p.Remove(0)

	end := recipient.Size()
	recipient.setEntry(end, middleKey, value)
	recipient.setSize(end + 1)

	reparentChild(bpm, value, recipient.SelfPageID())
}

// MoveLastToFrontOf moves this page's last entry to the front of
// recipient. The moved entry becomes recipient's new sentinel slot 0;
// recipient's previous slot 0 shifts to slot 1 and has its key restored to
// middleKey to preserve the ordering invariant.
func (p *InternalPage) MoveLastToFrontOf(recipient *InternalPage, middleKey Key, bpm *buffer.BufferPoolManager) {
	last := p.Size() - 1
	value := p.ValueAt(last)
	p.setSize(last)

	n := recipient.Size()
	for i := n; i > 0; i-- {
		recipient.setEntry(i, recipient.KeyAt(i-1), recipient.ValueAt(i-1))
	}
	recipient.setEntry(0, NewKey(p.keySize), value)
	recipient.SetKeyAt(1, middleKey)
	recipient.setSize(n + 1)

	reparentChild(bpm, value, recipient.SelfPageID())
}

// reparentChild fetches childID through bpm, updates its header's
// ParentPageID, and unpins it dirty — the micro-transaction pattern every
// cross-page mutation that touches a child's parent pointer uses.
func reparentChild(bpm *buffer.BufferPoolManager, childID disk.PageID, newParentID disk.PageID) {
	child, ok := bpm.FetchPage(childID)
	common.Assert(ok, "reparent: could not fetch child %d", childID)

	h := decodeHeader(child.Data)
	h.ParentPageID = newParentID
	encodeHeader(child.Data, h)

	bpm.UnpinPage(childID, true)
}
