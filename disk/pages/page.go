// Package pages defines the in-memory Page container the buffer pool owns
// one of per frame, plus the LSN type stamped into every tree page's header.
package pages

import (
	"sync"

	"coredb/disk"
)

// Page is the in-memory container for a single frame: a fixed-size buffer
// plus the metadata the buffer pool needs to manage eviction (page id, pin
// count, dirty flag) and the reader/writer latch upper layers use for latch
// coupling while descending the tree. The buffer pool exclusively owns the
// frame array this lives in; callers only ever see a *Page through a
// pin/unpin handshake.
type Page struct {
	pageID   disk.PageID
	pinCount int
	isDirty  bool
	rwLatch  sync.RWMutex
	Data     []byte
}

// NewPage allocates an empty frame holding no page.
func NewPage() *Page {
	return &Page{
		pageID: disk.InvalidPageID,
		Data:   make([]byte, disk.PageSize),
	}
}

func (p *Page) GetPageID() disk.PageID { return p.pageID }
func (p *Page) GetPinCount() int       { return p.pinCount }
func (p *Page) IsDirty() bool          { return p.isDirty }

func (p *Page) SetDirty(dirty bool) { p.isDirty = dirty }

func (p *Page) IncrPinCount() { p.pinCount++ }

// DecrPinCount decrements the pin count, which must not drop below zero.
func (p *Page) DecrPinCount() {
	if p.pinCount > 0 {
		p.pinCount--
	}
}

// ResetMemory zeroes the page's buffer, used by NewPage/DeletePage on the
// buffer pool side before the frame is reused.
func (p *Page) ResetMemory() {
	for i := range p.Data {
		p.Data[i] = 0
	}
}

// Reassign binds this frame to a new page id, resetting pin count and the
// dirty flag. Only the buffer pool calls this, under its own latch, when a
// frame is about to be bound to a different page.
func (p *Page) Reassign(id disk.PageID) {
	p.pageID = id
	p.pinCount = 0
	p.isDirty = false
}

func (p *Page) WLatch()   { p.rwLatch.Lock() }
func (p *Page) WUnlatch() { p.rwLatch.Unlock() }
func (p *Page) RLatch()   { p.rwLatch.RLock() }
func (p *Page) RUnlatch() { p.rwLatch.RUnlock() }
