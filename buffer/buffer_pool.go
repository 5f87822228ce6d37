// Package buffer implements the fixed-capacity buffer pool that mediates
// all access to disk-resident pages, plus the LRU replacer it uses to pick
// eviction victims.
package buffer

import (
	"fmt"
	"sync"

	"coredb/disk"
	"coredb/disk/pages"
	"coredb/disk/wal"
)

// BufferPoolManager owns a fixed-size array of frames, a page table mapping
// page ids to frames, a free list of never-yet-used-or-just-released
// frames, and a replacer tracking unpinned frames. A single coarse mutex
// protects all metadata, and — per this repo's initial-implementation
// contract — is held across the disk I/O that fetch/new/flush perform; a
// lock-released-during-I/O variant is future work, not this contract.
type BufferPoolManager struct {
	mu sync.Mutex

	diskManager *disk.Manager
	logManager  wal.LogManager
	replacer    Replacer

	frames    []*pages.Page
	pageTable map[disk.PageID]FrameID
	freeList  []FrameID
}

// NewBufferPoolManager constructs a pool of poolSize frames, all initially
// on the free list.
func NewBufferPoolManager(poolSize int, diskManager *disk.Manager, logManager wal.LogManager) *BufferPoolManager {
	frames := make([]*pages.Page, poolSize)
	freeList := make([]FrameID, poolSize)
	for i := 0; i < poolSize; i++ {
		frames[i] = pages.NewPage()
		freeList[i] = FrameID(i)
	}

	return &BufferPoolManager{
		diskManager: diskManager,
		logManager:  logManager,
		replacer:    NewLRUReplacer(),
		frames:      frames,
		pageTable:   make(map[disk.PageID]FrameID),
		freeList:    freeList,
	}
}

// FetchPage returns a pinned handle to id, reading it from disk if it is
// not already cached. ok is false only when the pool is exhausted (no free
// frame and no eviction victim).
func (b *BufferPoolManager) FetchPage(id disk.PageID) (page *pages.Page, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frame, found := b.pageTable[id]; found {
		b.replacer.Pin(frame)
		p := b.frames[frame]
		p.WLatch()
		p.IncrPinCount()
		p.WUnlatch()
		return p, true
	}

	frame, found := b.findAvailableFrame()
	if !found {
		return nil, false
	}

	p := b.frames[frame]
	p.WLatch()
	delete(b.pageTable, p.GetPageID())
	b.pageTable[id] = frame
	b.flushIfDirty(p)

	if err := b.diskManager.ReadPage(id, p.Data); err != nil {
		p.WUnlatch()
		panic(fmt.Errorf("buffer: fetch page %d: %w", id, err))
	}
	p.Reassign(id)
	p.IncrPinCount()
	p.WUnlatch()
	return p, true
}

// NewPage allocates a fresh page id via the disk manager and returns a
// pinned, zeroed handle to it. ok is false when the pool is exhausted.
func (b *BufferPoolManager) NewPage() (page *pages.Page, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	frame, found := b.findAvailableFrame()
	if !found {
		return nil, false
	}

	p := b.frames[frame]
	p.WLatch()

	id, err := b.diskManager.AllocatePage()
	if err != nil {
		p.WUnlatch()
		panic(fmt.Errorf("buffer: new page: %w", err))
	}

	delete(b.pageTable, p.GetPageID())
	b.pageTable[id] = frame
	b.replacer.Pin(frame)
	b.flushIfDirty(p)
	p.ResetMemory()
	p.Reassign(id)
	p.IncrPinCount()
	p.WUnlatch()
	return p, true
}

// UnpinPage releases one reference to id, OR-ing isDirty into the page's
// dirty flag. It returns whether a pin was actually released: false when id
// is cached with a pin count already at zero. An id that is not cached
// (already evicted, or never fetched) is benign and reports true.
func (b *BufferPoolManager) UnpinPage(id disk.PageID, isDirty bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frame, found := b.pageTable[id]
	if !found {
		return true
	}

	p := b.frames[frame]
	p.WLatch()
	defer p.WUnlatch()

	decremented := false
	if p.GetPinCount() > 0 {
		decremented = true
		if isDirty {
			p.SetDirty(true)
		}
		p.DecrPinCount()
		if p.GetPinCount() == 0 {
			b.replacer.Unpin(frame)
		}
	}
	return decremented
}

// FlushPage writes id to disk if it is cached and dirty, clearing the dirty
// flag. It returns whether id was known to the pool at all.
func (b *BufferPoolManager) FlushPage(id disk.PageID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushPageLocked(id)
}

// FlushAllPages flushes every page currently in the page table.
func (b *BufferPoolManager) FlushAllPages() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range b.pageTable {
		b.flushPageLocked(id)
	}
}

// DeletePage removes id from the pool and deallocates it on disk. It
// returns false only when id is cached with a non-zero pin count — someone
// is using it. A never-cached id is deallocated and reported as success.
func (b *BufferPoolManager) DeletePage(id disk.PageID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frame, found := b.pageTable[id]
	if !found {
		if err := b.diskManager.DeallocatePage(id); err != nil {
			panic(fmt.Errorf("buffer: delete page %d: %w", id, err))
		}
		return true
	}

	p := b.frames[frame]
	p.WLatch()
	if p.GetPinCount() > 0 {
		p.WUnlatch()
		return false
	}

	if err := b.diskManager.DeallocatePage(id); err != nil {
		p.WUnlatch()
		panic(fmt.Errorf("buffer: delete page %d: %w", id, err))
	}

	p.Reassign(disk.InvalidPageID)
	p.ResetMemory()
	p.WUnlatch()

	// Ensure the freed frame isn't left tracked as unpinned-and-evictable
	// before it reaches the free list, mirroring bustub's DeletePageImpl.
	b.replacer.Pin(frame)
	delete(b.pageTable, id)
	b.freeList = append(b.freeList, frame)
	return true
}

// findAvailableFrame drains the free list before consulting the replacer,
// biasing toward preserving the replacer's recency information.
func (b *BufferPoolManager) findAvailableFrame() (FrameID, bool) {
	if len(b.freeList) > 0 {
		frame := b.freeList[0]
		b.freeList = b.freeList[1:]
		return frame, true
	}
	return b.replacer.Victim()
}

func (b *BufferPoolManager) flushPageLocked(id disk.PageID) bool {
	frame, found := b.pageTable[id]
	if !found {
		return false
	}

	p := b.frames[frame]
	p.WLatch()
	b.flushIfDirty(p)
	p.WUnlatch()
	return true
}

// flushIfDirty writes p to disk if dirty. Callers must hold p's write
// latch. Per spec.md §5's shared-resource policy ("the log manager, if
// wired in, is invoked before writes"), the log manager is flushed first so
// any log record describing p's dirty bytes is durable before those bytes
// are — the force-WAL-before-flush policy this layer exists to support,
// without this package depending on anything beyond the narrow
// wal.LogManager interface.
func (b *BufferPoolManager) flushIfDirty(p *pages.Page) {
	if !p.IsDirty() {
		return
	}
	if err := b.logManager.Flush(); err != nil {
		panic(fmt.Errorf("buffer: flush log before page %d: %w", p.GetPageID(), err))
	}
	if err := b.diskManager.WritePage(p.GetPageID(), p.Data); err != nil {
		panic(fmt.Errorf("buffer: flush page %d: %w", p.GetPageID(), err))
	}
	p.SetDirty(false)
}
