// Package disk provides the file-backed page store that the buffer pool
// treats as an opaque collaborator: allocate/deallocate page identities, and
// read/write exactly PageSize bytes for a given identity.
package disk

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"coredb/common"
)

// PageSize is the fixed size, in bytes, of every page this module manages.
const PageSize = 4096

// PageID identifies a disk page. InvalidPageID is never allocated.
type PageID int64

const InvalidPageID PageID = -1

// Manager is a file-backed implementation of the disk manager contract:
// AllocatePage, DeallocatePage, ReadPage, WritePage. Page 0 of the backing
// file is reserved for the manager's own header and is never handed out.
type Manager struct {
	mu         sync.Mutex
	file       *os.File
	nextPageID PageID
	freeHead   PageID
	freeTail   PageID
}

// FlushInstantly controls whether WritePage fsyncs after every write. Off by
// default for test speed; a real deployment building on top of this package
// would flip it, or rely on the log manager's own Flush for durability.
var FlushInstantly = false

type header struct {
	NextPageID PageID
	FreeHead   PageID
	FreeTail   PageID
}

const headerSize = 8 * 3

// NewManager opens (or creates) filename as the backing store. A brand-new
// file gets page 0 initialized as the header page.
func NewManager(filename string) (*Manager, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", filename, err)
	}

	m := &Manager{file: f}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("disk: stat %s: %w", filename, err)
	}

	if stat.Size() == 0 {
		if common.EnableLogging {
			log.Printf("disk: initializing new backing file %s", filename)
		}
		m.nextPageID = 1
		m.freeHead, m.freeTail = InvalidPageID, InvalidPageID
		if err := m.writeHeader(); err != nil {
			return nil, err
		}
		return m, nil
	}

	buf := make([]byte, headerSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("disk: read header of %s: %w", filename, err)
	}
	h := decodeHeader(buf)
	m.nextPageID, m.freeHead, m.freeTail = h.NextPageID, h.FreeHead, h.FreeTail
	return m, nil
}

// AllocatePage returns a fresh page identity, preferring a deallocated page
// from the on-disk free list over extending the file.
func (m *Manager) AllocatePage() (PageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.freeHead != InvalidPageID {
		id := m.freeHead
		next, err := m.readFreeListLink(id)
		if err != nil {
			return InvalidPageID, err
		}
		m.freeHead = next
		if m.freeHead == InvalidPageID {
			m.freeTail = InvalidPageID
		}
		if err := m.writeHeader(); err != nil {
			return InvalidPageID, err
		}
		return id, nil
	}

	id := m.nextPageID
	m.nextPageID++
	if err := m.writeHeader(); err != nil {
		return InvalidPageID, err
	}
	return id, nil
}

// DeallocatePage returns id to the free list for future reuse.
func (m *Manager) DeallocatePage(id PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeFreeListLink(id, InvalidPageID); err != nil {
		return err
	}

	if m.freeHead == InvalidPageID {
		m.freeHead = id
		m.freeTail = id
		return m.writeHeader()
	}

	if err := m.writeFreeListLink(m.freeTail, id); err != nil {
		return err
	}
	m.freeTail = id
	return m.writeHeader()
}

// ReadPage fills dst (which must be exactly PageSize bytes) with the
// on-disk content of id. A page that was allocated but never written reads
// back as all zeroes.
func (m *Manager) ReadPage(id PageID, dst []byte) error {
	if len(dst) != PageSize {
		return fmt.Errorf("disk: ReadPage: dst must be %d bytes, got %d", PageSize, len(dst))
	}

	n, err := m.file.ReadAt(dst, int64(id)*int64(PageSize))
	if err != nil && err != io.EOF {
		return fmt.Errorf("disk: read page %d: %w", id, err)
	}
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	return nil
}

// WritePage writes src (which must be exactly PageSize bytes) as the
// content of id.
func (m *Manager) WritePage(id PageID, src []byte) error {
	if len(src) != PageSize {
		return fmt.Errorf("disk: WritePage: src must be %d bytes, got %d", PageSize, len(src))
	}

	if _, err := m.file.WriteAt(src, int64(id)*int64(PageSize)); err != nil {
		return fmt.Errorf("disk: write page %d: %w", id, err)
	}
	if FlushInstantly {
		if err := m.file.Sync(); err != nil {
			return fmt.Errorf("disk: sync after writing page %d: %w", id, err)
		}
	}
	return nil
}

// Close releases the backing file.
func (m *Manager) Close() error {
	return m.file.Close()
}

// readFreeListLink reads the "next free page" pointer a freed page stores
// in its own first 8 bytes while it sits on the free list.
func (m *Manager) readFreeListLink(id PageID) (PageID, error) {
	buf := make([]byte, PageSize)
	if err := m.ReadPage(id, buf); err != nil {
		return InvalidPageID, err
	}
	return PageID(binary.BigEndian.Uint64(buf)), nil
}

func (m *Manager) writeFreeListLink(id PageID, next PageID) error {
	buf := make([]byte, PageSize)
	binary.BigEndian.PutUint64(buf, uint64(next))
	return m.WritePage(id, buf)
}

func (m *Manager) writeHeader() error {
	buf := make([]byte, PageSize)
	encodeHeader(header{NextPageID: m.nextPageID, FreeHead: m.freeHead, FreeTail: m.freeTail}, buf)
	if _, err := m.file.WriteAt(buf[:headerSize], 0); err != nil {
		return fmt.Errorf("disk: write header: %w", err)
	}
	return nil
}

func encodeHeader(h header, dest []byte) {
	binary.BigEndian.PutUint64(dest[0:], uint64(h.NextPageID))
	binary.BigEndian.PutUint64(dest[8:], uint64(h.FreeHead))
	binary.BigEndian.PutUint64(dest[16:], uint64(h.FreeTail))
}

func decodeHeader(src []byte) header {
	return header{
		NextPageID: PageID(binary.BigEndian.Uint64(src[0:])),
		FreeHead:   PageID(binary.BigEndian.Uint64(src[8:])),
		FreeTail:   PageID(binary.BigEndian.Uint64(src[16:])),
	}
}
