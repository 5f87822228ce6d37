package btree

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coredb/buffer"
	"coredb/disk"
	"coredb/disk/pages"
	"coredb/disk/wal"
)

func newTestBPM(t *testing.T, poolSize int) *buffer.BufferPoolManager {
	t.Helper()
	filename := "tmp_" + uuid.NewString() + ".coredb"
	dm, err := disk.NewManager(filename)
	require.NoError(t, err)
	t.Cleanup(func() {
		dm.Close()
		os.Remove(filename)
	})
	return buffer.NewBufferPoolManager(poolSize, dm, wal.NoopLogManager{})
}

func newInternalPage(t *testing.T, bpm *buffer.BufferPoolManager, parent disk.PageID, maxSize int32) (*InternalPage, *pages.Page) {
	t.Helper()
	raw, ok := bpm.NewPage()
	require.True(t, ok)
	ip := WrapInternalPage(raw, KeySize8)
	ip.Init(raw.GetPageID(), parent, maxSize)
	return ip, raw
}

func newLeafPage(t *testing.T, bpm *buffer.BufferPoolManager, parent disk.PageID, maxSize int32) (*LeafPage, *pages.Page) {
	t.Helper()
	raw, ok := bpm.NewPage()
	require.True(t, ok)
	lp := WrapLeafPage(raw, KeySize8)
	lp.Init(raw.GetPageID(), parent, maxSize)
	return lp, raw
}

func TestInternalPage_PopulateNewRootAndLookup(t *testing.T) {
	bpm := newTestBPM(t, 8)
	root, rawRoot := newInternalPage(t, bpm, disk.InvalidPageID, 4)
	defer bpm.UnpinPage(rawRoot.GetPageID(), true)

	left, rawLeft := newLeafPage(t, bpm, root.SelfPageID(), 4)
	right, rawRight := newLeafPage(t, bpm, root.SelfPageID(), 4)
	defer bpm.UnpinPage(rawLeft.GetPageID(), true)
	defer bpm.UnpinPage(rawRight.GetPageID(), true)

	root.PopulateNewRoot(left.SelfPageID(), KeyFromInt64(KeySize8, 10), right.SelfPageID())

	assert.EqualValues(t, 2, root.Size())
	assert.Equal(t, left.SelfPageID(), root.Lookup(KeyFromInt64(KeySize8, 1)))
	assert.Equal(t, right.SelfPageID(), root.Lookup(KeyFromInt64(KeySize8, 10)))
	assert.Equal(t, right.SelfPageID(), root.Lookup(KeyFromInt64(KeySize8, 99)))
}

func TestInternalPage_InsertNodeAfter(t *testing.T) {
	bpm := newTestBPM(t, 8)
	root, rawRoot := newInternalPage(t, bpm, disk.InvalidPageID, 8)
	defer bpm.UnpinPage(rawRoot.GetPageID(), true)

	a, rawA := newLeafPage(t, bpm, root.SelfPageID(), 4)
	b, rawB := newLeafPage(t, bpm, root.SelfPageID(), 4)
	c, rawC := newLeafPage(t, bpm, root.SelfPageID(), 4)
	defer bpm.UnpinPage(rawA.GetPageID(), true)
	defer bpm.UnpinPage(rawB.GetPageID(), true)
	defer bpm.UnpinPage(rawC.GetPageID(), true)

	root.PopulateNewRoot(a.SelfPageID(), KeyFromInt64(KeySize8, 10), b.SelfPageID())

	newSize := root.InsertNodeAfter(b.SelfPageID(), KeyFromInt64(KeySize8, 20), c.SelfPageID())
	require.EqualValues(t, 3, newSize)

	// per spec.md §9's corrected semantics, the new entry lands immediately
	// after old_value's slot, not in it.
	assert.Equal(t, a.SelfPageID(), root.ValueAt(0))
	assert.Equal(t, b.SelfPageID(), root.ValueAt(1))
	assert.Equal(t, c.SelfPageID(), root.ValueAt(2))
	assert.True(t, root.KeyAt(2).Equal(KeyFromInt64(KeySize8, 20)))
}

func TestInternalPage_RemoveAndReturnOnlyChild(t *testing.T) {
	bpm := newTestBPM(t, 8)
	root, rawRoot := newInternalPage(t, bpm, disk.InvalidPageID, 4)
	defer bpm.UnpinPage(rawRoot.GetPageID(), true)

	child, rawChild := newLeafPage(t, bpm, root.SelfPageID(), 4)
	defer bpm.UnpinPage(rawChild.GetPageID(), true)

	root.setEntry(0, NewKey(KeySize8), child.SelfPageID())
	root.setSize(1)

	got := root.RemoveAndReturnOnlyChild()
	assert.Equal(t, child.SelfPageID(), got)
	assert.EqualValues(t, 0, root.Size())
}

// S9 Reparenting (spec.md §8): after MoveHalfTo, every moved child's
// parent_page_id equals the recipient's id.
func TestInternalPage_MoveHalfToReparents(t *testing.T) {
	bpm := newTestBPM(t, 16)
	left, rawLeft := newInternalPage(t, bpm, disk.InvalidPageID, 4)
	right, rawRight := newInternalPage(t, bpm, disk.InvalidPageID, 4)
	defer bpm.UnpinPage(rawLeft.GetPageID(), true)
	defer bpm.UnpinPage(rawRight.GetPageID(), true)

	var children []*pages.Page
	for i := 0; i < 4; i++ {
		_, raw := newLeafPage(t, bpm, left.SelfPageID(), 4)
		children = append(children, raw)
		left.setEntry(int32(i), KeyFromInt64(KeySize8, int64(i*10)), raw.GetPageID())
	}
	left.setSize(4)

	left.MoveHalfTo(right, bpm)

	assert.EqualValues(t, 2, left.Size())
	assert.EqualValues(t, 2, right.Size())

	for i := int32(0); i < right.Size(); i++ {
		childID := right.ValueAt(i)
		childPage, ok := bpm.FetchPage(childID)
		require.True(t, ok)
		h := decodeHeader(childPage.Data)
		assert.Equal(t, right.SelfPageID(), h.ParentPageID)
		bpm.UnpinPage(childID, false)
	}

	for _, raw := range children {
		bpm.UnpinPage(raw.GetPageID(), true)
	}
}

func TestInternalPage_MoveLastToFrontOf(t *testing.T) {
	bpm := newTestBPM(t, 16)
	left, rawLeft := newInternalPage(t, bpm, disk.InvalidPageID, 8)
	right, rawRight := newInternalPage(t, bpm, disk.InvalidPageID, 8)
	defer bpm.UnpinPage(rawLeft.GetPageID(), true)
	defer bpm.UnpinPage(rawRight.GetPageID(), true)

	_, rawMoved := newLeafPage(t, bpm, left.SelfPageID(), 4)
	_, rawOther := newLeafPage(t, bpm, left.SelfPageID(), 4)
	_, rawRightChild := newLeafPage(t, bpm, right.SelfPageID(), 4)
	defer bpm.UnpinPage(rawMoved.GetPageID(), true)
	defer bpm.UnpinPage(rawOther.GetPageID(), true)
	defer bpm.UnpinPage(rawRightChild.GetPageID(), true)

	left.setEntry(0, NewKey(KeySize8), rawOther.GetPageID())
	left.setEntry(1, KeyFromInt64(KeySize8, 50), rawMoved.GetPageID())
	left.setSize(2)

	right.setEntry(0, NewKey(KeySize8), rawRightChild.GetPageID())
	right.setSize(1)

	middle := KeyFromInt64(KeySize8, 100)
	left.MoveLastToFrontOf(right, middle, bpm)

	require.EqualValues(t, 1, left.Size())
	require.EqualValues(t, 2, right.Size())

	assert.Equal(t, rawMoved.GetPageID(), right.ValueAt(0))
	assert.Equal(t, rawRightChild.GetPageID(), right.ValueAt(1))
	assert.True(t, right.KeyAt(1).Equal(middle))

	movedPage, ok := bpm.FetchPage(rawMoved.GetPageID())
	require.True(t, ok)
	h := decodeHeader(movedPage.Data)
	assert.Equal(t, right.SelfPageID(), h.ParentPageID)
	bpm.UnpinPage(rawMoved.GetPageID(), false)
}
