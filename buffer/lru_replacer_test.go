package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUReplacer_VictimOrder(t *testing.T) {
	r := NewLRUReplacer()

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)
	require.Equal(t, 3, r.Size())

	// front is most-recently-unpinned (3), back is next victim (1).
	victim, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), victim)
	assert.Equal(t, 2, r.Size())
}

func TestLRUReplacer_PinRemoves(t *testing.T) {
	r := NewLRUReplacer()
	r.Unpin(1)
	r.Unpin(2)

	r.Pin(1)
	assert.Equal(t, 1, r.Size())

	victim, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(2), victim)
}

func TestLRUReplacer_PinUnknownFrameIsNoop(t *testing.T) {
	r := NewLRUReplacer()
	r.Pin(42) // never tracked; must not panic or affect state
	assert.Equal(t, 0, r.Size())
}

// A second Unpin of an already-tracked frame must not refresh its
// recency — see DESIGN.md's Open Question decision.
func TestLRUReplacer_DoubleUnpinDoesNotBumpToFront(t *testing.T) {
	r := NewLRUReplacer()
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	r.Unpin(1) // already present: must be a no-op, not a recency refresh

	victim, ok := r.Victim()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), victim, "double-unpinning 1 must not have moved it to the front")
}

func TestLRUReplacer_VictimOnEmptyFails(t *testing.T) {
	r := NewLRUReplacer()
	_, ok := r.Victim()
	assert.False(t, ok)
}
