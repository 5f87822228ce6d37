package wal

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	filename := "tmp_" + uuid.NewString() + ".wal"
	m, err := NewManager(filename)
	require.NoError(t, err)
	t.Cleanup(func() {
		m.Close()
		os.Remove(filename)
	})
	return m
}

func TestManager_AppendAndReadBack(t *testing.T) {
	m := newTestManager(t)

	lsn1, err := m.AppendRecord([]byte("first record"))
	require.NoError(t, err)
	lsn2, err := m.AppendRecord([]byte("second record"))
	require.NoError(t, err)
	assert.Less(t, lsn1, lsn2)

	records, err := m.ReadRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first record", string(records[0]))
	assert.Equal(t, "second record", string(records[1]))
}

func TestManager_FlushAdvancesFlushedLSN(t *testing.T) {
	m := newTestManager(t)

	assert.Equal(t, ZeroLSN, m.FlushedLSN())

	lsn, err := m.AppendRecord([]byte("payload"))
	require.NoError(t, err)

	require.NoError(t, m.Flush())
	assert.Equal(t, lsn, m.FlushedLSN())
}

func TestNoopLogManager_SatisfiesInterface(t *testing.T) {
	var lm LogManager = NoopLogManager{}
	require.NoError(t, lm.Flush())
	assert.Equal(t, ZeroLSN, lm.FlushedLSN())
}
