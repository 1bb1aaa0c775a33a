package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "markbook.db"))
	require.NoError(t, err)
	defer s.Close()

	doc := sampleDocument(t)
	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)
	assertSameDocument(t, doc, got)
}

func TestSQLiteStoreEmptyDatabase(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "markbook.db"))
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Students)
}

func TestSQLiteStoreSaveReplacesWholesale(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "markbook.db"))
	require.NoError(t, err)
	defer s.Close()

	doc := sampleDocument(t)
	require.NoError(t, s.Save(doc))

	// Drop the second student and save again; the row must be gone.
	doc.Students = doc.Students[:1]
	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got.Students, 1)
	assert.Equal(t, "10000001", got.Students[0].Number())
}
