package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markbook/internal/catalog"
)

func fullMarks(mark int) map[string]int {
	m := make(map[string]int, catalog.Count)
	for _, code := range catalog.Codes() {
		m[code] = mark
	}
	return m
}

func TestNewMarkEntryValid(t *testing.T) {
	marks := map[string]int{
		"CS101": 85, "CS102": 92, "CS103": 78,
		"CS104": 88, "CS105": 90, "CS106": 87,
	}
	entry, err := NewMarkEntry(marks)
	require.NoError(t, err)

	assert.InDelta(t, 86.666, entry.Average(), 0.001)
	assert.True(t, entry.Passed())
	assert.Equal(t, "PASS", entry.Status())
	assert.False(t, entry.Timestamp().IsZero())

	got, ok := entry.Mark("CS103")
	assert.True(t, ok)
	assert.Equal(t, 78, got)

	_, ok = entry.Mark("CS999")
	assert.False(t, ok)

	assert.Equal(t, marks, entry.SubjectMarks())
}

func TestNewMarkEntryRejectsNil(t *testing.T) {
	_, err := NewMarkEntry(nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "subjectMarks", verr.Field)
}

func TestNewMarkEntryRejectsWrongSize(t *testing.T) {
	short := fullMarks(70)
	delete(short, "CS106")
	_, err := NewMarkEntry(short)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	long := fullMarks(70)
	long["CS107"] = 70
	_, err = NewMarkEntry(long)
	require.ErrorAs(t, err, &verr)
}

func TestNewMarkEntryRejectsMissingSubject(t *testing.T) {
	m := fullMarks(70)
	delete(m, "CS103")
	m["MATH1"] = 70 // size stays 6 but a catalog code is missing
	_, err := NewMarkEntry(m)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "CS103")
}

func TestNewMarkEntryRejectsOutOfRange(t *testing.T) {
	m := fullMarks(70)
	m["CS102"] = 101
	_, err := NewMarkEntry(m)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	m["CS102"] = -1
	_, err = NewMarkEntry(m)
	require.ErrorAs(t, err, &verr)
}

func TestMarkRangeBoundaries(t *testing.T) {
	m := fullMarks(100)
	m["CS101"] = 0
	entry, err := NewMarkEntry(m)
	require.NoError(t, err)
	assert.False(t, entry.Passed(), "a zero mark is below every passing mark")

	entry, err = NewMarkEntry(fullMarks(100))
	require.NoError(t, err)
	assert.True(t, entry.Passed())
}

func TestPassStatusIsPerSubjectThreshold(t *testing.T) {
	// Exactly on the threshold passes.
	entry, err := NewMarkEntry(fullMarks(40))
	require.NoError(t, err)
	assert.True(t, entry.Passed())

	// One mark below its threshold flips the whole attempt, even though
	// the average stays well above 40.
	m := fullMarks(95)
	m["CS104"] = 39
	entry, err = NewMarkEntry(m)
	require.NoError(t, err)
	assert.False(t, entry.Passed())
	assert.Equal(t, "FAIL", entry.Status())
	assert.Greater(t, entry.Average(), 40.0)
}

func TestMarkEntryJSONRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	entry, err := RehydrateEntry(map[string]int{
		"CS101": 85, "CS102": 92, "CS103": 78,
		"CS104": 88, "CS105": 90, "CS106": 87,
	}, at)
	require.NoError(t, err)

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 86.67, doc["averageMark"], "interchange average is rounded to 2 decimals")
	assert.Equal(t, "PASS", doc["passStatus"])

	var back MarkEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, entry.SubjectMarks(), back.SubjectMarks())
	assert.True(t, entry.Timestamp().Equal(back.Timestamp()))
}

func TestMarkEntryJSONRejectsCorruptDocument(t *testing.T) {
	var entry MarkEntry
	err := json.Unmarshal([]byte(`{"subjectMarks":{"CS101":300},"timestamp":"2026-01-01T00:00:00Z"}`), &entry)
	assert.Error(t, err)
}
