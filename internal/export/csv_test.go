package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markbook/internal/catalog"
	"markbook/internal/record"
)

func buildStudent(t *testing.T, number, name string, attempts ...map[string]int) *record.StudentRecord {
	t.Helper()
	rec, err := record.NewStudentRecord(number, name)
	require.NoError(t, err)
	for _, marks := range attempts {
		require.NoError(t, rec.AddMarks(marks))
	}
	return rec
}

func fullMarks(mark int) map[string]int {
	m := make(map[string]int, catalog.Count)
	for _, code := range catalog.Codes() {
		m[code] = mark
	}
	return m
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	want := append([]string{"Student Number", "Student Name", "Attempt Date"}, catalog.Codes()...)
	want = append(want, "Average", "Status")
	assert.Equal(t, want, rows[0])
}

func TestWriteCSVOneRowPerAttempt(t *testing.T) {
	jane := buildStudent(t, "10000001", "Jane Doe",
		map[string]int{
			"CS101": 85, "CS102": 92, "CS103": 78,
			"CS104": 88, "CS105": 90, "CS106": 87,
		},
		func() map[string]int {
			m := fullMarks(80)
			m["CS101"] = 30
			return m
		}(),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*record.StudentRecord{jane}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[1]
	assert.Equal(t, "10000001", first[0])
	assert.Equal(t, "Jane Doe", first[1])
	assert.NotEmpty(t, first[2])
	assert.Equal(t, []string{"85", "92", "78", "88", "90", "87"}, first[3:9])
	assert.Equal(t, "86.67", first[9])
	assert.Equal(t, "PASS", first[10])

	second := rows[2]
	assert.Equal(t, "30", second[3])
	assert.Equal(t, "FAIL", second[10])
}

func TestWriteCSVStudentWithoutHistory(t *testing.T) {
	empty := buildStudent(t, "10000002", "Bob")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*record.StudentRecord{empty}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "10000002", row[0])
	assert.Equal(t, "Bob", row[1])
	for _, field := range row[2:] {
		assert.Empty(t, field, "trailing fields stay empty without history")
	}
}
