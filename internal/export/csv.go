package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"markbook/internal/catalog"
	"markbook/internal/record"
)

// attemptTimeLayout formats the attempt date column.
const attemptTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes the tabular report: one header row, then one row per
// (student, attempt). Students without history get a single row with the
// trailing fields left empty.
func WriteCSV(w io.Writer, students []*record.StudentRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"Student Number", "Student Name", "Attempt Date"}
	header = append(header, catalog.Codes()...)
	header = append(header, "Average", "Status")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range students {
		if !rec.HasMarks() {
			row := make([]string, len(header))
			row[0] = rec.Number()
			row[1] = rec.Name()
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row for %s: %w", rec.Number(), err)
			}
			continue
		}
		for _, entry := range rec.History() {
			row := []string{rec.Number(), rec.Name(), entry.Timestamp().Format(attemptTimeLayout)}
			for _, m := range entry.Marks() {
				row = append(row, strconv.Itoa(m))
			}
			row = append(row, fmt.Sprintf("%.2f", entry.Average()), entry.Status())
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row for %s: %w", rec.Number(), err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
