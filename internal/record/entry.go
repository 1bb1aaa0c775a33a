package record

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"markbook/internal/catalog"
)

// MarkSet holds one mark per catalog subject, in canonical catalog order.
// The fixed size makes "all six subjects present" a structural invariant
// rather than a runtime check on a map.
type MarkSet [catalog.Count]int

// MarkEntry is one immutable assessment attempt: a full set of subject
// marks stamped with its creation time. Average and pass status are
// derived on demand, never stored.
type MarkEntry struct {
	marks MarkSet
	at    time.Time
}

// NewMarkEntry validates a subject-code to mark mapping and builds an
// entry stamped with the current time. The mapping must contain exactly
// one mark per catalog subject, each in [0,100].
func NewMarkEntry(subjectMarks map[string]int) (MarkEntry, error) {
	return RehydrateEntry(subjectMarks, time.Now().UTC())
}

// RehydrateEntry builds an entry with an explicit timestamp. It applies
// the same validation as NewMarkEntry and is used when reloading
// persisted history.
func RehydrateEntry(subjectMarks map[string]int, at time.Time) (MarkEntry, error) {
	var marks MarkSet
	if subjectMarks == nil {
		return MarkEntry{}, &ValidationError{Field: "subjectMarks", Reason: "marks are required"}
	}
	if len(subjectMarks) != catalog.Count {
		return MarkEntry{}, &ValidationError{
			Field:  "subjectMarks",
			Reason: fmt.Sprintf("expected marks for %d subjects, got %d", catalog.Count, len(subjectMarks)),
		}
	}
	for i, code := range catalog.Codes() {
		mark, ok := subjectMarks[code]
		if !ok {
			return MarkEntry{}, &ValidationError{Field: "subjectMarks", Reason: "missing mark for " + code}
		}
		if mark < 0 || mark > 100 {
			return MarkEntry{}, &ValidationError{
				Field:  "subjectMarks",
				Reason: fmt.Sprintf("mark for %s must be between 0 and 100, got %d", code, mark),
			}
		}
		marks[i] = mark
	}
	return MarkEntry{marks: marks, at: at}, nil
}

// Marks returns the full mark set in canonical catalog order.
func (e MarkEntry) Marks() MarkSet { return e.marks }

// Mark returns the mark for a subject code, or false for unknown codes.
func (e MarkEntry) Mark(code string) (int, bool) {
	i := catalog.Index(code)
	if i < 0 {
		return 0, false
	}
	return e.marks[i], true
}

// SubjectMarks returns the marks as a code-keyed map, the shape used at
// the submit boundary and in the interchange document.
func (e MarkEntry) SubjectMarks() map[string]int {
	out := make(map[string]int, catalog.Count)
	for i, code := range catalog.Codes() {
		out[code] = e.marks[i]
	}
	return out
}

// Timestamp returns the creation time of the attempt.
func (e MarkEntry) Timestamp() time.Time { return e.at }

// Average is the arithmetic mean of all subject marks.
func (e MarkEntry) Average() float64 {
	sum := 0
	for _, m := range e.marks {
		sum += m
	}
	return float64(sum) / float64(catalog.Count)
}

// Passed reports whether every subject mark meets that subject's passing
// mark. A single mark below its threshold fails the whole attempt.
func (e MarkEntry) Passed() bool {
	for i, m := range e.marks {
		if m < catalog.At(i).PassingMark {
			return false
		}
	}
	return true
}

// Status renders the pass state for display and interchange.
func (e MarkEntry) Status() string {
	if e.Passed() {
		return "PASS"
	}
	return "FAIL"
}

// entryJSON is the interchange shape of one attempt. averageMark and
// passStatus are written for consumers but ignored and recomputed on load.
type entryJSON struct {
	SubjectMarks map[string]int `json:"subjectMarks"`
	Timestamp    time.Time      `json:"timestamp"`
	AverageMark  float64        `json:"averageMark"`
	PassStatus   string         `json:"passStatus"`
}

// MarshalJSON writes the interchange form with the average rounded to two
// decimals.
func (e MarkEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		SubjectMarks: e.SubjectMarks(),
		Timestamp:    e.at,
		AverageMark:  round2(e.Average()),
		PassStatus:   e.Status(),
	})
}

// UnmarshalJSON revalidates the persisted mapping so a corrupt document is
// rejected at load time rather than surfacing later.
func (e *MarkEntry) UnmarshalJSON(data []byte) error {
	var doc entryJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	entry, err := RehydrateEntry(doc.SubjectMarks, doc.Timestamp)
	if err != nil {
		return err
	}
	*e = entry
	return nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
