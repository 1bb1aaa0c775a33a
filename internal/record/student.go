package record

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// identity carries the constructor inputs through struct-tag validation.
type identity struct {
	Number string `validate:"required,len=8"`
	Name   string `validate:"required,max=50"`
}

// StudentRecord is a student identity plus an append-only, chronologically
// ordered history of mark entries. Identity fields never change after
// construction; history only grows.
type StudentRecord struct {
	number       string
	name         string
	history      []MarkEntry
	createdAt    time.Time
	lastModified time.Time
}

// NewStudentRecord validates the identity fields and creates an empty
// record. The number must be exactly 8 ASCII digits; the name is trimmed
// and must be non-empty and at most 50 characters.
func NewStudentRecord(number, name string) (*StudentRecord, error) {
	name = strings.TrimSpace(name)
	if err := validateIdentity(number, name); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &StudentRecord{
		number:       number,
		name:         name,
		createdAt:    now,
		lastModified: now,
	}, nil
}

// Rehydrate rebuilds a record from persisted state, preserving its
// timestamps and history. Identity validation still applies so a corrupt
// document cannot smuggle in a malformed record.
func Rehydrate(number, name string, createdAt, lastModified time.Time, history []MarkEntry) (*StudentRecord, error) {
	name = strings.TrimSpace(name)
	if err := validateIdentity(number, name); err != nil {
		return nil, err
	}
	hist := make([]MarkEntry, len(history))
	copy(hist, history)
	return &StudentRecord{
		number:       number,
		name:         name,
		history:      hist,
		createdAt:    createdAt,
		lastModified: lastModified,
	}, nil
}

func validateIdentity(number, name string) error {
	if err := validate.Struct(identity{Number: number, Name: name}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationReason(verrs[0])
		}
		return err
	}
	// len=8 cannot express digits-only, so check the bytes directly.
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return &ValidationError{Field: "studentNumber", Reason: "must contain only digits"}
		}
	}
	return nil
}

func validationReason(f validator.FieldError) error {
	switch f.StructField() {
	case "Number":
		reason := "must not be empty"
		if f.Tag() == "len" {
			reason = "must be exactly 8 digits"
		}
		return &ValidationError{Field: "studentNumber", Reason: reason}
	default:
		reason := "must not be empty"
		if f.Tag() == "max" {
			reason = "must be at most 50 characters"
		}
		return &ValidationError{Field: "studentName", Reason: reason}
	}
}

// Number returns the immutable 8-digit student number.
func (r *StudentRecord) Number() string { return r.number }

// Name returns the trimmed student name.
func (r *StudentRecord) Name() string { return r.name }

// CreatedAt returns the record creation time.
func (r *StudentRecord) CreatedAt() time.Time { return r.createdAt }

// LastModified returns the time of the last successful history append.
func (r *StudentRecord) LastModified() time.Time { return r.lastModified }

// History returns a copy of the mark history in insertion order.
func (r *StudentRecord) History() []MarkEntry {
	out := make([]MarkEntry, len(r.history))
	copy(out, r.history)
	return out
}

// AddMarks validates the mapping, appends a new entry, and bumps
// LastModified. On validation failure the record is untouched.
func (r *StudentRecord) AddMarks(subjectMarks map[string]int) error {
	entry, err := NewMarkEntry(subjectMarks)
	if err != nil {
		return err
	}
	r.history = append(r.history, entry)
	r.lastModified = time.Now().UTC()
	return nil
}

// HasMarks reports whether any attempt has been recorded.
func (r *StudentRecord) HasMarks() bool { return len(r.history) > 0 }

// Attempts returns the number of recorded attempts.
func (r *StudentRecord) Attempts() int { return len(r.history) }

// LatestMarks returns the most recent attempt, or false when the history
// is empty.
func (r *StudentRecord) LatestMarks() (MarkEntry, bool) {
	if len(r.history) == 0 {
		return MarkEntry{}, false
	}
	return r.history[len(r.history)-1], true
}

// AverageMark is the mean of all attempt averages, 0 with no history.
func (r *StudentRecord) AverageMark() float64 {
	if len(r.history) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range r.history {
		sum += e.Average()
	}
	return sum / float64(len(r.history))
}

// HighestAverageMark is the best attempt average, 0 with no history.
func (r *StudentRecord) HighestAverageMark() float64 {
	best := 0.0
	for _, e := range r.history {
		if avg := e.Average(); avg > best {
			best = avg
		}
	}
	return best
}

// LowestAverageMark is the worst attempt average, 0 with no history.
func (r *StudentRecord) LowestAverageMark() float64 {
	if len(r.history) == 0 {
		return 0
	}
	low := r.history[0].Average()
	for _, e := range r.history[1:] {
		if avg := e.Average(); avg < low {
			low = avg
		}
	}
	return low
}

// PassCount counts passing attempts across the entire history.
func (r *StudentRecord) PassCount() int {
	n := 0
	for _, e := range r.history {
		if e.Passed() {
			n++
		}
	}
	return n
}

// FailCount counts failing attempts across the entire history.
func (r *StudentRecord) FailCount() int {
	return len(r.history) - r.PassCount()
}

// Clone returns an independent copy. The registry mutates clones and
// installs them only after a successful persist.
func (r *StudentRecord) Clone() *StudentRecord {
	c := *r
	c.history = make([]MarkEntry, len(r.history))
	copy(c.history, r.history)
	return &c
}

// studentJSON is the interchange shape of one record.
type studentJSON struct {
	StudentNumber string      `json:"studentNumber"`
	StudentName   string      `json:"studentName"`
	MarksHistory  []MarkEntry `json:"marksHistory"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastModified  time.Time   `json:"lastModified"`
}

// MarshalJSON writes the interchange form with lower-camel-case keys.
func (r *StudentRecord) MarshalJSON() ([]byte, error) {
	history := r.history
	if history == nil {
		history = []MarkEntry{}
	}
	return json.Marshal(studentJSON{
		StudentNumber: r.number,
		StudentName:   r.name,
		MarksHistory:  history,
		CreatedAt:     r.createdAt,
		LastModified:  r.lastModified,
	})
}

// UnmarshalJSON rebuilds the record through Rehydrate so the identity
// rules hold for loaded documents too.
func (r *StudentRecord) UnmarshalJSON(data []byte) error {
	var doc studentJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	rec, err := Rehydrate(doc.StudentNumber, doc.StudentName, doc.CreatedAt, doc.LastModified, doc.MarksHistory)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}
