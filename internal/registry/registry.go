package registry

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-kit/log"

	"markbook/internal/record"
	"markbook/internal/store"
)

// ErrStudentNotFound is returned by mutating operations on an unknown
// student number. Plain lookups report absence with a bool instead.
var ErrStudentNotFound = errors.New("student not found")

// maxNumberAttempts bounds the collision retries when generating a new
// student number.
const maxNumberAttempts = 100

// StudentSummary is the (number, name) pair exposed to listings.
type StudentSummary struct {
	Number string
	Name   string
}

// Registry owns the collection of student records, generates student
// numbers, computes system-wide aggregates, and persists through a Store.
// Mutations persist the new state before installing it in memory, so a
// failed write never leaves memory ahead of the backing store. All
// operations form a critical section and are safe from concurrent hosts.
type Registry struct {
	mu       sync.RWMutex
	students map[string]*record.StudentRecord
	store    store.Store
	logger   log.Logger
	rng      *rand.Rand
}

// Option adjusts a Registry at construction, mainly for tests.
type Option func(*Registry)

// WithRandSource fixes the student-number generator seed source.
func WithRandSource(src rand.Source) Option {
	return func(r *Registry) { r.rng = rand.New(src) }
}

// New builds a registry and loads the persisted state from st.
func New(st store.Store, logger log.Logger, opts ...Option) (*Registry, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	r := &Registry{
		students: make(map[string]*record.StudentRecord),
		store:    st,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(r)
	}

	doc, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	for _, rec := range doc.Students {
		if _, dup := r.students[rec.Number()]; dup {
			return nil, fmt.Errorf("load registry: duplicate student number %s", rec.Number())
		}
		r.students[rec.Number()] = rec
	}
	logger.Log("msg", "registry loaded", "students", len(r.students))
	return r, nil
}

// CreateStudent validates the name, assigns a fresh random 8-digit
// student number, persists, and returns the new number.
func (r *Registry) CreateStudent(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	number, err := r.freshNumberLocked()
	if err != nil {
		return "", err
	}
	rec, err := record.NewStudentRecord(number, name)
	if err != nil {
		return "", err
	}
	if err := r.saveLocked(rec); err != nil {
		r.logger.Log("msg", "create student persist failed", "err", err)
		return "", err
	}
	r.students[number] = rec
	r.logger.Log("msg", "student created", "studentNumber", number)
	return number, nil
}

// freshNumberLocked draws random numbers in [10000000, 99999999] until one
// is unused, giving up after maxNumberAttempts.
func (r *Registry) freshNumberLocked() (string, error) {
	for i := 0; i < maxNumberAttempts; i++ {
		n := 10000000 + r.rng.Intn(90000000)
		number := strconv.Itoa(n)
		if _, taken := r.students[number]; !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("no unique student number found after %d attempts", maxNumberAttempts)
}

// Lookup returns a copy of the record for a student number, or false when
// the number is unknown or malformed.
func (r *Registry) Lookup(number string) (*record.StudentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.students[number]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// AddMarks appends one validated attempt to a student's history and
// persists. The in-memory record only changes once the write succeeds.
func (r *Registry) AddMarks(number string, subjectMarks map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.students[number]
	if !ok {
		return ErrStudentNotFound
	}
	next := rec.Clone()
	if err := next.AddMarks(subjectMarks); err != nil {
		return err
	}
	if err := r.saveLocked(next); err != nil {
		r.logger.Log("msg", "add marks persist failed", "studentNumber", number, "err", err)
		return err
	}
	r.students[number] = next
	r.logger.Log("msg", "marks recorded", "studentNumber", number, "attempts", next.Attempts())
	return nil
}

// StudentNumbers returns all student numbers, sorted.
func (r *Registry) StudentNumbers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	numbers := make([]string, 0, len(r.students))
	for n := range r.students {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return numbers
}

// ListStudents returns (number, name) pairs sorted by name, with the
// number breaking ties.
func (r *Registry) ListStudents() []StudentSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StudentSummary, 0, len(r.students))
	for _, rec := range r.students {
		out = append(out, StudentSummary{Number: rec.Number(), Name: rec.Name()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// Stats returns the student count and the pass rate: the percentage of
// students with at least one attempt whose latest attempt passed. Students
// without marks are excluded from the denominator.
func (r *Registry) Stats() (count int, passRate float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count = len(r.students)
	withMarks, passed := 0, 0
	for _, rec := range r.students {
		latest, ok := rec.LatestMarks()
		if !ok {
			continue
		}
		withMarks++
		if latest.Passed() {
			passed++
		}
	}
	if withMarks == 0 {
		return count, 0
	}
	return count, float64(passed) / float64(withMarks) * 100
}

// Snapshot returns copies of all records sorted by student number, the
// order used by export and persistence.
func (r *Registry) Snapshot() []*record.StudentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(nil)
}

// snapshotLocked collects all records sorted by number. When pending is
// non-nil it stands in for (or joins) the stored record with its number.
func (r *Registry) snapshotLocked(pending *record.StudentRecord) []*record.StudentRecord {
	out := make([]*record.StudentRecord, 0, len(r.students)+1)
	for number, rec := range r.students {
		if pending != nil && number == pending.Number() {
			continue
		}
		out = append(out, rec)
	}
	if pending != nil {
		out = append(out, pending)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out
}

func (r *Registry) saveLocked(pending *record.StudentRecord) error {
	doc := store.Document{
		Students:    r.snapshotLocked(pending),
		LastUpdated: time.Now().UTC(),
	}
	if err := r.store.Save(doc); err != nil {
		return fmt.Errorf("persist registry: %w", err)
	}
	return nil
}
