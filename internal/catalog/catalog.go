package catalog

import "strings"

// Subject is one unit of the fixed six-subject curriculum.
type Subject struct {
	Code        string
	Name        string
	CreditHours int
	PassingMark int
}

// Count is the number of subjects every mark submission must cover.
const Count = 6

// subjects is the curriculum in canonical order. Order is significant: it
// drives display, export columns, and the layout of record.MarkSet.
var subjects = [Count]Subject{
	{Code: "CS101", Name: "Introduction to Programming", CreditHours: 4, PassingMark: 40},
	{Code: "CS102", Name: "Data Structures", CreditHours: 4, PassingMark: 40},
	{Code: "CS103", Name: "Computer Architecture", CreditHours: 3, PassingMark: 40},
	{Code: "CS104", Name: "Discrete Mathematics", CreditHours: 3, PassingMark: 40},
	{Code: "CS105", Name: "Operating Systems", CreditHours: 4, PassingMark: 40},
	{Code: "CS106", Name: "Database Systems", CreditHours: 3, PassingMark: 40},
}

// Subjects returns the curriculum in canonical order.
func Subjects() []Subject {
	out := make([]Subject, Count)
	copy(out, subjects[:])
	return out
}

// Codes returns the subject codes in canonical order.
func Codes() []string {
	out := make([]string, Count)
	for i, s := range subjects {
		out[i] = s.Code
	}
	return out
}

// Lookup finds a subject by code, case-insensitively. The second return is
// false when no subject carries the code.
func Lookup(code string) (Subject, bool) {
	for _, s := range subjects {
		if strings.EqualFold(s.Code, code) {
			return s, true
		}
	}
	return Subject{}, false
}

// Index returns the canonical position of a subject code, or -1 when the
// code is not part of the curriculum. Matching is exact.
func Index(code string) int {
	for i, s := range subjects {
		if s.Code == code {
			return i
		}
	}
	return -1
}

// At returns the subject at a canonical position.
func At(i int) Subject { return subjects[i] }
