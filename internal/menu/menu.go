package menu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"markbook/internal/catalog"
	"markbook/internal/export"
	"markbook/internal/registry"
)

// Menu is the blocking read-eval-print loop over the registry. Every
// error is reported and the loop continues; bad input never ends the
// process.
type Menu struct {
	reg        *registry.Registry
	in         *bufio.Scanner
	out        io.Writer
	exportFile string
}

// New builds a menu reading choices from in and writing to out.
func New(reg *registry.Registry, in io.Reader, out io.Writer, exportFile string) *Menu {
	return &Menu{
		reg:        reg,
		in:         bufio.NewScanner(in),
		out:        out,
		exportFile: exportFile,
	}
}

// Run drives the loop until the user exits or input ends.
func (m *Menu) Run() error {
	for {
		fmt.Fprint(m.out, "\n==== Student Marks Ledger ====\n"+
			"1. Create student record\n"+
			"2. Enter / update marks\n"+
			"3. View student report\n"+
			"4. List students\n"+
			"5. System statistics\n"+
			"6. Export CSV report\n"+
			"0. Exit\n")
		choice, ok := m.prompt("Choice: ")
		if !ok {
			return m.in.Err()
		}
		switch choice {
		case "1":
			m.createStudent()
		case "2":
			m.enterMarks()
		case "3":
			m.viewStudent()
		case "4":
			m.listStudents()
		case "5":
			m.showStats()
		case "6":
			m.exportCSV()
		case "0":
			fmt.Fprintln(m.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Unknown option.")
		}
	}
}

// prompt prints a label and reads one trimmed line. The second return is
// false when input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) createStudent() {
	name, ok := m.prompt("Student name: ")
	if !ok {
		return
	}
	number, err := m.reg.CreateStudent(name)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Created student %s with number %s\n", name, number)
}

func (m *Menu) enterMarks() {
	number, ok := m.prompt("Student number: ")
	if !ok {
		return
	}
	rec, found := m.reg.Lookup(number)
	if !found {
		fmt.Fprintln(m.out, "No student with that number.")
		return
	}
	if rec.HasMarks() {
		fmt.Fprintf(m.out, "Updating marks for %s (attempt %d)\n", rec.Name(), rec.Attempts()+1)
	} else {
		fmt.Fprintf(m.out, "Entering first marks for %s\n", rec.Name())
	}

	marks := make(map[string]int, catalog.Count)
	for _, subj := range catalog.Subjects() {
		raw, ok := m.prompt(fmt.Sprintf("%s - %s [0-100]: ", subj.Code, subj.Name))
		if !ok {
			return
		}
		mark, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintf(m.out, "Error: %q is not a number\n", raw)
			return
		}
		marks[subj.Code] = mark
	}

	if err := m.reg.AddMarks(number, marks); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	rec, _ = m.reg.Lookup(number)
	if latest, ok := rec.LatestMarks(); ok {
		fmt.Fprintf(m.out, "Recorded attempt %d: average %.2f, status %s\n",
			rec.Attempts(), latest.Average(), latest.Status())
	}
}

func (m *Menu) viewStudent() {
	number, ok := m.prompt("Student number: ")
	if !ok {
		return
	}
	rec, found := m.reg.Lookup(number)
	if !found {
		fmt.Fprintln(m.out, "No student with that number.")
		return
	}

	fmt.Fprintf(m.out, "\n%s (%s), registered %s\n", rec.Name(), rec.Number(),
		rec.CreatedAt().Format("2006-01-02"))
	if !rec.HasMarks() {
		fmt.Fprintln(m.out, "No marks recorded yet.")
		return
	}

	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tDate\t%s\tAverage\tStatus\n", strings.Join(catalog.Codes(), "\t"))
	for i, entry := range rec.History() {
		cols := make([]string, 0, catalog.Count+4)
		cols = append(cols, strconv.Itoa(i+1), entry.Timestamp().Format("2006-01-02 15:04"))
		for _, mark := range entry.Marks() {
			cols = append(cols, strconv.Itoa(mark))
		}
		cols = append(cols, fmt.Sprintf("%.2f", entry.Average()), entry.Status())
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	tw.Flush()

	fmt.Fprintf(m.out, "Overall average %.2f (best %.2f, worst %.2f), %d pass / %d fail\n",
		rec.AverageMark(), rec.HighestAverageMark(), rec.LowestAverageMark(),
		rec.PassCount(), rec.FailCount())
}

func (m *Menu) listStudents() {
	students := m.reg.ListStudents()
	if len(students) == 0 {
		fmt.Fprintln(m.out, "No students registered.")
		return
	}
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Number\tName")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\n", s.Number, s.Name)
	}
	tw.Flush()
}

func (m *Menu) showStats() {
	count, passRate := m.reg.Stats()
	fmt.Fprintf(m.out, "Students: %d\nPass rate (latest attempts): %.1f%%\n", count, passRate)
}

func (m *Menu) exportCSV() {
	path, ok := m.prompt(fmt.Sprintf("Export file [%s]: ", m.exportFile))
	if !ok {
		return
	}
	if path == "" {
		path = m.exportFile
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if err := export.WriteCSV(f, m.reg.Snapshot()); err != nil {
		f.Close()
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Exported to %s\n", path)
}
