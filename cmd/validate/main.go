// Command validate checks a written summary table for structural integrity:
// header text, row format, sort order and annotation placement. Given the
// base folder it also re-parses the reports and verifies that the table is
// exactly what they produce.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -table outputs/summary_192_17010623.txt \
//	  -base-folder ./192
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/eew-summary/internal/adapter/reportfs"
	"github.com/couchcryptid/eew-summary/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	table := flag.String("table", "", "path to the summary table to check")
	baseFolder := flag.String("base-folder", "", "folder of .rep reports the table was built from (optional)")
	pattern := flag.String("pattern", "*.rep", "glob selecting report files in the base folder")
	flag.Parse()

	if *table == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*table, *baseFolder, *pattern); code != 0 {
		os.Exit(code)
	}
}

func run(tablePath, baseFolder, pattern string) int {
	fmt.Println("=== Summary Table Validation ===")
	fmt.Println()

	lines, err := readTable(tablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read table: %v\n", err)
		return 1
	}

	header, rowLines := "", []string(nil)
	if len(lines) > 0 {
		header, rowLines = lines[0], lines[1:]
	}

	formatPhase, rows := validateRowFormat(rowLines)
	phases := []*phase{
		validateHeader(header),
		formatPhase,
		validateSortOrder(rows),
		validateAnnotations(rows),
	}
	if baseFolder != "" {
		phases = append(phases, validateAgainstReports(lines, baseFolder, pattern))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d\n", len(rowLines))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Table parsing ──

// tableRow holds the columns of one summary row that the checks need.
type tableRow struct {
	lineNum    int
	mag        float64
	author     string
	reportTime string
	note       string
}

func readTable(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// parseRow splits a rendered row into columns. The author column is
// right-justified text and is taken to be everything between the numeric
// columns and the reporting time.
func parseRow(lineNum int, line string) (tableRow, error) {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return tableRow{}, fmt.Errorf("expected at least 8 columns, got %d", len(fields))
	}

	row := tableRow{lineNum: lineNum}
	names := []string{"Mag", "Lat", "Lon", "Depth"}
	for i, name := range names {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return tableRow{}, fmt.Errorf("%s %q is not a number", name, fields[i])
		}
		if i == 0 {
			row.mag = v
		}
	}
	for i, name := range []string{"Or.", "Ma."} {
		if _, err := strconv.Atoi(fields[4+i]); err != nil {
			return tableRow{}, fmt.Errorf("%s %q is not an integer", name, fields[4+i])
		}
	}

	rest := fields[6:]
	if last := rest[len(rest)-1]; strings.HasPrefix(last, "(") {
		row.note = last
		rest = rest[:len(rest)-1]
	}
	if len(rest) < 2 {
		return tableRow{}, errors.New("missing Repfile or Report_time column")
	}
	row.reportTime = rest[len(rest)-1]
	if _, err := time.Parse(domain.ReportTimeLayout, row.reportTime); err != nil {
		return tableRow{}, fmt.Errorf("report time %q: %w", row.reportTime, err)
	}
	row.author = strings.Join(rest[:len(rest)-1], " ")
	return row, nil
}

// ── Phase 1: Header ──

func validateHeader(header string) *phase {
	p := &phase{name: "Header"}
	if header != domain.TableHeader() {
		p.errorf("header mismatch:\n    got  %q\n    want %q", header, domain.TableHeader())
	}
	return p
}

// ── Phase 2: Row format ──

func validateRowFormat(lines []string) (*phase, []tableRow) {
	p := &phase{name: "Row format"}
	rows := make([]tableRow, 0, len(lines))
	for i, line := range lines {
		lineNum := i + 2
		row, err := parseRow(lineNum, line)
		if err != nil {
			p.errorf("line %d: %v", lineNum, err)
			continue
		}
		if !validNote(row.note) {
			p.errorf("line %d: unknown note %q", lineNum, row.note)
		}
		rows = append(rows, row)
	}
	return p, rows
}

// validNote reports whether note is a concatenation of the known annotations
// in the order they are assigned.
func validNote(note string) bool {
	for _, n := range []string{domain.NoteFirst, domain.NoteMaxMag, domain.NoteFinal} {
		note = strings.TrimPrefix(note, n)
	}
	return note == ""
}

// ── Phase 3: Sort order ──

func validateSortOrder(rows []tableRow) *phase {
	p := &phase{name: "Sort order (Report_time, Repfile)"}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if cur.reportTime < prev.reportTime ||
			(cur.reportTime == prev.reportTime && cur.author < prev.author) {
			p.errorf("line %d (%s %s) sorts before line %d (%s %s)",
				cur.lineNum, cur.reportTime, cur.author, prev.lineNum, prev.reportTime, prev.author)
		}
	}
	return p
}

// ── Phase 4: Annotations ──

func validateAnnotations(rows []tableRow) *phase {
	p := &phase{name: "Annotations"}
	if len(rows) == 0 {
		return p
	}

	best := -1
	for i, r := range rows {
		if math.IsNaN(r.mag) {
			continue
		}
		if best < 0 || r.mag > rows[best].mag {
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	last := len(rows) - 1

	for i, r := range rows {
		checks := []struct {
			note string
			want bool
		}{
			{domain.NoteFirst, i == 0},
			{domain.NoteMaxMag, i == best},
			{domain.NoteFinal, i == last && last > 0},
		}
		for _, c := range checks {
			if got := strings.Contains(r.note, c.note); got != c.want {
				p.errorf("line %d (%s): has %s = %t, want %t", r.lineNum, r.author, c.note, got, c.want)
			}
		}
	}
	return p
}

// ── Phase 5: Reports ──

// validateAgainstReports rebuilds the table from the reports in baseFolder
// and compares it line by line with the written one.
func validateAgainstReports(lines []string, baseFolder, pattern string) *phase {
	p := &phase{name: "Matches reports"}

	paths, err := reportfs.NewSource(baseFolder, pattern).ListReports(context.Background())
	if err != nil {
		p.errorf("list reports: %v", err)
		return p
	}

	rows := make([]domain.SummaryRow, 0, len(paths))
	skipped := 0
	for _, path := range paths {
		sol, err := domain.ReadRep(path)
		if err != nil {
			slog.Debug("report skipped", "file", path, "reason", domain.FailureReason(err))
			skipped++
			continue
		}
		rows = append(rows, domain.NewSummaryRow(sol))
	}

	var buf bytes.Buffer
	if err := domain.RenderTable(&buf, domain.RankRows(rows)); err != nil {
		p.errorf("render expected table: %v", err)
		return p
	}
	want := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	if len(want) != len(lines) {
		p.errorf("table has %d lines, reports produce %d (%d of %d reports skipped)",
			len(lines), len(want), skipped, len(paths))
	}
	for i := 0; i < len(want) && i < len(lines); i++ {
		if lines[i] != want[i] {
			p.errorf("line %d:\n    got  %q\n    want %q", i+1, lines[i], want[i])
		}
	}
	return p
}
