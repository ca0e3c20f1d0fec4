package domain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// minReportLines is the fewest non-blank lines a report can have and
	// still hold a reporting time, a solution line and a station.
	minReportLines = 3

	// minSolutionTokens is the token count a solution line must reach.
	minSolutionTokens = 13

	reportingTimeLayout = "2006/01/02 15:04:05"
)

var (
	// reportingTimeRe matches "Reporting time 2025/01/20 16:17:41[.123]"
	// anywhere in a line.
	reportingTimeRe = regexp.MustCompile(`Reporting\s+time\s+(\d{4}/\d{2}/\d{2})\s+(\d{2}:\d{2}:\d{2})(?:\.(\d+))?`)

	// numericTokenRe accepts unsigned decimals with at most one point:
	// "12", "12.5", "12.", ".5".
	numericTokenRe = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

	dashRuleRe = regexp.MustCompile(`^-{3,}$`)
)

// Token positions of the solution line fields.
const (
	solutionLatToken   = 6
	solutionLonToken   = 7
	solutionDepthToken = 8
	solutionMPDToken   = 12
)

// RepSolution is the summary extracted from one solution report.
type RepSolution struct {
	ReportingTime time.Time
	Lat           float64
	Lon           float64
	Depth         float64
	MPD           float64 // magnitude proxy, passed through uninterpreted
	StationCount  int
	Author        string
}

// ReadRep opens and parses the report at path. The author identifier is the
// file name without its extension.
func ReadRep(path string) (RepSolution, error) {
	f, err := os.Open(path)
	if err != nil {
		return RepSolution{}, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	return ParseRep(AuthorFromPath(path), f)
}

// AuthorFromPath derives the report author identifier from its file name.
func AuthorFromPath(path string) string {
	base := filepath.Base(path)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}

// ParseRep extracts a RepSolution from a free-text solution report.
//
// Errors are checked in this order: *InsufficientDataError when fewer than
// three non-blank lines exist, *NotFoundError or *FormatError for the
// reporting time, *NotFoundError for the solution line, and *FormatError when
// a selected solution token is not a finite number. A missing station table
// is not an error; the count is 0.
func ParseRep(author string, r io.Reader) (RepSolution, error) {
	lines, err := readLines(r)
	if err != nil {
		return RepSolution{}, err
	}

	nonBlank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
	}
	if nonBlank < minReportLines {
		return RepSolution{}, &InsufficientDataError{Lines: nonBlank}
	}

	sc := newRepScanner()
	for i, line := range lines {
		if sc.State() == StateDone {
			break
		}
		sc.Feed(i+1, line)
	}
	sc.Finish()

	if sc.reporting.err != nil {
		return RepSolution{}, sc.reporting.err
	}
	if !sc.reporting.found {
		return RepSolution{}, &NotFoundError{What: ElementReportingTime}
	}
	if !sc.solution.found {
		return RepSolution{}, &NotFoundError{What: ElementSolution}
	}

	sol := RepSolution{
		ReportingTime: sc.reporting.at,
		StationCount:  sc.table.count,
		Author:        author,
	}
	fields := []struct {
		name  string
		token int
		dst   *float64
	}{
		{"mpd", solutionMPDToken, &sol.MPD},
		{"latitude", solutionLatToken, &sol.Lat},
		{"longitude", solutionLonToken, &sol.Lon},
		{"depth", solutionDepthToken, &sol.Depth},
	}
	for _, f := range fields {
		v, err := finiteFloatField(sc.solution.line, f.name, sc.solution.tokens[f.token])
		if err != nil {
			return RepSolution{}, err
		}
		*f.dst = v
	}
	return sol, nil
}

// ScanState names where a repScanner is in a report.
type ScanState int

const (
	StateSeekingReportingTime ScanState = iota
	StateSeekingSolution
	StateInStationTable
	StateDone
)

func (s ScanState) String() string {
	switch s {
	case StateSeekingReportingTime:
		return "seeking-reporting-time"
	case StateSeekingSolution:
		return "seeking-solution-line"
	case StateInStationTable:
		return "in-station-table"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("ScanState(%d)", int(s))
	}
}

type tablePhase int

const (
	tableSeekingHeader tablePhase = iota
	tableCounting
	tableClosed
)

// repScanner runs three first-match matchers over the lines of a report.
// Every line is offered to each matcher that has not resolved yet, so each
// target binds to its own first match regardless of where the others sit in
// the file. The scanner's State is the first unresolved target in the order
// reporting time, solution line, station table.
type repScanner struct {
	reporting struct {
		found bool
		at    time.Time
		err   error
	}
	solution struct {
		found  bool
		line   int
		tokens []string
	}
	table struct {
		phase tablePhase
		count int
	}
}

func newRepScanner() *repScanner {
	return &repScanner{}
}

// State reports the first target the scanner is still looking for.
func (s *repScanner) State() ScanState {
	switch {
	case !s.reportingResolved():
		return StateSeekingReportingTime
	case !s.solution.found:
		return StateSeekingSolution
	case s.table.phase != tableClosed:
		return StateInStationTable
	default:
		return StateDone
	}
}

// Finish closes a station table that was still being counted or never
// started when input ended.
func (s *repScanner) Finish() {
	s.table.phase = tableClosed
}

// Feed offers one raw line to every unresolved matcher.
func (s *repScanner) Feed(lineNo int, raw string) {
	if !s.reportingResolved() {
		s.matchReportingTime(lineNo, raw)
	}
	if !s.solution.found {
		s.matchSolution(lineNo, raw)
	}
	if s.table.phase != tableClosed {
		s.matchStationTable(raw)
	}
}

func (s *repScanner) reportingResolved() bool {
	return s.reporting.found || s.reporting.err != nil
}

func (s *repScanner) matchReportingTime(lineNo int, raw string) {
	m := reportingTimeRe.FindStringSubmatch(raw)
	if m == nil {
		return
	}
	at, err := parseReportingTime(m[1], m[2], m[3])
	if err != nil {
		s.reporting.err = formatErr(lineNo, ElementReportingTime, strings.TrimSpace(m[0]), err)
		return
	}
	s.reporting.found = true
	s.reporting.at = at
}

func (s *repScanner) matchSolution(lineNo int, raw string) {
	tokens := strings.Fields(raw)
	if len(tokens) < minSolutionTokens || !numericTokenRe.MatchString(tokens[0]) {
		return
	}
	s.solution.found = true
	s.solution.line = lineNo
	s.solution.tokens = tokens
}

func (s *repScanner) matchStationTable(raw string) {
	trimmed := strings.TrimSpace(raw)
	switch s.table.phase {
	case tableSeekingHeader:
		if isStationHeader(trimmed) {
			s.table.phase = tableCounting
		}
	case tableCounting:
		if trimmed == "" || dashRuleRe.MatchString(trimmed) || !isStationRow(trimmed) {
			s.table.phase = tableClosed
			return
		}
		s.table.count++
	}
}

func isStationHeader(trimmed string) bool {
	return strings.HasPrefix(trimmed, "Sta") ||
		strings.HasPrefix(trimmed, "Station") ||
		strings.HasPrefix(trimmed, "#St.")
}

// isStationRow reports whether a trimmed line starts with an ASCII letter or
// digit.
func isStationRow(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	c := trimmed[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

var errFractionTooLong = errors.New("fractional seconds longer than 6 digits")

// parseReportingTime combines the date, clock and optional fraction captured
// from a reporting-time line into a UTC instant with microsecond precision.
func parseReportingTime(date, clock, fraction string) (time.Time, error) {
	t, err := time.ParseInLocation(reportingTimeLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if fraction == "" {
		return t, nil
	}
	if len(fraction) > 6 {
		return time.Time{}, errFractionTooLong
	}
	micros, err := strconv.Atoi(fraction + strings.Repeat("0", 6-len(fraction)))
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(time.Duration(micros) * time.Microsecond), nil
}

// LatencyFrom returns how long after origin the solution was reported.
// Negative values mean the report predates the reference origin time.
func (s RepSolution) LatencyFrom(origin time.Time) time.Duration {
	return s.ReportingTime.Sub(origin)
}
