package domain

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// ReportTimeLayout renders reporting times in the summary table. It is fixed
// width, zero padded and ordered year to microsecond, so comparing two
// rendered times as strings orders them chronologically.
const ReportTimeLayout = "2006/01/02-15:04:05.000000"

// Row annotations set by RankRows.
const (
	NoteFirst  = "(first)"
	NoteMaxMag = "(max_mag)"
	NoteFinal  = "(final)"
)

const (
	rowFormat    = "%5.2f %9.4f %10.4f %7.2f %4d %4d %30s %26s"
	headerFormat = "%5s %9s %10s %7s %4s %4s %30s %26s %10s"
	noteFormat   = "%s %10s\n"
)

// SummaryRow is one line of the summary table: the rendered solution columns
// plus the annotation assigned during ranking.
type SummaryRow struct {
	Line       string // rendered columns, without the note
	ReportTime string // rendered reporting-time column
	Author     string
	Magnitude  float64 // mpd as rendered (two decimals)
	Note       string

	Solution RepSolution
}

// NewSummaryRow renders a solution into its fixed-width row. The station
// count fills both the "Or." and "Ma." columns.
func NewSummaryRow(sol RepSolution) SummaryRow {
	reportTime := sol.ReportingTime.UTC().Format(ReportTimeLayout)
	return SummaryRow{
		Line: fmt.Sprintf(rowFormat,
			sol.MPD, sol.Lat, sol.Lon, sol.Depth,
			sol.StationCount, sol.StationCount,
			sol.Author, reportTime,
		),
		ReportTime: reportTime,
		Author:     sol.Author,
		Magnitude:  renderedMagnitude(sol.MPD),
		Solution:   sol,
	}
}

// renderedMagnitude rounds mpd the way the Mag column shows it, so ties in
// the table are ties for ranking too.
func renderedMagnitude(mpd float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(mpd, 'f', 2, 64), 64)
	if err != nil {
		return mpd
	}
	return v
}

// RankRows returns the rows sorted by reporting-time text then author text,
// with notes assigned: the first row gets (first), the first row holding the
// largest magnitude gets (max_mag), and the last row gets (final) when there
// is more than one row. The input slice is not modified.
func RankRows(rows []SummaryRow) []SummaryRow {
	ranked := make([]SummaryRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		return lessLexical(ranked[i], ranked[j])
	})

	for i := range ranked {
		ranked[i].Note = ""
	}
	if len(ranked) == 0 {
		return ranked
	}

	ranked[0].Note += NoteFirst
	ranked[maxMagnitudeIndex(ranked)].Note += NoteMaxMag
	if last := len(ranked) - 1; last > 0 {
		ranked[last].Note += NoteFinal
	}
	return ranked
}

func lessLexical(a, b SummaryRow) bool {
	if a.ReportTime != b.ReportTime {
		return a.ReportTime < b.ReportTime
	}
	return a.Author < b.Author
}

// maxMagnitudeIndex returns the first index holding the largest magnitude.
// NaN magnitudes never win; if every row is NaN the first row is used.
func maxMagnitudeIndex(rows []SummaryRow) int {
	best := -1
	for i, r := range rows {
		if math.IsNaN(r.Magnitude) {
			continue
		}
		if best < 0 || r.Magnitude > rows[best].Magnitude {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// TableHeader is the first line of the summary table.
func TableHeader() string {
	return fmt.Sprintf(headerFormat, "Mag", "Lat", "Lon", "Depth", "Or.", "Ma.", "Repfile", "Report_time", "note")
}

// RenderTable writes the header and every row with its note right-justified
// in a trailing ten-character column.
func RenderTable(w io.Writer, rows []SummaryRow) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, TableHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, noteFormat, r.Line, r.Note); err != nil {
			return fmt.Errorf("write row %s: %w", r.Author, err)
		}
	}
	return bw.Flush()
}
