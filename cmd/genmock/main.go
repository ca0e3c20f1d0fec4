// Command genmock writes a folder of synthetic .rep solution reports for a
// reference Pfile event, one per solution iteration. Each generated report is
// parsed back with the domain package so the fixtures are guaranteed to be
// readable by the summarizer.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -pfile data/17010623.P20 \
//	  -out-dir data/mock/192 \
//	  -count 6 -lat 23.8047 -lon 121.6046
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/eew-summary/internal/domain"
)

// mockOptions controls how the report sequence is synthesized.
type mockOptions struct {
	count      int
	firstDelay time.Duration // first reporting time after origin
	interval   time.Duration // gap between successive reports
	lat, lon   float64
	prefix     string // author prefix; report i is <prefix><i+1>.rep
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	pfile := flag.String("pfile", "", "reference Pfile for the event")
	outDir := flag.String("out-dir", "", "directory to write the .rep files into")
	opts := mockOptions{}
	flag.IntVar(&opts.count, "count", 5, "number of reports to generate")
	flag.DurationVar(&opts.firstDelay, "first-delay", 8*time.Second, "delay of the first report after origin")
	flag.DurationVar(&opts.interval, "interval", 3*time.Second, "gap between reports")
	flag.Float64Var(&opts.lat, "lat", 23.8047, "epicentre latitude written to every solution")
	flag.Float64Var(&opts.lon, "lon", 121.6046, "epicentre longitude written to every solution")
	flag.StringVar(&opts.prefix, "prefix", "n", "author prefix for generated file names")
	flag.Parse()

	if *pfile == "" || *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -pfile, -out-dir")
	}
	if opts.count < 1 {
		return fmt.Errorf("-count must be positive")
	}

	ref, err := domain.ReadPfile(*pfile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *outDir, err)
	}

	for _, sol := range mockSolutions(ref, opts) {
		path := filepath.Join(*outDir, sol.Author+".rep")
		if err := writeReport(path, ref, sol); err != nil {
			return err
		}

		// Round-trip through the parser to catch fixture drift.
		got, err := domain.ReadRep(path)
		if err != nil {
			return fmt.Errorf("generated report %s does not parse: %w", path, err)
		}
		if got.StationCount != sol.StationCount || !got.ReportingTime.Equal(sol.ReportingTime) {
			return fmt.Errorf("generated report %s parses to %+v, want %+v", path, got, sol)
		}
		fmt.Printf("wrote %s (mpd %.2f, %d stations)\n", path, sol.MPD, sol.StationCount)
	}
	return nil
}

// mockSolutions builds a sequence of solutions whose magnitude converges on
// the reference magnitude and whose station count grows as arrivals come in.
func mockSolutions(ref domain.PfileEvent, opts mockOptions) []domain.RepSolution {
	depth := 10.0
	if ref.Depth != nil {
		depth = *ref.Depth
	}

	sols := make([]domain.RepSolution, 0, opts.count)
	for i := range opts.count {
		reported := ref.OriginTime.Add(opts.firstDelay + time.Duration(i)*opts.interval).Truncate(time.Microsecond)
		progress := float64(i+1) / float64(opts.count)
		sols = append(sols, domain.RepSolution{
			ReportingTime: reported,
			Lat:           opts.lat,
			Lon:           opts.lon,
			Depth:         depth,
			MPD:           math.Round(ref.Magnitude*(0.7+0.3*progress)*100) / 100,
			StationCount:  len(arrivedBy(ref, reported)),
			Author:        fmt.Sprintf("%s%d", opts.prefix, i+1),
		})
	}
	return sols
}

// arrivedBy returns the station codes whose arrival is no later than t,
// ordered by arrival then code.
func arrivedBy(ref domain.PfileEvent, t time.Time) []string {
	var codes []string
	for code, st := range ref.Stations {
		if !st.ArrivalTime.After(t) {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool {
		a, b := ref.Stations[codes[i]].ArrivalTime, ref.Stations[codes[j]].ArrivalTime
		if !a.Equal(b) {
			return a.Before(b)
		}
		return codes[i] < codes[j]
	})
	return codes
}

func writeReport(path string, ref domain.PfileEvent, sol domain.RepSolution) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := renderReport(f, ref, sol); err != nil {
		f.Close() //nolint:errcheck,gosec // render error takes precedence
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// renderReport writes a report in the layout the early-warning system emits:
// a banner, the reporting time, one solution line and the station table.
func renderReport(w io.Writer, ref domain.PfileEvent, sol domain.RepSolution) error {
	bw := bufio.NewWriter(w)
	origin := ref.OriginTime
	stations := arrivedBy(ref, sol.ReportingTime)

	fmt.Fprintln(bw, " ==================== EEW solution report ====================")
	fmt.Fprintf(bw, " Algorithm: %s\n", sol.Author)
	fmt.Fprintf(bw, " Reporting time   %s\n", sol.ReportingTime.UTC().Format("2006/01/02 15:04:05.000000"))
	fmt.Fprintf(bw, " Origin time      %s\n", origin.UTC().Format("2006/01/02 15:04:05.00"))
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, " No.  Date        Time          Err   Res  Iter   Lat       Lon       Depth  Pd     Tc   Nsta  Mpd")
	fmt.Fprintf(bw, " 1    %s  %s   0.10  0.00  3     %.4f   %.4f  %.2f  0.45   1.2  %-4d  %.2f\n",
		origin.UTC().Format("2006/01/02"), origin.UTC().Format("15:04:05.00"),
		sol.Lat, sol.Lon, sol.Depth, len(stations), sol.MPD)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Sta    Comp  Arrival")
	for _, code := range stations {
		fmt.Fprintf(bw, "%-6s HLZ   %s\n", code, ref.Stations[code].ArrivalTime.UTC().Format("15:04:05.000"))
	}
	fmt.Fprintln(bw, "-------------------------------------------------")
	fmt.Fprintln(bw, " End of report")
	return bw.Flush()
}
