package domain

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// StationArrival is one station record from a Pfile.
type StationArrival struct {
	Weighting   int
	Intensity   int // 0-9, 0 when the intensity column is blank
	PGA         float64
	ArrivalTime time.Time
}

// PfileEvent is the decoded event header plus its station records, keyed by
// station code.
type PfileEvent struct {
	OriginTime time.Time
	Magnitude  float64
	Depth      *float64 // nil when the header variant does not carry a depth
	Stations   map[string]StationArrival
}

// StationCodes returns the station codes in lexical order.
func (e PfileEvent) StationCodes() []string {
	codes := make([]string, 0, len(e.Stations))
	for code := range e.Stations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

var errEmptyPfile = errors.New("file has no header line")

// ReadPfile opens and decodes the Pfile at path.
func ReadPfile(path string) (PfileEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return PfileEvent{}, fmt.Errorf("open pfile: %w", err)
	}
	defer f.Close()

	event, err := ParsePfile(f)
	if err != nil {
		return PfileEvent{}, fmt.Errorf("parse pfile %s: %w", path, err)
	}
	return event, nil
}

// ParsePfile decodes a Pfile: the first line is the event header, every
// following non-blank line is a station record. Offsets are documented in
// doc.go.
func ParsePfile(r io.Reader) (PfileEvent, error) {
	lines, err := readLines(r)
	if err != nil {
		return PfileEvent{}, err
	}
	if len(lines) == 0 {
		return PfileEvent{}, formatErr(1, "header", "", errEmptyPfile)
	}

	event, err := parsePfileHeader(lines[0])
	if err != nil {
		return PfileEvent{}, err
	}

	event.Stations = make(map[string]StationArrival, len(lines)-1)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		code, arrival, err := parseStationLine(i+2, line, event.OriginTime)
		if err != nil {
			return PfileEvent{}, err
		}
		event.Stations[code] = arrival
	}
	return event, nil
}

func parsePfileHeader(line string) (PfileEvent, error) {
	const lineNo = 1

	var (
		year, month, day, hour, minute int
		err                            error
	)
	ints := []struct {
		name   string
		lo, hi int
		dst    *int
	}{
		{"year", 1, 5, &year},
		{"month", 5, 7, &month},
		{"day", 7, 9, &day},
		{"hour", 9, 11, &hour},
		{"minute", 11, 13, &minute},
	}
	for _, f := range ints {
		if *f.dst, err = intField(lineNo, f.name, column(line, f.lo, f.hi)); err != nil {
			return PfileEvent{}, err
		}
	}

	seconds, err := floatField(lineNo, "seconds", column(line, 13, 19))
	if err != nil {
		return PfileEvent{}, err
	}
	magnitude, err := floatField(lineNo, "magnitude", column(line, 40, 44))
	if err != nil {
		return PfileEvent{}, err
	}

	origin, err := originTime(year, month, day, hour, minute, seconds)
	if err != nil {
		return PfileEvent{}, formatErr(lineNo, "origin time", column(line, 1, 19), err)
	}

	event := PfileEvent{OriginTime: origin, Magnitude: magnitude}
	if depth, err := strconv.ParseFloat(strings.TrimSpace(column(line, 34, 40)), 64); err == nil {
		event.Depth = &depth
	}
	return event, nil
}

// originTime builds the UTC origin instant. The fractional part of seconds is
// rounded to the nearest microsecond.
func originTime(year, month, day, hour, minute int, seconds float64) (time.Time, error) {
	switch {
	case month < 1 || month > 12:
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	case day < 1 || day > daysIn(year, time.Month(month)):
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	case hour < 0 || hour > 23:
		return time.Time{}, fmt.Errorf("hour %d out of range", hour)
	case minute < 0 || minute > 59:
		return time.Time{}, fmt.Errorf("minute %d out of range", minute)
	case math.IsNaN(seconds) || seconds < 0 || seconds >= 60:
		return time.Time{}, fmt.Errorf("seconds %v out of range", seconds)
	}

	whole := math.Floor(seconds)
	micros := math.Round((seconds - whole) * 1e6)
	return time.Date(year, time.Month(month), day, hour, minute, int(whole), int(micros)*int(time.Microsecond), time.UTC), nil
}

func parseStationLine(lineNo int, line string, origin time.Time) (string, StationArrival, error) {
	code := strings.TrimSpace(column(line, 0, 5))

	weight, err := floatField(lineNo, "weighting", column(line, 35, 39))
	if err != nil {
		return "", StationArrival{}, err
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return "", StationArrival{}, formatErr(lineNo, "weighting", column(line, 35, 39), errors.New("not finite"))
	}

	intensity, err := intensityField(lineNo, column(line, 76, 77))
	if err != nil {
		return "", StationArrival{}, err
	}

	pga, err := floatField(lineNo, "pga", column(line, 78, 83))
	if err != nil {
		return "", StationArrival{}, err
	}

	minute, err := intField(lineNo, "arrival minute", column(line, 21, 23))
	if err != nil {
		return "", StationArrival{}, err
	}
	if minute < 0 || minute > 59 {
		return "", StationArrival{}, formatErr(lineNo, "arrival minute", column(line, 21, 23), errors.New("out of range"))
	}
	offset, err := floatField(lineNo, "arrival seconds", column(line, 23, 29))
	if err != nil {
		return "", StationArrival{}, err
	}

	// Only the minute is substituted, so arrivals that cross an hour boundary
	// relative to the origin land in the wrong hour.
	base := time.Date(origin.Year(), origin.Month(), origin.Day(), origin.Hour(), minute, 0, 0, time.UTC)
	arrival := base.Add(microseconds(offset))

	return code, StationArrival{
		Weighting:   int(math.Trunc(weight)),
		Intensity:   intensity,
		PGA:         pga,
		ArrivalTime: arrival,
	}, nil
}

// intensityField decodes the one-character intensity column: blank is 0,
// otherwise a single decimal digit.
func intensityField(lineNo int, text string) (int, error) {
	if text == " " {
		return 0, nil
	}
	if len(text) != 1 || text[0] < '0' || text[0] > '9' {
		return 0, formatErr(lineNo, "intensity", text, errors.New("expected a digit or blank"))
	}
	return int(text[0] - '0'), nil
}

func microseconds(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1e6)) * time.Microsecond
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
