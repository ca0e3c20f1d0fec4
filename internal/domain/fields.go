package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// column returns line[lo:hi] clipped to the line length, so a short line
// yields a short or empty field instead of panicking.
func column(line string, lo, hi int) string {
	if lo >= len(line) {
		return ""
	}
	if hi > len(line) {
		hi = len(line)
	}
	return line[lo:hi]
}

func intField(lineNo int, name, text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, formatErr(lineNo, name, text, err)
	}
	return v, nil
}

func floatField(lineNo int, name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, formatErr(lineNo, name, text, err)
	}
	return v, nil
}

var errNotFinite = errors.New("not a finite number")

// finiteFloatField is floatField that also rejects NaN and infinities, which
// strconv accepts as "nan", "inf" and "infinity".
func finiteFloatField(lineNo int, name, text string) (float64, error) {
	v, err := floatField(lineNo, name, text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, formatErr(lineNo, name, text, errNotFinite)
	}
	return v, nil
}

// readLines splits r into lines without their terminators. CRLF endings are
// normalized.
func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}
