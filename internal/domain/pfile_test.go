package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPfile = "testdata/event.P20"

// pfileLine lays out fields at fixed offsets on a blank line of width n.
func pfileLine(n int, fields map[int]string) string {
	b := []byte(strings.Repeat(" ", n))
	for lo, s := range fields {
		copy(b[lo:], s)
	}
	return strings.TrimRight(string(b), " ")
}

func headerLine(seconds string) string {
	return pfileLine(60, map[int]string{
		0: "1", 1: "2025", 5: "01", 7: "20", 9: "16", 11: "17", 13: seconds,
		34: " 15.20", 40: " 6.4",
	})
}

func stationLine(code, minute, offset, weight, intensity, pga string) string {
	return pfileLine(84, map[int]string{
		0: code, 21: minute, 23: offset, 35: weight, 76: intensity, 78: pga,
	})
}

func TestReadPfile(t *testing.T) {
	event, err := ReadPfile(testPfile)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 20, 16, 17, 26, 350000000, time.UTC), event.OriginTime)
	assert.InDelta(t, 6.4, event.Magnitude, 1e-9)
	require.NotNil(t, event.Depth)
	assert.InDelta(t, 15.2, *event.Depth, 1e-9)

	want := map[string]StationArrival{
		// HWA appears twice; the later record wins.
		"HWA": {
			Weighting:   3,
			Intensity:   5,
			PGA:         150.0,
			ArrivalTime: time.Date(2025, 1, 20, 16, 17, 30, 500000000, time.UTC),
		},
		"NACB": {
			Weighting:   2,
			Intensity:   0,
			PGA:         35.2,
			ArrivalTime: time.Date(2025, 1, 20, 16, 17, 33, 800000000, time.UTC),
		},
		"TWKB": {
			Weighting:   0,
			Intensity:   2,
			PGA:         8.1,
			ArrivalTime: time.Date(2025, 1, 20, 16, 18, 2, 30000000, time.UTC),
		},
	}
	if diff := cmp.Diff(want, event.Stations); diff != "" {
		t.Fatalf("stations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"HWA", "NACB", "TWKB"}, event.StationCodes())
}

func TestReadPfile_Missing(t *testing.T) {
	_, err := ReadPfile("testdata/does-not-exist.P20")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pfile")
}

func TestParsePfile_SkipsWhitespaceLines(t *testing.T) {
	input := strings.Join([]string{
		headerLine(" 26.35"),
		"   ",
		stationLine("HWA", "17", " 31.25", " 1.0", "4", "120.5"),
		"\t",
		"",
		stationLine("NACB", "17", " 33.80", " 2.7", " ", " 35.2"),
	}, "\n")

	event, err := ParsePfile(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"HWA", "NACB"}, event.StationCodes())
}

func TestParsePfile_OriginMicroseconds(t *testing.T) {
	tests := []struct {
		seconds    string
		wantSecond int
		wantMicros int
	}{
		{"26.350", 26, 350000},
		{" 5.357", 5, 357000},
		{"59.999", 59, 999000},
		{"00.000", 0, 0},
		{"  7.1 ", 7, 100000},
		{"12.0000", 12, 0},
		{"3.1415", 3, 141500},
	}

	for _, tt := range tests {
		t.Run(tt.seconds, func(t *testing.T) {
			// Field is [13:19]; longer inputs are cut to six characters.
			event, err := ParsePfile(strings.NewReader(headerLine(tt.seconds) + "\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSecond, event.OriginTime.Second())
			assert.Equal(t, tt.wantMicros, event.OriginTime.Nanosecond()/1000)
			assert.Zero(t, event.OriginTime.Nanosecond()%1000)
		})
	}
}

func TestParsePfile_Intensity(t *testing.T) {
	tests := []struct {
		name    string
		char    string
		want    int
		wantErr bool
	}{
		{"blank", " ", 0, false},
		{"zero", "0", 0, false},
		{"digit", "7", 7, false},
		{"nine", "9", 9, false},
		{"letter", "X", 0, true},
		{"sign", "-", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := headerLine("26.350") + "\n" + stationLine("HWA", "17", " 31.25", " 1.0", tt.char, "120.5") + "\n"
			event, err := ParsePfile(strings.NewReader(input))
			if tt.wantErr {
				var fe *FormatError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, "intensity", fe.Field)
				assert.Equal(t, 2, fe.Line)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Stations["HWA"].Intensity)
		})
	}
}

func TestParsePfile_WeightingTruncates(t *testing.T) {
	input := headerLine("26.350") + "\n" + stationLine("ABC", "17", " 31.25", "-1.9", " ", "  1.0") + "\n"
	event, err := ParsePfile(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, -1, event.Stations["ABC"].Weighting)
}

func TestParsePfile_NoDepthVariant(t *testing.T) {
	line := pfileLine(60, map[int]string{
		1: "2025", 5: "01", 7: "20", 9: "16", 11: "17", 13: "26.350", 40: " 6.4",
	})
	event, err := ParsePfile(strings.NewReader(line + "\n"))
	require.NoError(t, err)
	assert.Nil(t, event.Depth)
	assert.Empty(t, event.Stations)
}

func TestParsePfile_FormatErrors(t *testing.T) {
	valid := stationLine("HWA", "17", " 31.25", " 1.0", "4", "120.5")

	tests := []struct {
		name      string
		input     string
		wantField string
		wantLine  int
	}{
		{"empty file", "", "header", 1},
		{"bad year", pfileLine(60, map[int]string{1: "20X5"}), "year", 1},
		{"bad seconds", strings.Replace(headerLine("26.350"), "26.350", "26.3a0", 1), "seconds", 1},
		{"missing magnitude", headerLine("26.350")[:40], "magnitude", 1},
		{"month out of range", strings.Replace(headerLine("26.350"), "202501", "202513", 1), "origin time", 1},
		{"day out of range", strings.Replace(headerLine("26.350"), "20250120", "20250230", 1), "origin time", 1},
		{"bad weighting", headerLine("26.350") + "\n" + stationLine("HWA", "17", " 31.25", " x.0", "4", "120.5"), "weighting", 2},
		{"bad pga", headerLine("26.350") + "\n" + valid + "\n" + stationLine("NACB", "17", " 31.25", " 1.0", "4", "12a.5"), "pga", 3},
		{"short station line", headerLine("26.350") + "\n" + valid[:50], "intensity", 2},
		{"arrival minute out of range", headerLine("26.350") + "\n" + stationLine("HWA", "61", " 31.25", " 1.0", "4", "120.5"), "arrival minute", 2},
		{"bad arrival seconds", headerLine("26.350") + "\n" + stationLine("HWA", "17", " 3?.25", " 1.0", "4", "120.5"), "arrival seconds", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePfile(strings.NewReader(tt.input))
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantField, fe.Field)
			assert.Equal(t, tt.wantLine, fe.Line)
			assert.Equal(t, "format", FailureReason(err))
		})
	}
}

func TestParsePfile_ArrivalUsesOriginHour(t *testing.T) {
	// Minute 59 with a 70 s offset crosses into the next hour only through
	// the offset; the minute itself is always placed in the origin hour.
	input := headerLine("26.350") + "\n" + stationLine("EDGE", "59", " 70.00", " 1.0", " ", "  1.0") + "\n"
	event, err := ParsePfile(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 20, 17, 0, 10, 0, time.UTC), event.Stations["EDGE"].ArrivalTime)
}

func TestColumn(t *testing.T) {
	assert.Equal(t, "bcd", column("abcdef", 1, 4))
	assert.Equal(t, "ef", column("abcdef", 4, 10))
	assert.Empty(t, column("abc", 5, 8))
}

func TestFormatError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := formatErr(3, "pga", "x", inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, `line 3: invalid pga "x": boom`, err.Error())
}
