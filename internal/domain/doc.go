// Package domain decodes earthquake early-warning (EEW) inputs and renders the
// ranked summary table.
//
// # Pfile
//
// A Pfile is a fixed-width text record for one event. Offsets below are
// 0-based, half-open byte ranges; files are ASCII.
//
// Header (line 1):
//
//	[1:5]   year           [5:7]   month        [7:9]   day
//	[9:11]  hour           [11:13] minute       [13:19] seconds (float)
//	[34:40] depth (only in the variant that carries it)
//	[40:44] magnitude
//
// The fractional part of seconds is rounded to the nearest microsecond.
//
// Station lines (every following line; whitespace-only lines are skipped
// rather than rejected):
//
//	[0:5]   station code, trimmed; a repeated code overwrites the earlier one
//	[21:23] arrival minute
//	[23:29] arrival seconds offset (float)
//	[35:39] weighting, float text truncated to an integer
//	[76:77] intensity digit, blank means 0
//	[78:83] peak ground acceleration (float)
//
// The arrival time is the origin's date and hour with the minute replaced and
// seconds zeroed, plus the seconds offset. It is only meaningful when the
// arrival falls in the same hour as the origin.
//
// # Solution reports
//
// A .rep file is free text produced by one EEW processing run. Three things
// are extracted, each bound to its first match in the file:
//
//	Reporting time   "Reporting time 2025/01/20 16:17:41.123" anywhere in a line
//	Solution line    first line whose first token is an unsigned decimal and
//	                 which has at least 13 tokens; tokens 6, 7, 8 and 12 are
//	                 latitude, longitude, depth and mpd
//	Station table    lines after the first "Sta"/"Station"/"#St." header that
//	                 start with a letter or digit, up to a blank line, a dash
//	                 rule or any other line
//
// Latitude, longitude, depth and mpd must be finite; "nan" or "inf" in one of
// those tokens is a FormatError.
//
// The solution-line rule is a heuristic. It does not check that the line is
// the mainshock solution, and a report with an unusual preamble can bind it
// to another line.
//
// # Summary table
//
// One header line and one line per parsed report:
//
//	Mag %5.2f | Lat %9.4f | Lon %10.4f | Depth %7.2f | Or. %4d | Ma. %4d |
//	Repfile %30s | Report_time %26s | note %10s
//
// Rows are ordered by the Report_time text, then the Repfile text. The time
// layout is fixed width and most-significant first, so text order is
// chronological order. See [RankRows] for the notes. The (final) note carries
// no trailing space, so a last row differs from legacy tables that padded it.
package domain
