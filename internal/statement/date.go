package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateFormat selects how a bank writes transaction dates. Formats other than
// excel-serial only prioritize; unmatched string values still go through
// auto-detection, matching how real exports mix conventions within one file.
type DateFormat string

const (
	DateAuto        DateFormat = "auto"
	DateDMYSlash    DateFormat = "dd/mm/yy"
	DateDMYDash     DateFormat = "dd-mm-yy"
	DateExcelSerial DateFormat = "excel-serial"
)

var (
	reSerial   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	reDMYSlash = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	reDMYDash  = regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2,4}$`)
	reDMonY    = regexp.MustCompile(`^\d{1,2}-[A-Za-z]{3}-\d{2,4}$`)
)

// excelEpoch is 1899-12-30: the spreadsheet serial origin shifted two days to
// absorb the 1900 leap-year bug.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// fallbackLayouts are tried last, mirroring a generic date parse.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
}

// ParseDate converts a raw cell value into a calendar date. The zero
// civil.Date is the sentinel for unparseable input; callers must check
// IsValid and skip the row rather than expect an error.
func ParseDate(raw string, format DateFormat) civil.Date {
	value := strings.TrimSpace(raw)
	if value == "" {
		return civil.Date{}
	}

	// Numeric cells are spreadsheet date serials regardless of format; the
	// raw grid keeps them unformatted.
	if reSerial.MatchString(value) {
		return fromSerial(value)
	}
	if format == DateExcelSerial {
		return civil.Date{}
	}

	if reDMYSlash.MatchString(value) {
		return dayMonthYear(strings.Split(value, "/"))
	}
	if reDMYDash.MatchString(value) {
		return dayMonthYear(strings.Split(value, "-"))
	}

	// 01-Jan-2025 or 01-Jan-25
	if reDMonY.MatchString(value) {
		for _, layout := range []string{"2-Jan-2006", "2-Jan-06"} {
			if t, err := time.Parse(layout, value); err == nil {
				return civil.DateOf(t)
			}
		}
		return civil.Date{}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return civil.DateOf(t)
		}
	}

	return civil.Date{}
}

// dayMonthYear builds a date from D, M, Y parts; two-digit years expand with
// a 20xx prefix.
func dayMonthYear(parts []string) civil.Date {
	if len(parts) != 3 {
		return civil.Date{}
	}
	year := parts[2]
	if len(year) == 2 {
		year = "20" + year
	}

	d, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	y, _ := strconv.Atoi(year)

	date := civil.Date{Year: y, Month: time.Month(m), Day: d}
	if !date.IsValid() {
		return civil.Date{}
	}
	return date
}

// fromSerial converts a spreadsheet date serial into a calendar date using
// epoch + serial × 86400 seconds.
func fromSerial(value string) civil.Date {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial <= 0 {
		return civil.Date{}
	}
	t := excelEpoch.Add(time.Duration(serial * 86400 * float64(time.Second)))
	return civil.DateOf(t)
}
