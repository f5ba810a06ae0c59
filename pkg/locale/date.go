package locale

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the Brazilian day-first rendering used by statements
	DateLayout = "02/01/2006"

	// spreadsheet serial dates outside this range are rejected
	minSerialDate = 40000
	maxSerialDate = 60000
)

var (
	dayFirstPattern      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})(?:[ T].*)?$`)
	dayFirstShortPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2})$`)

	// serial day 0 of spreadsheet dates
	serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	fallbackLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"02.01.2006",
		"2 Jan 2006",
		"Jan 2, 2006",
	}
)

// ParseDate converts a statement cell into a calendar date (UTC midnight).
// It accepts DD/MM/YYYY, DD-MM-YYYY, DD/MM/YY, spreadsheet serial numbers and
// a handful of ISO-like layouts. The boolean is false when nothing matched;
// callers must reject the row rather than substitute a date.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(v), true
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case decimal.Decimal:
		return fromSerial(v.InexactFloat64())
	case string:
		return parseDateString(v)
	case nil:
		return time.Time{}, false
	}

	return time.Time{}, false
}

// FormatDate renders t as DD/MM/YYYY
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		return civilDate(m[3], m[2], m[1])
	}

	if m := dayFirstShortPattern.FindStringSubmatch(s); m != nil {
		return civilDate("20"+m[3], m[2], m[1])
	}

	// serial numbers exported as text
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	return time.Time{}, false
}

// civilDate builds a date and rejects values time.Date would normalize (31/02)
func civilDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}

	return t, true
}

func fromSerial(serial float64) (time.Time, bool) {
	if serial < minSerialDate || serial > maxSerialDate {
		return time.Time{}, false
	}

	// the fractional part is a time of day
	return serialEpoch.AddDate(0, 0, int(serial)), true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
