package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DateValue is a calendar date with optional month/day precision.
// Present marks an open-ended range end.
type DateValue struct {
	Year    int  `json:"year,omitempty"`
	Month   int  `json:"month,omitempty"`
	Day     int  `json:"day,omitempty"`
	Present bool `json:"present,omitempty"`
}

func (d DateValue) IsZero() bool {
	return d.Year == 0 && !d.Present
}

// MonthPart renders the month as two digits, "" when unknown.
func (d DateValue) MonthPart() string {
	if d.Month == 0 {
		return ""
	}
	return fmt.Sprintf("%02d", d.Month)
}

func (d DateValue) DayPart() string {
	if d.Day == 0 {
		return ""
	}
	return fmt.Sprintf("%02d", d.Day)
}

func (d DateValue) YearPart() string {
	if d.Year == 0 {
		return ""
	}
	return strconv.Itoa(d.Year)
}

// ISO renders the value in the layout used by native date (YYYY-MM-DD) and
// month (YYYY-MM) inputs.
func (d DateValue) ISO() string {
	switch {
	case d.Year == 0:
		return ""
	case d.Month == 0:
		return d.YearPart()
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

func (d DateValue) String() string {
	if d.Present {
		return "present"
	}
	return d.ISO()
}

// WithDefaultMonth fills a missing month.
func (d DateValue) WithDefaultMonth(month int) DateValue {
	if d.Month == 0 && d.Year != 0 {
		d.Month = month
	}
	return d
}

type DateRange struct {
	Start DateValue `json:"start"`
	End   DateValue `json:"end"`
}

func (r DateRange) Current() bool {
	return r.End.Present
}

var (
	rangeSeparator = regexp.MustCompile(`(?i)\s*[\x{2012}-\x{2015}]\s*|\s+-\s+|\s+to\s+`)
	numericDate    = regexp.MustCompile(`^(\d{1,4})\s*[/.\-]\s*(\d{1,4})$`)
	yearOnly       = regexp.MustCompile(`^\d{4}$`)
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseDuration parses strings like "Jan 2020 – Present", "03/2019 - 12/2021"
// or "2018 to 2020". A single date yields a range without an end.
func ParseDuration(s string) (DateRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateRange{}, fmt.Errorf("empty duration")
	}

	parts := rangeSeparator.Split(s, 2)
	if len(parts) == 1 && strings.Count(s, "-") == 1 {
		if _, err := ParseDate(s); err != nil {
			parts = strings.SplitN(s, "-", 2)
		}
	}

	start, err := ParseDate(parts[0])
	if err != nil {
		return DateRange{}, fmt.Errorf("duration %q start: %w", s, err)
	}
	if start.Present {
		return DateRange{}, fmt.Errorf("duration %q starts at present", s)
	}

	r := DateRange{Start: start}
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		end, err := ParseDate(parts[1])
		if err != nil {
			return DateRange{}, fmt.Errorf("duration %q end: %w", s, err)
		}
		r.End = end
	}
	return r, nil
}

// ParseDate parses a single month/year style date. Day precision is kept
// only for full numeric dates.
func ParseDate(s string) (DateValue, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ","))
	lower := strings.ToLower(s)

	switch lower {
	case "":
		return DateValue{}, fmt.Errorf("empty date")
	case "present", "current", "now", "today", "ongoing":
		return DateValue{Present: true}, nil
	}

	if yearOnly.MatchString(s) {
		y, _ := strconv.Atoi(s)
		return DateValue{Year: y}, nil
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		switch {
		case len(m[1]) == 4 && b >= 1 && b <= 12:
			return DateValue{Year: a, Month: b}, nil
		case len(m[2]) == 4 && a >= 1 && a <= 12:
			return DateValue{Year: b, Month: a}, nil
		}
		return DateValue{}, fmt.Errorf("unrecognized date %q", s)
	}

	if iso, ok := parseISODay(s); ok {
		return iso, nil
	}

	fields := strings.Fields(strings.NewReplacer(".", " ", ",", " ").Replace(lower))
	if len(fields) >= 2 {
		month, okMonth := monthFromName(fields[0])
		yearStr := fields[len(fields)-1]
		if okMonth && yearOnly.MatchString(yearStr) {
			y, _ := strconv.Atoi(yearStr)
			return DateValue{Year: y, Month: month}, nil
		}
	}

	return DateValue{}, fmt.Errorf("unrecognized date %q", s)
}

func parseISODay(s string) (DateValue, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return DateValue{}, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return DateValue{}, false
	}
	return DateValue{Year: y, Month: m, Day: d}, true
}

func monthFromName(s string) (int, bool) {
	if len(s) < 3 {
		return 0, false
	}
	m, ok := monthNames[s[:3]]
	return m, ok
}
