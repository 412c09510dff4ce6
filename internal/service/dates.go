package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Swiss gazette publications write auction dates in whichever style the
// issuing office prefers, so the parser is deliberately permissive. German
// and French month names plus their common abbreviations; Italian offices
// use the numeric form.
var monthNames = map[string]time.Month{
	"januar": time.January, "jan": time.January,
	"februar": time.February, "feb": time.February,
	"märz": time.March, "maerz": time.March, "mär": time.March,
	"april": time.April, "apr": time.April,
	"mai": time.May,
	"juni": time.June, "jun": time.June,
	"juli": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October,
	"november": time.November, "nov": time.November,
	"dezember": time.December, "dez": time.December,

	"janvier": time.January,
	"février": time.February, "fevrier": time.February, "fév": time.February,
	"mars":  time.March,
	"avril": time.April, "avr": time.April,
	"juin":    time.June,
	"juillet": time.July, "juil": time.July,
	"août": time.August, "aout": time.August,
	"septembre": time.September,
	"octobre":   time.October, "oct": time.October,
	"novembre": time.November,
	"décembre": time.December, "decembre": time.December, "déc": time.December,
}

var (
	numericDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	// "15. März 2024", "15 mars 2024", "1. Sept. 2024"
	monthNameDateRe = regexp.MustCompile(`(\d{1,2})\.?\s+([\p{L}]+)\.?\s+(\d{4})`)
)

// ParseAuctionDate attempts the known Swiss date spellings in order:
// numeric DD.MM.YYYY, "DD. MonthName YYYY", then generic ISO forms. A false
// return means unparseable; the caller substitutes the current time rather
// than failing the publication.
func ParseAuctionDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := makeDate(year, time.Month(month), day); ok {
			return t, true
		}
	}

	if m := monthNameDateRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			if t, ok := makeDate(year, month, day); ok {
				return t, true
			}
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (32.01 becomes 01.02); reject that.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// mergeTime folds an HH:MM auction time into the parsed date when present.
func mergeTime(date time.Time, clock string) time.Time {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return date
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location())
}
