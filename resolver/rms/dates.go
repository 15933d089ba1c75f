package rms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DateRange is a normalized begin/end pair. End is PresentSentinel and
// IsCurrent true for ongoing ranges.
type DateRange struct {
	Start     string
	End       string
	IsCurrent bool
}

// monthNames maps abbreviated and any-cased month tokens to the
// canonical full name.
var monthNames = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "sept": "September", "oct": "October",
	"nov": "November", "dec": "December",
	"january": "January", "february": "February", "march": "March",
	"april": "April", "june": "June", "july": "July", "august": "August",
	"september": "September", "october": "October", "november": "November",
	"december": "December",
}

const sepPattern = `\s*(?:-|–|—|to|through)\s*`

var (
	fullMonth = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`
	abbrMonth = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?`

	// Range patterns, tried in this order
	fullMonthRangeRe = regexp.MustCompile(`(?i)(` + fullMonth + `\s+\d{4})` + sepPattern + `(` + fullMonth + `\s+\d{4}|Present)`)
	slashRangeRe     = regexp.MustCompile(`(\d{1,2}/\d{4})` + sepPattern + `(\d{1,2}/\d{4}|(?i:Present))`)
	yearRangeRe      = regexp.MustCompile(`\b(\d{4})` + sepPattern + `(\d{4}|(?i:Present))\b`)
	abbrRangeRe      = regexp.MustCompile(`(?i)(` + abbrMonth + `\s+\d{4})` + sepPattern + `(` + abbrMonth + `\s+\d{4}|Present)`)

	// Single-date fallbacks
	fullMonthSingleRe = regexp.MustCompile(`(?i)` + fullMonth + `\s+\d{4}`)
	abbrSingleRe      = regexp.MustCompile(`(?i)` + abbrMonth + `\s+\d{4}`)
	slashSingleRe     = regexp.MustCompile(`\b\d{1,2}/\d{4}\b`)
	yearSingleRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	fullMonthDateRe = regexp.MustCompile(`(?i)^(` + fullMonth + `)\s+(\d{4})$`)
	slashDateRe     = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	yearDateRe      = regexp.MustCompile(`^\d{4}$`)
)

// ExtractDateRange finds the first date range in text, best effort.
// Range patterns are tried in fixed order, then single dates used as
// both start and end. Returns nil when no date is found.
func ExtractDateRange(text string) *DateRange {
	for _, re := range []*regexp.Regexp{fullMonthRangeRe, slashRangeRe, yearRangeRe, abbrRangeRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start := NormalizeDate(m[1])
		end := NormalizeDate(m[2])
		return &DateRange{
			Start:     start,
			End:       end,
			IsCurrent: end == PresentSentinel,
		}
	}

	for _, re := range []*regexp.Regexp{fullMonthSingleRe, abbrSingleRe, slashSingleRe, yearSingleRe} {
		if m := re.FindString(text); m != "" {
			d := NormalizeDate(m)
			return &DateRange{Start: d, End: d}
		}
	}

	return nil
}

// NormalizeDate canonicalizes a single date token: abbreviated month
// names become full names, "present" any-cased becomes the sentinel,
// everything else is trimmed and passed through.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, PresentSentinel) {
		return PresentSentinel
	}
	parts := strings.Fields(s)
	if len(parts) == 2 {
		key := strings.ToLower(strings.TrimSuffix(parts[0], "."))
		if full, ok := monthNames[key]; ok {
			return full + " " + parts[1]
		}
	}
	return s
}

// ClassifyFormat maps a date string to one of the wire formats
// {"YYYY", "MMMM YYYY", "MM/YYYY"}. Sentinels pass through unchanged;
// anything unrecognized yields the sentinel.
func ClassifyFormat(date string) string {
	date = strings.TrimSpace(date)
	switch {
	case date == "" || date == Sentinel:
		return Sentinel
	case strings.EqualFold(date, PresentSentinel):
		return PresentSentinel
	case yearDateRe.MatchString(date):
		return "YYYY"
	case fullMonthDateRe.MatchString(date):
		return "MMMM YYYY"
	case slashDateRe.MatchString(date):
		return "MM/YYYY"
	}
	return Sentinel
}

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5,
	"june": 6, "july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
}

// Timestamp derives an ISO day stamp for sortable storage: first of the
// year for YYYY, first of the month for "MMMM YYYY". Every other form,
// including sentinels and MM/YYYY, yields the sentinel.
func Timestamp(date string) string {
	date = strings.TrimSpace(date)
	if yearDateRe.MatchString(date) {
		return date + "-01-01"
	}
	if m := fullMonthDateRe.FindStringSubmatch(date); m != nil {
		month := monthNumbers[strings.ToLower(m[1])]
		if month == 0 {
			return Sentinel
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			return Sentinel
		}
		return fmt.Sprintf("%04d-%02d-01", year, month)
	}
	return Sentinel
}
