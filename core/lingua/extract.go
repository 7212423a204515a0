package lingua

import (
	"regexp"
	"strconv"
	"time"
)

var (
	isoDateRe    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dottedDateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?\b`)
	slashDateRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
)

// dateKeywords lists per-locale phrases recognized by the relative-date
// fallback. Weekdays are indexed by time.Weekday (Sunday first), which is
// also their recognition precedence, followed by yesterday and tomorrow.
type dateKeywords struct {
	weekdays  [7]string
	yesterday string
	tomorrow  string
}

var keywordTables = map[string]dateKeywords{
	"en": {
		weekdays:  [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
		yesterday: "yesterday",
		tomorrow:  "tomorrow",
	},
	"ru": {
		weekdays:  [7]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"},
		yesterday: "вчера",
		tomorrow:  "завтра",
	},
}

// ExtractDate finds a calendar date mentioned in text. Literal grammars are
// tried first (ISO YYYY-MM-DD, DD.MM.YYYY, DD/MM/YYYY, with year-omitted
// short forms defaulting to the current year); when no single literal date
// emerges, locale keywords for weekdays and yesterday/tomorrow are tried via
// stem matching.
func ExtractDate(st Stemmer, locale, text string) (time.Time, bool) {
	return ExtractDateAt(st, locale, text, time.Now())
}

// ExtractDateAt is ExtractDate with an explicit reference time.
func ExtractDateAt(st Stemmer, locale, text string, now time.Time) (time.Time, bool) {
	if d, ok := literalDate(text, now); ok {
		return d, true
	}
	return keywordDate(st, locale, text, now)
}

// literalDate collects candidates from every literal grammar. Exactly one
// distinct date must emerge; when the grammars disagree the literal pass is
// abandoned rather than guessed.
func literalDate(text string, now time.Time) (time.Time, bool) {
	var candidates []time.Time

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(m[1], m[2], m[3], now); ok {
			candidates = append(candidates, d)
		}
	}
	if m := dottedDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(m[3], m[2], m[1], now); ok {
			candidates = append(candidates, d)
		}
	}
	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(m[3], m[2], m[1], now); ok {
			candidates = append(candidates, d)
		}
	}

	var (
		found time.Time
		n     int
	)
	for _, c := range candidates {
		if n == 0 || c.Equal(found) {
			found = c
			n = 1
			continue
		}
		return time.Time{}, false
	}
	if n != 1 {
		return time.Time{}, false
	}
	return found, true
}

func makeDate(yearStr, monthStr, dayStr string, now time.Time) (time.Time, bool) {
	year := now.Year()
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, false
		}
		// Two-digit years are shorthand for the current century.
		if y < 1000 {
			y += 2000
		}
		year = y
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	// Reject overflow like 31.02 which time.Date silently normalizes.
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

func keywordDate(st Stemmer, locale, text string, now time.Time) (time.Time, bool) {
	table, ok := keywordTables[primarySubtag(locale)]
	if !ok {
		return time.Time{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for wd, phrase := range table.weekdays {
		if phrase == "" {
			continue
		}
		if HasAll(st, locale, text, phrase) {
			return lastWeekday(today, time.Weekday(wd)), true
		}
	}
	if HasAll(st, locale, text, table.yesterday) {
		return today.AddDate(0, 0, -1), true
	}
	if HasAll(st, locale, text, table.tomorrow) {
		return today.AddDate(0, 0, 1), true
	}
	return time.Time{}, false
}

// lastWeekday returns the most recent occurrence of wd not after today.
func lastWeekday(today time.Time, wd time.Weekday) time.Time {
	diff := int(today.Weekday() - wd)
	if diff < 0 {
		diff += 7
	}
	return today.AddDate(0, 0, -diff)
}
