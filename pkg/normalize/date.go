package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/propverify/pkg/constants"
)

var (
	// dayFirstPattern is read as DD-MM-YYYY even when both parts are <= 12.
	dayFirstPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)

	// yearFirstPattern also accepts a trailing HH:MM time part, as stored by document databases.
	yearFirstPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})(?:$|[T ]\d{1,2}:\d{2})`)

	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

	hasLetter = regexp.MustCompile(`[A-Za-z]`)
)

// monthNameLayouts are tried in order for free-form dates such as "May 13, 2021".
// Month and weekday names are matched case-insensitively by time.Parse.
var monthNameLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2 January, 2006",
	"2-Jan-2006",
	"2 Jan, 2006",
	"Monday, January 2, 2006",
	"Mon, 2 Jan 2006",
	"Mon Jan 2 2006",
	"January 2, 2006 15:04:05",
}

// DateResult is the outcome of parsing a date-like value. OK is false when
// the input was missing or could not be parsed.
type DateResult struct {
	Value string
	OK    bool
}

// String returns the canonical date, or NoData for a failed parse.
func (r DateResult) String() string {
	if !r.OK {
		return NoData
	}
	return r.Value
}

// NormalizeDate converts v to YYYY-MM-DD, or NoData when v is nil, "N/A",
// or not a recognizable date.
func NormalizeDate(v any) string {
	return ParseDate(v).String()
}

// ParseDate is the tagged form of NormalizeDate.
func ParseDate(v any) DateResult {
	switch x := v.(type) {
	case time.Time:
		return fromTime(x)
	case *time.Time:
		if x == nil {
			return DateResult{}
		}
		return fromTime(*x)
	case string:
		return parseDateString(x)
	default:
		return DateResult{}
	}
}

func fromTime(t time.Time) DateResult {
	if t.IsZero() {
		return DateResult{}
	}
	return DateResult{Value: t.Format(constants.DateLayout), OK: true}
}

func parseDateString(raw string) DateResult {
	// NFKC folds full-width digits and non-breaking spaces from form input.
	s := strings.TrimSpace(norm.NFKC.String(raw))
	if s == "" || strings.EqualFold(s, NoData) {
		return DateResult{}
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		return fromParts(m[3], m[2], m[1])
	}

	if m := yearFirstPattern.FindStringSubmatch(s); m != nil {
		return fromParts(m[1], m[2], m[3])
	}

	if !hasLetter.MatchString(s) {
		return DateResult{}
	}

	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range monthNameLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t)
		}
	}

	return DateResult{}
}

// fromParts builds a date and rejects values that time.Date would roll over, like 31-02.
func fromParts(year, month, day string) DateResult {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return DateResult{}
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return DateResult{}
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return DateResult{}
	}
	return fromTime(t)
}
