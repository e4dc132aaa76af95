package itinerary

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"koatrip-agent/internal/domain"
)

// dayRangeRe matches "8 al 11 de Enero", "8 a 11 Enero", "8-11 de Enero".
var dayRangeRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:al|a|-)\s*(\d{1,2})\s*(?:de\s+)?(\w+)`)

// dayPairRe is the bare day pair used for the inclusive text duration.
var dayPairRe = regexp.MustCompile(`(\d{1,2})\s*(?:al|a|-)\s*(\d{1,2})`)

// ParseDateRange splits free text like "8 al 11 de Enero" into start and
// end; both ends inherit the month token. Text that does not match lands
// whole in Start with an empty End.
func ParseDateRange(dateRange string) domain.TripDates {
	if m := dayRangeRe.FindStringSubmatch(dateRange); m != nil {
		return domain.TripDates{
			Start: m[1] + " " + m[3],
			End:   m[2] + " " + m[3],
		}
	}
	return domain.TripDates{Start: dateRange}
}

var isoDateLayouts = []string{"2006-01-02", time.RFC3339}

// DurationFromDates computes "N days" as the ceiling of the calendar delta
// between two ISO date bounds. Returns "" when either bound is absent or
// unparseable.
func DurationFromDates(dates domain.TripDates) string {
	start, okStart := parseISODate(dates.Start)
	end, okEnd := parseISODate(dates.End)
	if !okStart || !okEnd {
		return ""
	}
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	return formatDays(days)
}

// DurationFromText counts inclusive days from a "{start} al {end}" day
// range, so "8 al 11 de Enero" is 4 days. Returns "" when no day pair is
// present.
func DurationFromText(dateRange string) string {
	m := dayPairRe.FindStringSubmatch(dateRange)
	if m == nil {
		return ""
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return formatDays(end - start + 1)
}

func formatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func parseISODate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
