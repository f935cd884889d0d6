package services

import "strings"

// industryAspects maps a business industry to the review aspects a
// submission must cover to be approved. Unknown industries fall back to a
// single generic aspect.
var industryAspects = map[string][]string{
	"restaurant": {"food quality", "service", "atmosphere", "cleanliness", "price/value"},
	"cafe":       {"food quality", "service", "atmosphere", "cleanliness", "price/value"},
	"hotel":      {"room comfort", "service", "cleanliness", "location", "price/value"},
	"retail":     {"product quality", "service", "store layout", "price/value"},
	"salon":      {"service", "atmosphere", "cleanliness", "price/value"},
}

const genericAspect = "overall experience"

// RequiredAspects returns the aspect list for the given industry.
func RequiredAspects(industry string) []string {
	if aspects, ok := industryAspects[strings.ToLower(strings.TrimSpace(industry))]; ok {
		return aspects
	}
	return []string{genericAspect}
}

// aspectKeyword returns the literal token the heuristic validator searches
// for: the first word of the aspect label.
func aspectKeyword(aspect string) string {
	fields := strings.Fields(aspect)
	if len(fields) == 0 {
		return aspect
	}
	// "price/value" style labels match on the leading token only
	first := fields[0]
	if idx := strings.IndexByte(first, '/'); idx > 0 {
		first = first[:idx]
	}
	return strings.ToLower(first)
}
