// Package logquery filters a user's in-memory exercise log by date range and
// entry limit. Parameters that fail validation are treated as absent, never
// as errors.
package logquery

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/exlog/internal/models"
)

var (
	// datePattern accepts YYYY, YYYY-M, YYYY-MM, YYYY-M-D, YYYY-MM-DD and
	// similar partial forms. Matching says nothing about calendar validity.
	datePattern = regexp.MustCompile(`^\d{4}-?(\d{1,2})?-?(\d{1,2})?$`)

	// limitPattern accepts a positive decimal integer with no leading zero.
	limitPattern = regexp.MustCompile(`^[1-9]+\d*$`)
)

// ValidDate reports whether s is an acceptable date parameter.
func ValidDate(s string) bool {
	return datePattern.MatchString(s)
}

// ValidLimit reports whether s is an acceptable limit parameter.
func ValidLimit(s string) bool {
	return limitPattern.MatchString(s)
}

// Parse turns a date parameter into a calendar day, reporting false when the
// value does not match the accepted pattern.
func Parse(s string) (models.Date, bool) {
	if !ValidDate(s) {
		return models.Date{}, false
	}
	return parseBound(s), true
}

// parseBound turns a pattern-matching date string into a day. Missing month
// and day components default to 1; out-of-range components normalize the way
// time.Date does.
func parseBound(s string) models.Date {
	parts := strings.Split(s, "-")
	year, _ := strconv.Atoi(parts[0])
	month, day := 1, 1
	if len(parts) > 1 && parts[1] != "" {
		month, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 && parts[2] != "" {
		day, _ = strconv.Atoi(parts[2])
	}
	return models.NewDate(year, time.Month(month), day)
}

// Filter returns the entries whose date falls within the inclusive bounds
// given by from and to, and whose index in the original append-ordered slice
// is below the limit. The limit caps how many of the earliest-appended
// entries are considered at all; it does not cap the filtered result.
// Invalid or empty parameters leave the corresponding bound open.
func Filter(entries []models.Entry, from, to, limit string) []models.Entry {
	fromBound := models.Date{}
	if ValidDate(from) {
		fromBound = parseBound(from)
	}
	toBound := models.NewDate(9999, time.December, 31)
	if ValidDate(to) {
		toBound = parseBound(to)
	}
	limitBound := math.MaxInt
	if ValidLimit(limit) {
		limitBound, _ = strconv.Atoi(limit)
	}

	filtered := []models.Entry{}
	for i, e := range entries {
		if i >= limitBound {
			break
		}
		if e.Date.Before(fromBound.Time) || e.Date.After(toBound.Time) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
