// Package coerce converts single raw string fields into typed values under
// an explicit fallback policy. Coercion never fails: malformed input
// resolves to the policy default, and every function reports whether the
// default was applied so callers can count fallbacks for the load report.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	"ecomcli/pkg/contracts/domain"
)

// timestampFormats lists the accepted raw timestamp layouts, most specific
// first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ToInt parses raw as an integer, falling back to def when the value is
// missing or malformed.
func ToInt(raw string, def int64) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Some sources serialize integral fields as decimals ("3.0").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return def, true
		}
		return int64(f), false
	}
	return v, false
}

// ToDecimal parses raw as a decimal, falling back to def when missing or
// malformed. With rejectNonPositive set, parsed values <= 0 also collapse
// to def; this intentionally folds "recorded as zero/negative" and
// "missing" into the same sentinel.
func ToDecimal(raw string, def float64, rejectNonPositive bool) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, true
	}
	if rejectNonPositive && v <= 0 {
		return def, true
	}
	return v, false
}

// ToText trims raw, falling back to def when empty. With upper set the
// result is upper-cased (city/state normalization).
func ToText(raw string, def string, upper bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	if upper {
		raw = strings.ToUpper(raw)
	}
	return raw, false
}

// ToTime parses raw as a timestamp, falling back to def (normally
// domain.SentinelDate) when missing or unparseable.
func ToTime(raw string, def time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, false
		}
	}
	return def, true
}

// ToTimeOptional parses raw as an optional timestamp. Missing or
// unparseable values stay nil rather than falling back to the sentinel.
func ToTimeOptional(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return &t
		}
	}
	return nil
}

// Defaults bundles the standard sentinel policy so call sites read as
// coerce.ToInt(raw, coerce.Defaults.Int).
var Defaults = struct {
	Int     int64
	Decimal float64
	Text    string
	Date    time.Time
}{
	Int:     domain.SentinelInt,
	Decimal: domain.SentinelDecimal,
	Text:    domain.SentinelText,
	Date:    domain.SentinelDate,
}
