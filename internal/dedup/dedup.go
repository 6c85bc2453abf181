// Package dedup selects exactly one representative record per grouping key
// using strict, total tie-break orders. For a fixed input multiset the
// surviving record is always the same, regardless of input order.
package dedup

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"ecomcli/pkg/contracts/domain"
)

// roundCoord rounds a coordinate to six decimal places, matching the
// precision geolocation rows are keyed on.
func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Geolocations collapses raw geolocation rows to one row per zip prefix.
// Latitude and longitude are averaged across all rows sharing the prefix
// and rounded to six decimals; the surviving city/state come from the row
// that sorts first by (city, state) ascending. The alphabetical winner is
// arbitrary, not a business rule, but it is total so the output is stable
// under input reordering.
func Geolocations(ctx context.Context, logger *slog.Logger, rows []domain.Geolocation) []domain.Geolocation {
	if logger == nil {
		logger = slog.Default()
	}

	type accum struct {
		sumLat, sumLng float64
		count          int
		survivor       domain.Geolocation
		hasSurvivor    bool
	}

	groups := make(map[int64]*accum)
	for _, row := range rows {
		acc, ok := groups[row.ZipPrefix]
		if !ok {
			acc = &accum{}
			groups[row.ZipPrefix] = acc
		}
		acc.sumLat += row.Latitude
		acc.sumLng += row.Longitude
		acc.count++
		if !acc.hasSurvivor || lessGeo(row, acc.survivor) {
			acc.survivor = row
			acc.hasSurvivor = true
		}
	}

	out := make([]domain.Geolocation, 0, len(groups))
	for zip, acc := range groups {
		g := acc.survivor
		g.ZipPrefix = zip
		g.Latitude = roundCoord(acc.sumLat / float64(acc.count))
		g.Longitude = roundCoord(acc.sumLng / float64(acc.count))
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ZipPrefix < out[j].ZipPrefix
	})

	logger.InfoContext(ctx, "geolocation deduplication completed",
		slog.Int("input_rows", len(rows)),
		slog.Int("surviving_rows", len(out)),
	)

	return out
}

// lessGeo orders geolocation rows by (city, state) ascending. Rows that
// compare equal are identical in every surviving field.
func lessGeo(a, b domain.Geolocation) bool {
	if a.City != b.City {
		return a.City < b.City
	}
	return a.State < b.State
}

// Reviews collapses duplicate review submissions, keeping one row per
// review id: the submission with the latest answer timestamp wins. Ties on
// the answer timestamp fall through to a content-based total order so the
// survivor is independent of input order.
func Reviews(ctx context.Context, logger *slog.Logger, rows []domain.Review) []domain.Review {
	if logger == nil {
		logger = slog.Default()
	}

	byID := make(map[string]domain.Review)
	for _, row := range rows {
		current, ok := byID[row.ReviewID]
		if !ok || reviewWins(row, current) {
			byID[row.ReviewID] = row
		}
	}

	out := make([]domain.Review, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReviewID < out[j].ReviewID
	})

	logger.InfoContext(ctx, "review deduplication completed",
		slog.Int("input_rows", len(rows)),
		slog.Int("surviving_rows", len(out)),
	)

	return out
}

// reviewWins reports whether candidate should replace current as the
// surviving row for a review id. Primary rule: latest answer timestamp
// (a missing answer loses to any present one). Remaining ties use the row
// content so a shuffled input selects the same survivor.
func reviewWins(candidate, current domain.Review) bool {
	switch {
	case candidate.AnsweredAt == nil && current.AnsweredAt == nil:
		// fall through to content ordering
	case candidate.AnsweredAt == nil:
		return false
	case current.AnsweredAt == nil:
		return true
	case !candidate.AnsweredAt.Equal(*current.AnsweredAt):
		return candidate.AnsweredAt.After(*current.AnsweredAt)
	}

	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	if candidate.OrderID != current.OrderID {
		return candidate.OrderID < current.OrderID
	}
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	if candidate.Title != current.Title {
		return candidate.Title < current.Title
	}
	return candidate.Message < current.Message
}
