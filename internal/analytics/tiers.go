package analytics

import (
	"ecomcli/pkg/contracts/domain"
)

// Thresholds collects every configurable tier boundary. Zero values are
// replaced by defaults in Normalize so a partially specified config keeps
// the documented boundaries.
type Thresholds struct {
	ShippingFastMaxDays     float64 `yaml:"shipping_fast_max_days" json:"shipping_fast_max_days"`
	ShippingModerateMaxDays float64 `yaml:"shipping_moderate_max_days" json:"shipping_moderate_max_days"`

	ReviewExcellentMin float64 `yaml:"review_excellent_min" json:"review_excellent_min"`
	ReviewGoodMin      float64 `yaml:"review_good_min" json:"review_good_min"`

	RelativeHighMultiplier float64 `yaml:"relative_high_multiplier" json:"relative_high_multiplier"`

	MonetaryHighMin   float64 `yaml:"monetary_high_min" json:"monetary_high_min"`
	MonetaryMediumMin float64 `yaml:"monetary_medium_min" json:"monetary_medium_min"`

	FrequencyHighMin   int `yaml:"frequency_high_min" json:"frequency_high_min"`
	FrequencyMediumMin int `yaml:"frequency_medium_min" json:"frequency_medium_min"`

	RecencyHighMaxDays   int `yaml:"recency_high_max_days" json:"recency_high_max_days"`
	RecencyMediumMaxDays int `yaml:"recency_medium_max_days" json:"recency_medium_max_days"`

	SlowShippingDays float64 `yaml:"slow_shipping_days" json:"slow_shipping_days"`
}

// DefaultThresholds returns the documented tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ShippingFastMaxDays:     5,
		ShippingModerateMaxDays: 10,
		ReviewExcellentMin:      4.5,
		ReviewGoodMin:           3.5,
		RelativeHighMultiplier:  1.5,
		MonetaryHighMin:         1000,
		MonetaryMediumMin:       500,
		FrequencyHighMin:        20,
		FrequencyMediumMin:      10,
		RecencyHighMaxDays:      30,
		RecencyMediumMaxDays:    90,
		SlowShippingDays:        10,
	}
}

// Normalize fills unset boundaries with defaults.
func (t *Thresholds) Normalize() {
	def := DefaultThresholds()
	if t.ShippingFastMaxDays <= 0 {
		t.ShippingFastMaxDays = def.ShippingFastMaxDays
	}
	if t.ShippingModerateMaxDays <= 0 {
		t.ShippingModerateMaxDays = def.ShippingModerateMaxDays
	}
	if t.ReviewExcellentMin <= 0 {
		t.ReviewExcellentMin = def.ReviewExcellentMin
	}
	if t.ReviewGoodMin <= 0 {
		t.ReviewGoodMin = def.ReviewGoodMin
	}
	if t.RelativeHighMultiplier <= 0 {
		t.RelativeHighMultiplier = def.RelativeHighMultiplier
	}
	if t.MonetaryHighMin <= 0 {
		t.MonetaryHighMin = def.MonetaryHighMin
	}
	if t.MonetaryMediumMin <= 0 {
		t.MonetaryMediumMin = def.MonetaryMediumMin
	}
	if t.FrequencyHighMin <= 0 {
		t.FrequencyHighMin = def.FrequencyHighMin
	}
	if t.FrequencyMediumMin <= 0 {
		t.FrequencyMediumMin = def.FrequencyMediumMin
	}
	if t.RecencyHighMaxDays <= 0 {
		t.RecencyHighMaxDays = def.RecencyHighMaxDays
	}
	if t.RecencyMediumMaxDays <= 0 {
		t.RecencyMediumMaxDays = def.RecencyMediumMaxDays
	}
	if t.SlowShippingDays <= 0 {
		t.SlowShippingDays = def.SlowShippingDays
	}
}

// ClassifyShipping maps an average shipping duration to a speed tier.
func (t Thresholds) ClassifyShipping(days float64) domain.TierLabel {
	switch {
	case days <= t.ShippingFastMaxDays:
		return domain.TierFast
	case days <= t.ShippingModerateMaxDays:
		return domain.TierModerate
	default:
		return domain.TierSlow
	}
}

// ClassifyReview maps an average review score to a quality tier.
func (t Thresholds) ClassifyReview(score float64) domain.TierLabel {
	switch {
	case score >= t.ReviewExcellentMin:
		return domain.TierExcellent
	case score >= t.ReviewGoodMin:
		return domain.TierGood
	default:
		return domain.TierPoor
	}
}

// RelativeClassifier labels values against the mean of the batch being
// classified. The boundaries are a function of the whole batch, so the
// classifier is built in a first pass over all values and only then applied
// row by row; this stage cannot stream.
type RelativeClassifier struct {
	mean       float64
	multiplier float64
}

// NewRelativeClassifier computes the batch mean (pass one). An empty batch
// yields a classifier whose boundaries sit at zero.
func NewRelativeClassifier(values []float64, highMultiplier float64) *RelativeClassifier {
	if highMultiplier <= 0 {
		highMultiplier = DefaultThresholds().RelativeHighMultiplier
	}
	return &RelativeClassifier{mean: mean(values), multiplier: highMultiplier}
}

// BatchMean returns the mean the boundaries derive from.
func (c *RelativeClassifier) BatchMean() float64 {
	return c.mean
}

// Classify labels one value (pass two).
func (c *RelativeClassifier) Classify(value float64) domain.TierLabel {
	switch {
	case value >= c.multiplier*c.mean:
		return domain.TierHigh
	case value >= c.mean:
		return domain.TierModerate
	default:
		return domain.TierLow
	}
}
