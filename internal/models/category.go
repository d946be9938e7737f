// ABOUTME: Closed enumerations for derived nutrient categories.
// ABOUTME: Defines ordered Tier labels per metric and the Yes/No/Unknown Flag.
package models

import "fmt"

// Metric names a nutrient that is bucketed into tiers.
type Metric string

const (
	MetricCalories Metric = "calories"
	MetricSugar    Metric = "sugar"
	MetricFat      Metric = "fat"
)

// AllMetrics lists every tiered metric.
var AllMetrics = []Metric{MetricCalories, MetricSugar, MetricFat}

// metricNouns maps metrics to the noun used in their tier labels.
var metricNouns = map[Metric]string{
	MetricCalories: "Calorie",
	MetricSugar:    "Sugar",
	MetricFat:      "Fat",
}

// IsValidMetric checks if a string is a known metric.
func IsValidMetric(s string) bool {
	_, ok := metricNouns[Metric(s)]
	return ok
}

// Tier is an ordinal category. The zero value is TierUnknown and sorts first.
type Tier int

const (
	TierUnknown Tier = iota
	TierLow
	TierModerate
	TierHigh
)

// UnknownLabel is stored for any category whose input was null.
const UnknownLabel = "Unknown"

// AllTiers returns the known tiers in ascending order.
var AllTiers = []Tier{TierLow, TierModerate, TierHigh}

// Rank returns the stored ordering key (0 for unknown, 1..3 otherwise).
func (t Tier) Rank() int {
	return int(t)
}

// String returns the tier name without a metric noun.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "Low"
	case TierModerate:
		return "Moderate"
	case TierHigh:
		return "High"
	default:
		return UnknownLabel
	}
}

// Label returns the display label for the tier of a metric, e.g. "High Calorie".
func (t Tier) Label(m Metric) string {
	noun, ok := metricNouns[m]
	if !ok || t == TierUnknown || t > TierHigh {
		return UnknownLabel
	}
	return t.String() + " " + noun
}

// ParseTier converts a label produced by Label back into a Tier.
func ParseTier(m Metric, label string) (Tier, error) {
	if label == UnknownLabel {
		return TierUnknown, nil
	}
	for _, t := range AllTiers {
		if t.Label(m) == label {
			return t, nil
		}
	}
	return TierUnknown, fmt.Errorf("unknown %s tier label: %q", m, label)
}

// Flag is a boolean that may be unknown.
type Flag int

const (
	FlagUnknown Flag = iota
	FlagNo
	FlagYes
)

// FlagOf converts a known boolean into a Flag.
func FlagOf(b bool) Flag {
	if b {
		return FlagYes
	}
	return FlagNo
}

// String returns "Yes", "No" or "Unknown".
func (f Flag) String() string {
	switch f {
	case FlagYes:
		return "Yes"
	case FlagNo:
		return "No"
	default:
		return UnknownLabel
	}
}

// Known reports whether the flag carries a value.
func (f Flag) Known() bool {
	return f == FlagYes || f == FlagNo
}

// ParseFlag converts "Yes", "No" or "Unknown" into a Flag.
func ParseFlag(s string) (Flag, error) {
	switch s {
	case "Yes":
		return FlagYes, nil
	case "No":
		return FlagNo, nil
	case UnknownLabel:
		return FlagUnknown, nil
	}
	return FlagUnknown, fmt.Errorf("unknown flag value: %q", s)
}
