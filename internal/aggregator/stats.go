package aggregator

import (
	"math"

	"baymax-vitals/internal/models"
)

// RoundHalfUp rounds to the nearest integer with .5 going towards +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// ComputeStats 计算平均值（取整）、最大值、最小值；空列表返回零值
func ComputeStats(values []float64) models.StatBlock {
	if len(values) == 0 {
		return models.StatBlock{}
	}
	sum := 0.0
	lo, hi := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return models.StatBlock{
		Average: RoundHalfUp(sum / float64(len(values))),
		Max:     hi,
		Min:     lo,
	}
}

// ExtractSeries collects the numeric pulse and breathing values of every
// reading. Non-numeric values are skipped.
func ExtractSeries(readings map[string]map[string]any) (pulses, breaths []float64) {
	for _, r := range readings {
		if v, ok := numeric(r["pulse"]); ok {
			pulses = append(pulses, v)
		}
		if v, ok := numeric(r["breathing"]); ok {
			breaths = append(breaths, v)
		}
	}
	return pulses, breaths
}

// numeric accepts JSON numbers only; strings such as "72" are not coerced.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
