// Package trend buckets a user's daily readings into weekly and monthly views.
package trend

import (
	"fmt"
	"time"

	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/models"
)

// View 视图类型
type View string

const (
	ViewWeekly  View = "weekly"
	ViewMonthly View = "monthly"
)

// ParseView defaults to weekly for an empty string.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewWeekly:
		return ViewWeekly, nil
	case ViewMonthly:
		return ViewMonthly, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Days covered by a view, ending today.
func (v View) Days() int {
	if v == ViewMonthly {
		return 28
	}
	return 7
}

// Metric names used in reports.
const (
	MetricHeartRate = "heartRate"
	MetricBreathing = "breathing"
	MetricMood      = "mood"
)

var metricStat = map[string]models.StatName{
	MetricHeartRate: models.StatHeartbeat,
	MetricBreathing: models.StatRespirationRate,
	MetricMood:      models.StatMood,
}

// Bucket statuses
const (
	StatusTypical  = "typical"
	StatusAtypical = "atypical"
	StatusNoData   = "no_data"
)

// Point one bucket of one metric
type Point struct {
	Label  string  `json:"time"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
	Status string  `json:"status"`
}

// Report 趋势报告
type Report struct {
	View     View               `json:"view"`
	From     time.Time          `json:"from"`
	To       time.Time          `json:"to"`
	Series   map[string][]Point `json:"series"`
	Atypical []string           `json:"atypical"`
}

// Since first instant covered by the view when evaluated at now.
func Since(v View, now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, -(v.Days() - 1))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsAtypical reports whether current lies outside [min, max].
func IsAtypical(current, min, max float64) bool {
	return current < min || current > max
}

// Build computes the report. Weekly buckets are single days labelled by
// weekday; monthly buckets are four 7-day weeks, oldest first.
func Build(v View, readings []*models.HealthReading, now time.Time, age int, table classifier.ThresholdTable) Report {
	if table == nil {
		table = classifier.DefaultThresholds()
	}
	from := Since(v, now)
	labels, bucketOf := layout(v, from)

	type acc struct{ values [][]float64 }
	accs := map[string]*acc{}
	for m := range metricStat {
		accs[m] = &acc{values: make([][]float64, len(labels))}
	}

	for _, r := range readings {
		ts := r.Timestamp.In(now.Location())
		if ts.Before(from) || ts.After(now) {
			continue
		}
		i := bucketOf(ts)
		if i < 0 || i >= len(labels) {
			continue
		}
		accs[MetricHeartRate].values[i] = append(accs[MetricHeartRate].values[i], r.HeartRate)
		accs[MetricBreathing].values[i] = append(accs[MetricBreathing].values[i], r.Breathing)
		if r.Mood != nil {
			accs[MetricMood].values[i] = append(accs[MetricMood].values[i], *r.Mood)
		}
	}

	rep := Report{View: v, From: from, To: now, Series: make(map[string][]Point, len(accs)), Atypical: []string{}}
	for _, m := range []string{MetricHeartRate, MetricBreathing, MetricMood} {
		rng, _ := table.Range(metricStat[m], age)
		points := make([]Point, len(labels))
		flagged := false
		for i, label := range labels {
			vals := accs[m].values[i]
			p := Point{Label: label, Count: len(vals), Status: StatusNoData}
			if len(vals) > 0 {
				st := aggregator.ComputeStats(vals)
				p.Value, p.Min, p.Max = st.Average, st.Min, st.Max
				p.Status = StatusTypical
				if IsAtypical(st.Average, rng.Min, rng.Max) {
					p.Status = StatusAtypical
					flagged = true
				}
			}
			points[i] = p
		}
		rep.Series[m] = points
		if flagged {
			rep.Atypical = append(rep.Atypical, m)
		}
	}
	return rep
}

func layout(v View, from time.Time) ([]string, func(time.Time) int) {
	dayIndex := func(t time.Time) int {
		// calendar days, immune to DST-length days
		y1, m1, d1 := from.Date()
		y2, m2, d2 := t.Date()
		a := time.Date(y1, m1, d1, 12, 0, 0, 0, time.UTC)
		b := time.Date(y2, m2, d2, 12, 0, 0, 0, time.UTC)
		return int(b.Sub(a).Hours() / 24)
	}

	if v == ViewMonthly {
		labels := []string{"Week 1", "Week 2", "Week 3", "Week 4"}
		return labels, func(t time.Time) int { return dayIndex(t) / 7 }
	}

	labels := make([]string, 7)
	for i := range labels {
		labels[i] = from.AddDate(0, 0, i).Weekday().String()[:3]
	}
	return labels, dayIndex
}
