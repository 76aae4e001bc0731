package classifier

import (
	"fmt"
	"os"

	"baymax-vitals/internal/models"

	"gopkg.in/yaml.v3"
)

// Range closed numeric interval
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// StatThresholds typical range for one stat; ages below ChildBelowAge use Child.
type StatThresholds struct {
	Child         Range `yaml:"child" json:"child"`
	Adult         Range `yaml:"adult" json:"adult"`
	ChildBelowAge int   `yaml:"child_below_age" json:"childBelowAge"`
}

// For returns the range that applies at age.
func (s StatThresholds) For(age int) Range {
	if age < s.ChildBelowAge {
		return s.Child
	}
	return s.Adult
}

// ThresholdTable 静态阈值表
type ThresholdTable map[models.StatName]StatThresholds

// DefaultThresholds heartbeat in bpm, respiration in breaths/min, mood on a 1-10 scale.
func DefaultThresholds() ThresholdTable {
	return ThresholdTable{
		models.StatHeartbeat: {
			Child:         Range{Min: 70, Max: 120},
			Adult:         Range{Min: 60, Max: 100},
			ChildBelowAge: 12,
		},
		models.StatRespirationRate: {
			Child:         Range{Min: 18, Max: 30},
			Adult:         Range{Min: 12, Max: 20},
			ChildBelowAge: 12,
		},
		models.StatMood: {
			Child:         Range{Min: 4, Max: 9},
			Adult:         Range{Min: 4, Max: 9},
			ChildBelowAge: 12,
		},
	}
}

// Range returns the applicable range for stat at age.
func (t ThresholdTable) Range(stat models.StatName, age int) (Range, bool) {
	th, ok := t[stat]
	if !ok {
		return Range{}, false
	}
	return th.For(age), true
}

// IsTypical applies the static table. Unknown stats return ErrUnknownStat.
func (t ThresholdTable) IsTypical(stat models.StatName, age int, value float64) (bool, error) {
	r, ok := t.Range(stat, age)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	return r.Contains(value), nil
}

// LoadThresholds reads a YAML file and overlays it on the defaults. Stats
// missing from the file keep their default ranges.
//
//	heartbeat:
//	  child: {min: 70, max: 120}
//	  adult: {min: 55, max: 100}
//	  child_below_age: 12
func LoadThresholds(path string) (ThresholdTable, error) {
	table := DefaultThresholds()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	var overrides map[string]StatThresholds
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds file: %w", err)
	}

	for name, th := range overrides {
		stat := models.StatName(name)
		if _, known := table[stat]; !known {
			return nil, fmt.Errorf("%w: %q in %s", ErrUnknownStat, name, path)
		}
		if th.Child.Min > th.Child.Max || th.Adult.Min > th.Adult.Max {
			return nil, fmt.Errorf("invalid range for %q in %s", name, path)
		}
		table[stat] = th
	}
	return table, nil
}
