package narrative

import (
	"fmt"
	"strings"

	"baymax-vitals/internal/models"
)

type assessment struct {
	outOfRange []string
	details    []string
	variable   bool
}

func (a assessment) notify() bool {
	return len(a.outOfRange) > 0 || a.variable
}

func (g *Generator) assess(p ProfileSummary, s SessionStats) assessment {
	var a assessment

	check := func(stat models.StatName, label, unit string, b *models.StatBlock) {
		if b == nil {
			return
		}
		r, ok := g.thresholds.Range(stat, p.Age)
		if !ok || r.Contains(b.Average) {
			return
		}
		dir := "above"
		if b.Average < r.Min {
			dir = "below"
		}
		a.outOfRange = append(a.outOfRange, string(stat))
		a.details = append(a.details, fmt.Sprintf("average %s of %s %s is %s the typical %s-%s range",
			label, num(b.Average), unit, dir, num(r.Min), num(r.Max)))
	}
	check(models.StatHeartbeat, "pulse", "bpm", s.Pulse)
	check(models.StatRespirationRate, "breathing", "breaths/min", s.Breathing)

	if s.Pulse != nil && s.Pulse.Max-s.Pulse.Min > PulseSpanLimit {
		a.variable = true
	}
	if s.Breathing != nil && s.Breathing.Max-s.Breathing.Min > BreathingSpanLimit {
		a.variable = true
	}
	return a
}

func (g *Generator) template(s SessionStats, a assessment) string {
	var b strings.Builder

	if s.Pulse != nil {
		fmt.Fprintf(&b, "Your pulse averaged %s bpm (between %s and %s).",
			num(s.Pulse.Average), num(s.Pulse.Min), num(s.Pulse.Max))
	} else {
		b.WriteString("No pulse data was recorded.")
	}
	if s.Breathing != nil {
		fmt.Fprintf(&b, " Breathing averaged %s breaths/min (between %s and %s).",
			num(s.Breathing.Average), num(s.Breathing.Min), num(s.Breathing.Max))
	} else {
		b.WriteString(" No breathing data was recorded.")
	}

	switch {
	case len(a.details) > 0:
		b.WriteString(" Note: ")
		b.WriteString(strings.Join(a.details, "; "))
		b.WriteString(".")
	case s.Pulse != nil && s.Breathing != nil:
		b.WriteString(" Both averages are within the typical range for your profile.")
	case s.Pulse != nil || s.Breathing != nil:
		b.WriteString(" The recorded average is within the typical range for your profile.")
	}
	if a.variable {
		b.WriteString(" Your readings varied noticeably during the session.")
	}
	if a.notify() {
		b.WriteString(" ")
		b.WriteString(CaretakerSentence)
	}
	return b.String()
}
