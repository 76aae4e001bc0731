// Package narrative writes a short plain-language summary of one session.
package narrative

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/llm"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/store"

	"go.uber.org/zap"
)

// Where a narrative came from.
const (
	SourceCache    = "cache"
	SourceRemote   = "remote"
	SourceTemplate = "template"
)

// CaretakerSentence is appended whenever something in the session warrants attention.
const CaretakerSentence = "Consider notifying your caretaker about this session."

// Variability limits: a session whose max-min span exceeds these is "variable".
const (
	PulseSpanLimit     = 30.0
	BreathingSpanLimit = 10.0
)

// ProfileSummary the profile fields that influence a narrative
type ProfileSummary struct {
	Sex        string `json:"sex"`
	Age        int    `json:"age"`
	Weight     string `json:"weight"`
	Height     string `json:"height"`
	Conditions string `json:"conditions"`
}

// SummaryOf extracts the relevant fields of p.
func SummaryOf(p models.Profile) ProfileSummary {
	return ProfileSummary{Sex: p.Sex, Age: p.Age, Weight: p.Weight, Height: p.Height, Conditions: p.Conditions}
}

// SessionStats session statistics, rounded before use. A nil block means the
// stat was not measured; a block of zeros is a measurement of zero.
type SessionStats struct {
	Pulse     *models.StatBlock `json:"pulse"`
	Breathing *models.StatBlock `json:"breathing"`
}

// StatsOf takes the stat blocks of an analytics session, keeping only those
// backed by at least one sample.
func StatsOf(a *models.AnalyticsSession) SessionStats {
	var s SessionStats
	if a.SessionInfo.DataPoints > 0 {
		p := a.Pulse
		s.Pulse = &p
	}
	if a.SessionInfo.BreathingPoints > 0 {
		b := a.Breathing
		s.Breathing = &b
	}
	return s
}

func (s SessionStats) rounded() SessionStats {
	r := func(b *models.StatBlock) *models.StatBlock {
		if b == nil {
			return nil
		}
		return &models.StatBlock{
			Average: aggregator.RoundHalfUp(b.Average),
			Max:     aggregator.RoundHalfUp(b.Max),
			Min:     aggregator.RoundHalfUp(b.Min),
		}
	}
	return SessionStats{Pulse: r(s.Pulse), Breathing: r(s.Breathing)}
}

// Narrative generated session summary
type Narrative struct {
	Text            string   `json:"text"`
	Source          string   `json:"source"`
	OutOfRange      []string `json:"outOfRange"`
	Variable        bool     `json:"variable"`
	NotifyCaretaker bool     `json:"notifyCaretaker"`
}

// CacheEntry stored under session-narrative:{userId}:{hash}
type CacheEntry struct {
	UserID    string         `json:"userId"`
	CacheKey  string         `json:"cacheKey"`
	Profile   ProfileSummary `json:"profile"`
	Stats     SessionStats   `json:"stats"`
	Analysis  Narrative      `json:"analysis"`
	Timestamp string         `json:"timestamp"`
}

// Options 叙述生成配置
type Options struct {
	Model string
	// MaxRetries additional attempts after a rate-limited call
	MaxRetries int
	// MaxRetryWait longest server-suggested delay we are willing to honour
	MaxRetryWait time.Duration
	// Breaker optional; shared with the classifier so one bad key disables both
	Breaker *classifier.Breaker
}

// Generator produces session narratives: cache, then remote model, then template.
type Generator struct {
	kv         store.KV
	remote     llm.TextGenerator
	thresholds classifier.ThresholdTable
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewGenerator(kv store.KV, remote llm.TextGenerator, thresholds classifier.ThresholdTable, opts Options, logger *zap.Logger) *Generator {
	if thresholds == nil {
		thresholds = classifier.DefaultThresholds()
	}
	if opts.Model == "" {
		opts.Model = classifier.DefaultModels[0]
	}
	if opts.MaxRetryWait <= 0 {
		opts.MaxRetryWait = time.Minute
	}
	return &Generator{
		kv:         kv,
		remote:     remote,
		thresholds: thresholds,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CacheKey hash of the profile summary and the rounded stats
func CacheKey(p ProfileSummary, s SessionStats) string {
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
	b, _ := json.Marshal(struct {
		P ProfileSummary `json:"p"`
		S SessionStats   `json:"s"`
	}{p, s.rounded()})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func storageKey(userID, hash string) string {
	return "session-narrative:" + userID + ":" + hash
}

// Generate returns a narrative for the session. It never fails because of the
// remote model; the template is used instead.
func (g *Generator) Generate(ctx context.Context, userID string, p ProfileSummary, stats SessionStats) (Narrative, error) {
	stats = stats.rounded()
	hash := CacheKey(p, stats)
	useCache := userID != "" && g.kv != nil

	if useCache {
		var entry CacheEntry
		err := store.GetJSON(ctx, g.kv, storageKey(userID, hash), &entry)
		if err == nil {
			n := entry.Analysis
			n.Source = SourceCache
			return n, nil
		}
		if !errors.Is(err, store.ErrMiss) {
			g.logger.Warn("Narrative cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	assessment := g.assess(p, stats)

	n, err := g.generateRemote(ctx, p, stats)
	if err != nil {
		if ctx.Err() != nil {
			return Narrative{}, ctx.Err()
		}
		g.logger.Info("Using template narrative", zap.String("user_id", userID), zap.Error(err))
		n = Narrative{Text: g.template(stats, assessment), Source: SourceTemplate}
	}
	n.OutOfRange = assessment.outOfRange
	n.Variable = assessment.variable
	n.NotifyCaretaker = assessment.notify()

	if useCache {
		entry := CacheEntry{
			UserID:    userID,
			CacheKey:  hash,
			Profile:   p,
			Stats:     stats,
			Analysis:  n,
			Timestamp: g.now().UTC().Format(time.RFC3339),
		}
		if err := store.SetJSON(ctx, g.kv, storageKey(userID, hash), entry, 0); err != nil {
			g.logger.Warn("Narrative cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return n, nil
}

var errNoRemote = errors.New("no remote generator available")

func (g *Generator) generateRemote(ctx context.Context, p ProfileSummary, stats SessionStats) (Narrative, error) {
	if g.remote == nil || (g.opts.Breaker != nil && !g.opts.Breaker.Allow()) {
		return Narrative{}, errNoRemote
	}
	prompt := buildPrompt(p, stats)

	for attempt := 0; ; attempt++ {
		text, err := g.remote.GenerateText(ctx, g.opts.Model, prompt, llm.GenerateOptions{
			Temperature:     0.4,
			MaxOutputTokens: 256,
			DisableSafety:   true,
		})
		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				return Narrative{}, errors.New("empty narrative")
			}
			return Narrative{Text: text, Source: SourceRemote}, nil
		}

		if llm.IsFatal(err) {
			if g.opts.Breaker != nil {
				g.opts.Breaker.Trip(err.Error())
			}
			return Narrative{}, err
		}
		if !llm.IsRateLimited(err) || attempt >= g.opts.MaxRetries {
			return Narrative{}, err
		}

		wait, ok := llm.RetryDelay(err)
		if !ok {
			wait = time.Second
		}
		if wait > g.opts.MaxRetryWait {
			return Narrative{}, fmt.Errorf("retry delay %s exceeds limit: %w", wait, err)
		}
		g.logger.Info("Narrative rate limited, retrying",
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
		)
		if err := g.sleep(ctx, wait); err != nil {
			return Narrative{}, err
		}
	}
}

func buildPrompt(p ProfileSummary, s SessionStats) string {
	conditions := p.Conditions
	if strings.TrimSpace(conditions) == "" {
		conditions = "none"
	}
	return fmt.Sprintf(`You are summarizing a home vital-sign monitoring session for the patient.
Profile: %s, %d years old, weight %s, height %s, conditions: %s.
Pulse: %s.
Breathing: %s.
Write two or three short, calm sentences describing the session in plain language. Do not give a diagnosis.`,
		p.Sex, p.Age, p.Weight, p.Height, conditions,
		promptStat(s.Pulse, "bpm"),
		promptStat(s.Breathing, "breaths/min"),
	)
}

func promptStat(b *models.StatBlock, unit string) string {
	if b == nil {
		return "not recorded"
	}
	return fmt.Sprintf("average %s %s, min %s, max %s", num(b.Average), unit, num(b.Min), num(b.Max))
}

func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
