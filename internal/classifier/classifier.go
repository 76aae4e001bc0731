package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"baymax-vitals/internal/llm"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/store"

	"go.uber.org/zap"
)

var ErrUnknownStat = errors.New("unknown stat")

// ResponseMode controls how a model reply is turned into a boolean.
type ResponseMode string

const (
	// ParseStrict accepts only "true" or "false".
	ParseStrict ResponseMode = "strict"
	// ParseSubstring treats any reply containing "true" as typical, so
	// "not true ... false" is typical. Kept for compatibility with
	// results cached by older deployments.
	ParseSubstring ResponseMode = "substring"
)

// ParseResponse returns the classification and whether text was usable.
func ParseResponse(mode ResponseMode, text string) (bool, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if mode == ParseSubstring {
		return strings.Contains(t, "true"), true
	}
	t = strings.Trim(t, " \t\r\n.,;:!?\"'`*")
	switch t {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// DefaultModels in priority order
var DefaultModels = []string{"gemini-1.5-flash", "gemini-1.5-pro"}

// Options 分类器配置
type Options struct {
	Models       []string
	ResponseMode ResponseMode
	// Timeout bounds each remote call; zero means no extra bound.
	Timeout time.Duration
}

// CacheEntry is what gets stored under CacheKey.StorageKey.
type CacheEntry struct {
	UserID    string   `json:"userId"`
	IsTypical bool     `json:"isTypical"`
	Timestamp string   `json:"timestamp"`
	CacheKey  CacheKey `json:"cacheKey"`
}

// Classifier decides whether one vital-sign value is typical for a profile:
// cached answer first, then the remote model, then the static table.
type Classifier struct {
	kv         store.KV
	generator  llm.TextGenerator
	breaker    *Breaker
	thresholds ThresholdTable
	models     []string
	mode       ResponseMode
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// New builds a Classifier. generator may be nil (static table only);
// a nil breaker gets a fresh one.
func New(
	kv store.KV,
	generator llm.TextGenerator,
	breaker *Breaker,
	thresholds ThresholdTable,
	opts Options,
	logger *zap.Logger,
) *Classifier {
	if breaker == nil {
		breaker = NewBreaker()
	}
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	modelNames := opts.Models
	if len(modelNames) == 0 {
		modelNames = DefaultModels
	}
	mode := opts.ResponseMode
	if mode == "" {
		mode = ParseStrict
	}
	if mode == ParseSubstring {
		logger.Warn("Classifier uses substring response parsing; replies containing \"true\" anywhere count as typical")
	}
	return &Classifier{
		kv:         kv,
		generator:  generator,
		breaker:    breaker,
		thresholds: thresholds,
		models:     modelNames,
		mode:       mode,
		timeout:    opts.Timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Breaker exposes the injected breaker.
func (c *Classifier) Breaker() *Breaker { return c.breaker }

// Thresholds static table in use
func (c *Classifier) Thresholds() ThresholdTable { return c.thresholds }

// Check classifies one stat. The cache is consulted and written only when
// userID is non-empty.
func (c *Classifier) Check(ctx context.Context, userID string, req models.HealthCheckRequest) (models.HealthCheckResponse, error) {
	if _, ok := c.thresholds[req.StatName]; !ok {
		return models.HealthCheckResponse{}, fmt.Errorf("%w: %q", ErrUnknownStat, req.StatName)
	}

	key := NewCacheKey(req)
	useCache := userID != "" && c.kv != nil

	if useCache {
		var entry CacheEntry
		err := store.GetJSON(ctx, c.kv, key.StorageKey(userID), &entry)
		switch {
		case err == nil:
			c.logger.Debug("Health check cache hit",
				zap.String("user_id", userID),
				zap.String("stat", string(req.StatName)),
				zap.Bool("is_typical", entry.IsTypical),
			)
			return models.HealthCheckResponse{IsTypical: entry.IsTypical, StatName: req.StatName, Source: models.SourceCache}, nil
		case errors.Is(err, store.ErrMiss):
		default:
			c.logger.Warn("Health check cache read failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	resp := models.HealthCheckResponse{StatName: req.StatName}
	if typical, ok := c.remote(ctx, req); ok {
		resp.IsTypical = typical
		resp.Source = models.SourceRemote
	} else {
		typical, err := c.thresholds.IsTypical(req.StatName, req.Age, req.StatValue)
		if err != nil {
			return models.HealthCheckResponse{}, err
		}
		resp.IsTypical = typical
		resp.Source = models.SourceThreshold
		c.logger.Debug("Threshold classification",
			zap.String("stat", string(req.StatName)),
			zap.Float64("value", req.StatValue),
			zap.Bool("is_typical", typical),
		)
	}

	if useCache {
		entry := CacheEntry{
			UserID:    userID,
			IsTypical: resp.IsTypical,
			Timestamp: c.now().UTC().Format(time.RFC3339),
			CacheKey:  key,
		}
		if err := store.SetJSON(ctx, c.kv, key.StorageKey(userID), entry, 0); err != nil {
			c.logger.Warn("Health check cache write failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return resp, nil
}

// remote tries each model once in order. The second return value is false
// when no model produced a usable answer.
func (c *Classifier) remote(ctx context.Context, req models.HealthCheckRequest) (bool, bool) {
	if c.generator == nil || !c.breaker.Allow() {
		return false, false
	}
	prompt := BuildPrompt(req)

	for _, model := range c.models {
		if ctx.Err() != nil || !c.breaker.Allow() {
			return false, false
		}

		text, err := c.generate(ctx, model, prompt)
		if err != nil {
			c.logger.Warn("Remote classification failed",
				zap.String("model", model),
				zap.String("stat", string(req.StatName)),
				zap.Error(err),
			)
			if llm.IsFatal(err) {
				c.breaker.Trip(err.Error())
				c.logger.Error("Remote classifier disabled", zap.Error(err))
				return false, false
			}
			continue
		}

		typical, ok := ParseResponse(c.mode, text)
		if !ok {
			c.logger.Warn("Unparseable classifier reply",
				zap.String("model", model),
				zap.String("reply", text),
			)
			continue
		}
		return typical, true
	}
	return false, false
}

func (c *Classifier) generate(ctx context.Context, model, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.generator.GenerateText(ctx, model, prompt, llm.GenerateOptions{
		Temperature:     0.1,
		MaxOutputTokens: 5,
		DisableSafety:   true,
	})
}

// BuildPrompt frames the question as statistical analysis and asks for a
// bare boolean.
func BuildPrompt(req models.HealthCheckRequest) string {
	return fmt.Sprintf(`Act as a clinical data analyzer.
User Profile: %s, %dyo, %s weight, %s height, conditions: %s.
Question: Is a %s of %s %s within the typical statistical range for this profile?
Answer only with "true" or "false".`,
		req.Sex, req.Age, req.Weight, req.Height, orNone(req.Conditions),
		req.StatName, formatValue(req.StatValue), req.Unit,
	)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func formatValue(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// CachedResults lists a user's cached classifications, newest first.
func (c *Classifier) CachedResults(ctx context.Context, userID string) ([]CacheEntry, error) {
	if c.kv == nil || userID == "" {
		return nil, nil
	}
	keys, err := c.kv.ScanKeys(ctx, "health-check:"+store.EscapePattern(userID)+":*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache: %w", err)
	}
	out := make([]CacheEntry, 0, len(keys))
	for _, k := range keys {
		var e CacheEntry
		if err := store.GetJSON(ctx, c.kv, k, &e); err != nil {
			c.logger.Debug("Skipping cache entry", zap.String("key", k), zap.Error(err))
			continue
		}
		// ids containing ':' can still share a prefix
		if e.UserID != userID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}
