package config

import (
	"strings"
	"time"

	"baymax-vitals/common/config"

	"github.com/spf13/viper"
)

// Config is shared by every baymax binary; each one reads the sections it needs.
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	HTTP struct {
		Addr string
	}

	// Session aggregation (baymax-aggregator)
	Aggregator struct {
		// "events": consume session.completed events from a Redis Stream
		// "polling": rescan completed sessions that have no analytics yet
		TriggerMode string

		Polling struct {
			Interval  time.Duration
			BatchSize int
		}

		EventStream   string
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int64
		BlockTimeout  time.Duration
	}

	// Typical/atypical classifier
	Classifier struct {
		APIKey         string
		Models         []string
		ResponseMode   string // "strict" or "substring"
		ThresholdsFile string
		Timeout        time.Duration
	}

	Narrative struct {
		Model        string
		MaxRetries   int
		MaxRetryWait time.Duration
	}

	Notify struct {
		WebhookURL string
		Timeout    time.Duration
		RetryCount int
	}

	Ingest struct {
		ReadingsTopic string // e.g. baymax/sessions/+/readings
		StatusTopic   string // e.g. baymax/sessions/+/status
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	cfg.Database.Load(v, "DB")
	cfg.Redis.Load(v, "REDIS")
	cfg.MQTT.Load(v, "MQTT")

	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")

	cfg.Aggregator.TriggerMode = v.GetString("AGGREGATOR_TRIGGER_MODE")
	cfg.Aggregator.Polling.Interval = v.GetDuration("AGGREGATOR_POLL_INTERVAL")
	cfg.Aggregator.Polling.BatchSize = v.GetInt("AGGREGATOR_POLL_BATCH_SIZE")
	cfg.Aggregator.EventStream = v.GetString("SESSION_EVENT_STREAM")
	cfg.Aggregator.ConsumerGroup = v.GetString("SESSION_CONSUMER_GROUP")
	cfg.Aggregator.ConsumerName = v.GetString("SESSION_CONSUMER_NAME")
	cfg.Aggregator.BatchSize = v.GetInt64("SESSION_BATCH_SIZE")
	cfg.Aggregator.BlockTimeout = v.GetDuration("SESSION_BLOCK_TIMEOUT")

	cfg.Classifier.APIKey = v.GetString("GEMINI_API_KEY")
	cfg.Classifier.Models = splitList(v.GetString("GEMINI_MODELS"))
	cfg.Classifier.ResponseMode = v.GetString("CLASSIFIER_RESPONSE_MODE")
	cfg.Classifier.ThresholdsFile = v.GetString("THRESHOLDS_FILE")
	cfg.Classifier.Timeout = v.GetDuration("CLASSIFIER_TIMEOUT")

	cfg.Narrative.Model = v.GetString("NARRATIVE_MODEL")
	cfg.Narrative.MaxRetries = v.GetInt("NARRATIVE_MAX_RETRIES")
	cfg.Narrative.MaxRetryWait = v.GetDuration("NARRATIVE_MAX_RETRY_WAIT")

	cfg.Notify.WebhookURL = v.GetString("CARETAKER_WEBHOOK_URL")
	cfg.Notify.Timeout = v.GetDuration("CARETAKER_WEBHOOK_TIMEOUT")
	cfg.Notify.RetryCount = v.GetInt("CARETAKER_WEBHOOK_RETRIES")

	cfg.Ingest.ReadingsTopic = v.GetString("INGEST_READINGS_TOPIC")
	cfg.Ingest.StatusTopic = v.GetString("INGEST_STATUS_TOPIC")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	(&config.DatabaseConfig{}).SetDefaults(v, "DB")
	(&config.RedisConfig{}).SetDefaults(v, "REDIS")
	(&config.MQTTConfig{}).SetDefaults(v, "MQTT")

	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetDefault("AGGREGATOR_TRIGGER_MODE", "events")
	v.SetDefault("AGGREGATOR_POLL_INTERVAL", "60s")
	v.SetDefault("AGGREGATOR_POLL_BATCH_SIZE", 50)
	v.SetDefault("SESSION_EVENT_STREAM", "session:events")
	v.SetDefault("SESSION_CONSUMER_GROUP", "session-aggregator-group")
	v.SetDefault("SESSION_CONSUMER_NAME", "session-aggregator-1")
	v.SetDefault("SESSION_BATCH_SIZE", 10)
	v.SetDefault("SESSION_BLOCK_TIMEOUT", "5s")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODELS", "gemini-1.5-flash,gemini-1.5-pro")
	v.SetDefault("CLASSIFIER_RESPONSE_MODE", "strict")
	v.SetDefault("THRESHOLDS_FILE", "")
	v.SetDefault("CLASSIFIER_TIMEOUT", "15s")

	v.SetDefault("NARRATIVE_MODEL", "gemini-1.5-flash")
	v.SetDefault("NARRATIVE_MAX_RETRIES", 0)
	v.SetDefault("NARRATIVE_MAX_RETRY_WAIT", "60s")

	v.SetDefault("CARETAKER_WEBHOOK_URL", "")
	v.SetDefault("CARETAKER_WEBHOOK_TIMEOUT", "10s")
	v.SetDefault("CARETAKER_WEBHOOK_RETRIES", 2)

	v.SetDefault("INGEST_READINGS_TOPIC", "baymax/sessions/+/readings")
	v.SetDefault("INGEST_STATUS_TOPIC", "baymax/sessions/+/status")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
