package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	mqttcommon "baymax-vitals/common/mqtt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	simUser     string
	simReadings int
	simInterval time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Publish a complete sensor session over MQTT",
	Long: `Acts as the sensor client: marks a new session active, publishes
readings, then marks it completed so the ingest service emits a
session.completed event.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mqttCfg := cfg.MQTT
		mqttCfg.ClientID = mqttCfg.ClientID + "-sim-" + uuid.New().String()[:8]
		client, err := mqttcommon.NewClient(&mqttCfg, logger)
		if err != nil {
			return err
		}
		defer client.Disconnect()

		sessionID := uuid.New().String()
		readingsTopic := topicFor(cfg.Ingest.ReadingsTopic, sessionID)
		statusTopic := topicFor(cfg.Ingest.StatusTopic, sessionID)

		publish := func(topic string, v any) error {
			payload, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return client.Publish(topic, mqttCfg.QoS, false, payload)
		}

		start := time.Now().UTC()
		if err := publish(statusTopic, map[string]string{
			"status": "active", "startTime": start.Format(time.RFC3339), "userId": simUser,
		}); err != nil {
			return err
		}

		for i := 0; i < simReadings; i++ {
			reading := map[string]any{
				"key":       fmt.Sprintf("r-%03d", i),
				"pulse":     60 + rand.IntN(30),
				"breathing": 12 + rand.IntN(8),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}
			if err := publish(readingsTopic, reading); err != nil {
				return err
			}
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(simInterval):
			}
		}

		if err := publish(statusTopic, map[string]string{
			"status":    "completed",
			"startTime": start.Format(time.RFC3339),
			"endTime":   time.Now().UTC().Format(time.RFC3339),
			"userId":    simUser,
		}); err != nil {
			return err
		}

		logger.Info("Simulated session published",
			zap.String("session_id", sessionID),
			zap.Int("readings", simReadings),
		)
		fmt.Fprintln(cmd.OutOrStdout(), sessionID)
		return nil
	},
}

// topicFor fills the single-level wildcard of a subscription topic.
func topicFor(pattern, sessionID string) string {
	return strings.Replace(pattern, "+", sessionID, 1)
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simUser, "user", "demo-user", "user id recorded on the session")
	f.IntVar(&simReadings, "readings", 10, "number of readings to publish")
	f.DurationVar(&simInterval, "interval", 200*time.Millisecond, "delay between readings")
}
