package main

import (
	"encoding/json"
	"fmt"

	rediscommon "baymax-vitals/common/redis"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/service"
	"baymax-vitals/internal/store"

	"github.com/spf13/cobra"
)

var classifyReq models.HealthCheckRequest
var classifyUser string
var classifyNoCache bool

var classifyCmd = &cobra.Command{
	Use:   "classify <stat> <value>",
	Short: "Classify one vital-sign value as typical or atypical",
	Long: `Runs the classifier once: cache, remote model, then static thresholds.
<stat> is one of "heartbeat", "respiration rate" or "mood".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value float64
		if _, err := fmt.Sscanf(args[1], "%g", &value); err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		classifyReq.StatName = models.StatName(args[0])
		classifyReq.StatValue = value

		var kv store.KV = store.NewMemoryKV()
		if !classifyNoCache {
			client := rediscommon.NewRedisClient(&cfg.Redis)
			defer client.Close()
			if err := rediscommon.Ping(cmd.Context(), client); err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			kv = store.NewRedisKV(client)
		}

		cls, _, err := service.NewModelStack(cmd.Context(), cfg, kv, logger)
		if err != nil {
			return err
		}
		res, err := cls.Check(cmd.Context(), classifyUser, classifyReq)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyReq.Sex, "sex", "", "profile sex")
	f.IntVar(&classifyReq.Age, "age", 30, "profile age in years")
	f.StringVar(&classifyReq.Weight, "weight", "", "profile weight, e.g. \"70 kg\"")
	f.StringVar(&classifyReq.Height, "height", "", "profile height, e.g. \"175 cm\"")
	f.StringVar(&classifyReq.Conditions, "conditions", "", "known conditions")
	f.StringVar(&classifyReq.Unit, "unit", "", "unit of the value")
	f.StringVar(&classifyUser, "user", "", "user id; enables the result cache")
	f.BoolVar(&classifyNoCache, "no-cache", false, "use an in-process cache instead of Redis")
}
