package classifier

import (
	"context"

	"baymax-vitals/internal/models"

	"golang.org/x/sync/errgroup"
)

// Units reported alongside each stat in prompts.
const (
	UnitHeartbeat       = "bpm"
	UnitRespirationRate = "breaths/min"
	UnitMood            = "score (1-10)"
)

// RequestFor builds a classification request for one stat of a profile.
func RequestFor(p models.Profile, stat models.StatName, value float64) models.HealthCheckRequest {
	unit := ""
	switch stat {
	case models.StatHeartbeat:
		unit = UnitHeartbeat
	case models.StatRespirationRate:
		unit = UnitRespirationRate
	case models.StatMood:
		unit = UnitMood
	}
	return models.HealthCheckRequest{
		Sex:        p.Sex,
		Age:        p.Age,
		Weight:     p.Weight,
		Height:     p.Height,
		Conditions: p.Conditions,
		StatValue:  value,
		StatName:   stat,
		Unit:       unit,
	}
}

// CheckAll classifies heartbeat, respiration rate and mood concurrently.
// Results are always in that order.
func (c *Classifier) CheckAll(ctx context.Context, userID string, p models.Profile, heartRateAvg, respirationAvg, mood float64) ([]models.HealthCheckResponse, error) {
	reqs := []models.HealthCheckRequest{
		RequestFor(p, models.StatHeartbeat, heartRateAvg),
		RequestFor(p, models.StatRespirationRate, respirationAvg),
		RequestFor(p, models.StatMood, mood),
	}

	results := make([]models.HealthCheckResponse, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := c.Check(gctx, userID, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
