package ratelimit

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartSweeper runs s.Sweep on the cron spec (e.g. "@hourly"). Stop the returned
// cron on shutdown.
func StartSweeper(spec string, s Sweeper, l *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := s.Sweep(time.Now()); n > 0 {
			l.Debug("rate limit sweep", zap.Int("removed", n))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
