package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

// Heartbeat ticks every live controller once per interval, and evicts idle
// ones when ttl > 0, until ctx is cancelled.
func Heartbeat(ctx context.Context, st Store, interval, ttl time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			st.Each(func(c *game.Controller) { c.Tick(interval) })
			if n := st.Evict(now, ttl); n > 0 {
				log.Info().Int("evicted", n).Int("live", st.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
