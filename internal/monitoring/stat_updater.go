package monitoring

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gorgio/shortlink-be/internal/cache"
	"github.com/gorgio/shortlink-be/internal/services"
)

const (
	warmInterval = 30 * time.Second
	warmWindow   = 5 * time.Minute
	warmLimit    = 20
	warmTimeout  = 10 * time.Second
)

// StatUpdater periodically recomputes the click aggregates of recently
// active codes and pushes them into the Redis cache, so hot /api/stats
// reads rarely touch the click log. The log remains the source of truth;
// without Redis the updater is a no-op.
type StatUpdater struct {
	clickSvc *services.ClickService
	cache    *cache.Cache
	ticker   *time.Ticker
	done     chan bool
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(clickSvc *services.ClickService, c *cache.Cache) *StatUpdater {
	return &StatUpdater{
		clickSvc: clickSvc,
		cache:    c,
		done:     make(chan bool),
	}
}

// Run starts the periodic warm-up loop.
func (su *StatUpdater) Run() {
	if !su.cache.Enabled() {
		log.Info().Msg("Stat updater disabled: no Redis cache configured")
		return
	}

	log.Info().Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(warmInterval)
	defer su.ticker.Stop()

	su.warmHotCodes()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.warmHotCodes()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	if !su.cache.Enabled() {
		return
	}
	su.done <- true
}

func (su *StatUpdater) warmHotCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	codes, err := su.clickSvc.RecentCodes(ctx, time.Now().Add(-warmWindow), warmLimit)
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: failed to query recently clicked codes")
		return
	}

	for _, code := range codes {
		if err := su.clickSvc.WarmStats(ctx, code); err != nil {
			log.Error().Err(err).Str("code", code).Msg("StatUpdater: failed to warm stats")
		}
	}
}
