package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/idempotency"
)

// janitor removes idempotency records older than retention.
type janitor struct {
	store     idempotency.Store
	clk       clockport.Clock
	retention time.Duration
	purged    prometheus.Counter
	log       zerolog.Logger
}

func (j janitor) run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.purgeOnce(ctx)
		}
	}
}

func (j janitor) purgeOnce(ctx context.Context) int64 {
	n, err := j.store.Purge(ctx, clockport.Cutoff(j.clk, j.retention))
	if err != nil {
		j.log.Warn().Err(err).Msg("purge idempotency records")
		return 0
	}
	if n > 0 {
		j.purged.Add(float64(n))
		j.log.Debug().Int64("purged", n).Msg("purged idempotency records")
	}
	return n
}
