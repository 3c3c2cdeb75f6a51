package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const probeInterval = 15 * time.Second

// probe pings the store every interval and mirrors the result into hs for
// both the overall status and the named service. It returns when ctx ends.
func probe(ctx context.Context, hs *health.Server, service string, ping func(context.Context) error, interval time.Duration) {
	last := healthpb.HealthCheckResponse_UNKNOWN
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval/2)
		defer cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err := ping(pctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			st = healthpb.HealthCheckResponse_NOT_SERVING
			log.Warn().Err(err).Msg("store ping failed")
		}
		if st != last {
			log.Info().Str("status", st.String()).Msg("health changed")
			last = st
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(service, st)
	}

	check()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}
