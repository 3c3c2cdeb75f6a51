package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/ahinestrog/smartkart/Backend/src/api"
	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/auth"
	"github.com/ahinestrog/smartkart/Backend/src/platform/config"
	"github.com/ahinestrog/smartkart/Backend/src/platform/events"
	"github.com/ahinestrog/smartkart/Backend/src/platform/logx"
)

func main() {
	cfg := config.Load()
	logx.Setup(logx.Options{Service: cfg.ServiceName, Env: cfg.ServiceEnv, Level: cfg.LogLevel, Format: cfg.LogFormat})
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
	log.Info().Msg("bye")
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.ResolveSecrets(ctx); err != nil {
		return err
	}
	log.Info().
		Str("http", cfg.HTTPAddr).
		Str("grpc", cfg.GRPCAddr).
		Str("store", cfg.StoreDriver).
		Str("auth", cfg.AuthMode).
		Bool("events", cfg.RabbitURL != "").
		Msg("starting storefront")

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
		defer cancel()
		if err := st.close(cctx); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	rabbit, err := events.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		return err
	}
	defer rabbit.Close()

	catalogSvc := catalog.NewService(st.products, rabbit)
	cartSvc := cart.NewService(st.carts, st.products, rabbit)

	if cfg.SeedOnStart {
		n, err := catalogSvc.Seed(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("products", n).Msg("seeded catalog")
		}
	}

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Options{
			Catalog:        catalogSvc,
			Cart:           cartSvc,
			Verifier:       verifier,
			Health:         st.ping,
			CORSOrigins:    cfg.CORSOrigins,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	grpcSrv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)
	reflection.Register(grpcSrv)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC health listening")
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		probe(gctx, hs, cfg.ServiceName, st.ping, probeInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Warn().Msg("shutting down...")
		hs.Shutdown()

		sctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
		defer cancel()
		err := httpSrv.Shutdown(sctx)
		grpcSrv.GracefulStop()
		return err
	})
	return g.Wait()
}

func newVerifier(ctx context.Context, cfg config.Config) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case "firebase":
		return auth.NewFirebaseVerifier(ctx, cfg.FirestoreProjID, cfg.GCPCredentials)
	case "jwt", "":
		if cfg.JWTSecret == "" {
			log.Warn().Msg("JWT_SECRET is empty; every cart request will be rejected")
			cfg.JWTSecret = uuid.NewString()
		}
		return auth.NewJWTVerifier(cfg.JWTSecret, 0)
	}
	return nil, errors.New("unknown AUTH_MODE " + cfg.AuthMode)
}
