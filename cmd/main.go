package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/config"
	idgrpc "github.com/weiawesome/wes-io-live/snowflake-service/internal/grpc"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/handler"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/service"
	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
	pkglog "github.com/weiawesome/wes-io-live/snowflake-service/pkg/log"
)

const serviceName = "snowflake-service"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: serviceName,
	})
	logger := pkglog.L()

	logger.Info().Msg("starting " + serviceName)

	// Initialize Snowflake generator
	core, encoding, err := newSnowflake(cfg.Snowflake)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create snowflake generator")
	}
	logger.Info().
		Int64(pkglog.FieldMachineID, cfg.Snowflake.MachineID).
		Int64(pkglog.FieldEpoch, cfg.Snowflake.Epoch).
		Str("clock_regression", cfg.Snowflake.ClockRegression).
		Str("encoding", string(encoding)).
		Msg("snowflake generator initialized")

	uuidGen, err := idgen.NewUUID(cfg.UUID.Version)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create uuid generator")
	}

	nanoidGen, err := idgen.NewNanoID(cfg.NanoID.Size, cfg.NanoID.Alphabet)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create nanoid generator")
	}

	cuid2Gen, err := idgen.NewCUID2(cfg.CUID2.Length)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cuid2 generator")
	}

	registry := idgen.NewRegistry()
	registry.Register(idgen.KindSnowflake, idgen.NewSnowflake(core, encoding))
	registry.Register(idgen.KindUUID, uuidGen)
	registry.Register(idgen.KindULID, idgen.NewULID())
	registry.Register(idgen.KindKSUID, idgen.NewKSUID())
	registry.Register(idgen.KindNanoID, nanoidGen)
	registry.Register(idgen.KindCUID2, cuid2Gen)

	// Metrics
	var (
		m              *metrics.Registry
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(promReg)
		metrics.ObserveSnowflake(promReg, core)
		metricsHandler = promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})
	}

	idService := service.NewIDService(registry, core, cfg.Batch.MaxCount, m)

	// Start gRPC server
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	grpcServer, err := idgrpc.StartGRPCServer(grpcAddr, idService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start grpc server")
	}

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.NewHandler(idService), handler.RouterOptions{
		Logger:      logger,
		Metrics:     metricsHandler,
		MetricsPath: cfg.Metrics.Path,
	})
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", httpAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down " + serviceName)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg(serviceName + " stopped")
}

// newSnowflake builds the core generator and its string encoding from config.
func newSnowflake(cfg config.SnowflakeConfig) (*snowflake.Generator, snowflake.Encoding, error) {
	policy, err := snowflake.ParseRegressionPolicy(cfg.ClockRegression)
	if err != nil {
		return nil, "", err
	}
	encoding, err := snowflake.ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, "", err
	}
	core, err := snowflake.New(cfg.MachineID, cfg.Epoch, snowflake.WithRegressionPolicy(policy))
	if err != nil {
		return nil, "", err
	}
	return core, encoding, nil
}
