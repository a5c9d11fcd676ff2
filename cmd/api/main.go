package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/api"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/config"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/database"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/domain"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/events"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/logging"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/metrics"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/repository"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/search"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/service"
	"github.com/jbirchohio/NestMapRepo-sub002/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := initSessionRepository(ctx, cfg, logger)

	client := search.NewClient(cfg.Boundary.BaseURL, cfg.Boundary.APIKey, cfg.Boundary.Timeout(), logger)
	flights := search.NewFlightService(client, logger)
	hotels := search.NewHotelService(client, logger)
	bookings := search.NewBookingClient(client)
	geocoder := search.NewGeocoder(client)

	bus := events.NewEventBus()
	if cfg.Audit.Enabled {
		audit, err := database.NewAuditStore(cfg.Audit.Path)
		if err != nil {
			return err
		}
		defer audit.Close()
		subscribeAuditEvents(ctx, bus, audit, logger)
	}

	retry := worker.RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	svc := service.NewSessionService(
		repo, flights, hotels, bookings, bus,
		retry, cfg.Search.Debounce(), cfg.Search.Timeout(), logger,
	)
	svc.EnableItineraryExport(cfg.Exports.Path)

	apiServer := api.NewHTTPServer(&cfg.API, svc, geocoder, logger)

	var metricsServer *http.Server
	if cfg.Monitoring.PrometheusEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	if metricsServer != nil {
		g.Go(func() error {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api shutdown error")
		}
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	logger.Info().Str("env", cfg.App.Environment).Msg("booking workflow engine started")
	return g.Wait()
}

func initSessionRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository()
	if !cfg.Redis.Enabled {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable at startup, failover will retry")
	}
	primary := repository.NewRedisSessionRepository(client, cfg.Session.TTL())
	return repository.NewFailoverSessionRepository(primary, memory, logger)
}

func subscribeAuditEvents(ctx context.Context, bus *events.EventBus, audit *database.AuditStore, logger *zerolog.Logger) {
	bus.Subscribe(events.EventBookingSubmitted, func(e *events.Event) error {
		var payload events.WorkflowEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			logger.Error().Err(err).Msg("bad booking event payload")
			return err
		}
		rec := &models.SubmissionRecord{
			SessionID:   payload.SessionID,
			BookingID:   payload.BookingID,
			Status:      payload.Status,
			Amount:      payload.Amount,
			Currency:    payload.Currency,
			Attempts:    payload.Attempts,
			SubmittedAt: payload.At,
		}
		if err := audit.RecordSubmission(ctx, rec); err != nil {
			logger.Error().Err(err).Str("session_id", payload.SessionID).Msg("audit write failed")
			return err
		}
		return nil
	})
}
