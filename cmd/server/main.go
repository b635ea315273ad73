package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"landshare/internal/access"
	accesshandler "landshare/internal/access/handler"
	"landshare/internal/attestation"
	attestationhandler "landshare/internal/attestation/handler"
	"landshare/internal/audit"
	"landshare/internal/dividend"
	dividendhandler "landshare/internal/dividend/handler"
	"landshare/internal/ledger"
	ledgerhandler "landshare/internal/ledger/handler"
	ledgermetrics "landshare/internal/ledger/metrics"
	"landshare/internal/market"
	markethandler "landshare/internal/market/handler"
	marketmetrics "landshare/internal/market/metrics"
	"landshare/internal/platform/config"
	"landshare/internal/platform/httpserver"
	"landshare/internal/platform/logger"
	"landshare/internal/platform/postgres"
	"landshare/internal/platform/redis"
	"landshare/internal/portfolio"
	portfoliohandler "landshare/internal/portfolio/handler"
	"landshare/internal/property"
	propertyhandler "landshare/internal/property/handler"
	transport "landshare/internal/transport/http"
	"landshare/pkg/platform/middleware/auth"
)

// main wires stores, services and the HTTP surface. Business logic lives in
// the internal service packages; everything here is assembly.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		if err := pool.EnsureSchema(ctx); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
	}

	cache, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}

	// Audit pipeline: every event goes through the channel to the local
	// store; Kafka is an additional backend when seeds are configured.
	var auditStore audit.Store
	if pool != nil {
		auditStore = audit.NewPostgresStore(pool)
	} else {
		auditStore = audit.NewMemoryStore()
	}
	channelPub := audit.NewChannelPublisher(1024)
	backends := []audit.Publisher{channelPub}
	var kafkaPub *audit.KafkaPublisher
	if len(cfg.KafkaSeeds) > 0 {
		kafkaPub, err = audit.NewKafkaPublisher(ctx, cfg.KafkaSeeds, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		backends = append(backends, kafkaPub)
	}
	publisher := audit.NewFanOutPublisher(backends...)
	worker := audit.NewWorker(auditStore, channelPub.Events(), log)

	var (
		accessStore      access.Store
		attestationStore attestation.Store
		propertyStore    property.Store
		ledgerStore      ledger.Store
		marketStore      market.Store
		dividendStore    dividend.Store
	)
	if pool != nil {
		accessStore = access.NewPostgresStore(pool)
		attestationStore = attestation.NewPostgresStore(pool)
		propertyStore = property.NewPostgresStore(pool)
		ledgerStore = ledger.NewPostgresStore(pool)
		marketStore = market.NewPostgresStore(pool)
		dividendStore = dividend.NewPostgresStore(pool)
	} else {
		accessStore = access.NewMemoryStore()
		attestationStore = attestation.NewMemoryStore()
		propertyStore = property.NewMemoryStore()
		ledgerStore = ledger.NewMemoryStore()
		marketStore = market.NewMemoryStore()
		dividendStore = dividend.NewMemoryStore()
	}

	viewCache := portfolio.NewCache(cache, cfg.PortfolioCacheTTL)

	accessSvc, err := access.NewService(accessStore, cfg.AdminAddress,
		access.WithLogger(log), access.WithAuditPublisher(publisher))
	if err != nil {
		fatal(log, "access service", err)
	}
	attestationSvc, err := attestation.NewService(attestationStore, accessSvc,
		attestation.WithLogger(log), attestation.WithAuditPublisher(publisher))
	if err != nil {
		fatal(log, "attestation service", err)
	}
	ledgerSvc, err := ledger.NewService(ledgerStore,
		ledger.WithLogger(log), ledger.WithAuditPublisher(publisher),
		ledger.WithMetrics(ledgermetrics.New()),
		ledger.WithViewInvalidator(viewCache))
	if err != nil {
		fatal(log, "ledger service", err)
	}
	dividendSvc, err := dividend.NewService(dividendStore, ledgerSvc,
		dividend.WithLogger(log), dividend.WithAuditPublisher(publisher),
		dividend.WithViewInvalidator(viewCache))
	if err != nil {
		fatal(log, "dividend service", err)
	}
	propertySvc, err := property.NewService(propertyStore, attestationSvc, ledgerSvc, dividendSvc,
		property.WithLogger(log), property.WithAuditPublisher(publisher))
	if err != nil {
		fatal(log, "property service", err)
	}
	marketSvc, err := market.NewService(marketStore, ledgerSvc,
		market.WithLogger(log), market.WithAuditPublisher(publisher),
		market.WithMetrics(marketmetrics.New()),
		market.WithViewInvalidator(viewCache))
	if err != nil {
		fatal(log, "market service", err)
	}
	portfolioSvc, err := portfolio.NewService(propertySvc, ledgerSvc, marketSvc, dividendSvc,
		portfolio.WithLogger(log),
		portfolio.WithCache(viewCache))
	if err != nil {
		fatal(log, "portfolio service", err)
	}

	checkers := map[string]transport.HealthChecker{}
	if pool != nil {
		checkers["postgres"] = pool
	}
	if cache != nil {
		checkers["redis"] = cache
	}

	router := transport.NewRouter(transport.Deps{
		Logger:   log,
		Verifier: auth.NewHS256Verifier(cfg.JWTSigningKey),
		Handlers: []transport.Registrar{
			accesshandler.New(accessSvc, log),
			attestationhandler.New(attestationSvc, log),
			propertyhandler.New(propertySvc, log),
			ledgerhandler.New(ledgerSvc, log),
			markethandler.New(marketSvc, log),
			dividendhandler.New(dividendSvc, log),
			portfoliohandler.New(portfolioSvc, log),
		},
		HealthCheckers: checkers,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting landshare server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if kafkaPub != nil {
			if err := kafkaPub.Close(shutdownCtx); err != nil {
				log.Warn("kafka close failed", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func fatal(log *slog.Logger, what string, err error) {
	log.Error(what+" init failed", "error", err)
	os.Exit(1)
}
