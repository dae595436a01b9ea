package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"storefront/internal/app"
	cartports "storefront/internal/cart/ports"
	cartstore "storefront/internal/cart/store"
	ordermetrics "storefront/internal/order/metrics"
	"storefront/internal/platform/config"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	platformredis "storefront/internal/platform/redis"
	httptransport "storefront/internal/transport/http"
	"storefront/pkg/platform/audit"
	auditpublisher "storefront/pkg/platform/audit/publisher"
	auditmemory "storefront/pkg/platform/audit/store/memory"
	auditworker "storefront/pkg/platform/audit/worker"
)

// main wires the composition root and serves the ops endpoints. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	// Cart storage: Redis when configured, process memory otherwise.
	var carts cartports.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		carts = cartstore.NewRedis(redisClient.Client, cartstore.WithTTL(cfg.Cart.TTL))
		log.Info("cart store backed by redis")
	} else {
		carts = cartstore.NewInMemory()
		log.Info("cart store backed by process memory")
	}

	// Audit trail: Kafka when brokers are configured, otherwise an
	// in-process worker draining to the memory store.
	var publisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := auditpublisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix,
			auditpublisher.WithKafkaLogger(log))
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close(context.Background())
		publisher = kafka
		log.Info("audit events published to kafka", "brokers", cfg.Kafka.Brokers)
	} else {
		outbox := make(chan audit.Event, 1024)
		publisher = auditpublisher.NewChannel(outbox, auditpublisher.WithLogger(log))
		worker := auditworker.NewWorker(auditmemory.NewInMemoryStore(), outbox)
		group.Go(func() error {
			if err := worker.Run(ctx); ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	application, err := app.New(app.Deps{
		Logger:       log,
		Publisher:    publisher,
		CartStore:    carts,
		AppMetrics:   metrics.New(),
		OrderMetrics: ordermetrics.New(),
	})
	if err != nil {
		log.Error("service wiring failed", "error", err)
		os.Exit(1)
	}
	log.Info("storefront services ready", "contexts", application.Inventory())

	router := httptransport.New(log,
		httptransport.WithDependency("redis", healthChecker(redisClient)))
	srv := httpserver.New(cfg.Server.Addr, router)

	group.Go(func() error {
		log.Info("starting storefront", "addr", cfg.Server.Addr)
		return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("storefront stopped")
}

// healthChecker keeps the nil-client case out of the router wiring: a nil
// *Client inside a non-nil interface value would still be probed.
func healthChecker(c *platformredis.Client) httptransport.HealthChecker {
	if c == nil {
		return nil
	}
	return c
}
