package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"eatzone/internal/catalog"
	"eatzone/internal/clock"
	"eatzone/internal/config"
	httpctrl "eatzone/internal/controllers/http"
	"eatzone/internal/domain"
	"eatzone/internal/infra"
	"eatzone/internal/infra/events"
	"eatzone/internal/infra/proof"
	"eatzone/internal/infra/rabbitmq"
	"eatzone/internal/logger"
	"eatzone/internal/services"
	"eatzone/internal/session"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	_, flush, err := logger.Init(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer flush()

	if err := run(cfg); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth, err := services.NewAuthService(services.DemoUsers)
	if err != nil {
		return err
	}

	catalogService := services.NewCatalogService(catalog.Default(), cfg.Redis.CacheTTL)
	if redisClient := connectRedis(ctx, cfg.Redis); redisClient != nil {
		defer redisClient.Close()
		catalogService.SetRedisClient(redisClient)
	}

	bus := events.New()
	for _, topic := range []string{domain.EventOrderCreated, domain.EventOrderStatusChanged} {
		if _, err := bus.Subscribe(topic, func(data any) {
			zap.L().Info("order event", zap.String("event", topic), zap.Any("data", data))
		}); err != nil {
			return err
		}
	}

	publishers := infra.Fanout{bus}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			zap.L().Warn("rabbitmq unavailable, order events stay in-process", zap.Error(err))
		} else {
			defer publisher.Close()
			publishers = append(publishers, publisher)
		}
	}

	node, err := snowflake.NewNode(cfg.Orders.NodeID)
	if err != nil {
		return err
	}

	manager, err := session.NewManager(session.Deps{
		Catalog:   catalogService,
		Auth:      auth,
		Clock:     clock.Real{},
		Rand:      services.DefaultRand(),
		IDs:       node,
		Publisher: publishers,
		Bus:       bus,
		Checkout: session.CheckoutConfig{
			Ticks:        cfg.Checkout.Ticks,
			TickInterval: cfg.Checkout.TickInterval,
		},
		Negotiation: services.NegotiationConfig{
			ReplyDelay:      cfg.Negotiation.ReplyDelay,
			TimeoutDelay:    cfg.Negotiation.TimeoutDelay,
			AutoReplyDelay:  cfg.Negotiation.AutoReplyDelay,
			AffirmativeRate: cfg.Negotiation.AffirmativeRate,
			Keywords:        cfg.Negotiation.Keywords,
		},
	})
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(httpctrl.Recovery(), httpctrl.RequestLogger())
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	handler := httpctrl.NewHandler(manager, catalogService, proof.NewDataURIEncoder(cfg.Server.MaxUploadBytes))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		warmCtx, cancel := context.WithTimeout(gctx, 5*time.Second)
		defer cancel()
		if err := catalogService.WarmupCatalogCache(warmCtx); err != nil {
			zap.L().Warn("failed to warm up catalog cache", zap.Error(err))
			return nil
		}
		zap.L().Info("catalog cache warmed up")
		return nil
	})
	g.Go(func() error {
		zap.L().Info("starting eatzone", zap.String("port", cfg.Server.Port), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		zap.L().Info("shutting down")
		err := srv.Shutdown(shutdownCtx)
		manager.CloseAll()
		return err
	})
	return g.Wait()
}

// connectRedis returns nil when no address is configured or the server does
// not answer; the catalog then serves every search directly.
func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zap.L().Warn("redis unavailable, catalog cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
