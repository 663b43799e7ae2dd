package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/dm-service/internal/config"
	"github.com/fathima-sithara/dm-service/internal/dispatch"
	"github.com/fathima-sithara/dm-service/internal/handlers"
	"github.com/fathima-sithara/dm-service/internal/kafka"
	"github.com/fathima-sithara/dm-service/internal/presence"
	"github.com/fathima-sithara/dm-service/internal/repository"
	"github.com/fathima-sithara/dm-service/internal/routes"
	"github.com/fathima-sithara/dm-service/internal/userdir"
	"github.com/fathima-sithara/dm-service/internal/utils"
	"github.com/fathima-sithara/dm-service/internal/ws"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.App.Env == "development")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	sugar := logger.Sugar()
	defer logger.Sync()

	mongoClient, err := repository.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		sugar.Fatalw("mongo connect", "err", err)
	}
	coll := mongoClient.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	store := repository.NewMongoRepository(coll)

	users, err := userdir.Open(cfg.Users.DSN)
	if err != nil {
		sugar.Fatalw("user directory open", "err", err)
	}

	var pres *presence.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pres = presence.NewStore(rdb, cfg.Redis.Prefix, cfg.PresenceTTL)
	}

	var producer *kafka.Producer
	var events dispatch.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.TopicMessageSent != "" {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageSent)
		events = producer
	}

	hub := ws.NewHub()
	dispatcher := dispatch.New(store, hub, events, sugar)
	wsSrv := ws.NewServer(hub, dispatcher, users, pres, cfg, sugar)
	chatHandler := handlers.NewChatHandler(store, sugar)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	routes.Register(app, chatHandler, wsSrv)

	errs := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.App.Port)
		sugar.Infow("starting dm service", "addr", addr)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		sugar.Fatalw("server error", "err", e)
	case s := <-sig:
		sugar.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		sugar.Warnw("fiber shutdown", "err", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if producer != nil {
		_ = producer.Close()
	}
	_ = users.Close()
	_ = mongoClient.Disconnect(shutdownCtx)
	sugar.Info("shut down")
}
