package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/commons"
	"barista/internal/config"
	"barista/internal/infrastructure/logger"
	"barista/internal/infrastructure/mysql"
	redisinfra "barista/internal/infrastructure/redis"
	"barista/internal/ledger"
	"barista/internal/order"
	"barista/internal/printer"
	"barista/internal/server"
	"barista/internal/store"
	"barista/internal/store/memstore"
	"barista/internal/store/mysqlstore"
	"barista/internal/table"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	var st store.Store
	switch cfg.Store.Driver {
	case "memory":
		st = memstore.New()
		zapLogger.Info("using in-memory store")
	default:
		db, err := mysql.NewConnection(cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		st = mysqlstore.New(db)
		zapLogger.Info("database connected")
	}

	eventBus := bus.New(zapLogger)

	var bridge *bus.RedisBridge
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		defer client.Close()
		bridge = bus.NewRedisBridge(client, eventBus, zapLogger)
		bridge.Start(context.Background())
		zapLogger.Info("redis event bridge started", zap.String("addr", cfg.Redis.Addr))
	}

	policy := printer.NewRandomFaultPolicy(cfg.Printer.OfflineRate, cfg.Printer.FailureRate, time.Now().UnixNano())
	dispatcher := printer.NewDispatcher(printer.Config{
		BaseDelay:       cfg.Printer.BaseDelay,
		AttemptDelay:    cfg.Printer.AttemptDelay,
		BackoffUnit:     cfg.Printer.BackoffUnit,
		OfflineCooldown: cfg.Printer.OfflineCooldown,
		JobTimeout:      cfg.Printer.JobTimeout,
		MaxRetries:      cfg.Printer.MaxRetries,
	}, policy, eventBus, zapLogger)
	dispatcher.Start(context.Background())

	ledgerSvc, ledgerCtrl := ledger.NewModule(st, eventBus, zapLogger)
	orderCtrl := order.NewModule(st, ledgerSvc, dispatcher, eventBus, zapLogger)
	tableCtrl := table.NewModule(st, eventBus, zapLogger)
	printerCtrl := printer.NewModule(dispatcher, zapLogger)

	router := server.NewRouter(server.Controllers{
		Orders:  orderCtrl,
		Tables:  tableCtrl,
		Ledger:  ledgerCtrl,
		Printer: printerCtrl,
		Events:  server.NewEventsHandler(eventBus, zapLogger),
	}, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	dispatcher.Stop()
	if bridge != nil {
		bridge.Stop()
	}

	zapLogger.Info("server stopped gracefully")
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return commons.LoadConfig(path)
	}
	return config.Load()
}
