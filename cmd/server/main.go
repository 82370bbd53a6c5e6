package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/config"
	"github.com/mamadbah2/shopkeeper/internal/repository"
	"github.com/mamadbah2/shopkeeper/internal/repository/memory"
	"github.com/mamadbah2/shopkeeper/internal/repository/mongodb"
	"github.com/mamadbah2/shopkeeper/internal/repository/sheets"
	"github.com/mamadbah2/shopkeeper/internal/scheduler"
	"github.com/mamadbah2/shopkeeper/internal/server/handlers"
	"github.com/mamadbah2/shopkeeper/internal/server/router"
	duessvc "github.com/mamadbah2/shopkeeper/internal/service/dues"
	salessvc "github.com/mamadbah2/shopkeeper/internal/service/sales"
	statssvc "github.com/mamadbah2/shopkeeper/internal/service/stats"
	stocksvc "github.com/mamadbah2/shopkeeper/internal/service/stock"
	"github.com/mamadbah2/shopkeeper/pkg/clients/identity"
	"github.com/mamadbah2/shopkeeper/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store repository.Store
	switch cfg.Store.Driver {
	case config.DriverMemory:
		baseLogger.Warn("using in-memory store, data will not survive a restart")
		store = memory.NewStore()
	default:
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoStore
	}

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets snapshot export enabled")
	} else {
		baseLogger.Warn("sheets export not configured, snapshots stay in the document store")
	}

	identityClient := identity.NewClient(cfg.Identity)

	stockService := stocksvc.NewService(store, baseLogger.Named("svc.stock"))
	duesService := duessvc.NewService(store, baseLogger.Named("svc.dues"))
	salesProcessor := salessvc.NewProcessor(store, baseLogger.Named("svc.sales"))
	statsService := statssvc.NewService(store, exporter, baseLogger.Named("svc.stats"))

	engine := router.New(router.Handlers{
		Auth:  handlers.NewAuthHandler(identityClient, baseLogger.Named("handlers.auth")),
		Stock: handlers.NewStockHandler(stockService, baseLogger.Named("handlers.stock")),
		Sales: handlers.NewSalesHandler(salesProcessor, baseLogger.Named("handlers.sales")),
		Dues:  handlers.NewDuesHandler(duesService, baseLogger.Named("handlers.dues")),
		Stats: handlers.NewStatsHandler(statsService, baseLogger.Named("handlers.stats")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Jobs, store, stockService, salesProcessor, statsService, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
