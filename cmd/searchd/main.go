package main

import (
	"auctionmart/internal/bus"
	"auctionmart/internal/config"
	"auctionmart/internal/contracts"
	"auctionmart/internal/database/db_client"
	"auctionmart/internal/http/http_server"
	"auctionmart/internal/http/searchhandler"
	"auctionmart/internal/services/searchindex"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Postgres db client
	pgDb, err := db_client.Open(ctx, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	if err := searchindex.EnsureSchema(ctx, pgDb); err != nil {
		Log.Fatal("pg-schema", zap.Error(err))
	}

	// 4. Event bus
	b, err := bus.Connect(ctx, cfg.NatsURL)
	if err != nil {
		Log.Fatal("bus-connect", zap.Error(err))
	}
	defer b.Close()

	// 5. Search service + projection consumers
	svc := searchindex.NewSearchService(pgDb)
	cons := searchindex.NewConsumers(svc)
	if _, err := b.Consume(ctx, "search-auction-created", contracts.SubjectAuctionCreated, cons.HandleAuctionCreated); err != nil {
		Log.Fatal("consume-auction-created", zap.Error(err))
	}
	if _, err := b.Consume(ctx, "search-auction-finished", contracts.SubjectAuctionFinished, cons.HandleAuctionFinished); err != nil {
		Log.Fatal("consume-auction-finished", zap.Error(err))
	}
	if _, err := b.Consume(ctx, "search-auction-deleted", contracts.SubjectAuctionDeleted, cons.HandleAuctionDeleted); err != nil {
		Log.Fatal("consume-auction-deleted", zap.Error(err))
	}

	// 6. HTTP server
	handler := searchhandler.New(svc)
	httpServer := http_server.NewHttpServer(ctx, cfg.SearchHttpPort, func(e *gin.Engine) {
		handler.Register(e)
	})
	go func() {
		<-ctx.Done()
		httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
