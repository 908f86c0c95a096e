package main

import (
	"auctionmart/internal/auctionrpc"
	"auctionmart/internal/bus"
	"auctionmart/internal/config"
	"auctionmart/internal/contracts"
	"auctionmart/internal/database/db_client"
	"auctionmart/internal/http/directoryhandler"
	"auctionmart/internal/http/http_server"
	"auctionmart/internal/services/directory"
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

	if err := directory.EnsureSchema(ctx, pgDb); err != nil {
		Log.Fatal("pg-schema", zap.Error(err))
	}

	// 4. Event bus
	b, err := bus.Connect(ctx, cfg.NatsURL)
	if err != nil {
		Log.Fatal("bus-connect", zap.Error(err))
	}
	defer b.Close()

	// 5. Directory service
	svc := directory.NewDirectoryService(pgDb, b)

	// 6. Consumers: finish outcomes and recorded bids feed back into the directory
	cons := directory.NewConsumers(svc)
	if _, err := b.Consume(ctx, "directory-auction-finished", contracts.SubjectAuctionFinished, cons.HandleAuctionFinished); err != nil {
		Log.Fatal("consume-auction-finished", zap.Error(err))
	}
	if _, err := b.Consume(ctx, "directory-bid-placed", contracts.SubjectBidPlaced, cons.HandleBidPlaced); err != nil {
		Log.Fatal("consume-bid-placed", zap.Error(err))
	}

	// 7. Synchronous lookup responder for the bid ledger's fallback path
	sub, err := auctionrpc.Serve(b.Conn(), svc)
	if err != nil {
		Log.Fatal("rpc-serve", zap.Error(err))
	}
	defer sub.Unsubscribe()

	// 8. HTTP server
	handler := directoryhandler.New(svc)
	httpServer := http_server.NewHttpServer(ctx, cfg.DirectoryHttpPort, func(e *gin.Engine) {
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
