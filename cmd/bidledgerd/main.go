package main

import (
	"auctionmart/internal/auctionrpc"
	"auctionmart/internal/bus"
	"auctionmart/internal/config"
	"auctionmart/internal/contracts"
	"auctionmart/internal/database/db_client"
	"auctionmart/internal/http/bidhandler"
	"auctionmart/internal/http/http_server"
	"auctionmart/internal/redis/redis_client"
	"auctionmart/internal/redis/watcher/endwatcher"
	"auctionmart/internal/services/bidledger"
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

	// 3. Redis replica cache
	redisClient, err := redis_client.NewRedisClient(ctx, cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client
	pgDb, err := db_client.Open(ctx, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	if err := bidledger.EnsureBidSchema(ctx, pgDb); err != nil {
		Log.Fatal("pg-schema", zap.Error(err))
	}

	// 5. Event bus
	b, err := bus.Connect(ctx, cfg.NatsURL)
	if err != nil {
		Log.Fatal("bus-connect", zap.Error(err))
	}
	defer b.Close()

	// 6. Ledger service: redis replicas, pg bid store, directory fallback client
	replicas := bidledger.NewRedisReplicaStore(redisClient)
	bidStore := bidledger.NewPgBidStore(pgDb)
	dirClient := auctionrpc.NewClient(b.Conn())
	svc := bidledger.NewBidLedgerService(replicas, bidStore, dirClient, b)

	// 7. Consumer: auction snapshots keep the replica cache warm
	cons := bidledger.NewConsumers(replicas)
	if _, err := b.Consume(ctx, "ledger-auction-created", contracts.SubjectAuctionCreated, cons.HandleAuctionCreated); err != nil {
		Log.Fatal("consume-auction-created", zap.Error(err))
	}

	// 8. Background: key-expiry watcher triggers auction finish
	go endwatcher.Run(ctx, redisClient, svc)

	// 9. HTTP server
	handler := bidhandler.New(svc)
	httpServer := http_server.NewHttpServer(ctx, cfg.LedgerHttpPort, func(e *gin.Engine) {
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
