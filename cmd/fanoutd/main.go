package main

import (
	"auctionmart/internal/bus"
	"auctionmart/internal/config"
	"auctionmart/internal/http/http_server"
	"auctionmart/internal/ws"
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

	// 3. Event bus
	b, err := bus.Connect(ctx, cfg.NatsURL)
	if err != nil {
		Log.Fatal("bus-connect", zap.Error(err))
	}
	defer b.Close()

	// 4. WebSockets hub + bus fan-out
	hub := ws.NewHub()
	if err := ws.Attach(ctx, b, hub); err != nil {
		Log.Fatal("ws-attach", zap.Error(err))
	}

	// 5. WS server over HTTP
	wsSrv := ws.NewWsServer(hub)
	httpServer := http_server.NewHttpServer(ctx, cfg.FanoutHttpPort, func(e *gin.Engine) {
		e.GET("/ws", wsSrv.Handle)
	})
	go func() {
		<-ctx.Done()
		httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
