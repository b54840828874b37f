package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/teenpatti/config"
	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/monitor"
	"github.com/wfunc/teenpatti/persistence"
	"github.com/wfunc/teenpatti/room"
	"github.com/wfunc/teenpatti/server"
	"github.com/wfunc/teenpatti/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init("info")
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	// Initialize Database
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Infof("Round recorder ready (driver=%s).", cfg.Database.Driver)

	mon := monitor.NewMonitor(cfg.Server.MetricsNamespace)
	writer := persistence.NewAsyncWriter(db, cfg.Database.Writers)
	writer.OnError = func(op string, err error) {
		mon.IncPersistenceErrors(op)
	}

	rooms := room.NewRoomManager()
	game := services.NewGameService(rooms, writer, mon)
	gameServer := server.NewGameServer(cfg.Server, game, mon)

	go func() {
		logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
		if err := gameServer.Start(); err != nil {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("HTTP shutdown: %v", err)
	}
	rooms.Close()
	if err := writer.Close(); err != nil {
		logger.Log.Warnf("Closing recorder: %v", err)
	}
}
