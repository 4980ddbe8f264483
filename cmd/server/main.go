// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/cache"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/config"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/database"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/game"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/server"
)

func main() {
	cfg := config.Load()
	cfg.ApplyLogLevel()

	ctx := context.Background()

	// Stats and the action log are best effort. The server still runs
	// without either backend.
	if err := database.ConnectDB(ctx); err != nil {
		logrus.Warnf("Postgres unavailable, stats disabled: %v", err)
	} else {
		defer database.Close()
	}
	if err := cache.InitRedis(ctx); err != nil {
		logrus.Warnf("Redis unavailable, action log disabled: %v", err)
	}

	registry := game.NewRegistry()
	srv := server.NewServer(registry)
	srv.BotDelay = time.Duration(cfg.BotDelayMS) * time.Millisecond

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Routes(),
	}

	go func() {
		logrus.Infof("Listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("Shutdown error: %v", err)
	}
}
