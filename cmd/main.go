package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"whispergo/backend/internal/api/handler"
	"whispergo/backend/internal/chatcore"
	"whispergo/backend/internal/config"
)

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "err", err)
	}

	cfg := config.Load()
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting whispergo backend",
		"addr", cfg.Server.Addr,
		"poll", cfg.Chat.CleanupPollFrequency,
		"idle_outside", cfg.Chat.MaxIdleOutside,
		"idle_inside", cfg.Chat.MaxIdleInside)

	core := chatcore.NewService(cfg, logger.With("component", "chatcore"))
	core.StartReaper()

	h := handler.NewHandler(core, logger.With("component", "http"))

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID())

	r.GET("/", h.Index)
	r.POST("/", h.Send)
	r.GET("/messages", h.Messages)
	r.GET("/exit", h.Exit)
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/dump", h.Dump)
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	core.Stop()
}
