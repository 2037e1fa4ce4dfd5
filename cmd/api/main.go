package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plantcare-community/internal/bootstrap"
	"plantcare-community/internal/core/config"
	"plantcare-community/internal/core/logger"
	"plantcare-community/internal/core/server"
	"plantcare-community/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic("load config: " + err.Error())
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(cctx); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}()

	// 路由（用户端）
	r := router.NewAPIEngine(app.RouterOptions(), app.Registry())

	h := cfg.App.HTTP
	srv := server.BuildServer(
		server.Addr(h.Host, h.Port), r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	baseURL := server.HumanURL(h.Host, h.Port)
	log.Info("community api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+router.APIPrefix),
		zap.String("delete_policy", cfg.Community.DeletePolicy),
	)

	if err := server.Run(ctx, srv, log, "community api"); err != nil {
		log.Error("community api exited", zap.Error(err))
	}
}
