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
	if cfg.DB.Driver == "memory" {
		// 内存库不跨进程共享，管理端看到的是一份空数据
		log.Warn("admin started with memory store; it does not see the api process data")
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Close(cctx)
	}()

	// 路由（后台端）
	r := router.NewAdminEngine(app.RouterOptions(), app.Registry())

	a := cfg.App.Admin
	srv := server.BuildServer(server.Addr(a.Host, a.Port), r, 5*time.Second, 10*time.Second, 60*time.Second)

	baseURL := server.HumanURL(a.Host, a.Port)
	log.Info("admin api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+router.AdminPrefix),
	)

	if err := server.Run(ctx, srv, log, "admin api"); err != nil {
		log.Error("admin api exited", zap.Error(err))
	}
}
