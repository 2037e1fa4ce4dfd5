// Package bootstrap 两个进程共用的装配：配置 → 日志 → 存储 → 缓存 → 服务 → 路由模块
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plantcare-community/internal/core/auth"
	"plantcare-community/internal/core/cache"
	"plantcare-community/internal/core/config"
	"plantcare-community/internal/repo"
	"plantcare-community/internal/service"
	"plantcare-community/internal/transport/http/handler"
	"plantcare-community/internal/transport/http/router"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	Store *repo.Store
	Cache *cache.Cache // redis.addr 为空时为 nil
	JWT   *auth.JWTer

	Users     *service.UserService
	Community *service.CommunityService
	Groups    *service.GroupService
	Authors   *service.Authors
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	st, err := repo.Open(ctx, cfg.DB, l)
	if err != nil {
		return nil, err
	}
	l.Info("store ready", zap.String("driver", st.Driver))

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.Ping(pctx)
		cancel()
		if err != nil {
			// 缓存失效只影响性能，读穿逻辑会直接回源
			l.Warn("redis unreachable, continuing without warm cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	ttl := time.Duration(cfg.Redis.UserTTLSec) * time.Second
	j := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	authors := service.NewAuthors(st.Users, c, ttl, l)
	return &App{
		Cfg:       cfg,
		Log:       l,
		Store:     st,
		Cache:     c,
		JWT:       j,
		Users:     service.NewUserService(st.Users, j, c, ttl, l),
		Community: service.NewCommunityService(st.Posts, st.Communities, authors, service.CommunityOptionsFrom(cfg.Community), l),
		Groups:    service.NewGroupService(st.Communities, l),
		Authors:   authors,
	}, nil
}

// Registry 所有 HTTP 模块；API 与 Admin 两个 engine 各取所需
func (a *App) Registry() *router.Registry {
	return router.NewRegistry(
		handler.NewCommunityHandler(a.Community, a.Log),
		handler.NewUserHandler(a.Users, a.JWT, a.Log),
		handler.NewGroupHandler(a.Groups, a.Log),
		handler.NewAdminHandler(a.Users, a.Community, a.Groups, a.Log),
	)
}

func (a *App) RouterOptions() router.Options {
	return router.Options{Log: a.Log, HTTP: a.Cfg.App.HTTP, JWT: a.JWT, Authors: a.Authors}
}

func (a *App) Close(ctx context.Context) error {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if err := a.Store.Close(ctx); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
