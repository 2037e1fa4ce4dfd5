// Command seed 往当前 db.driver 指向的库里造演示数据
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"plantcare-community/internal/bootstrap"
	"plantcare-community/internal/core/config"
	"plantcare-community/internal/core/logger"
	"plantcare-community/internal/seed"
)

func main() {
	users := flag.Int("users", 20, "number of fake users")
	posts := flag.Int("posts", 60, "number of fake posts")
	replies := flag.Int("replies", 4, "max replies per post")
	seedN := flag.Int64("seed", 0, "faker seed, 0 for random")
	onlyTest := flag.Bool("test-user-only", false, "only ensure "+seed.TestEmail+" exists")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic("load config: " + err.Error())
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	if cfg.DB.Driver == "memory" {
		log.Warn("seeding the memory store is pointless outside tests; set db.driver")
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = app.Close(ctx) }()

	s := seed.New(app.Users, app.Community, log)
	if *onlyTest {
		id, created, err := s.EnsureTestUser(ctx)
		if err != nil {
			log.Fatal("test user", zap.Error(err))
		}
		log.Info("test user", zap.String("user_id", id), zap.Bool("created", created))
		return
	}

	res, err := s.Run(ctx, seed.Options{Users: *users, Posts: *posts, MaxReplies: *replies, Seed: *seedN})
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed done",
		zap.String("test_user", seed.TestEmail+" / "+seed.TestPassword),
		zap.Int("users", res.Users),
		zap.Int("posts", res.Posts),
		zap.Int("replies", res.Replies),
		zap.Int("likes", res.Likes),
	)
}
