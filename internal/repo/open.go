package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"plantcare-community/internal/core/config"
	"plantcare-community/internal/core/database"
	"plantcare-community/internal/domain"
	"plantcare-community/internal/repo/memstore"
	"plantcare-community/internal/repo/mongostore"
)

// Store 按 db.driver 选出的一组仓储
type Store struct {
	Driver      string
	Users       domain.UserRepository
	Posts       domain.PostRepository
	Communities domain.CommunityRepository
	closeFn     func(context.Context) error
}

func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}

// NewGormStore 复用已打开的 *gorm.DB（测试里直接传 sqlite 内存库）
func NewGormStore(db *gorm.DB, driver string) *Store {
	return &Store{
		Driver:      driver,
		Users:       NewUserRepo(db),
		Posts:       NewPostRepo(db),
		Communities: NewCommunityRepo(db),
		closeFn: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func NewMemoryStore() *Store {
	m := memstore.New()
	return &Store{Driver: "memory", Users: m.Users(), Posts: m.Posts(), Communities: m.Communities()}
}

func Open(ctx context.Context, c config.DB, l *zap.Logger) (*Store, error) {
	switch {
	case c.Driver == "memory":
		l.Warn("using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil

	case c.Driver == "mongo":
		client, db, err := database.NewMongo(ctx, database.MongoOpts{
			URI:         c.DSN,
			Database:    c.Database,
			MaxPoolSize: uint64(max(c.MaxOpenConns, 0)),
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		ms := mongostore.New(db)
		if c.AutoMigrate {
			if err := ms.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("mongo indexes: %w", err)
			}
		}
		return &Store{
			Driver:      c.Driver,
			Users:       ms.Users(),
			Posts:       ms.Posts(),
			Communities: ms.Communities(),
			closeFn:     client.Disconnect,
		}, nil

	case database.IsRelational(c.Driver):
		db, err := database.NewGorm(database.Opts{
			Driver:             c.Driver,
			DSN:                c.DSN,
			Username:           c.Username,
			Password:           c.Password,
			MaxOpenConns:       c.MaxOpenConns,
			MaxIdleConns:       c.MaxIdleConns,
			ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
			LogLevel:           c.LogLevel,
			Logger:             l,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", c.Driver, err)
		}
		if c.AutoMigrate {
			if err := AutoMigrate(db); err != nil {
				return nil, fmt.Errorf("automigrate: %w", err)
			}
		}
		return NewGormStore(db, c.Driver), nil
	}
	return nil, fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, c.Driver)
}
