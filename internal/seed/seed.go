// Package seed 开发环境造数：固定测试账号 + gofakeit 生成的用户、帖子、回复和点赞。
// 全部经由服务层写入，所以对任意 db.driver 都成立。
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/service"
)

const (
	TestEmail    = "test@example.com"
	TestPassword = "test123"
	TestName     = "Test User"
)

var plantWords = []string{
	"monstera", "pothos", "fern", "succulent", "orchid", "basil", "tomato", "rose",
	"cactus", "lavender", "ficus", "snakeplant",
}

type Options struct {
	Users         int
	Posts         int
	MaxReplies    int
	Seed          int64 // 0 表示随机
	FakerPassword string
}

type Result struct {
	TestUserID string
	Users      int
	Posts      int
	Replies    int
	Likes      int
}

type Seeder struct {
	users     *service.UserService
	community *service.CommunityService
	log       *zap.Logger
}

func New(users *service.UserService, community *service.CommunityService, l *zap.Logger) *Seeder {
	if l == nil {
		l = zap.NewNop()
	}
	return &Seeder{users: users, community: community, log: l.Named("seed")}
}

// EnsureTestUser 已存在则登录取回 id
func (s *Seeder) EnsureTestUser(ctx context.Context) (id string, created bool, err error) {
	res, err := s.users.Signup(ctx, service.SignupInput{Name: TestName, Email: TestEmail, Password: TestPassword})
	if err == nil {
		return res.UserID, true, nil
	}
	if domain.KindOf(err) != domain.KindValidation || !strings.Contains(err.Error(), "already exists") {
		return "", false, err
	}
	res, err = s.users.Login(ctx, TestEmail, TestPassword)
	if err != nil {
		return "", false, fmt.Errorf("test user exists but login failed: %w", err)
	}
	return res.UserID, false, nil
}

func (s *Seeder) Run(ctx context.Context, o Options) (*Result, error) {
	if o.FakerPassword == "" {
		o.FakerPassword = "password123"
	}
	f := gofakeit.New(o.Seed)

	testID, created, err := s.EnsureTestUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("test user: %w", err)
	}
	s.log.Info("test user ready", zap.String("user_id", testID), zap.Bool("created", created))

	out := &Result{TestUserID: testID}
	ids := []string{testID}
	for i := 0; i < o.Users; i++ {
		// 序号前缀避免 faker 撞出重复邮箱
		email := fmt.Sprintf("%d.%s", i, strings.ToLower(f.Email()))
		res, err := s.users.Signup(ctx, service.SignupInput{
			Name:     f.Name(),
			Username: strings.ToLower(f.Username()),
			Email:    email,
			Password: o.FakerPassword,
		})
		if err != nil {
			return out, fmt.Errorf("user %d: %w", i, err)
		}
		ids = append(ids, res.UserID)
		out.Users++
	}

	for i := 0; i < o.Posts; i++ {
		content := fmt.Sprintf("%s #%s", f.Sentence(f.IntRange(6, 16)), f.RandomString(plantWords))
		p, err := s.community.CreatePost(ctx, service.CreatePostInput{
			AuthorID: f.RandomString(ids),
			Content:  content,
		})
		if err != nil {
			return out, fmt.Errorf("post %d: %w", i, err)
		}
		out.Posts++

		for r := f.IntRange(0, max(o.MaxReplies, 0)); r > 0; r-- {
			if _, err := s.community.AddReply(ctx, p.ID, f.RandomString(ids), f.Sentence(f.IntRange(3, 10))); err != nil {
				return out, fmt.Errorf("reply on %s: %w", p.ID, err)
			}
			out.Replies++
		}

		// 每个用户以 1/3 概率点赞
		for _, uid := range ids {
			if f.IntRange(0, 2) != 0 {
				continue
			}
			if _, err := s.community.TogglePostLike(ctx, p.ID, uid); err != nil {
				return out, fmt.Errorf("like %s: %w", p.ID, err)
			}
			out.Likes++
		}
	}
	return out, nil
}
