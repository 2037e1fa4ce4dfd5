package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"plantcare-community/internal/core/auth"
	"plantcare-community/internal/core/cache"
	"plantcare-community/internal/domain"
	"plantcare-community/pkg/utils"
)

type UserService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	cache *cache.Cache // 可为 nil
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewUserService(users domain.UserRepository, j *auth.JWTer, c *cache.Cache, ttl time.Duration, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, jwt: j, cache: c, ttl: ttl, log: l.Named("user"), now: time.Now}
}

type SignupInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Role     string
}

type AuthResult struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, domain.Validation("name is required")
	case email == "":
		return nil, domain.Validation("email is required")
	case len(in.Password) < 6:
		return nil, domain.Validation("password must be at least 6 characters")
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		return nil, domain.Validation("email is invalid")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email[:strings.IndexByte(email, '@')]
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return nil, domain.Validation("User already exists with this email")
		}
		return nil, domain.Wrap("create user", err)
	}
	countAction(actSignup)
	s.log.Info("user signed up", zap.String("user_id", u.ID))

	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &AuthResult{Message: "Account created successfully!", UserID: u.ID, Email: u.Email, Token: tok}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if domain.IsNotFound(err) {
		return nil, domain.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, domain.Wrap("find user", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("Invalid email or password")
	}
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &AuthResult{Message: "Login successful", UserID: u.ID, Email: u.Email, Token: tok}, nil
}

// GetUserDetails 有 Redis 时读穿缓存；用户创建后只读，不需要失效
func (s *UserService) GetUserDetails(ctx context.Context, userID string) (*domain.UserDetails, error) {
	load := func(ctx context.Context) (*domain.UserDetails, error) {
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		d := u.Details()
		return &d, nil
	}
	var (
		d   *domain.UserDetails
		err error
	)
	if s.cache != nil {
		d, err = cache.GetOrLoadJSON(s.cache, ctx, userKey(userID), s.ttl, load)
	} else {
		d, err = load(ctx)
	}
	if err != nil {
		return nil, domain.Wrap("get user", err)
	}
	if d == nil {
		return nil, domain.ErrUserNotFound
	}
	return d, nil
}

// Me 当前登录用户，含角色
func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Wrap("get user", err)
	}
	return u, nil
}

type UserPage struct {
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (s *UserService) List(ctx context.Context, q string, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	us, total, err := s.users.List(ctx, domain.UserFilter{Q: q, Offset: (page - 1) * limit, Limit: limit})
	if err != nil {
		return nil, domain.Wrap("list users", err)
	}
	if us == nil {
		us = []domain.User{}
	}
	return &UserPage{Users: us, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	_, total, err := s.users.List(ctx, domain.UserFilter{Limit: 1})
	return total, domain.Wrap("count users", err)
}
