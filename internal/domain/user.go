package domain

import (
	"context"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserDetails 对外的只读投影
type UserDetails struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Details() UserDetails {
	return UserDetails{ID: u.ID, Name: u.Name, Username: u.Username, Email: u.Email}
}

// Author 帖子/回复上展示的作者身份
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// PlaceholderAuthor 作者无法解析时的占位身份
func PlaceholderAuthor(id string) Author {
	return Author{ID: id, Name: "Unknown gardener", Username: "unknown"}
}

type UserFilter struct {
	Q      string // email/name/username 模糊匹配
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
}
