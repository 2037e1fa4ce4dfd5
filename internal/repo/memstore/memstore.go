// Package memstore 进程内存储，开发与测试用。读写都做深拷贝，调用方拿到的值与内部状态互不影响
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"plantcare-community/internal/domain"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	posts       map[string]*domain.Post
	order       []string // 帖子插入顺序，时间相同按插入先后
	communities map[string]*domain.Community
}

func New() *Store {
	return &Store{
		users:       map[string]domain.User{},
		posts:       map[string]*domain.Post{},
		communities: map[string]*domain.Community{},
	}
}

func (s *Store) Users() *UserRepo            { return &UserRepo{s} }
func (s *Store) Posts() *PostRepo            { return &PostRepo{s} }
func (s *Store) Communities() *CommunityRepo { return &CommunityRepo{s} }

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clonePost(p *domain.Post) domain.Post {
	c := *p
	c.Tags = cloneStrings(p.Tags)
	c.Likes = cloneStrings(p.Likes)
	c.Replies = make([]domain.Reply, len(p.Replies))
	for i, r := range p.Replies {
		r.Likes = cloneStrings(r.Likes)
		c.Replies[i] = r
	}
	return c
}

func cloneCommunity(c *domain.Community) domain.Community {
	out := *c
	out.Tags = cloneStrings(c.Tags)
	out.Rules = cloneStrings(c.Rules)
	out.Members = cloneStrings(c.Members)
	out.Moderators = cloneStrings(c.Moderators)
	return out
}

// ---------- users ----------

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.users {
		if strings.EqualFold(v.Email, u.Email) {
			return domain.Conflict("User already exists with this email")
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepo) List(_ context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Q))
	var all []domain.User
	for _, u := range r.s.users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Username), q) {
			all = append(all, u)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, f.Offset, f.Limit), int64(len(all)), nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
