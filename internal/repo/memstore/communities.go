package memstore

import (
	"context"
	"sort"
	"strings"

	"plantcare-community/internal/domain"
)

type CommunityRepo struct{ s *Store }

func (r *CommunityRepo) Create(_ context.Context, c *domain.Community) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.communities {
		if strings.EqualFold(v.Name, c.Name) {
			return domain.Conflict("Community with this name already exists")
		}
	}
	cc := cloneCommunity(c)
	r.s.communities[c.ID] = &cc
	return nil
}

func (r *CommunityRepo) Get(_ context.Context, id string) (*domain.Community, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.communities[id]
	if !ok {
		return nil, domain.ErrCommunityNotFound
	}
	out := cloneCommunity(c)
	return &out, nil
}

func (r *CommunityRepo) List(_ context.Context, category string) ([]domain.Community, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Community{}
	for _, c := range r.s.communities {
		if !c.IsActive || (category != "" && c.Category != category) {
			continue
		}
		out = append(out, cloneCommunity(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CommunityRepo) AddMember(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[id]
	if !ok {
		return domain.ErrCommunityNotFound
	}
	if !c.HasMember(userID) {
		c.Members = append(c.Members, userID)
	}
	return nil
}

func (r *CommunityRepo) RemoveMember(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[id]
	if !ok {
		return domain.ErrCommunityNotFound
	}
	if c.HasMember(userID) {
		c.Members = domain.ToggleMember(c.Members, userID)
	}
	return nil
}

func (r *CommunityRepo) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.communities)), nil
}
