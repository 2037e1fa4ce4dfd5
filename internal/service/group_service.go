package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"plantcare-community/internal/domain"
	"plantcare-community/pkg/utils"
)

// GroupService 社区（小组）管理：创建者自动成为首位成员和版主
type GroupService struct {
	communities domain.CommunityRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewGroupService(communities domain.CommunityRepository, l *zap.Logger) *GroupService {
	if l == nil {
		l = zap.NewNop()
	}
	return &GroupService{communities: communities, log: l.Named("group"), now: time.Now}
}

type CreateCommunityInput struct {
	Name        string
	Description string
	Category    string
	Tags        []string
	Rules       []string
}

func cleanList(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *GroupService) Create(ctx context.Context, actor Actor, in CreateCommunityInput) (*domain.Community, error) {
	if actor.UserID == "" {
		return nil, domain.Unauthorized("authentication required")
	}
	name := strings.TrimSpace(in.Name)
	desc := strings.TrimSpace(in.Description)
	switch {
	case name == "":
		return nil, domain.Validation("name is required")
	case desc == "":
		return nil, domain.Validation("description is required")
	}
	cat := strings.ToLower(strings.TrimSpace(in.Category))
	if cat == "" {
		cat = domain.DefaultCategory
	}
	if !domain.ValidCategory(cat) {
		return nil, domain.Validation("unknown category " + cat)
	}
	c := &domain.Community{
		ID:          utils.NewID(),
		Name:        name,
		Description: desc,
		Category:    cat,
		Tags:        cleanList(in.Tags),
		Rules:       cleanList(in.Rules),
		Members:     []string{actor.UserID},
		Moderators:  []string{actor.UserID},
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.communities.Create(ctx, c); err != nil {
		return nil, domain.Wrap("create community", err)
	}
	s.log.Info("community created", zap.String("community_id", c.ID), zap.String("by", actor.UserID))
	return c, nil
}

func (s *GroupService) Get(ctx context.Context, id string) (*domain.Community, error) {
	c, err := s.communities.Get(ctx, id)
	return c, domain.Wrap("get community", err)
}

func (s *GroupService) List(ctx context.Context, category string) ([]domain.Community, error) {
	cat := strings.ToLower(strings.TrimSpace(category))
	if cat != "" && !domain.ValidCategory(cat) {
		return nil, domain.Validation("unknown category " + cat)
	}
	cs, err := s.communities.List(ctx, cat)
	if err != nil {
		return nil, domain.Wrap("list communities", err)
	}
	if cs == nil {
		cs = []domain.Community{}
	}
	return cs, nil
}

func (s *GroupService) Join(ctx context.Context, id string, actor Actor) (*Confirmation, error) {
	if actor.UserID == "" {
		return nil, domain.Unauthorized("authentication required")
	}
	if err := s.communities.AddMember(ctx, id, actor.UserID); err != nil {
		return nil, domain.Wrap("join community", err)
	}
	countAction(actJoin)
	return &Confirmation{Message: "Joined community successfully"}, nil
}

func (s *GroupService) Leave(ctx context.Context, id string, actor Actor) (*Confirmation, error) {
	if actor.UserID == "" {
		return nil, domain.Unauthorized("authentication required")
	}
	if err := s.communities.RemoveMember(ctx, id, actor.UserID); err != nil {
		return nil, domain.Wrap("leave community", err)
	}
	return &Confirmation{Message: "Left community successfully"}, nil
}

func (s *GroupService) Count(ctx context.Context) (int64, error) {
	n, err := s.communities.Count(ctx)
	return n, domain.Wrap("count communities", err)
}
