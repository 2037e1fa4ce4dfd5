package domain

import (
	"context"
	"time"
)

var CommunityCategories = []string{
	"general", "vegetables", "flowers", "succulents", "herbs", "trees", "indoor", "outdoor",
}

const DefaultCategory = "general"

func ValidCategory(c string) bool {
	for _, v := range CommunityCategories {
		if v == c {
			return true
		}
	}
	return false
}

type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Rules       []string  `json:"rules"`
	Members     []string  `json:"members"`
	Moderators  []string  `json:"moderators"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c *Community) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

type CommunityRepository interface {
	Create(ctx context.Context, c *Community) error
	Get(ctx context.Context, id string) (*Community, error)
	List(ctx context.Context, category string) ([]Community, error)
	// AddMember/RemoveMember 幂等
	AddMember(ctx context.Context, id, userID string) error
	RemoveMember(ctx context.Context, id, userID string) error
	Count(ctx context.Context) (int64, error)
}
