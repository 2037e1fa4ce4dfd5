package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Stats struct {
	Users       int64 `json:"users"`
	Posts       int64 `json:"posts"`
	Communities int64 `json:"communities"`
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

// CollectStats 三个计数并发查询
func CollectStats(ctx context.Context, users, posts, groups counter) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { st.Users, err = users.Count(ctx); return })
	g.Go(func() (err error) { st.Posts, err = posts.Count(ctx); return })
	g.Go(func() (err error) { st.Communities, err = groups.Count(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
