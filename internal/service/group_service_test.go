package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-community/internal/domain"
)

func TestCommunityLifecycle(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	owner := Actor{UserID: "u1"}

	c, err := f.groups.Create(ctx, owner, CreateCommunityInput{
		Name: "  Indoor Jungle ", Description: "Houseplants", Category: "Indoor",
		Rules: []string{"be kind", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Indoor Jungle", c.Name)
	assert.Equal(t, "indoor", c.Category)
	assert.Equal(t, []string{"be kind"}, c.Rules)
	assert.Equal(t, []string{"u1"}, c.Members)
	assert.Equal(t, []string{"u1"}, c.Moderators)

	_, err = f.groups.Join(ctx, c.ID, Actor{UserID: "u2"})
	require.NoError(t, err)
	_, err = f.groups.Join(ctx, c.ID, Actor{UserID: "u2"})
	require.NoError(t, err)
	got, err := f.groups.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, got.Members)

	_, err = f.groups.Leave(ctx, c.ID, Actor{UserID: "u2"})
	require.NoError(t, err)

	p, err := f.community.CreatePost(ctx, CreatePostInput{AuthorID: "u1", Content: "welcome", CommunityID: c.ID})
	require.NoError(t, err)
	page, err := f.community.ListPosts(ctx, ListPostsInput{Page: 1, Limit: 10, CommunityID: c.ID})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, p.ID, page.Posts[0].ID)

	cs, err := f.groups.List(ctx, "indoor")
	require.NoError(t, err)
	assert.Len(t, cs, 1)
}

func TestCommunityValidation(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()

	_, err := f.groups.Create(ctx, Actor{}, CreateCommunityInput{Name: "x", Description: "y"})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	_, err = f.groups.Create(ctx, Actor{UserID: "u1"}, CreateCommunityInput{Name: "x", Description: "y", Category: "cars"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.groups.Create(ctx, Actor{UserID: "u1"}, CreateCommunityInput{Description: "y"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.groups.Create(ctx, Actor{UserID: "u1"}, CreateCommunityInput{Name: "Herbs", Description: "y"})
	require.NoError(t, err)
	_, err = f.groups.Create(ctx, Actor{UserID: "u2"}, CreateCommunityInput{Name: "herbs", Description: "z"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = f.groups.Join(ctx, "missing", Actor{UserID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrCommunityNotFound))
	_, err = f.groups.List(ctx, "cars")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

type fixedCount struct {
	n   int64
	err error
}

func (c fixedCount) Count(context.Context) (int64, error) { return c.n, c.err }

func TestCollectStats(t *testing.T) {
	st, err := CollectStats(context.Background(), fixedCount{n: 3}, fixedCount{n: 10}, fixedCount{n: 1})
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 3, Posts: 10, Communities: 1}, *st)

	_, err = CollectStats(context.Background(), fixedCount{n: 3}, fixedCount{err: errors.New("boom")}, fixedCount{})
	assert.EqualError(t, err, "boom")
}
