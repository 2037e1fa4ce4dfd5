package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-community/internal/domain"
)

func TestCreatePostThenListFirst(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	f.post(t, "u9", "older post")

	p := f.post(t, "u1", "hello #garden")
	assert.Equal(t, []string{"garden"}, p.Tags)
	assert.Empty(t, p.Replies)
	assert.Empty(t, p.Likes)

	page, err := f.community.ListPosts(ctx, ListPostsInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, p.ID, page.Posts[0].ID)
	assert.Equal(t, "u1", page.Posts[0].AuthorID)
	assert.Equal(t, "hello #garden", page.Posts[0].Content)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t, CommunityOptions{MaxContentLength: 10})
	ctx := context.Background()
	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"no author", CreatePostInput{Content: "hi"}},
		{"no content", CreatePostInput{AuthorID: "u1"}},
		{"blank author", CreatePostInput{AuthorID: "  ", Content: "hi"}},
		{"author too long", CreatePostInput{AuthorID: strings.Repeat("a", 65), Content: "hi"}},
		{"too long", CreatePostInput{AuthorID: "u1", Content: "way too long content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.community.CreatePost(ctx, tt.in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}

	_, err := f.community.CreatePost(ctx, CreatePostInput{AuthorID: "u1", Content: "hi", CommunityID: "nope"})
	assert.ErrorIs(t, err, domain.ErrCommunityNotFound)
}

func TestWhitespaceContentIsStored(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()

	p, err := f.community.CreatePost(ctx, CreatePostInput{AuthorID: "u1", Content: "   "})
	require.NoError(t, err)
	assert.Equal(t, "   ", p.Content)

	got, err := f.community.AddReply(ctx, p.ID, "u2", "\t")
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, "\t", got.Replies[0].Content)
}

func TestIDLengthCap(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	p := f.post(t, "u1", "post")
	got, err := f.community.AddReply(ctx, p.ID, "u2", "reply")
	require.NoError(t, err)
	rid := got.Replies[0].ID

	edge := strings.Repeat("x", 64)
	long := edge + "x"

	_, err = f.community.CreatePost(ctx, CreatePostInput{AuthorID: edge, Content: "ok"})
	assert.NoError(t, err)

	_, err = f.community.AddReply(ctx, p.ID, long, "reply")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.community.TogglePostLike(ctx, p.ID, long)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.community.ToggleReplyLike(ctx, p.ID, rid, long)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	r, err := f.community.TogglePostLike(ctx, p.ID, edge)
	require.NoError(t, err)
	assert.Equal(t, []string{edge}, r.Likes)
}

func TestListPostsPagination(t *testing.T) {
	f := newFixture(t, CommunityOptions{DefaultPageSize: 3, MaxPageSize: 4})
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.post(t, "u1", fmt.Sprintf("post %d", i))
	}

	tests := []struct {
		page, limit   int
		wantPage      int
		wantLen       int
		wantTotalPage int
		wantLimit     int
		first         string
	}{
		{1, 3, 1, 3, 3, 3, "post 6"},
		{3, 3, 3, 1, 3, 3, "post 0"},
		{4, 3, 4, 0, 3, 3, ""},
		{0, 3, 1, 3, 3, 3, "post 6"},
		{-5, 2, 1, 2, 4, 2, "post 6"},
		{1, 0, 1, 3, 3, 3, "post 6"},   // 默认页大小
		{2, 500, 2, 3, 2, 4, "post 2"}, // 上限 4，回显实际 limit
		{1, 200, 1, 4, 2, 4, "post 6"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d,limit=%d", tt.page, tt.limit), func(t *testing.T) {
			got, err := f.community.ListPosts(ctx, ListPostsInput{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, got.CurrentPage)
			assert.Len(t, got.Posts, tt.wantLen)
			assert.Equal(t, tt.wantTotalPage, got.TotalPages)
			assert.EqualValues(t, 7, got.TotalPosts)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.NotNil(t, got.Posts)
			if tt.first != "" {
				assert.Equal(t, tt.first, got.Posts[0].Content)
			}
		})
	}
}

func TestListPostsEmptyStore(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	got, err := f.community.ListPosts(context.Background(), ListPostsInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalPages)
	assert.NotNil(t, got.Posts)
	assert.Empty(t, got.Posts)
}

func TestListPostsByTag(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	a := f.post(t, "u1", "#Orchid bloom")
	f.post(t, "u1", "no tags here")

	got, err := f.community.ListPosts(ctx, ListPostsInput{Page: 1, Limit: 10, Tag: "#orchid"})
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, a.ID, got.Posts[0].ID)
}

func TestAddReplyAppends(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	p := f.post(t, "u1", "hello #garden")

	got, err := f.community.AddReply(ctx, p.ID, "u2", "nice!")
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, "u2", got.Replies[0].AuthorID)
	assert.Equal(t, "nice!", got.Replies[0].Content)
	assert.Empty(t, got.Replies[0].Likes)

	got, err = f.community.AddReply(ctx, p.ID, "u3", "agreed")
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	assert.Equal(t, "agreed", got.Replies[1].Content)

	_, err = f.community.AddReply(ctx, "missing", "u2", "x")
	assert.True(t, domain.IsNotFound(err))
	_, err = f.community.AddReply(ctx, p.ID, "", "x")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.community.AddReply(ctx, p.ID, "u2", "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestTogglePostLikeIsInvolution(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	p := f.post(t, "u1", "like me")

	r, err := f.community.TogglePostLike(ctx, p.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, r.Likes)
	r, err = f.community.TogglePostLike(ctx, p.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, []string{}, r.Likes)

	_, err = f.community.TogglePostLike(ctx, p.ID, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.community.TogglePostLike(ctx, "missing", "u3")
	assert.True(t, domain.IsNotFound(err))
}

func TestToggleReplyLike(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	p := f.post(t, "u1", "post")
	withReply, err := f.community.AddReply(ctx, p.ID, "u2", "reply")
	require.NoError(t, err)
	rid := withReply.Replies[0].ID

	r, err := f.community.ToggleReplyLike(ctx, p.ID, rid, "u4")
	require.NoError(t, err)
	assert.Equal(t, []string{"u4"}, r.Likes)

	got, err := f.community.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Equal(t, []string{"u4"}, got.Replies[0].Likes)

	_, err = f.community.ToggleReplyLike(ctx, p.ID, "missing", "u4")
	assert.ErrorIs(t, err, domain.ErrReplyNotFound)
}

func TestSearchPosts(t *testing.T) {
	f := newFixture(t, CommunityOptions{SearchLimit: 2})
	ctx := context.Background()
	f.post(t, "u1", "Aloe vera care")
	b := f.post(t, "u1", "my ALOE is brown")
	c := f.post(t, "u1", "aloe again")
	f.post(t, "u1", "cactus")

	got, err := f.community.SearchPosts(ctx, "aloe")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	got, err = f.community.SearchPosts(ctx, "orchid")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeletePostOpenPolicy(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	p := f.post(t, "u1", "bye")

	res, err := f.community.DeletePost(ctx, p.ID, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "Post deleted successfully", res.Message)

	page, err := f.community.ListPosts(ctx, ListPostsInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	_, err = f.community.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = f.community.DeletePost(ctx, p.ID, Actor{})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestDeleteReplyKeepsOrder(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	p := f.post(t, "u1", "thread")
	for _, c := range []string{"a", "b", "c"} {
		_, err := f.community.AddReply(ctx, p.ID, "u2", c)
		require.NoError(t, err)
	}
	got, err := f.community.GetPost(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.community.DeleteReply(ctx, p.ID, got.Replies[1].ID, Actor{})
	require.NoError(t, err)
	got, err = f.community.GetPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	assert.Equal(t, "a", got.Replies[0].Content)
	assert.Equal(t, "c", got.Replies[1].Content)

	_, err = f.community.DeleteReply(ctx, p.ID, "missing", Actor{})
	assert.ErrorIs(t, err, domain.ErrReplyNotFound)
}

func TestDeleteAuthorPolicy(t *testing.T) {
	f := newFixture(t, CommunityOptions{DeletePolicy: PolicyAuthor})
	ctx := context.Background()
	p := f.post(t, "u1", "mine")
	withReply, err := f.community.AddReply(ctx, p.ID, "u2", "theirs")
	require.NoError(t, err)
	rid := withReply.Replies[0].ID

	_, err = f.community.DeletePost(ctx, p.ID, Actor{})
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	_, err = f.community.DeletePost(ctx, p.ID, Actor{UserID: "u2"})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	_, err = f.community.DeleteReply(ctx, p.ID, rid, Actor{UserID: "u1"})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	_, err = f.community.DeletePost(ctx, "missing", Actor{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = f.community.DeleteReply(ctx, p.ID, rid, Actor{UserID: "u2"})
	require.NoError(t, err)
	_, err = f.community.DeletePost(ctx, p.ID, Actor{UserID: "admin-1", Role: domain.RoleAdmin})
	require.NoError(t, err)
}

func TestModeratorDeleteBypassesPolicy(t *testing.T) {
	f := newFixture(t, CommunityOptions{DeletePolicy: PolicyAuthor})
	p := f.post(t, "u1", "spam")
	_, err := f.community.ModeratorDeletePost(context.Background(), p.ID)
	require.NoError(t, err)
}

func TestPostsCarryAuthors(t *testing.T) {
	f := newFixture(t, CommunityOptions{})
	ctx := context.Background()
	f.user(t, "u1", "Rosa Green", "rosa")
	p := f.post(t, "u1", "hi")
	got, err := f.community.AddReply(ctx, p.ID, "ghost", "boo")
	require.NoError(t, err)

	assert.Equal(t, domain.Author{ID: "u1", Name: "Rosa Green", Username: "rosa"}, got.Author)
	assert.Equal(t, domain.PlaceholderAuthor("ghost"), got.Replies[0].Author)
}
