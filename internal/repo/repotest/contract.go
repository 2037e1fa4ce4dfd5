// Package repotest 各存储实现共用的行为测试
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-community/internal/domain"
)

type Repos struct {
	Users       domain.UserRepository
	Posts       domain.PostRepository
	Communities domain.CommunityRepository
}

// Factory 每个子测试拿到一套全新的空存储
type Factory func(t *testing.T) Repos

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(i int) time.Time { return base.Add(time.Duration(i) * time.Minute) }

func newPost(author, content string, i int) *domain.Post {
	return &domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  author,
		Content:   content,
		Tags:      domain.ExtractTags(content),
		Replies:   []domain.Reply{},
		Likes:     []string{},
		Timestamp: at(i),
	}
}

func newReply(author, content string, i int) *domain.Reply {
	return &domain.Reply{ID: uuid.NewString(), AuthorID: author, Content: content, Likes: []string{}, Timestamp: at(i)}
}

func ids(ps []domain.Post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func replyIDs(p *domain.Post) []string {
	out := make([]string, len(p.Replies))
	for i, r := range p.Replies {
		out[i] = r.ID
	}
	return out
}

// Run 执行全部用例
func Run(t *testing.T, f Factory) {
	t.Run("PostRoundTrip", func(t *testing.T) { testPostRoundTrip(t, f(t)) })
	t.Run("ListNewestFirst", func(t *testing.T) { testListNewestFirst(t, f(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, f(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, f(t)) })
	t.Run("Replies", func(t *testing.T) { testReplies(t, f(t)) })
	t.Run("Likes", func(t *testing.T) { testLikes(t, f(t)) })
	t.Run("ConcurrentLikes", func(t *testing.T) { testConcurrentLikes(t, f(t)) })
	t.Run("DeletePost", func(t *testing.T) { testDeletePost(t, f(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, f(t)) })
	t.Run("Communities", func(t *testing.T) { testCommunities(t, f(t)) })
}

func testPostRoundTrip(t *testing.T, r Repos) {
	ctx := context.Background()
	p := newPost("u1", "My #Monstera is thriving", 0)
	p.CommunityID = "c1"
	require.NoError(t, r.Posts.Create(ctx, p))

	got, err := r.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "u1", got.AuthorID)
	assert.Equal(t, "c1", got.CommunityID)
	assert.Equal(t, "My #Monstera is thriving", got.Content)
	assert.Equal(t, []string{"monstera"}, got.Tags)
	assert.Empty(t, got.Replies)
	assert.NotNil(t, got.Replies)
	assert.Empty(t, got.Likes)
	assert.NotNil(t, got.Likes)
	assert.WithinDuration(t, p.Timestamp, got.Timestamp, time.Millisecond)

	_, err = r.Posts.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrPostNotFound))
}

func testListNewestFirst(t *testing.T, r Repos) {
	ctx := context.Background()
	var created []string
	for i := 0; i < 5; i++ {
		p := newPost("u1", fmt.Sprintf("post %d", i), i)
		require.NoError(t, r.Posts.Create(ctx, p))
		created = append(created, p.ID)
	}

	ps, total, err := r.Posts.List(ctx, domain.PostFilter{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []string{created[4], created[3]}, ids(ps))

	ps, _, err = r.Posts.List(ctx, domain.PostFilter{Offset: 4, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{created[0]}, ids(ps))

	ps, total, err = r.Posts.List(ctx, domain.PostFilter{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, ps)

	n, err := r.Posts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func testListFilters(t *testing.T, r Repos) {
	ctx := context.Background()
	a := newPost("u1", "Tomatoes again #Vegetables", 0)
	a.CommunityID = "garden"
	b := newPost("u1", "Orchid help #flowers #indoor", 1)
	c := newPost("u2", "Peppers #vegetables", 2)
	for _, p := range []*domain.Post{a, b, c} {
		require.NoError(t, r.Posts.Create(ctx, p))
	}

	ps, total, err := r.Posts.List(ctx, domain.PostFilter{Tag: "vegetables", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{c.ID, a.ID}, ids(ps))

	ps, total, err = r.Posts.List(ctx, domain.PostFilter{CommunityID: "garden", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{a.ID}, ids(ps))

	// "indoor" 不能匹配到 "indoors" 之类的前缀
	ps, _, err = r.Posts.List(ctx, domain.PostFilter{Tag: "indo", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func testSearch(t *testing.T, r Repos) {
	ctx := context.Background()
	a := newPost("u1", "Rose care is 100% about sunlight", 0)
	b := newPost("u1", "My rose_bush has aphids", 1)
	c := newPost("u2", "Tulip season", 2)
	for _, p := range []*domain.Post{a, b, c} {
		require.NoError(t, r.Posts.Create(ctx, p))
	}

	ps, err := r.Posts.Search(ctx, "ROSE", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, ids(ps))

	ps, err = r.Posts.Search(ctx, "%", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(ps))

	ps, err = r.Posts.Search(ctx, "e_b", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(ps))

	ps, err = r.Posts.Search(ctx, ".*", 100)
	require.NoError(t, err)
	assert.Empty(t, ps)

	ps, err = r.Posts.Search(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID}, ids(ps))
}

func testReplies(t *testing.T, r Repos) {
	ctx := context.Background()
	p := newPost("u1", "Yellow leaves?", 0)
	require.NoError(t, r.Posts.Create(ctx, p))

	r1, r2, r3 := newReply("u2", "overwatering", 1), newReply("u3", "too much sun", 2), newReply("u2", "check roots", 3)
	for _, rp := range []*domain.Reply{r1, r2, r3} {
		require.NoError(t, r.Posts.AddReply(ctx, p.ID, rp))
	}
	got, err := r.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r1.ID, r2.ID, r3.ID}, replyIDs(got))
	assert.Equal(t, "too much sun", got.Replies[1].Content)
	assert.Equal(t, "u3", got.Replies[1].AuthorID)
	assert.NotNil(t, got.Replies[1].Likes)

	assert.True(t, errors.Is(r.Posts.AddReply(ctx, "missing", newReply("u2", "x", 4)), domain.ErrPostNotFound))

	require.NoError(t, r.Posts.DeleteReply(ctx, p.ID, r2.ID))
	got, err = r.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r1.ID, r3.ID}, replyIDs(got))

	assert.True(t, errors.Is(r.Posts.DeleteReply(ctx, p.ID, r2.ID), domain.ErrReplyNotFound))
	assert.True(t, errors.Is(r.Posts.DeleteReply(ctx, "missing", r1.ID), domain.ErrPostNotFound))
}

func testLikes(t *testing.T, r Repos) {
	ctx := context.Background()
	p := newPost("u1", "Fern", 0)
	require.NoError(t, r.Posts.Create(ctx, p))
	rp := newReply("u2", "nice", 1)
	require.NoError(t, r.Posts.AddReply(ctx, p.ID, rp))

	likes, err := r.Posts.TogglePostLike(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, likes)
	likes, err = r.Posts.TogglePostLike(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, likes)
	likes, err = r.Posts.TogglePostLike(ctx, p.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, likes)

	// 以 $ 开头的 id 也必须按字面量处理
	likes, err = r.Posts.TogglePostLike(ctx, p.ID, "$likes")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "$likes"}, likes)

	rl, err := r.Posts.ToggleReplyLike(ctx, p.ID, rp.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, rl)

	got, err := r.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "$likes"}, got.Likes)
	assert.Equal(t, []string{"carol"}, got.Replies[0].Likes)

	rl, err = r.Posts.ToggleReplyLike(ctx, p.ID, rp.ID, "carol")
	require.NoError(t, err)
	assert.Empty(t, rl)
	assert.NotNil(t, rl)

	_, err = r.Posts.TogglePostLike(ctx, "missing", "alice")
	assert.True(t, errors.Is(err, domain.ErrPostNotFound))
	_, err = r.Posts.ToggleReplyLike(ctx, p.ID, "missing", "alice")
	assert.True(t, errors.Is(err, domain.ErrReplyNotFound))
	_, err = r.Posts.ToggleReplyLike(ctx, "missing", rp.ID, "alice")
	assert.True(t, errors.Is(err, domain.ErrPostNotFound))
}

func testConcurrentLikes(t *testing.T, r Repos) {
	ctx := context.Background()
	p := newPost("u1", "Popular cactus", 0)
	require.NoError(t, r.Posts.Create(ctx, p))

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Posts.TogglePostLike(ctx, p.ID, fmt.Sprintf("user-%02d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := r.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, n)
	seen := map[string]bool{}
	for _, id := range got.Likes {
		assert.False(t, seen[id], "duplicate like %s", id)
		seen[id] = true
	}

	// 同一用户并发切换偶数次，最终回到未点赞
	q := newPost("u1", "Flip-flop fern", 1)
	require.NoError(t, r.Posts.Create(ctx, q))
	errs = make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Posts.TogglePostLike(ctx, q.ID, "same")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	got, err = r.Posts.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

func testDeletePost(t *testing.T, r Repos) {
	ctx := context.Background()
	p := newPost("u1", "Delete me", 0)
	keep := newPost("u1", "Keep me", 1)
	require.NoError(t, r.Posts.Create(ctx, p))
	require.NoError(t, r.Posts.Create(ctx, keep))
	rp := newReply("u2", "reply", 2)
	require.NoError(t, r.Posts.AddReply(ctx, p.ID, rp))
	_, err := r.Posts.TogglePostLike(ctx, p.ID, "u3")
	require.NoError(t, err)
	_, err = r.Posts.ToggleReplyLike(ctx, p.ID, rp.ID, "u3")
	require.NoError(t, err)

	require.NoError(t, r.Posts.Delete(ctx, p.ID))
	_, err = r.Posts.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrPostNotFound))
	assert.True(t, errors.Is(r.Posts.Delete(ctx, p.ID), domain.ErrPostNotFound))

	ps, total, err := r.Posts.List(ctx, domain.PostFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{keep.ID}, ids(ps))
}

func testUsers(t *testing.T, r Repos) {
	ctx := context.Background()
	alice := &domain.User{ID: uuid.NewString(), Name: "Alice Green", Username: "alice", Email: "alice@example.com", PasswordHash: "h", Role: domain.RoleUser, CreatedAt: at(0)}
	bob := &domain.User{ID: uuid.NewString(), Name: "Bob Fern", Username: "bob", Email: "bob@example.com", PasswordHash: "h", Role: domain.RoleAdmin, CreatedAt: at(1)}
	require.NoError(t, r.Users.Create(ctx, alice))
	require.NoError(t, r.Users.Create(ctx, bob))

	dup := *alice
	dup.ID = uuid.NewString()
	err := r.Users.Create(ctx, &dup)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	got, err := r.Users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Green", got.Name)
	assert.Equal(t, "h", got.PasswordHash)

	got, err = r.Users.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = r.Users.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	us, err := r.Users.FindByIDs(ctx, []string{alice.ID, "missing", bob.ID})
	require.NoError(t, err)
	assert.Len(t, us, 2)

	us, total, err := r.Users.List(ctx, domain.UserFilter{Q: "FERN", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, us, 1)
	assert.Equal(t, bob.ID, us[0].ID)

	us, total, err = r.Users.List(ctx, domain.UserFilter{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, us, 1)
	assert.Equal(t, bob.ID, us[0].ID)
}

func testCommunities(t *testing.T, r Repos) {
	ctx := context.Background()
	c := &domain.Community{
		ID: uuid.NewString(), Name: "Succulent Lovers", Description: "All about succulents",
		Category: "succulents", Tags: []string{"cactus"}, Rules: []string{"be kind"},
		Members: []string{"u1"}, Moderators: []string{"u1"}, IsActive: true, CreatedAt: at(0),
	}
	require.NoError(t, r.Communities.Create(ctx, c))
	other := &domain.Community{
		ID: uuid.NewString(), Name: "Herb Garden", Description: "Herbs",
		Category: "herbs", Tags: []string{}, Rules: []string{},
		Members: []string{"u2"}, Moderators: []string{"u2"}, IsActive: true, CreatedAt: at(1),
	}
	require.NoError(t, r.Communities.Create(ctx, other))

	dup := *c
	dup.ID = uuid.NewString()
	assert.Equal(t, domain.KindConflict, domain.KindOf(r.Communities.Create(ctx, &dup)))

	require.NoError(t, r.Communities.AddMember(ctx, c.ID, "u3"))
	require.NoError(t, r.Communities.AddMember(ctx, c.ID, "u3"))
	got, err := r.Communities.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, got.Members)
	assert.Equal(t, []string{"u1"}, got.Moderators)
	assert.Equal(t, []string{"be kind"}, got.Rules)

	require.NoError(t, r.Communities.RemoveMember(ctx, c.ID, "u1"))
	require.NoError(t, r.Communities.RemoveMember(ctx, c.ID, "nobody"))
	got, err = r.Communities.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, got.Members)
	assert.Equal(t, []string{"u1"}, got.Moderators)

	assert.True(t, errors.Is(r.Communities.AddMember(ctx, "missing", "u1"), domain.ErrCommunityNotFound))
	_, err = r.Communities.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrCommunityNotFound))

	cs, err := r.Communities.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, cs, 2)
	assert.Equal(t, other.ID, cs[0].ID)

	cs, err = r.Communities.List(ctx, "succulents")
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, c.ID, cs[0].ID)

	n, err := r.Communities.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
