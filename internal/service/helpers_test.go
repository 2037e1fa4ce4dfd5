package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantcare-community/internal/core/auth"
	"plantcare-community/internal/domain"
	"plantcare-community/internal/repo/memstore"
)

type fixture struct {
	store     *memstore.Store
	community *CommunityService
	users     *UserService
	groups    *GroupService
	authors   *Authors
	clock     *fakeClock
}

type fakeClock struct{ t time.Time }

// now 每次调用前进一秒，保证创建顺序可区分
func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newFixture(t *testing.T, opt CommunityOptions) *fixture {
	t.Helper()
	st := memstore.New()
	clk := &fakeClock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	authors := NewAuthors(st.Users(), nil, time.Minute, zap.NewNop())
	f := &fixture{
		store:     st,
		authors:   authors,
		community: NewCommunityService(st.Posts(), st.Communities(), authors, opt, zap.NewNop()),
		users: NewUserService(st.Users(), &auth.JWTer{Secret: []byte("test"), Issuer: "test", TTL: time.Hour},
			nil, time.Minute, zap.NewNop()),
		groups: NewGroupService(st.Communities(), zap.NewNop()),
		clock:  clk,
	}
	f.community.now = clk.now
	f.users.now = clk.now
	f.groups.now = clk.now
	return f
}

func (f *fixture) user(t *testing.T, id, name, username string) {
	t.Helper()
	require.NoError(t, f.store.Users().Create(context.Background(), &domain.User{
		ID: id, Name: name, Username: username, Email: username + "@example.com",
		Role: domain.RoleUser, CreatedAt: f.clock.now(),
	}))
}

func (f *fixture) post(t *testing.T, author, content string) *PostView {
	t.Helper()
	p, err := f.community.CreatePost(context.Background(), CreatePostInput{AuthorID: author, Content: content})
	require.NoError(t, err)
	return p
}
