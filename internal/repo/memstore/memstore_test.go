package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/repo/repotest"
)

func TestMemoryStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repos {
		s := New()
		return repotest.Repos{Users: s.Users(), Posts: s.Posts(), Communities: s.Communities()}
	})
}

func TestReturnedPostIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := &domain.Post{ID: "p1", AuthorID: "u1", Content: "Basil", Likes: []string{}, Replies: []domain.Reply{}, Timestamp: time.Now()}
	require.NoError(t, s.Posts().Create(ctx, p))
	p.Content = "changed by caller"

	got, err := s.Posts().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Basil", got.Content)

	got.Likes = append(got.Likes, "intruder")
	again, err := s.Posts().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, again.Likes)
}

func TestSameTimestampKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Posts().Create(ctx, &domain.Post{ID: id, AuthorID: "u", Content: id, Timestamp: ts}))
	}
	ps, _, err := s.Posts().List(ctx, domain.PostFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, "c", ps[0].ID)
	assert.Equal(t, "a", ps[2].ID)
}
