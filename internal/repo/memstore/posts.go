package memstore

import (
	"context"
	"sort"
	"strings"

	"plantcare-community/internal/domain"
)

type PostRepo struct{ s *Store }

func (r *PostRepo) Create(_ context.Context, p *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[p.ID]; ok {
		return domain.Conflict("Post already exists")
	}
	c := clonePost(p)
	r.s.posts[p.ID] = &c
	r.s.order = append(r.s.order, p.ID)
	return nil
}

func (r *PostRepo) Get(_ context.Context, id string) (*domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	c := clonePost(p)
	return &c, nil
}

// newestFirst 按时间倒序；时间相同时后插入的在前
func (r *PostRepo) newestFirst(match func(*domain.Post) bool) []domain.Post {
	var out []domain.Post
	for i := len(r.s.order) - 1; i >= 0; i-- {
		p := r.s.posts[r.s.order[i]]
		if match(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *PostRepo) List(_ context.Context, f domain.PostFilter) ([]domain.Post, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tag := strings.ToLower(f.Tag)
	all := r.newestFirst(func(p *domain.Post) bool {
		if f.CommunityID != "" && p.CommunityID != f.CommunityID {
			return false
		}
		if tag == "" {
			return true
		}
		for _, t := range p.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
	return page(all, f.Offset, f.Limit), int64(len(all)), nil
}

func (r *PostRepo) Search(_ context.Context, query string, limit int) ([]domain.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	all := r.newestFirst(func(p *domain.Post) bool {
		return strings.Contains(strings.ToLower(p.Content), q)
	})
	return page(all, 0, limit), nil
}

func (r *PostRepo) AddReply(_ context.Context, postID string, rp *domain.Reply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return domain.ErrPostNotFound
	}
	c := *rp
	c.Likes = cloneStrings(rp.Likes)
	p.Replies = append(p.Replies, c)
	return nil
}

func (r *PostRepo) TogglePostLike(_ context.Context, postID, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	p.Likes = domain.ToggleMember(p.Likes, userID)
	return cloneStrings(p.Likes), nil
}

func (r *PostRepo) ToggleReplyLike(_ context.Context, postID, replyID, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	i := p.ReplyIndex(replyID)
	if i < 0 {
		return nil, domain.ErrReplyNotFound
	}
	p.Replies[i].Likes = domain.ToggleMember(p.Replies[i].Likes, userID)
	return cloneStrings(p.Replies[i].Likes), nil
}

func (r *PostRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.s.posts, id)
	for i, v := range r.s.order {
		if v == id {
			r.s.order = append(r.s.order[:i:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *PostRepo) DeleteReply(_ context.Context, postID, replyID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return domain.ErrPostNotFound
	}
	i := p.ReplyIndex(replyID)
	if i < 0 {
		return domain.ErrReplyNotFound
	}
	p.Replies = append(p.Replies[:i:i], p.Replies[i+1:]...)
	return nil
}

func (r *PostRepo) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.posts)), nil
}
