package domain

import (
	"context"
	"time"
)

type Reply struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	Likes     []string  `json:"likes"`
	Timestamp time.Time `json:"timestamp"`
}

type Post struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	CommunityID string    `json:"communityId,omitempty"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Replies     []Reply   `json:"replies"`
	Likes       []string  `json:"likes"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReplyIndex 按 id 查找回复下标，找不到返回 -1
func (p *Post) ReplyIndex(replyID string) int {
	for i := range p.Replies {
		if p.Replies[i].ID == replyID {
			return i
		}
	}
	return -1
}

// AuthorIDs 帖子及其回复中出现的作者 id（去重，保持出现顺序）
func (p *Post) AuthorIDs() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(p.AuthorID)
	for _, r := range p.Replies {
		add(r.AuthorID)
	}
	return out
}

// ToggleMember 存在则移除，不存在则追加到末尾
func ToggleMember(set []string, id string) []string {
	for i, v := range set {
		if v == id {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id)
}

type PostFilter struct {
	Tag         string
	CommunityID string
	Offset      int
	Limit       int
}

// PostRepository 帖子聚合存储；回复与点赞只能经由所属帖子修改
type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	Get(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, f PostFilter) ([]Post, int64, error)
	Search(ctx context.Context, query string, limit int) ([]Post, error)
	AddReply(ctx context.Context, postID string, r *Reply) error
	TogglePostLike(ctx context.Context, postID, userID string) ([]string, error)
	ToggleReplyLike(ctx context.Context, postID, replyID, userID string) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteReply(ctx context.Context, postID, replyID string) error
	Count(ctx context.Context) (int64, error)
}
