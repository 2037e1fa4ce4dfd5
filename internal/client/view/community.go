// Package view 社区页的状态容器：分页列表、搜索结果、回复草稿和错误横幅。
// 所有变更都等服务端返回后再按 id 回填，失败时状态保持不变。
package view

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"plantcare-community/internal/client"
	"plantcare-community/pkg/utils"
)

// API CommunityView 依赖的远端能力；*client.Client 满足
type API interface {
	ListPosts(ctx context.Context, page, limit int) (*client.Page, error)
	SearchPosts(ctx context.Context, query string) ([]client.Post, error)
	CreatePost(ctx context.Context, author, content string) (*client.Post, error)
	AddReply(ctx context.Context, postID, author, content string) (*client.Post, error)
	TogglePostLike(ctx context.Context, postID, userID string) ([]string, error)
	ToggleReplyLike(ctx context.Context, postID, replyID, userID string) ([]string, error)
	DeletePost(ctx context.Context, postID string) error
	DeleteReply(ctx context.Context, postID, replyID string) error
}

var _ API = (*client.Client)(nil)

const (
	DefaultPageSize = 10
	// ScrollThreshold 距离列表末尾还剩几条时触发下一页
	ScrollThreshold = 3
)

type Options struct {
	UserID   string // 当前用户，作为发帖/回复/点赞的身份
	PageSize int
	Log      *zap.Logger
}

type CommunityView struct {
	api  API
	user string
	size int
	log  *zap.Logger

	mu      sync.Mutex
	posts   []client.Post
	page    int
	hasMore bool
	loading bool
	search  []client.Post // nil 表示未在搜索
	query   string
	drafts  map[string]string
	banner  string
}

func New(api API, o Options) *CommunityView {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return &CommunityView{
		api:    api,
		user:   o.UserID,
		size:   o.PageSize,
		log:    o.Log.Named("community_view"),
		drafts: map[string]string{},
	}
}

// fail 记录横幅并原样返回错误
func (v *CommunityView) fail(op string, err error) error {
	msg := err.Error()
	var ae *client.APIError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	v.mu.Lock()
	v.banner = msg
	v.mu.Unlock()
	v.log.Debug("action failed", zap.String("op", op), zap.Error(err))
	return err
}

// Mount 拉第 1 页并替换列表
func (v *CommunityView) Mount(ctx context.Context) error {
	pg, err := v.api.ListPosts(ctx, 1, v.size)
	if err != nil {
		return v.fail("mount", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.posts = dedupe(nil, pg.Posts)
	v.page = 1
	v.hasMore = pg.CurrentPage < pg.TotalPages
	return nil
}

// LoadMore 追加下一页；没有更多、正在加载或处于搜索中时不发请求，返回 false
func (v *CommunityView) LoadMore(ctx context.Context) (bool, error) {
	v.mu.Lock()
	if !v.hasMore || v.loading || v.search != nil {
		v.mu.Unlock()
		return false, nil
	}
	v.loading = true
	next := v.page + 1
	v.mu.Unlock()

	pg, err := v.api.ListPosts(ctx, next, v.size)

	v.mu.Lock()
	v.loading = false
	if err != nil {
		v.mu.Unlock()
		return false, v.fail("load_more", err)
	}
	v.posts = dedupe(v.posts, pg.Posts)
	v.page = next
	v.hasMore = next < pg.TotalPages
	v.mu.Unlock()
	return true, nil
}

// OnScroll remaining 为可视区域之后还剩的条数
func (v *CommunityView) OnScroll(ctx context.Context, remaining int) (bool, error) {
	if remaining > ScrollThreshold {
		return false, nil
	}
	return v.LoadMore(ctx)
}

// Search 空白查询不发请求
func (v *CommunityView) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	res, err := v.api.SearchPosts(ctx, query)
	if err != nil {
		return v.fail("search", err)
	}
	if res == nil {
		res = []client.Post{}
	}
	v.mu.Lock()
	v.search = res
	v.query = query
	v.mu.Unlock()
	return nil
}

// ClearSearch 恢复搜索前的列表，不重新请求
func (v *CommunityView) ClearSearch() {
	v.mu.Lock()
	v.search = nil
	v.query = ""
	v.mu.Unlock()
}

func (v *CommunityView) CreatePost(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	p, err := v.api.CreatePost(ctx, v.user, content)
	if err != nil {
		return v.fail("create_post", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	list := v.active()
	*list = append([]client.Post{*p}, *list...)
	return nil
}

func (v *CommunityView) SetDraft(postID, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if text == "" {
		delete(v.drafts, postID)
		return
	}
	v.drafts[postID] = text
}

func (v *CommunityView) Draft(postID string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drafts[postID]
}

// SubmitReply 发送该帖的草稿；成功后清空草稿，失败保留
func (v *CommunityView) SubmitReply(ctx context.Context, postID string) error {
	draft := v.Draft(postID)
	if strings.TrimSpace(draft) == "" {
		return nil
	}
	p, err := v.api.AddReply(ctx, postID, v.user, draft)
	if err != nil {
		return v.fail("add_reply", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.drafts, postID)
	v.patch(postID, func(old *client.Post) { *old = *p })
	return nil
}

func (v *CommunityView) ToggleLike(ctx context.Context, postID string) error {
	likes, err := v.api.TogglePostLike(ctx, postID, v.user)
	if err != nil {
		return v.fail("like_post", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.patch(postID, func(p *client.Post) { p.Likes = orEmpty(likes) })
	return nil
}

func (v *CommunityView) ToggleReplyLike(ctx context.Context, postID, replyID string) error {
	likes, err := v.api.ToggleReplyLike(ctx, postID, replyID, v.user)
	if err != nil {
		return v.fail("like_reply", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.patch(postID, func(p *client.Post) {
		for i := range p.Replies {
			if p.Replies[i].ID == replyID {
				p.Replies[i].Likes = orEmpty(likes)
			}
		}
	})
	return nil
}

func (v *CommunityView) DeletePost(ctx context.Context, postID string) error {
	if err := v.api.DeletePost(ctx, postID); err != nil {
		return v.fail("delete_post", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	list := v.active()
	*list = slices.DeleteFunc(*list, func(p client.Post) bool { return p.ID == postID })
	delete(v.drafts, postID)
	return nil
}

func (v *CommunityView) DeleteReply(ctx context.Context, postID, replyID string) error {
	if err := v.api.DeleteReply(ctx, postID, replyID); err != nil {
		return v.fail("delete_reply", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.patch(postID, func(p *client.Post) {
		p.Replies = slices.DeleteFunc(p.Replies, func(r client.Reply) bool { return r.ID == replyID })
	})
	return nil
}

// active 当前展示的列表：搜索中为结果集，否则为分页列表。调用方持锁
func (v *CommunityView) active() *[]client.Post {
	if v.search != nil {
		return &v.search
	}
	return &v.posts
}

// patch 调用方持锁；按 id 找不到时什么也不做
func (v *CommunityView) patch(postID string, fn func(*client.Post)) {
	list := *v.active()
	for i := range list {
		if list[i].ID == postID {
			// 先复制回复切片，已交出去的快照不受影响
			cp := list[i]
			cp.Replies = slices.Clone(cp.Replies)
			fn(&cp)
			list[i] = cp
			return
		}
	}
}

// Posts 当前展示列表的副本
func (v *CommunityView) Posts() []client.Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(*v.active())
}

func (v *CommunityView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

func (v *CommunityView) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

func (v *CommunityView) Searching() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query, v.search != nil
}

func (v *CommunityView) Banner() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.banner
}

func (v *CommunityView) DismissBanner() {
	v.mu.Lock()
	v.banner = ""
	v.mu.Unlock()
}

// Ago 相对时间展示
func Ago(ts, now time.Time) string { return utils.FormatTimestamp(ts, now) }

// dedupe 把 more 追加到 have 后面，跳过已出现的 id
func dedupe(have, more []client.Post) []client.Post {
	seen := make(map[string]struct{}, len(have)+len(more))
	for _, p := range have {
		seen[p.ID] = struct{}{}
	}
	out := have
	if out == nil {
		out = make([]client.Post, 0, len(more))
	}
	for _, p := range more {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
