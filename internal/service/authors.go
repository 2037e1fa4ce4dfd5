package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"go.uber.org/zap"

	"plantcare-community/internal/core/cache"
	"plantcare-community/internal/domain"
)

type ctxKey struct{}

// AuthorLoader 请求级批量加载器：一次响应内所有作者 id 合并成一次目录查询
type AuthorLoader = dataloader.Interface[string, domain.Author]

// Authors 构造请求级 loader；cache 为 nil 时直接查库
type Authors struct {
	users domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
	wait  time.Duration
}

func NewAuthors(users domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *Authors {
	if l == nil {
		l = zap.NewNop()
	}
	return &Authors{users: users, cache: c, ttl: ttl, log: l, wait: 2 * time.Millisecond}
}

func userKey(id string) string { return "user:" + id }

func (a *Authors) NewLoader() AuthorLoader {
	return dataloader.NewBatchedLoader(a.batch,
		dataloader.WithWait[string, domain.Author](a.wait),
		dataloader.WithBatchCapacity[string, domain.Author](500),
	)
}

func (a *Authors) batch(ctx context.Context, ids []string) []*dataloader.Result[domain.Author] {
	found := make(map[string]domain.UserDetails, len(ids))
	missing := ids

	if a.cache != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = userKey(id)
		}
		hits := a.cache.MGet(ctx, keys)
		missing = missing[:0:0]
		for _, id := range ids {
			var d domain.UserDetails
			if b, ok := hits[userKey(id)]; ok && json.Unmarshal(b, &d) == nil {
				found[id] = d
				continue
			}
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		us, err := a.users.FindByIDs(ctx, missing)
		if err != nil {
			// 作者解析失败不影响帖子本身，降级为占位身份
			a.log.Warn("resolve authors failed", zap.Int("ids", len(missing)), zap.Error(err))
		}
		for i := range us {
			d := us[i].Details()
			found[d.ID] = d
			if a.cache != nil {
				_ = cache.SetJSON(a.cache, ctx, userKey(d.ID), d, a.ttl)
			}
		}
	}

	out := make([]*dataloader.Result[domain.Author], len(ids))
	for i, id := range ids {
		d, ok := found[id]
		if !ok {
			out[i] = &dataloader.Result[domain.Author]{Data: domain.PlaceholderAuthor(id)}
			continue
		}
		out[i] = &dataloader.Result[domain.Author]{Data: domain.Author{ID: d.ID, Name: d.Name, Username: d.Username}}
	}
	return out
}

// WithAuthorLoader 把 loader 挂到请求 context 上
func WithAuthorLoader(ctx context.Context, l AuthorLoader) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func (a *Authors) loaderFrom(ctx context.Context) AuthorLoader {
	if l, ok := ctx.Value(ctxKey{}).(AuthorLoader); ok && l != nil {
		return l
	}
	return a.NewLoader()
}

// Resolve 返回 id -> 作者，永远不会缺 key
func (a *Authors) Resolve(ctx context.Context, ids []string) map[string]domain.Author {
	out := make(map[string]domain.Author, len(ids))
	if len(ids) == 0 {
		return out
	}
	vals, errs := a.loaderFrom(ctx).LoadMany(ctx, ids)()
	for i, id := range ids {
		if i < len(errs) && errs[i] != nil || i >= len(vals) {
			out[id] = domain.PlaceholderAuthor(id)
			continue
		}
		out[id] = vals[i]
	}
	return out
}

type ReplyView struct {
	domain.Reply
	Author domain.Author `json:"author"`
}

// PostView 对外的帖子：帖子与每条回复都带上作者展示信息
type PostView struct {
	domain.Post
	Author  domain.Author `json:"author"`
	Replies []ReplyView   `json:"replies"`
}

func (a *Authors) Views(ctx context.Context, ps []domain.Post) []PostView {
	seen := map[string]struct{}{}
	var ids []string
	for i := range ps {
		for _, id := range ps[i].AuthorIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	authors := a.Resolve(ctx, ids)
	out := make([]PostView, len(ps))
	for i := range ps {
		out[i] = view(&ps[i], authors)
	}
	return out
}

func (a *Authors) View(ctx context.Context, p *domain.Post) PostView {
	return view(p, a.Resolve(ctx, p.AuthorIDs()))
}

func view(p *domain.Post, authors map[string]domain.Author) PostView {
	author := func(id string) domain.Author {
		if v, ok := authors[id]; ok {
			return v
		}
		return domain.PlaceholderAuthor(id)
	}
	v := PostView{Post: *p, Author: author(p.AuthorID), Replies: make([]ReplyView, len(p.Replies))}
	for i, r := range p.Replies {
		v.Replies[i] = ReplyView{Reply: r, Author: author(r.AuthorID)}
	}
	return v
}
