package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"plantcare-community/internal/core/config"
	"plantcare-community/internal/domain"
	"plantcare-community/pkg/utils"
)

const (
	PolicyOpen   = "open"
	PolicyAuthor = "author"
)

// Actor 发起删除的调用方；UserID 为空表示匿名
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type CommunityOptions struct {
	DefaultPageSize  int
	MaxPageSize      int
	SearchLimit      int
	MaxContentLength int
	DeletePolicy     string
}

func CommunityOptionsFrom(c config.Community) CommunityOptions {
	return CommunityOptions{
		DefaultPageSize:  c.DefaultPageSize,
		MaxPageSize:      c.MaxPageSize,
		SearchLimit:      c.SearchLimit,
		MaxContentLength: c.MaxContentLength,
		DeletePolicy:     c.DeletePolicy,
	}
}

func (o *CommunityOptions) normalize() {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 10
	}
	if o.MaxPageSize < o.DefaultPageSize {
		o.MaxPageSize = 100
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 100
	}
	if o.MaxContentLength <= 0 {
		o.MaxContentLength = 5000
	}
	if o.DeletePolicy == "" {
		o.DeletePolicy = PolicyOpen
	}
}

type CommunityService struct {
	posts       domain.PostRepository
	communities domain.CommunityRepository
	authors     *Authors
	opt         CommunityOptions
	log         *zap.Logger
	now         func() time.Time
}

func NewCommunityService(
	posts domain.PostRepository,
	communities domain.CommunityRepository,
	authors *Authors,
	opt CommunityOptions,
	l *zap.Logger,
) *CommunityService {
	opt.normalize()
	if l == nil {
		l = zap.NewNop()
	}
	return &CommunityService{
		posts:       posts,
		communities: communities,
		authors:     authors,
		opt:         opt,
		log:         l.Named("community"),
		now:         time.Now,
	}
}

type PostPage struct {
	Posts       []PostView `json:"posts"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	TotalPosts  int64      `json:"totalPosts"`
	Limit       int        `json:"limit"`
}

type LikesResult struct {
	Likes []string `json:"likes"`
}

type Confirmation struct {
	Message string `json:"message"`
}

type CreatePostInput struct {
	AuthorID    string
	Content     string
	CommunityID string
}

// maxIDLen 与 author_id/user_id 列宽一致
const maxIDLen = 64

func checkID(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Validation(field + " is required")
	}
	if len(id) > maxIDLen {
		return domain.Validation(field + " is too long")
	}
	return nil
}

// checkContent 只拒绝空串；纯空白内容照常保存
func (s *CommunityService) checkContent(content string) error {
	if content == "" {
		return domain.Validation("content is required")
	}
	if len(content) > s.opt.MaxContentLength {
		return domain.Validation("content is too long")
	}
	return nil
}

func (s *CommunityService) CreatePost(ctx context.Context, in CreatePostInput) (*PostView, error) {
	if err := checkID(in.AuthorID, "author"); err != nil {
		return nil, err
	}
	if err := s.checkContent(in.Content); err != nil {
		return nil, err
	}
	if in.CommunityID != "" {
		if _, err := s.communities.Get(ctx, in.CommunityID); err != nil {
			return nil, domain.Wrap("load community", err)
		}
	}
	p := &domain.Post{
		ID:          utils.NewID(),
		AuthorID:    in.AuthorID,
		CommunityID: in.CommunityID,
		Content:     in.Content,
		Tags:        domain.ExtractTags(in.Content),
		Replies:     []domain.Reply{},
		Likes:       []string{},
		Timestamp:   s.now().UTC(),
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, domain.Wrap("create post", err)
	}
	countAction(actCreatePost)
	s.log.Debug("post created", zap.String("post_id", p.ID), zap.String("author", p.AuthorID))
	v := s.authors.View(ctx, p)
	return &v, nil
}

func (s *CommunityService) GetPost(ctx context.Context, postID string) (*PostView, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, domain.Wrap("get post", err)
	}
	v := s.authors.View(ctx, p)
	return &v, nil
}

type ListPostsInput struct {
	Page        int
	Limit       int
	Tag         string
	CommunityID string
}

// PageBounds 规整分页参数：page<1 取 1，limit<1 取默认，limit 不超过上限
func (s *CommunityService) PageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.opt.DefaultPageSize
	}
	if limit > s.opt.MaxPageSize {
		limit = s.opt.MaxPageSize
	}
	return page, limit
}

func (s *CommunityService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	page, limit := s.PageBounds(in.Page, in.Limit)
	ps, total, err := s.posts.List(ctx, domain.PostFilter{
		Tag:         strings.ToLower(strings.TrimPrefix(strings.TrimSpace(in.Tag), "#")),
		CommunityID: in.CommunityID,
		Offset:      (page - 1) * limit,
		Limit:       limit,
	})
	if err != nil {
		return nil, domain.Wrap("list posts", err)
	}
	return &PostPage{
		Posts:       s.authors.Views(ctx, ps),
		CurrentPage: page,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		TotalPosts:  total,
		Limit:       limit,
	}, nil
}

func (s *CommunityService) AddReply(ctx context.Context, postID, authorID, content string) (*PostView, error) {
	if err := checkID(authorID, "author"); err != nil {
		return nil, err
	}
	if err := s.checkContent(content); err != nil {
		return nil, err
	}
	r := &domain.Reply{
		ID:        utils.NewID(),
		AuthorID:  authorID,
		Content:   content,
		Likes:     []string{},
		Timestamp: s.now().UTC(),
	}
	if err := s.posts.AddReply(ctx, postID, r); err != nil {
		return nil, domain.Wrap("add reply", err)
	}
	countAction(actAddReply)
	return s.GetPost(ctx, postID)
}

func (s *CommunityService) TogglePostLike(ctx context.Context, postID, userID string) (*LikesResult, error) {
	if err := checkID(userID, "userId"); err != nil {
		return nil, err
	}
	likes, err := s.posts.TogglePostLike(ctx, postID, userID)
	if err != nil {
		return nil, domain.Wrap("toggle post like", err)
	}
	countAction(actLikePost)
	return &LikesResult{Likes: likes}, nil
}

func (s *CommunityService) ToggleReplyLike(ctx context.Context, postID, replyID, userID string) (*LikesResult, error) {
	if err := checkID(userID, "userId"); err != nil {
		return nil, err
	}
	likes, err := s.posts.ToggleReplyLike(ctx, postID, replyID, userID)
	if err != nil {
		return nil, domain.Wrap("toggle reply like", err)
	}
	countAction(actLikeReply)
	return &LikesResult{Likes: likes}, nil
}

// SearchPosts 空查询匹配全部，结果数受 search_limit 限制
func (s *CommunityService) SearchPosts(ctx context.Context, query string) ([]PostView, error) {
	ps, err := s.posts.Search(ctx, query, s.opt.SearchLimit)
	if err != nil {
		return nil, domain.Wrap("search posts", err)
	}
	return s.authors.Views(ctx, ps), nil
}

// authorize 按删除策略检查；open 策略下不做任何检查
func (s *CommunityService) authorize(actor Actor, ownerID, what string) error {
	if s.opt.DeletePolicy != PolicyAuthor || actor.IsAdmin() {
		return nil
	}
	if actor.UserID == "" {
		return domain.Unauthorized("authentication required")
	}
	if actor.UserID != ownerID {
		return domain.Forbidden("Not authorized to delete this " + what)
	}
	return nil
}

func (s *CommunityService) DeletePost(ctx context.Context, postID string, actor Actor) (*Confirmation, error) {
	if s.opt.DeletePolicy == PolicyAuthor {
		p, err := s.posts.Get(ctx, postID)
		if err != nil {
			return nil, domain.Wrap("get post", err)
		}
		if err := s.authorize(actor, p.AuthorID, "post"); err != nil {
			return nil, err
		}
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return nil, domain.Wrap("delete post", err)
	}
	countAction(actDeletePost)
	s.log.Info("post deleted", zap.String("post_id", postID), zap.String("actor", actor.UserID))
	return &Confirmation{Message: "Post deleted successfully"}, nil
}

func (s *CommunityService) DeleteReply(ctx context.Context, postID, replyID string, actor Actor) (*Confirmation, error) {
	if s.opt.DeletePolicy == PolicyAuthor {
		p, err := s.posts.Get(ctx, postID)
		if err != nil {
			return nil, domain.Wrap("get post", err)
		}
		i := p.ReplyIndex(replyID)
		if i < 0 {
			return nil, domain.ErrReplyNotFound
		}
		if err := s.authorize(actor, p.Replies[i].AuthorID, "reply"); err != nil {
			return nil, err
		}
	}
	if err := s.posts.DeleteReply(ctx, postID, replyID); err != nil {
		return nil, domain.Wrap("delete reply", err)
	}
	countAction(actDeleteReply)
	return &Confirmation{Message: "Reply deleted successfully"}, nil
}

// ModeratorDeletePost 管理端删除，不受删除策略约束
func (s *CommunityService) ModeratorDeletePost(ctx context.Context, postID string) (*Confirmation, error) {
	return s.DeletePost(ctx, postID, Actor{Role: domain.RoleAdmin})
}

func (s *CommunityService) ModeratorDeleteReply(ctx context.Context, postID, replyID string) (*Confirmation, error) {
	return s.DeleteReply(ctx, postID, replyID, Actor{Role: domain.RoleAdmin})
}

func (s *CommunityService) Count(ctx context.Context) (int64, error) {
	n, err := s.posts.Count(ctx)
	return n, domain.Wrap("count posts", err)
}
