package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantcare-community/internal/service"
	"plantcare-community/internal/transport/http/ez"
)

type CommunityHandler struct {
	svc *service.CommunityService
	log *zap.Logger
}

func NewCommunityHandler(svc *service.CommunityService, l *zap.Logger) *CommunityHandler {
	return &CommunityHandler{svc: svc, log: l}
}

func (h *CommunityHandler) Priority() int { return 10 }

type createPostIn struct {
	Author      string `json:"author"`
	Content     string `json:"content"`
	CommunityID string `json:"communityId"`
}

type replyIn struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type likeIn struct {
	UserID string `json:"userId"`
}

// MountAPI 挂在 /api/v1/community 下
func (h *CommunityHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[createPostIn, *service.PostView]{
		Method: http.MethodPost,
		Path:   "/posts",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createPostIn) (*service.PostView, error) {
			return h.svc.CreatePost(c.Request.Context(), service.CreatePostInput{
				AuthorID:    orSelf(c, in.Author),
				Content:     in.Content,
				CommunityID: in.CommunityID,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.PostPage]{
		Method: http.MethodGet,
		Path:   "/posts",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.PostPage, error) {
			return h.svc.ListPosts(c.Request.Context(), service.ListPostsInput{
				Page:        atoiOr(c.Query("page"), 1),
				Limit:       atoiOr(c.Query("limit"), 0),
				Tag:         c.Query("tag"),
				CommunityID: c.Query("communityId"),
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []service.PostView]{
		Method: http.MethodGet,
		Path:   "/posts/search",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.PostView, error) {
			return h.svc.SearchPosts(c.Request.Context(), c.Query("query"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.PostView]{
		Method: http.MethodGet,
		Path:   "/posts/:postId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.PostView, error) {
			return h.svc.GetPost(c.Request.Context(), c.Param("postId"))
		},
	})

	ez.RegisterAction(e, ez.Action[replyIn, *service.PostView]{
		Method: http.MethodPost,
		Path:   "/posts/:postId/replies",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *replyIn) (*service.PostView, error) {
			return h.svc.AddReply(c.Request.Context(), c.Param("postId"), orSelf(c, in.Author), in.Content)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Confirmation]{
		Method: http.MethodDelete,
		Path:   "/posts/:postId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Confirmation, error) {
			return h.svc.DeletePost(c.Request.Context(), c.Param("postId"), actorOf(c))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Confirmation]{
		Method: http.MethodDelete,
		Path:   "/posts/:postId/replies/:replyId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Confirmation, error) {
			return h.svc.DeleteReply(c.Request.Context(), c.Param("postId"), c.Param("replyId"), actorOf(c))
		},
	})

	ez.RegisterAction(e, ez.Action[likeIn, *service.LikesResult]{
		Method: http.MethodPost,
		Path:   "/posts/:postId/like",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *likeIn) (*service.LikesResult, error) {
			return h.svc.TogglePostLike(c.Request.Context(), c.Param("postId"), orSelf(c, in.UserID))
		},
	})

	ez.RegisterAction(e, ez.Action[likeIn, *service.LikesResult]{
		Method: http.MethodPost,
		Path:   "/posts/:postId/replies/:replyId/like",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *likeIn) (*service.LikesResult, error) {
			return h.svc.ToggleReplyLike(c.Request.Context(), c.Param("postId"), c.Param("replyId"), orSelf(c, in.UserID))
		},
	})
}
