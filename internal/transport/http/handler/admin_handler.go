package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/service"
	"plantcare-community/internal/transport/http/ez"
)

// AdminHandler 管理端：用户检索、统计、版主删帖；分组已要求 admin 角色
type AdminHandler struct {
	users     *service.UserService
	community *service.CommunityService
	groups    *service.GroupService
	log       *zap.Logger
}

func NewAdminHandler(users *service.UserService, community *service.CommunityService, groups *service.GroupService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, community: community, groups: groups, log: l}
}

type listUsersQ struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Q     string `form:"q"` // 按 email/name/username 模糊搜
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[listUsersQ, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersQ) (*service.UserPage, error) {
			return h.users.List(c.Request.Context(), in.Q, in.Page, in.Limit)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:userId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Me(c.Request.Context(), c.Param("userId"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Stats]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Stats, error) {
			return service.CollectStats(c.Request.Context(), h.users, h.community, h.groups)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Confirmation]{
		Method: http.MethodDelete,
		Path:   "/posts/:postId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Confirmation, error) {
			return h.community.ModeratorDeletePost(c.Request.Context(), c.Param("postId"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Confirmation]{
		Method: http.MethodDelete,
		Path:   "/posts/:postId/replies/:replyId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Confirmation, error) {
			return h.community.ModeratorDeleteReply(c.Request.Context(), c.Param("postId"), c.Param("replyId"))
		},
	})
}
