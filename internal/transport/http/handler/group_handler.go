package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantcare-community/internal/domain"
	"plantcare-community/internal/service"
	"plantcare-community/internal/transport/http/ez"
)

type GroupHandler struct {
	svc *service.GroupService
	log *zap.Logger
}

func NewGroupHandler(svc *service.GroupService, l *zap.Logger) *GroupHandler {
	return &GroupHandler{svc: svc, log: l}
}

func (h *GroupHandler) Priority() int { return 30 }

type createCommunityIn struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Rules       []string `json:"rules"`
}

func (h *GroupHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Community]{
		Method: http.MethodGet,
		Path:   "/communities",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Community, error) {
			return h.svc.List(c.Request.Context(), c.Query("category"))
		},
	})

	ez.RegisterAction(e, ez.Action[createCommunityIn, *domain.Community]{
		Method: http.MethodPost,
		Path:   "/communities",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createCommunityIn) (*domain.Community, error) {
			return h.svc.Create(c.Request.Context(), actorOf(c), service.CreateCommunityInput{
				Name: in.Name, Description: in.Description, Category: in.Category,
				Tags: in.Tags, Rules: in.Rules,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Community]{
		Method: http.MethodGet,
		Path:   "/communities/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Community, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Confirmation]{
		Method: http.MethodPost,
		Path:   "/communities/:id/join",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Confirmation, error) {
			return h.svc.Join(c.Request.Context(), c.Param("id"), actorOf(c))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.Confirmation]{
		Method: http.MethodPost,
		Path:   "/communities/:id/leave",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Confirmation, error) {
			return h.svc.Leave(c.Request.Context(), c.Param("id"), actorOf(c))
		},
	})
}
