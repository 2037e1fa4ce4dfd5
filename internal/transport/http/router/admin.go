package router

import (
	"github.com/gin-gonic/gin"

	"plantcare-community/internal/domain"
	mdw "plantcare-community/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1（统一要求 admin 角色）
func NewAdminEngine(o Options, reg *Registry) *gin.Engine {
	r := base(o)

	admin := r.Group(AdminPrefix)
	admin.Use(mdw.AuthJWT(o.JWT, domain.RoleAdmin))
	if o.Authors != nil {
		admin.Use(mdw.AuthorLoader(o.Authors))
	}
	reg.MountAdmin(admin)
	return r
}
