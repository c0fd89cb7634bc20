package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/account-rest-service/internal/interface/http"
)

// AccountModule mounts the account CRUD and search routes.
type AccountModule struct {
	Handler *handlers.AccountHandler
	Limiter gin.HandlerFunc
}

func NewAccountModule(h *handlers.AccountHandler, limiter gin.HandlerFunc) *AccountModule {
	return &AccountModule{Handler: h, Limiter: limiter}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	if m.Limiter != nil {
		accounts.Use(m.Limiter)
	}
	{
		accounts.POST("", m.Handler.Create)
		accounts.GET("", m.Handler.List)
		accounts.GET("/:id", m.Handler.Get)
		accounts.PUT("/:id", m.Handler.Update)
		accounts.DELETE("/:id", m.Handler.Delete)
	}

	searchGroup := rg.Group("/search")
	if m.Limiter != nil {
		searchGroup.Use(m.Limiter)
	}
	searchGroup.GET("/accounts", m.Handler.Search)
}
