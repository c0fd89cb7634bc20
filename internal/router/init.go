package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/account-rest-service/config"
	"github.com/oksasatya/account-rest-service/internal/container"
	handlers "github.com/oksasatya/account-rest-service/internal/interface/http"
	"github.com/oksasatya/account-rest-service/internal/interface/middleware"
	"github.com/oksasatya/account-rest-service/internal/router/modules"
	"github.com/oksasatya/account-rest-service/pkg/response"
)

// NewEngine builds the gin engine with global middleware and every module registered.
func NewEngine(c *container.Container) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	trustProxies(r, c)

	r.Use(middleware.Recovery(c.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecurityHeaders(c.Config.ForceHTTPS))
	r.Use(cors.New(corsConfig(c.Config)))
	if c.Config.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "Not found", nil)
	})
	r.NoMethod(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// trustProxies limits forwarding headers to configured proxies; none by default.
func trustProxies(r *gin.Engine, c *container.Container) {
	if err := r.SetTrustedProxies(c.Config.TrustedProxyList()); err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).Warn("invalid TRUSTED_PROXIES, forwarding headers ignored")
		}
		_ = r.SetTrustedProxies(nil)
	}
	if strings.EqualFold(c.Config.TrustedPlatform, "cloudflare") {
		r.TrustedPlatform = gin.PlatformCloudflare
	}
}

// corsConfig reflects any origin when "*" is configured so credentials stay usable.
func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowAnyOrigin() || len(cfg.CORSOrigins()) == 0 {
		cc.AllowOriginFunc = func(string) bool { return true }
	} else {
		cc.AllowOrigins = cfg.CORSOrigins()
	}
	return cc
}

// InitModules wires handlers from the container and adds their modules to the registry.
func InitModules(reg *Registry, c *container.Container) {
	var allow middleware.AllowFunc
	if c.Config.RateLimitBypassPrivate {
		allow = middleware.AllowPrivateIP()
	}
	limiter := middleware.RateLimit(c.Redis, middleware.RateLimitConfig{
		Limit:  c.Config.RateLimitPerMinute,
		Window: time.Minute,
		Key:    middleware.KeyByIP(),
		Allow:  allow,
		Logger: c.Logger,
	})

	reg.Add(
		modules.NewSystemModule(handlers.NewSystemHandler(c.Config.ServiceName, c.Config.ServiceVersion)),
		modules.NewAccountModule(handlers.NewAccountHandler(c.Service, c.Logger), limiter),
	)
	if c.Config.DebugMetricsEnabled {
		reg.Add(modules.NewDebugModule(middleware.RateLimit(c.Redis, middleware.RateLimitConfig{
			Limit:  120,
			Window: time.Minute,
			Key:    middleware.KeyByIPAndRoute(),
			Allow:  allow,
			Logger: c.Logger,
		})))
	}
}
