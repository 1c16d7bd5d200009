package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Parley/internal/adapters/auth"
	"github.com/dkeye/Parley/internal/adapters/signal"
	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Deps are the components the router serves.
type Deps struct {
	Orch     *orch.Orchestrator
	Signal   *signal.SignalWSController
	Auth     *auth.JWTResolver // nil when only guests are accepted
	Gatherer prometheus.Gatherer
}

func SetupRouter(ctx context.Context, cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})

	api := r.Group("/api")
	api.Use(sessions.Sessions("ParleySessions", store))
	api.Use(IdentityMiddleware(d.Auth, cfg.Auth.AllowGuests))

	h := &handlers{orch: d.Orch}
	calls := api.Group("/calls")
	calls.GET("/history", h.history)
	calls.GET("/active", h.active)
	calls.GET("/availability/:userId", h.availability)
	calls.GET("/:id", h.call)

	api.GET("/ws/signal", func(c *gin.Context) {
		id := identityFrom(c)
		log.Info().Str("module", "adapters.http").Str("user", id.ID.String()).Msg("ws signal endpoint hit")
		d.Signal.HandleSignal(ctx, c, id)
	})

	log.Info().Str("module", "adapters.http").Bool("guests", cfg.Auth.AllowGuests).
		Bool("jwt", d.Auth != nil).Msg("router setup")
	return r
}
