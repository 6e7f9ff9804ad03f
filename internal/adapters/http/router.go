package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/adapters/signal"
	"github.com/dkeye/Lobby/internal/adapters/socketio"
	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/config"
)

const (
	sessionName        = "LobbySessions"
	sessionDisplayName = "display_name"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware tags every browser with a long-lived cookie so logs
// can tie several connections to one client.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// rememberedName is the display name stored by PUT /api/profile.
func rememberedName(c *gin.Context) string {
	name, _ := sessions.Default(c).Get(sessionDisplayName).(string)
	return name
}

// corsMiddleware opens the REST API to the configured client origin.
// Cookies are only allowed for an explicit origin.
func corsMiddleware(origin string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if origin == "" || origin == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = []string{origin}
		c.AllowCredentials = true
	}
	return cors.New(c)
}

// SetupRouter builds the HTTP surface. sio may be nil when Socket.IO is disabled.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, sio *socketio.Server) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigin))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 30, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": o.Registry.Count()})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ws := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:     cfg.ReadLimit,
		PingPeriod:    cfg.PingPeriod,
		SendBuffer:    cfg.SendBuffer,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ws.HandleSignal(ctx, c, rememberedName(c))
	})

	lobbies := &lobbyHandlers{orch: o}
	api.GET("/lobbies", lobbies.list)
	api.GET("/invites/:code", lobbies.preview)

	api.GET("/ice", iceHandler(cfg.ICEServers))
	api.GET("/profile", getProfile)
	api.PUT("/profile", putProfile)

	if sio != nil {
		sio.Mount(r)
	}

	return r
}
