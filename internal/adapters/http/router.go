package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"huddle/internal/adapters/signal"
	"huddle/internal/app"
	"huddle/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware mints a durable per-browser token cookie. It
// survives reconnects and serves as the deviceKey fallback for clients
// that do not supply one on join.
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

func SetupRouter(ctx context.Context, cfg *config.Config, rt *app.Router) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctl := signal.NewController(cfg, rt)

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(ctx, c)
	})

	// ICE server list for the browser client; keeps STUN endpoints out
	// of the shipped frontend.
	api.GET("/rtc", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"iceServers": []webrtc.ICEServer{
				{URLs: cfg.STUNServers},
			},
		})
	})

	api.GET("/stats", func(c *gin.Context) {
		online, calls := rt.Stats()
		c.JSON(http.StatusOK, gin.H{
			"online": online,
			"calls":  calls,
		})
	})

	return r
}
