// Package server exposes the hub over a JSON HTTP API.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/app"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/auth"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/portfolio"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/session"
)

const (
	DefaultAddr = ":8080"

	// SessionCookie and SessionHeader carry the session token.
	SessionCookie = "hub_session"
	SessionHeader = "X-Session-Token"
)

// Options configures the HTTP listener.
type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// Handler holds the services behind the API.
type Handler struct {
	Dashboard *app.Dashboard
	Auth      *auth.Service
	Portfolio *portfolio.Book
	Sessions  *session.Store
}

// NewHTTPServer builds the listener for h with the given options.
func NewHTTPServer(h *Handler, opts Options) *http.Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 60 * time.Second
	}
	return &http.Server{
		Addr:           opts.Addr,
		Handler:        h.Engine(opts.AllowedOrigins),
		ReadTimeout:    opts.ReadTimeout,
		WriteTimeout:   opts.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

// Engine wires the routes.
func (h *Handler) Engine(origins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(requestLogger(), gin.Recovery())
	engine.Use(cors.New(corsConfig(origins)))

	api := engine.Group("/api")
	api.GET("/health", h.health)
	api.GET("/session", h.getSession)
	api.POST("/session/page", h.requireSession, h.setPage)
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.POST("/auth/logout", h.requireSession, h.logout)
	api.GET("/resolve", h.resolve)
	api.GET("/quotes", h.quotes)

	user := api.Group("", h.requireSession, h.requireLogin)
	user.GET("/market", h.market)
	user.GET("/news", h.news)
	user.GET("/chat", h.chatHistory)
	user.POST("/chat", h.chat)
	user.GET("/portfolio", h.listPortfolio)
	user.POST("/portfolio", h.addPortfolio)
	user.GET("/portfolio/summary", h.portfolioSummary)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", SessionHeader},
		ExposeHeaders: []string{"Content-Length", SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// requestLogger writes one access line per request through the std logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := "[INFO]"
		switch {
		case status >= 500:
			level = "[ERROR]"
		case status >= 400:
			level = "[WARN]"
		}
		log.Printf("%s %s %s %d %v", level, c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond))
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
