package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"boardsync/internal/access"
	"boardsync/internal/auth"
	"boardsync/internal/board"
	"boardsync/internal/handler"
	"boardsync/internal/hub"
	"boardsync/internal/middleware"
)

type Deps struct {
	Store       *board.Store
	Hub         *hub.Hub
	Memberships access.Memberships
	TokenConfig auth.TokenConfig
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	boardHandler := &handler.BoardHandler{
		Store:       deps.Store,
		Hub:         deps.Hub,
		Memberships: deps.Memberships,
	}

	createQuota := middleware.NewQuotaLimiter(30, time.Minute)

	protected := r.Group("/v1")
	protected.Use(middleware.RequireAuth(deps.TokenConfig))
	protected.POST("/projects/:id/boards", middleware.CreationQuota(createQuota), boardHandler.Create)
	protected.GET("/projects/:id/boards", boardHandler.List)
	protected.GET("/boards/:id", boardHandler.Get)
	protected.PUT("/boards/:id", boardHandler.Rename)
	protected.DELETE("/boards/:id", boardHandler.Delete)

	wsHandler := &handler.WebSocketHandler{
		Hub:         deps.Hub,
		Store:       deps.Store,
		Memberships: deps.Memberships,
		TokenConfig: deps.TokenConfig,
	}
	r.GET("/ws/boards/:boardId", wsHandler.Serve)

	return r
}
