package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"boardsync/internal/access"
	"boardsync/internal/board"
	"boardsync/internal/hub"
	"boardsync/internal/middleware"
)

// BoardHandler serves the non-realtime board surface: project-scoped
// creation and listing, rename, and deletion with session eviction.
type BoardHandler struct {
	Store       *board.Store
	Hub         *hub.Hub
	Memberships access.Memberships
}

type createBoardBody struct {
	Name string `json:"name" binding:"required"`
}

type renameBoardBody struct {
	Name string `json:"name" binding:"required"`
}

func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	projectID := c.Param("id")
	if !h.Memberships.IsMember(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body createBoardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	meta := h.Store.CreateBoard(projectID, body.Name)
	c.JSON(http.StatusOK, gin.H{"board": meta})
}

func (h *BoardHandler) List(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	projectID := c.Param("id")
	if !h.Memberships.IsMember(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": h.Store.ListBoards(projectID)})
}

func (h *BoardHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	meta, err := h.Store.GetBoard(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if !h.Memberships.IsMember(userID, meta.ProjectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	data, err := h.Store.GetSnapshot(meta.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": meta, "data": data})
}

func (h *BoardHandler) Rename(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	meta, err := h.Store.GetBoard(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if !h.Memberships.IsMember(userID, meta.ProjectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body renameBoardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	meta, err = h.Store.RenameBoard(meta.ID, body.Name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": meta})
}

// Delete removes a board and kicks every live session off it.
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	meta, err := h.Store.GetBoard(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if !h.Memberships.IsMember(userID, meta.ProjectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if err := h.Store.DeleteBoard(meta.ID); err != nil {
		if errors.Is(err, board.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}
	evicted := h.Hub.EvictBoard(meta.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "evicted": evicted})
}
