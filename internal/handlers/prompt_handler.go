package handlers

import (
	"errors"
	"net/http"

	"github.com/bajrangpainters/backend/internal/prompt"
	"github.com/gin-gonic/gin"
)

type PromptHandler struct {
	registry *prompt.Registry
}

func NewPromptHandler(registry *prompt.Registry) *PromptHandler {
	return &PromptHandler{registry: registry}
}

func (h *PromptHandler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.registry.Create())
}

func (h *PromptHandler) GetSession(c *gin.Context) {
	h.respond(c, h.registry.Get)
}

func (h *PromptHandler) Open(c *gin.Context) {
	h.respond(c, h.registry.Open)
}

func (h *PromptHandler) Close(c *gin.Context) {
	h.respond(c, h.registry.Close)
}

func (h *PromptHandler) respond(c *gin.Context, op func(id string) (prompt.State, error)) {
	state, err := op(c.Param("id"))
	if errors.Is(err, prompt.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, state)
}
