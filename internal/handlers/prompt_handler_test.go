package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/bajrangpainters/backend/internal/prompt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromptRouter(delay time.Duration) *gin.Engine {
	h := NewPromptHandler(prompt.NewRegistry(delay, nil))
	r := gin.New()
	sessions := r.Group("/api/v1/prompt/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("/:id", h.GetSession)
	sessions.POST("/:id/open", h.Open)
	sessions.POST("/:id/close", h.Close)
	return r
}

func TestPromptSessionManualOpen(t *testing.T) {
	r := newPromptRouter(time.Hour)

	w := request(r, http.MethodPost, "/api/v1/prompt/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created prompt.State
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, prompt.PhaseWaiting, created.Phase)
	assert.False(t, created.HasBeenShown)

	w = request(r, http.MethodPost, "/api/v1/prompt/sessions/"+created.ID+"/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opened prompt.State
	decode(t, w, &opened)
	assert.True(t, opened.IsOpen)
	assert.True(t, opened.HasBeenShown)
	assert.Equal(t, prompt.PhaseOpenManual, opened.Phase)

	w = request(r, http.MethodPost, "/api/v1/prompt/sessions/"+created.ID+"/close", nil)
	var closed prompt.State
	decode(t, w, &closed)
	assert.False(t, closed.IsOpen)
	assert.True(t, closed.HasBeenShown)
	assert.Equal(t, prompt.PhaseClosed, closed.Phase)
}

func TestPromptSessionAutoOpen(t *testing.T) {
	r := newPromptRouter(20 * time.Millisecond)

	var created prompt.State
	decode(t, request(r, http.MethodPost, "/api/v1/prompt/sessions", nil), &created)

	assert.Eventually(t, func() bool {
		var s prompt.State
		w := request(r, http.MethodGet, "/api/v1/prompt/sessions/"+created.ID, nil)
		if w.Code != http.StatusOK {
			return false
		}
		decode(t, w, &s)
		return s.IsOpen && s.Phase == prompt.PhaseOpenAuto
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPromptSessionNotFound(t *testing.T) {
	r := newPromptRouter(time.Hour)
	for _, path := range []string{"/api/v1/prompt/sessions/nope", "/api/v1/prompt/sessions/nope/open"} {
		method := http.MethodGet
		if path != "/api/v1/prompt/sessions/nope" {
			method = http.MethodPost
		}
		w := request(r, method, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Session not found"}`, w.Body.String())
	}
}
