package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

const sessionKey = "session"

func tokenFrom(c *gin.Context) string {
	if t := c.GetHeader(SessionHeader); t != "" {
		return t
	}
	t, _ := c.Cookie(SessionCookie)
	return t
}

func setToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, 0, "/", "", false, true)
	c.Header(SessionHeader, token)
}

// currentSession loads the caller's session, or nil when there is none.
func (h *Handler) currentSession(c *gin.Context) *model.Session {
	if v, ok := c.Get(sessionKey); ok {
		return v.(*model.Session)
	}
	token := tokenFrom(c)
	if token == "" {
		return nil
	}
	sess, err := h.Sessions.Get(token)
	if err != nil {
		return nil
	}
	c.Set(sessionKey, sess)
	return sess
}

// ensureSession returns the caller's session, creating one if needed.
func (h *Handler) ensureSession(c *gin.Context) *model.Session {
	if sess := h.currentSession(c); sess != nil {
		return sess
	}
	sess := h.Sessions.Create()
	setToken(c, sess.Token)
	c.Set(sessionKey, sess)
	return sess
}

func (h *Handler) requireSession(c *gin.Context) {
	if h.currentSession(c) == nil {
		writeError(c, http.StatusUnauthorized, "session required")
		return
	}
	c.Next()
}

func (h *Handler) requireLogin(c *gin.Context) {
	if sess := h.currentSession(c); sess == nil || !sess.LoggedIn() {
		writeError(c, http.StatusUnauthorized, "login required")
		return
	}
	c.Next()
}

// reload returns the stored state after a mutation.
func (h *Handler) reload(c *gin.Context, token string) {
	sess, err := h.Sessions.Get(token)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "session expired")
		return
	}
	c.Set(sessionKey, sess)
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) getSession(c *gin.Context) {
	sess := h.ensureSession(c)
	c.JSON(http.StatusOK, sess)
}

type pageRequest struct {
	Page model.Page `json:"page" binding:"required"`
}

func (h *Handler) setPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	sess := h.currentSession(c)
	switch req.Page {
	case model.PageLanding, model.PageAuth:
		if sess.LoggedIn() {
			writeError(c, http.StatusConflict, "already logged in")
			return
		}
	case model.PageDashboard:
		if !sess.LoggedIn() {
			writeError(c, http.StatusUnauthorized, "login required")
			return
		}
	default:
		writeError(c, http.StatusBadRequest, "unknown page")
		return
	}
	if err := h.Sessions.SetPage(sess.Token, req.Page); err != nil {
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	h.reload(c, sess.Token)
}
