package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/auth"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/portfolio"
)

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrEmptyPassword):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Printf("[ERROR] register %s: %v", req.Email, err)
		writeError(c, http.StatusInternalServerError, "registration failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"email": u.Email})
}

func (h *Handler) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrWrongPassword):
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		log.Printf("[ERROR] login %s: %v", req.Email, err)
		writeError(c, http.StatusInternalServerError, "login failed")
		return
	}

	// A token issued before authentication is never promoted.
	if old := h.currentSession(c); old != nil {
		h.Sessions.Delete(old.Token)
	}
	sess := h.Sessions.Create()
	setToken(c, sess.Token)
	if err := h.Sessions.Login(sess.Token, u.Email); err != nil {
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	log.Printf("[INFO] %s logged in", u.Email)
	h.reload(c, sess.Token)
}

func (h *Handler) logout(c *gin.Context) {
	sess := h.currentSession(c)
	if err := h.Sessions.Logout(sess.Token); err != nil {
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	h.reload(c, sess.Token)
}

func (h *Handler) resolve(c *gin.Context) {
	q := c.Query("q")
	c.JSON(http.StatusOK, gin.H{"query": q, "symbol": h.Dashboard.Resolve(q)})
}

func (h *Handler) market(c *gin.Context) {
	m := h.Dashboard.Market(c.Request.Context(), c.Query("q"))
	sess := h.currentSession(c)
	_ = h.Sessions.SetSymbol(sess.Token, m.Symbol)
	c.JSON(http.StatusOK, m)
}

func (h *Handler) news(c *gin.Context) {
	symbol, items := h.Dashboard.News(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "items": items})
}

func (h *Handler) quotes(c *gin.Context) {
	raw := c.Query("symbols")
	if strings.TrimSpace(raw) == "" {
		writeError(c, http.StatusBadRequest, "symbols is required")
		return
	}
	quotes := h.Dashboard.Quotes(c.Request.Context(), strings.Split(raw, ","))
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

func (h *Handler) chatHistory(c *gin.Context) {
	sess := h.currentSession(c)
	msgs := sess.Messages
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"symbol": sess.LastSymbol, "messages": msgs})
}

type chatRequest struct {
	Query   string `json:"q"`
	Message string `json:"message" binding:"required"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	sess := h.currentSession(c)
	reply, err := h.Dashboard.Chat(c.Request.Context(), sess.Token, req.Query, req.Message)
	if err != nil {
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) listPortfolio(c *gin.Context) {
	sess := h.currentSession(c)
	entries, err := h.Portfolio.List(c.Request.Context(), sess.Email)
	if err != nil {
		log.Printf("[ERROR] list portfolio %s: %v", sess.Email, err)
		writeError(c, http.StatusBadGateway, "portfolio unavailable")
		return
	}
	if entries == nil {
		entries = []model.PortfolioEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type entryRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (h *Handler) addPortfolio(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	sess := h.currentSession(c)
	symbol := h.Dashboard.Resolve(req.Symbol)
	e, err := h.Portfolio.Add(c.Request.Context(), sess.Email, symbol, req.Price, req.Quantity)
	switch {
	case errors.Is(err, portfolio.ErrInvalidPrice), errors.Is(err, portfolio.ErrInvalidQuantity),
		errors.Is(err, portfolio.ErrMissingSymbol):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[ERROR] add portfolio %s: %v", sess.Email, err)
		writeError(c, http.StatusBadGateway, "portfolio unavailable")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) portfolioSummary(c *gin.Context) {
	sess := h.currentSession(c)
	holdings, err := h.Portfolio.Summary(c.Request.Context(), sess.Email)
	if err != nil {
		log.Printf("[ERROR] portfolio summary %s: %v", sess.Email, err)
		writeError(c, http.StatusBadGateway, "portfolio unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}
