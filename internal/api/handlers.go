package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poker-tracker/internal/model"
	"poker-tracker/internal/service"
)

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Warn().Err(err).Msg("Health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type statsHandler struct {
	stats StatsReader
}

// PlayerStats handles GET /api/stats?start_date=&end_date=.
func (h *statsHandler) PlayerStats(c *gin.Context) {
	var rng model.DateRange
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &rng.Start},
		{"end_date", &rng.End},
	} {
		raw := strings.TrimSpace(c.Query(q.name))
		if raw == "" {
			continue
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			badRequest(c, q.name+": "+err.Error())
			return
		}
		*q.dst = &d
	}

	stats, err := h.stats.PlayerStats(c.Request.Context(), rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type gameHandler struct {
	games GameManager
}

func (h *gameHandler) List(c *gin.Context) {
	summaries, err := h.games.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gameResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, newGameResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *gameHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameDetailResponse(detail))
}

// bindGame decodes and validates a game body. It writes the 400 itself on failure.
func bindGame(c *gin.Context) (service.GameInput, bool) {
	var req gameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid game: "+err.Error())
		return service.GameInput{}, false
	}

	date, err := model.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		badRequest(c, err.Error())
		return service.GameInput{}, false
	}

	in := service.GameInput{
		Date:    date,
		Notes:   req.Notes,
		Entries: make([]model.GamePlayer, 0, len(req.Players)),
	}
	for _, p := range req.Players {
		in.Entries = append(in.Entries, model.GamePlayer{
			PlayerID: p.PlayerID,
			BuyIns:   p.BuyIns,
			CashOut:  p.CashOut,
		})
	}
	return in, true
}

func (h *gameHandler) Create(c *gin.Context) {
	in, ok := bindGame(c)
	if !ok {
		return
	}

	id, err := h.games.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createGameResponse{GameID: id})
}

func (h *gameHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindGame(c)
	if !ok {
		return
	}

	if err := h.games.Update(c.Request.Context(), id, in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Game updated"})
}

func (h *gameHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.games.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Game deleted"})
}

type playerHandler struct {
	players PlayerManager
}

func (h *playerHandler) List(c *gin.Context) {
	players, err := h.players.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (h *playerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.players.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *playerHandler) Create(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name is required")
		return
	}

	p, err := h.players.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *playerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name is required")
		return
	}

	p, err := h.players.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *playerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.players.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Player deleted"})
}

type authHandler struct {
	auth Authenticator
}

func (h *authHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token})
}
