package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/service"
)

// DebateHandler exposes the lifecycle controller under /api/debate/:roomId.
type DebateHandler struct {
	lifecycle *service.LifecycleService
	standings *service.StandingsService
}

func NewDebateHandler(lifecycle *service.LifecycleService, standings *service.StandingsService) *DebateHandler {
	if lifecycle == nil || standings == nil {
		panic("LifecycleService and StandingsService cannot be nil for DebateHandler")
	}
	return &DebateHandler{lifecycle: lifecycle, standings: standings}
}

// Status handles GET /status.
func (h *DebateHandler) Status(c *gin.Context) {
	status, err := h.lifecycle.Status(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, status)
}

type userRequest struct {
	UserID string `json:"userId"`
}

// CanEnd handles POST /can-end.
func (h *DebateHandler) CanEnd(c *gin.Context) {
	var req userRequest
	_ = c.ShouldBindJSON(&req)
	if _, ok := actingUser(c, req.UserID); !ok {
		return
	}

	elig, err := h.lifecycle.CanEnd(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, elig)
}

type EndRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// End handles POST /end. Repeated calls return the stored result.
func (h *DebateHandler) End(c *gin.Context) {
	var req EndRequest
	_ = c.ShouldBindJSON(&req)
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}
	roomID := c.Param("roomId")

	result, err := h.lifecycle.End(c.Request.Context(), roomID, userID, req.Reason)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).WithError(err).Warn("Handler.End: end rejected")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"success": true, "winner": result.WinningTeam, "stats": result})
}

type SettingsRequest struct {
	UserID   string          `json:"userId"`
	Settings domain.Settings `json:"settings"`
}

// UpdateSettings handles PUT /settings.
func (h *DebateHandler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "settings are required", "validation")
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	if err := h.lifecycle.UpdateSettings(c.Request.Context(), c.Param("roomId"), userID, req.Settings); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

// Scoreboard handles GET /scoreboard.
func (h *DebateHandler) Scoreboard(c *gin.Context) {
	board, err := h.lifecycle.Scoreboard(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, board)
}

// Standings handles GET /standings.
func (h *DebateHandler) Standings(c *gin.Context) {
	standings, err := h.standings.Standings(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"standings": standings})
}

// Results handles GET /results; 404 until the debate has ended.
func (h *DebateHandler) Results(c *gin.Context) {
	res, err := h.lifecycle.Results(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, res)
}
