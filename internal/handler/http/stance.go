package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/service"
)

type StanceHandler struct {
	stanceService *service.StanceService
}

func NewStanceHandler(stanceService *service.StanceService) *StanceHandler {
	if stanceService == nil {
		panic("StanceService cannot be nil for StanceHandler")
	}
	return &StanceHandler{stanceService: stanceService}
}

type SaveStanceRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Stance   string `json:"stance" binding:"required"`
}

// SaveStance handles POST /api/save_user_stance.
func (h *StanceHandler) SaveStance(c *gin.Context) {
	var req SaveStanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.SaveStance: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "roomId and stance are required", "validation")
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	stance, err := h.stanceService.SelectStance(c.Request.Context(), req.RoomID, userID, displayName(c, req.Username), req.Stance)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"success": true, "stance": stance})
}

type GetStanceRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	UserID string `json:"userId"`
}

// GetStance handles POST /api/get_user_stance. Any user's stance is readable.
func (h *StanceHandler) GetStance(c *gin.Context) {
	var req GetStanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "roomId is required", "validation")
		return
	}
	if req.UserID == "" {
		req.UserID = c.GetString("user_id")
	}

	stance, err := h.stanceService.GetStance(c.Request.Context(), req.RoomID, req.UserID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"stance": stance})
}
