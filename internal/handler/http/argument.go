package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/detector"
	"debate-arena/internal/service"
)

type ArgumentHandler struct {
	argumentService *service.ArgumentService
	queryDetector   detector.Detector
	timeout         time.Duration
}

// NewArgumentHandler wires the evaluation pipeline and the detector used
// for ad-hoc queries, which runs with its own threshold.
func NewArgumentHandler(argumentService *service.ArgumentService, queryDetector detector.Detector, timeout time.Duration) *ArgumentHandler {
	if argumentService == nil || queryDetector == nil {
		panic("ArgumentService and detector cannot be nil for ArgumentHandler")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ArgumentHandler{argumentService: argumentService, queryDetector: queryDetector, timeout: timeout}
}

type EvaluateRequest struct {
	Argument       string `json:"argument" binding:"required"`
	Team           string `json:"team" binding:"required"`
	RoomID         string `json:"roomId" binding:"required"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	MessageID      string `json:"messageId"`
	ConfirmedHuman bool   `json:"confirmedHuman"`
}

// Evaluate handles POST /evaluate. A held-back submission answers 202 with
// needsConfirmation set; resubmitting with confirmedHuman scores it.
func (h *ArgumentHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Evaluate: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "argument, team and roomId are required", "validation")
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	res, err := h.argumentService.Evaluate(c.Request.Context(), service.EvaluateRequest{
		RoomID:         req.RoomID,
		UserID:         userID,
		Username:       displayName(c, req.Username),
		Team:           req.Team,
		Argument:       req.Argument,
		MessageID:      req.MessageID,
		ConfirmedHuman: req.ConfirmedHuman,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if res.NeedsConfirmation {
		SuccessResponse(c, http.StatusAccepted, res)
		return
	}
	SuccessResponse(c, http.StatusOK, res)
}

type DetectRequest struct {
	Text string `json:"text" binding:"required"`
}

// DetectAI handles POST /api/detect_ai.
func (h *ArgumentHandler) DetectAI(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "text is required", "validation")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.queryDetector.Detect(ctx, req.Text)
	if err != nil {
		logrus.WithError(err).Warn("Handler.DetectAI: detector failed")
		HandleServiceError(c, service.ErrDetectorUnavailable)
		return
	}
	if res.Reasons == nil {
		res.Reasons = []string{}
	}
	SuccessResponse(c, http.StatusOK, res)
}
