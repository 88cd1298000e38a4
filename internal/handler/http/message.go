package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"debate-arena/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	if messages == nil {
		panic("MessageService cannot be nil for MessageHandler")
	}
	return &MessageHandler{messages: messages}
}

// History handles GET /api/rooms/:roomId/messages, the same batch a join replays.
func (h *MessageHandler) History(c *gin.Context) {
	msgs, err := h.messages.History(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"messages": msgs})
}

type ReportRequest struct {
	RoomID    string `json:"roomId" binding:"required"`
	MessageID string `json:"messageId" binding:"required"`
	Reason    string `json:"reason"`
}

// Report handles POST /api/report_message.
func (h *MessageHandler) Report(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "roomId and messageId are required", "validation")
		return
	}
	if err := h.messages.Report(c.Request.Context(), req.RoomID, req.MessageID, c.GetString("user_id"), req.Reason); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"acknowledged": true})
}

// ModeratorDelete handles POST /api/moderation/rooms/:roomId/messages/:messageId/delete.
func (h *MessageHandler) ModeratorDelete(c *gin.Context) {
	msg, err := h.messages.ModeratorDelete(c.Request.Context(), c.Param("roomId"), c.Param("messageId"), c.GetString("user_id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"success": true, "message": msg})
}
