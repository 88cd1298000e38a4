package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Stance    *StanceHandler
	Argument  *ArgumentHandler
	Debate    *DebateHandler
	Message   *MessageHandler
	WebSocket gin.HandlerFunc
}

// RegisterRoutes mounts the REST surface. auth must set user_id; rateLimit
// and requireModerator may be nil.
func RegisterRoutes(router *gin.Engine, h Handlers, auth, rateLimit, requireModerator gin.HandlerFunc) {
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	chain := []gin.HandlerFunc{auth}
	if rateLimit != nil {
		chain = append(chain, rateLimit)
	}

	router.POST("/evaluate", append(chain, h.Argument.Evaluate)...)

	api := router.Group("/api", chain...)
	{
		api.POST("/save_user_stance", h.Stance.SaveStance)
		api.POST("/get_user_stance", h.Stance.GetStance)
		api.POST("/detect_ai", h.Argument.DetectAI)
		api.POST("/report_message", h.Message.Report)
		api.GET("/rooms/:roomId/messages", h.Message.History)
	}
	debate := api.Group("/debate/:roomId")
	{
		debate.GET("/status", h.Debate.Status)
		debate.POST("/can-end", h.Debate.CanEnd)
		debate.POST("/end", h.Debate.End)
		debate.PUT("/settings", h.Debate.UpdateSettings)
		debate.GET("/scoreboard", h.Debate.Scoreboard)
		debate.GET("/standings", h.Debate.Standings)
		debate.GET("/results", h.Debate.Results)
	}
	moderation := api.Group("/moderation")
	if requireModerator != nil {
		moderation.Use(requireModerator)
	}
	moderation.POST("/rooms/:roomId/messages/:messageId/delete", h.Message.ModeratorDelete)

	if h.WebSocket != nil {
		router.GET("/ws", auth, h.WebSocket)
	}
}
