package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// actingUser resolves who is making the request. The token identity wins;
// a body userId naming someone else is rejected.
func actingUser(c *gin.Context, claimed string) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		logrus.Warn("Handler: User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated", "permission")
		return "", false
	}
	if claimed != "" && claimed != userID {
		logrus.WithFields(logrus.Fields{"user_id": userID, "claimed": claimed}).Warn("Handler: body userId does not match token")
		ErrorResponse(c, http.StatusForbidden, "userId does not match the authenticated user", "permission")
		return "", false
	}
	return userID, true
}

func displayName(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return c.GetString("username")
}
