package handlers

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicare-api/internal/apperr"
	"github.com/harentsoaR/medicare-api/internal/middleware"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func respondMessage(c *gin.Context, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

// fail writes the error envelope. Internal errors are logged and reported;
// their cause never reaches the client.
func fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		fields := logrus.Fields{
			"request_id": middleware.RequestIDFrom(c),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		}
		if p := middleware.PrincipalFrom(c); p != nil {
			fields["user_id"] = p.UserID.Hex()
		}
		logrus.WithFields(fields).WithError(err).Error("internal error")
		sentry.CaptureException(err)
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"success": false, "message": appErr.Message})
}

// paramID parses an ObjectID path parameter, writing a 400 when it is malformed.
func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		fail(c, apperr.Validation("invalid %s", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindJSON decodes the request body, writing a 400 on malformed input.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, apperr.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
