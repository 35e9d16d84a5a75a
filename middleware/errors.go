package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelar-dev/go-tours/utils"
)

// ErrorHandler is the single boundary that turns errors recorded on the gin
// context into HTTP responses. Operational errors (utils.AppError) answer
// with their own status and message. Anything else is a programming or
// unknown error: logged with the request ID, answered with an opaque 500 in
// production and with the raw error in development.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			body := gin.H{
				"status":  appErr.Status(),
				"message": appErr.Message,
			}
			if !production && appErr.Err != nil {
				body["error"] = appErr.Err.Error()
			}
			c.JSON(appErr.Code, body)
			return
		}

		slog.Error("unhandled error",
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", RequestIDFrom(c),
		)

		body := gin.H{
			"status":  "error",
			"message": "Something went wrong!",
		}
		if !production {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// NoRoute answers unknown paths with the standard 404 envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(utils.NotFound("Can't find " + c.Request.URL.Path + " on this server!"))
	}
}
