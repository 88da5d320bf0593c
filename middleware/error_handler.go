package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Itish41/WorkflowPro/logging"
	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

// ErrorHandler turns the last error attached with c.Error into the JSON
// error envelope. The stack trace is only exposed outside production.
func ErrorHandler(logger logging.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *services.AppError
		if !errors.As(err, &appErr) {
			appErr = services.Internal("Errore interno del server", err)
		}
		status := services.HTTPStatus(appErr.Kind)

		attrs := []any{"method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "error", err.Error()}
		if appErr.Kind == services.KindInternal {
			attrs = append(attrs, "stack", fmt.Sprintf("%+v", appErr.Err))
			logger.Error(c.Request.Context(), "[ErrorHandler] request failed", attrs...)
		} else {
			logger.Warn(c.Request.Context(), "[ErrorHandler] request rejected", attrs...)
		}

		body := envelope(c, status, appErr.Message)
		for k, v := range appErr.Details {
			body[k] = v
		}
		if !production && appErr.Err != nil {
			body["stack"] = fmt.Sprintf("%+v", appErr.Err)
		}
		c.JSON(status, body)
	}
}

// Recovery converts a panic into a 500 envelope.
func Recovery(logger logging.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "[Recovery] panic",
			"method", c.Request.Method, "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		body := envelope(c, http.StatusInternalServerError, "Errore interno del server")
		if !production {
			body["stack"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, envelope(c, http.StatusNotFound, "Route non trovata"))
}

// Abort writes an envelope directly, for middleware that rejects a request
// before any handler runs.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope(c, status, msg))
}

func envelope(c *gin.Context, status int, msg string) gin.H {
	return gin.H{
		"error":     msg,
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      c.Request.URL.Path,
	}
}
