package api

import (
	"errors"
	"net/http"

	"bookshelf/pkg/circuitbreaker"
	"bookshelf/pkg/library"
	"bookshelf/pkg/logging"

	"github.com/gin-gonic/gin"
)

func statusFor(kind library.Kind) int {
	switch kind {
	case library.KindValidation, library.KindReference:
		return http.StatusBadRequest
	case library.KindConflict, library.KindStorage:
		return http.StatusConflict
	case library.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(kind library.Kind) string {
	switch kind {
	case library.KindValidation:
		return "validation error"
	case library.KindReference:
		return "invalid reference"
	case library.KindConflict:
		return "uniqueness conflict"
	case library.KindStorage:
		return "file missing from storage"
	case library.KindNotFound:
		return "not found"
	default:
		return "request rejected"
	}
}

// writeError renders err as the JSON error body. Rejections keep their
// field list; anything else is logged and hidden behind a 500.
func writeError(c *gin.Context, err error) {
	var e *library.Error
	if errors.As(err, &e) {
		fields := e.Fields
		if fields == nil {
			fields = []library.FieldError{}
		}
		c.JSON(statusFor(e.Kind), gin.H{
			"message": messageFor(e.Kind),
			"code":    e.Kind.String(),
			"errors":  fields,
		})
		return
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "storage unavailable",
			"code":    "storage_unavailable",
			"errors":  []library.FieldError{},
		})
		return
	}
	logging.FromContext(c.Request.Context()).Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"err", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "internal error",
		"code":    "internal",
		"errors":  []library.FieldError{},
	})
}
