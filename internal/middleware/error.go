package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "cakebook/internal/errors"
	"cakebook/internal/logger"
)

// ErrorHandler converts errors attached to the Gin context into the JSON
// error envelope. Binding failures become INVALID_INPUT, AppErrors keep their
// code and message, and anything else is logged and reported as a generic
// internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// The last error is the most relevant in a middleware chain.
		err := c.Errors.Last().Err
		log := logger.Named("http")

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, verrs.Error()))
			return
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				log.Errorw("app error",
					"request_id", c.GetString(requestIDKey),
					"code", appErr.Code,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			abortWithError(c, appErr)
			return
		}

		log.Errorw("unexpected error",
			"request_id", c.GetString(requestIDKey),
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		abortWithError(c, apperrors.ErrInternalServer)
	}
}
