package middleware

import (
	apiError "document-archive/internal/errors"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apiError.APIError
		if !errors.As(err, &apiErr) {
			// raw error nobody wrapped
			apiErr = apiError.Internal(err)
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if apiErr.Internal != nil {
			fields = append(fields, zap.Error(apiErr.Internal))
		}
		if apiErr.Status >= 500 {
			logger.Error(apiErr.Message, fields...)
		} else {
			logger.Info(apiErr.Message, fields...)
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
