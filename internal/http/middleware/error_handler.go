package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/interface/http/response"
	"github.com/ignatzorin/cargolink-backend/internal/logger"
	"github.com/ignatzorin/cargolink-backend/internal/metrics"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

// ErrorHandler журналирует ошибки запроса и отвечает за хендлер,
// если тот прикрепил ошибку, но ничего не записал.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		fields := logrus.Fields{
			"error":  err.Error(),
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
			logger.Log.WithFields(fields).Debug("Request rejected")
		} else {
			metrics.OperationErrorsTotal.WithLabelValues("http").Inc()
			logger.Log.WithFields(fields).Error("Request error")
		}

		if !c.Writer.Written() {
			response.Error(c, err)
		}
	}
}
