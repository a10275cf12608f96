// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
	"github.com/your-org/cafe-frontend/internal/domain/cart"
	"github.com/your-org/cafe-frontend/internal/domain/checkout"
	"github.com/your-org/cafe-frontend/internal/domain/menu"
	"github.com/your-org/cafe-frontend/internal/domain/table"
	"github.com/your-org/cafe-frontend/internal/domain/tracking"
	"github.com/your-org/cafe-frontend/internal/infrastructure/cafeapi"
	"github.com/your-org/cafe-frontend/internal/interfaces/http/middleware"
)

// respondError converts a domain or API failure into a JSON error response
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var submission *checkout.SubmissionError
	var apiErr *cafeapi.Error

	switch {
	case errors.Is(err, admin.ErrUnauthenticated):
		_ = middleware.ClearAdminToken(c)
		middleware.Unauthenticated(c)
		return

	case errors.Is(err, admin.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, table.ErrMissingTable),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, admin.ErrInvalidTime),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, admin.ErrConfirmationRequired),
		errors.Is(err, admin.ErrInvalidMonth),
		errors.Is(err, admin.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, admin.ErrOrderClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, menu.ErrItemNotFound),
		errors.Is(err, tracking.ErrOrderNotFound),
		errors.Is(err, admin.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.As(err, &submission):
		c.JSON(http.StatusBadGateway, gin.H{"error": submission.Message})

	case errors.Is(err, menu.ErrMenuUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load menu"})

	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timeout"})

	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		c.JSON(status, gin.H{"error": msg})

	case errors.Is(err, cafeapi.ErrUnavailable),
		errors.Is(err, tracking.ErrLoadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Cafe service unavailable"})

	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Debug("Request failed")
}
