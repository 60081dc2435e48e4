package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eatzone/internal/infra/proof"
	"eatzone/internal/services"
	"eatzone/internal/session"
)

var statusByError = []struct {
	err    error
	status int
}{
	{session.ErrSessionNotFound, http.StatusNotFound},
	{session.ErrItemNotFound, http.StatusNotFound},
	{session.ErrSellerNotFound, http.StatusNotFound},
	{services.ErrOrderNotFound, http.StatusNotFound},

	{session.ErrNotAuthenticated, http.StatusUnauthorized},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},

	{services.ErrInvalidTransition, http.StatusConflict},
	{services.ErrCheckoutInactive, http.StatusConflict},
	{services.ErrEmailTaken, http.StatusConflict},
	{services.ErrChatClosed, http.StatusConflict},
	{session.ErrSessionClosed, http.StatusConflict},
	{session.ErrAlreadyAuthenticated, http.StatusConflict},
	{session.ErrNoActiveChat, http.StatusConflict},

	{proof.ErrTooLarge, http.StatusRequestEntityTooLarge},

	{services.ErrEmptyCart, http.StatusUnprocessableEntity},
	{services.ErrMissingPaymentProof, http.StatusUnprocessableEntity},
	{services.ErrMissingPickupTime, http.StatusUnprocessableEntity},
	{services.ErrEmptyMessage, http.StatusUnprocessableEntity},
	{services.ErrPasswordMismatch, http.StatusUnprocessableEntity},
	{services.ErrPasswordTooShort, http.StatusUnprocessableEntity},
	{services.ErrMissingField, http.StatusUnprocessableEntity},
	{session.ErrInvalidView, http.StatusUnprocessableEntity},
	{proof.ErrEmptyUpload, http.StatusUnprocessableEntity},
	{proof.ErrNotAnImage, http.StatusUnprocessableEntity},
}

func statusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
