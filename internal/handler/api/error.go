package api

import (
	"errors"
	"net/http"

	"beautybook/internal/handler/httperr"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// abortUnauthenticated covers the defensive case where a handler runs without
// RequireAuth having populated the actor.
func abortUnauthenticated(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("actor missing from context"), "Authentication required", nil)
}

// respondError maps usecase sentinel errors onto HTTP statuses. Anything
// unmapped is a 500 and keeps its cause attached for the error middleware.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
	case errors.Is(err, commands.ErrShopNotFound), errors.Is(err, queries.ErrShopNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Shop not found", nil)
	case errors.Is(err, commands.ErrServiceNotFound), errors.Is(err, queries.ErrServiceNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Service not found", nil)
	case errors.Is(err, commands.ErrReservationNotFound), errors.Is(err, queries.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errors.Is(err, commands.ErrPaymentNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Payment not found", nil)
	case errors.Is(err, commands.ErrPermissionDenied), errors.Is(err, queries.ErrPermissionDenied):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Permission denied", nil)
	case errors.Is(err, commands.ErrSlotUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Slot is no longer available", nil)
	case errors.Is(err, commands.ErrStateConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Reservation state has changed, retry with current state", nil)
	case errors.Is(err, commands.ErrDuplicateRequest):
		httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency key reused with different parameters", nil)
	case errors.Is(err, commands.ErrRequestInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is still being processed", nil)
	case errors.Is(err, commands.ErrInsufficientPoints):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Insufficient point balance", nil)
	case errors.Is(err, commands.ErrReferralRejected):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Referral registration rejected", nil)
	case errors.Is(err, commands.ErrPaymentGateway):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment gateway error", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
