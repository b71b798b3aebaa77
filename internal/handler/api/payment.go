package api

import (
	"errors"
	"io"
	"net/http"

	"beautybook/internal/handler/dto/response"
	"beautybook/internal/handler/httperr"
	"beautybook/internal/handler/middleware"
	"beautybook/internal/infra/gateway"
	"beautybook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	commands *commands.PaymentCommands
	verifier *gateway.WebhookVerifier
}

func NewPaymentHandler(cmd *commands.PaymentCommands, verifier *gateway.WebhookVerifier) *PaymentHandler {
	return &PaymentHandler{commands: cmd, verifier: verifier}
}

// PrepareDeposit creates a gateway intent for the reservation deposit
// @Summary      Prepare deposit payment
// @Description  Returns the gateway redirect for paying the deposit; settlement arrives via webhook
// @Tags         payments
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      200  {object}  response.DepositIntentResponse
// @Failure      403  {object}  httperr.Response
// @Failure      409  {object}  httperr.Response
// @Failure      502  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations/{id}/deposit [post]
func (h *PaymentHandler) PrepareDeposit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID", nil)
		return
	}

	out, err := h.commands.PrepareDeposit(c.Request.Context(), actor.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDepositIntent(out))
}

// HandleWebhook receives payment settlement events from the gateway
// @Summary      Payment webhook
// @Description  Verifies the HMAC signature and settles the referenced payment record; deliveries are at-least-once
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Signature  header  string  true  "Hex HMAC-SHA256 of the raw body"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  httperr.Response
// @Failure      401  {object}  httperr.Response
// @Failure      404  {object}  httperr.Response
// @Router       /webhooks/payment [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable request body", nil)
		return
	}

	event, err := h.verifier.Verify(rawBody, c.GetHeader("X-Webhook-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid webhook signature", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Malformed webhook payload", nil)
		return
	}

	if err := h.commands.HandleWebhook(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
