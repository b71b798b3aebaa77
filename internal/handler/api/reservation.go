package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"beautybook/internal/handler/dto/request"
	"beautybook/internal/handler/dto/response"
	"beautybook/internal/handler/httperr"
	"beautybook/internal/handler/middleware"
	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	commands *commands.ReservationCommands
	queries  *queries.ReservationQueries
}

func NewReservationHandler(cmd *commands.ReservationCommands, q *queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{commands: cmd, queries: q}
}

// CreateReservation creates a reservation
// @Summary      Create reservation
// @Description  Books a time slot for one or more services, optionally spending points
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "UUID key for idempotent retry"
// @Param        request  body  request.CreateReservationRequest  true  "Reservation details"
// @Success      201  {object}  response.CreateReservationResponse
// @Failure      400  {object}  httperr.Response
// @Failure      409  {object}  httperr.Response
// @Failure      422  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req request.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	idempotencyKey, err := parseIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid Idempotency-Key header", nil)
		return
	}

	out, err := h.commands.Create(c.Request.Context(), commands.CreateReservationInput{
		CustomerID:     actor.UserID,
		ShopID:         req.ShopID,
		ServiceIDs:     req.ServiceIDs,
		StartTime:      req.StartTime,
		UsePoints:      req.UsePoints,
		IdempotencyKey: idempotencyKey,
		RequestHash:    createRequestHash(actor.UserID, req),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if out.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, response.FromCreateReservation(out))
}

// GetReservation returns one reservation
// @Summary      Get reservation
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      200  {object}  response.ReservationResponse
// @Failure      403  {object}  httperr.Response
// @Failure      404  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
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

	detail, err := h.queries.GetReservation(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromReservationDetail(detail))
}

// ListMyReservations returns the caller's reservations
// @Summary      List my reservations
// @Tags         reservations
// @Produce      json
// @Success      200  {array}  response.ReservationResponse
// @Security     BearerAuth
// @Router       /reservations [get]
func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	list, err := h.queries.ListMyReservations(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]*response.ReservationResponse, 0, len(list))
	for _, detail := range list {
		out = append(out, response.FromReservationDetail(detail))
	}
	c.JSON(http.StatusOK, out)
}

// ConfirmReservation confirms a requested reservation
// @Summary      Confirm reservation
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      204  "No Content"
// @Failure      403  {object}  httperr.Response
// @Failure      409  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations/{id}/confirm [post]
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID) error {
		actor, _ := middleware.GetActor(c)
		return h.commands.Confirm(c.Request.Context(), actor, id)
	})
}

// CompleteReservation completes a visit and settles the final amount
// @Summary      Complete reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Param        request  body  request.CompleteReservationRequest  true  "Final amount"
// @Success      204  "No Content"
// @Failure      400  {object}  httperr.Response
// @Failure      409  {object}  httperr.Response
// @Failure      502  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations/{id}/complete [post]
func (h *ReservationHandler) CompleteReservation(c *gin.Context) {
	var req request.CompleteReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	h.transition(c, func(c *gin.Context, id uuid.UUID) error {
		actor, _ := middleware.GetActor(c)
		return h.commands.Complete(c.Request.Context(), actor, id, req.FinalAmount)
	})
}

// CancelReservation cancels a reservation
// @Summary      Cancel reservation
// @Description  Customers cancel their own booking under the refund cutoff rule; shop owners cancel with a full refund
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      200  {object}  response.CancelReservationResponse
// @Failure      403  {object}  httperr.Response
// @Failure      409  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
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

	var out *commands.CancelReservationOutput
	if actor.IsShopOwner() || actor.IsSystem() {
		out, err = h.commands.CancelByShop(c.Request.Context(), actor, id)
	} else {
		out, err = h.commands.CancelByUser(c.Request.Context(), actor, id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromCancelReservation(out))
}

// MarkNoShow marks a confirmed reservation as a no-show
// @Summary      Mark no-show
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      204  "No Content"
// @Failure      400  {object}  httperr.Response
// @Failure      409  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /reservations/{id}/no-show [post]
func (h *ReservationHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID) error {
		actor, _ := middleware.GetActor(c)
		return h.commands.MarkNoShow(c.Request.Context(), actor, id)
	})
}

func (h *ReservationHandler) transition(c *gin.Context, fn func(c *gin.Context, id uuid.UUID) error) {
	if _, ok := middleware.GetActor(c); !ok {
		abortUnauthenticated(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID", nil)
		return
	}

	if err := fn(c, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("Idempotency-Key")
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

// createRequestHash fingerprints the booking parameters so a reused
// idempotency key with a different payload can be rejected.
func createRequestHash(customerID uuid.UUID, req request.CreateReservationRequest) string {
	ids := make([]string, 0, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		ids = append(ids, id.String())
	}
	payload := fmt.Sprintf("%s|%s|%s|%s|%d",
		customerID, req.ShopID, strings.Join(ids, ","),
		req.StartTime.UTC().Format(time.RFC3339Nano), req.UsePoints,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
