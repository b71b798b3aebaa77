package api

import (
	"net/http"

	"beautybook/internal/handler/dto/request"
	"beautybook/internal/handler/dto/response"
	"beautybook/internal/handler/httperr"
	"beautybook/internal/handler/middleware"
	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PointHandler struct {
	commands *commands.PointCommands
	queries  *queries.PointQueries
}

func NewPointHandler(cmd *commands.PointCommands, q *queries.PointQueries) *PointHandler {
	return &PointHandler{commands: cmd, queries: q}
}

// GetBalance returns the caller's point balance
// @Summary      Get point balance
// @Tags         points
// @Produce      json
// @Success      200  {object}  response.PointBalanceResponse
// @Security     BearerAuth
// @Router       /points/balance [get]
func (h *PointHandler) GetBalance(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	balance, err := h.queries.GetBalance(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromPointBalance(balance))
}

// GetHistory returns the caller's ledger entries
// @Summary      Get point history
// @Tags         points
// @Produce      json
// @Success      200  {array}  response.PointEntryResponse
// @Security     BearerAuth
// @Router       /points/history [get]
func (h *PointHandler) GetHistory(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	entries, err := h.queries.GetHistory(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromPointHistory(entries))
}

// UsePoints spends points from the caller's balance
// @Summary      Use points
// @Description  Spends points all-or-nothing against the available balance
// @Tags         points
// @Accept       json
// @Produce      json
// @Param        request  body  request.UsePointsRequest  true  "Amount to spend"
// @Success      204  "No Content"
// @Failure      400  {object}  httperr.Response
// @Failure      422  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /points/use [post]
func (h *PointHandler) UsePoints(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req request.UsePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	if err := h.commands.Use(c.Request.Context(), actor.UserID, req.Amount, req.ReservationID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
