package api

import (
	"net/http"
	"strings"
	"time"

	"beautybook/internal/handler/dto/response"
	"beautybook/internal/handler/httperr"
	"beautybook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	queries *queries.AvailabilityQueries
}

func NewAvailabilityHandler(q *queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{queries: q}
}

// GetAvailableSlots lists bookable start times
// @Summary      Get available slots
// @Description  Enumerates open slots for a service set on one date, minus committed reservations and transient holds
// @Tags         availability
// @Produce      json
// @Param        shop_id      path   string  true  "Shop ID"
// @Param        date         query  string  true  "Date (YYYY-MM-DD)"
// @Param        service_ids  query  string  true  "Comma-separated service IDs"
// @Success      200  {object}  response.AvailabilityResponse
// @Failure      400  {object}  httperr.Response
// @Failure      404  {object}  httperr.Response
// @Router       /shops/{shop_id}/availability [get]
func (h *AvailabilityHandler) GetAvailableSlots(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("shop_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid shop ID", nil)
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	serviceIDs, err := parseServiceIDs(c.Query("service_ids"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid service_ids", nil)
		return
	}

	out, err := h.queries.GetAvailableSlots(c.Request.Context(), queries.AvailabilityInput{
		ShopID:     shopID,
		ServiceIDs: serviceIDs,
		Date:       date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromAvailability(out))
}

func parseServiceIDs(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
