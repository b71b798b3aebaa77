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

type ReferralHandler struct {
	commands *commands.ReferralCommands
	queries  *queries.ReferralQueries
}

func NewReferralHandler(cmd *commands.ReferralCommands, q *queries.ReferralQueries) *ReferralHandler {
	return &ReferralHandler{commands: cmd, queries: q}
}

// RegisterReferral records who referred the caller
// @Summary      Register referral
// @Description  Links the caller to the referrer whose code they used; each user can be referred at most once
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Param        request  body  request.RegisterReferralRequest  true  "Referrer and code"
// @Success      201  "Created"
// @Failure      400  {object}  httperr.Response
// @Failure      422  {object}  httperr.Response
// @Security     BearerAuth
// @Router       /referrals [post]
func (h *ReferralHandler) RegisterReferral(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req request.RegisterReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	if err := h.commands.Register(c.Request.Context(), req.ReferrerID, actor.UserID, req.ReferralCode); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// GetReferralStatus returns the caller's referral standing
// @Summary      Get referral status
// @Tags         referrals
// @Produce      json
// @Success      200  {object}  response.ReferralStatusResponse
// @Security     BearerAuth
// @Router       /referrals/status [get]
func (h *ReferralHandler) GetReferralStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	status, err := h.queries.GetStatus(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromReferralStatus(status))
}
