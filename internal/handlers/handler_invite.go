package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
)

type inviteHandler struct {
	invites portssvc.PartnerInviteSvc
}

func registerInviteRoutes(rg *gin.RouterGroup, invites portssvc.PartnerInviteSvc) {
	h := &inviteHandler{invites: invites}

	inv := rg.Group("/invites/:token")
	{
		inv.POST("/accept", h.accept)
		inv.POST("/reject", h.reject)
	}
}

// accept godoc
// @Summary Accept a partner invite
// @Description The owner of the invited company joins the project as an active member.
// @Tags invites
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} dto.PartnerInviteResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already answered or expired"
// @Security BearerAuth
// @Router /invites/{token}/accept [post]
func (h *inviteHandler) accept(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	invite, err := h.invites.AcceptPartnerInvite(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		respondError(c, err, "Davet kabul edilemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToPartnerInviteResponse(invite))
}

// reject godoc
// @Summary Reject a partner invite
// @Tags invites
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} dto.PartnerInviteResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already answered or expired"
// @Security BearerAuth
// @Router /invites/{token}/reject [post]
func (h *inviteHandler) reject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	invite, err := h.invites.RejectPartnerInvite(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		respondError(c, err, "Davet reddedilemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToPartnerInviteResponse(invite))
}
