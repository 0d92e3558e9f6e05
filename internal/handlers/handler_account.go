package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
)

// accountHandler serves session-bound account routes.
type accountHandler struct {
	identity portssvc.IdentityProviderSvc
}

func registerAccountRoutes(rg *gin.RouterGroup, identity portssvc.IdentityProviderSvc) {
	h := &accountHandler{identity: identity}

	auth := rg.Group("/auth")
	{
		auth.POST("/password", h.updatePassword)
		auth.POST("/logout", h.logout)
	}
}

// updatePassword godoc
// @Summary Set a new password
// @Description Used after a recovery link signs the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UpdatePasswordRequest true "New password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/password [post]
func (h *accountHandler) updatePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.identity.UpdatePassword(c.Request.Context(), userID, req.Password); err != nil {
		respondError(c, err, "Şifre güncellenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Şifreniz güncellendi."})
}

// logout godoc
// @Summary Sign out
// @Description Revokes the refresh token. Access tokens expire on their own.
// @Tags auth
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *accountHandler) logout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.identity.SignOut(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Çıkış yapılamadı.")
		return
	}
	c.Status(http.StatusNoContent)
}
