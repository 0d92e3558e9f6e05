package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insaatai/insaat_backend/internal/apperrors"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
)

type meHandler struct {
	identity  portssvc.IdentityReaderSvc
	companies portssvc.CompanyReaderSvc
	bootstrap portssvc.BootstrapSvc
}

func registerMeRoutes(rg *gin.RouterGroup, identity portssvc.IdentityReaderSvc, companies portssvc.CompanyReaderSvc, bootstrap portssvc.BootstrapSvc) {
	h := &meHandler{identity: identity, companies: companies, bootstrap: bootstrap}

	me := rg.Group("/me")
	{
		me.GET("", h.getMe)
		me.POST("/bootstrap", h.runBootstrap)
	}
}

// getMe godoc
// @Summary Current user and company
// @Description A user without a company gets company null and needsCompany true.
// @Tags me
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *meHandler) getMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.identity.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Oturum doğrulanamadı."})
			return
		}
		respondError(c, err, "Kullanıcı bilgileri alınamadı.")
		return
	}

	resp := dto.MeResponse{User: dto.ToUserResponse(user)}
	company, role, err := h.companies.GetCompanyForUser(c.Request.Context(), userID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		resp.NeedsCompany = true
	case err != nil:
		respondError(c, err, "Şirket bilgileri alınamadı.")
		return
	default:
		cr := dto.ToCompanyResponse(company)
		resp.Company = &cr
		resp.Role = role
	}

	c.JSON(http.StatusOK, resp)
}

// runBootstrap godoc
// @Summary Retry pending company setup
// @Description Runs the pending create-or-join step again. Always answers 200; see outcome and warning.
// @Tags me
// @Produce json
// @Success 200 {object} domain.BootstrapResult
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /me/bootstrap [post]
func (h *meHandler) runBootstrap(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.bootstrap.Run(c.Request.Context(), userID))
}
