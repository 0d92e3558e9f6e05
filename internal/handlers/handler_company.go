package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
)

// companyHandler handles HTTP requests related to companies.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// newCompanyHandler creates a new companyHandler.
func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{companyService: cs}
}

// registerCompanyRoutes registers routes related to companies and their members.
func registerCompanyRoutes(rg *gin.RouterGroup, companyService portssvc.CompanySvcFacade) {
	h := newCompanyHandler(companyService)

	companies := rg.Group("/companies")
	{
		companies.POST("", h.createCompany)
		companies.POST("/join", h.joinCompany)
		companies.GET("/partners", h.listPartners)

		current := companies.Group("/current")
		{
			current.GET("", h.getCurrentCompany)
			current.PATCH("", h.updateCurrentCompany)
			current.GET("/members", h.listMembers)
			current.PUT("/members/:user_id", h.updateMemberRole)
			current.DELETE("/members/:user_id", h.removeMember)
		}
	}
}

// createCompany godoc
// @Summary Create a company
// @Description Creates a company owned by the caller together with the owner membership. A caller who already owns a company gets it back with created false.
// @Tags companies
// @Accept json
// @Produce json
// @Param company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CreateCompanyResponse
// @Success 200 {object} dto.CreateCompanyResponse "Already owned"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	company, created, err := h.companyService.CreateCompany(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Şirket oluşturulamadı.")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.CreateCompanyResponse{Company: dto.ToCompanyResponse(company), Created: created})
}

// joinCompany godoc
// @Summary Join a company by its id
// @Tags companies
// @Accept json
// @Produce json
// @Param request body dto.JoinCompanyRequest true "Company id"
// @Success 200 {object} dto.JoinCompanyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Not a valid company id"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/join [post]
func (h *companyHandler) joinCompany(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.JoinCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	joined, err := h.companyService.JoinCompany(c.Request.Context(), userID, req.CompanyID)
	if err != nil {
		respondError(c, err, "Şirkete katılınamadı.")
		return
	}
	c.JSON(http.StatusOK, dto.JoinCompanyResponse{CompanyID: req.CompanyID, Joined: joined})
}

// getCurrentCompany godoc
// @Summary Get the caller's company
// @Tags companies
// @Produce json
// @Success 200 {object} dto.CompanyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/current [get]
func (h *companyHandler) getCurrentCompany(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	company, _, err := h.companyService.GetCompanyForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Şirket bilgileri alınamadı.")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// updateCurrentCompany godoc
// @Summary Update the caller's company
// @Description Owners and managers may change name, plan, currency and initial budget.
// @Tags companies
// @Accept json
// @Produce json
// @Param company body dto.UpdateCompanyRequest true "Fields to update"
// @Success 200 {object} dto.CompanyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent update"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/current [patch]
func (h *companyHandler) updateCurrentCompany(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Şirket güncellenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// listMembers godoc
// @Summary List company members
// @Tags companies
// @Produce json
// @Param excludeOwners query bool false "Hide owners"
// @Param excludeSelf query bool false "Hide the caller"
// @Success 200 {object} dto.ListMembersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/current/members [get]
func (h *companyHandler) listMembers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListMembersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	members, err := h.companyService.ListMembers(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Üyeler listelenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMembersResponse(members))
}

// updateMemberRole godoc
// @Summary Change a member's role
// @Description Owner only. The owner role cannot be assigned.
// @Tags companies
// @Accept json
// @Produce json
// @Param user_id path string true "Member user id"
// @Param request body dto.UpdateMemberRoleRequest true "New role"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/current/members/{user_id} [put]
func (h *companyHandler) updateMemberRole(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	role, valid := domain.ParseRole(req.Role)
	if !valid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Geçersiz rol."})
		return
	}

	if err := h.companyService.UpdateMemberRole(c.Request.Context(), userID, c.Param("user_id"), role); err != nil {
		respondError(c, err, "Rol güncellenemedi.")
		return
	}
	c.Status(http.StatusNoContent)
}

// removeMember godoc
// @Summary Remove a member
// @Description Owner only; an owner cannot remove themself. Their project memberships in this company are removed too.
// @Tags companies
// @Param user_id path string true "Member user id"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/current/members/{user_id} [delete]
func (h *companyHandler) removeMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.companyService.RemoveMember(c.Request.Context(), userID, c.Param("user_id")); err != nil {
		respondError(c, err, "Üye çıkarılamadı.")
		return
	}
	c.Status(http.StatusNoContent)
}

// listPartners godoc
// @Summary List partner candidates
// @Description Other companies that can be invited onto the caller's projects. Owners and managers only.
// @Tags companies
// @Produce json
// @Success 200 {object} dto.ListPartnersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/partners [get]
func (h *companyHandler) listPartners(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	companies, err := h.companyService.ListPartnerCandidates(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Şirketler listelenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPartnersResponse(companies))
}
