package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
)

// projectHandler handles HTTP requests related to projects.
type projectHandler struct {
	projectService portssvc.ProjectSvcFacade
}

func newProjectHandler(ps portssvc.ProjectSvcFacade) *projectHandler {
	return &projectHandler{projectService: ps}
}

// registerProjectRoutes registers routes related to projects.
func registerProjectRoutes(rg *gin.RouterGroup, projectService portssvc.ProjectSvcFacade) {
	h := newProjectHandler(projectService)

	projects := rg.Group("/projects")
	{
		projects.GET("", h.listProjects)
		projects.POST("", h.createProject)

		project := projects.Group("/:project_id")
		{
			project.GET("", h.getProject)
			project.POST("/members", h.addMembers)
			project.POST("/partners", h.invitePartners)
		}
	}
}

// listProjects godoc
// @Summary List projects
// @Description Projects of the caller's company together with projects they are an active member of, sorted by name.
// @Tags projects
// @Produce json
// @Success 200 {object} dto.ListProjectsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects [get]
func (h *projectHandler) listProjects(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjectsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Projeler listelenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToListProjectsResponse(projects))
}

// createProject godoc
// @Summary Create a project
// @Description Owners and managers create projects in their company.
// @Tags projects
// @Accept json
// @Produce json
// @Param project body dto.CreateProjectRequest true "Project details"
// @Success 201 {object} dto.ProjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Caller has no company"
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects [post]
func (h *projectHandler) createProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Proje oluşturulamadı.")
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

// getProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param project_id path string true "Project id"
// @Success 200 {object} dto.ProjectResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id} [get]
func (h *projectHandler) getProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondError(c, err, "Proje alınamadı.")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

// addMembers godoc
// @Summary Add company members to a project
// @Description Role defaults to worker. Members that were removed are reactivated.
// @Tags projects
// @Accept json
// @Produce json
// @Param project_id path string true "Project id"
// @Param request body dto.AddProjectMembersRequest true "Members"
// @Success 200 {object} dto.AddProjectMembersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/members [post]
func (h *projectHandler) addMembers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.AddProjectMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	added, err := h.projectService.AddProjectMembers(c.Request.Context(), userID, c.Param("project_id"), req)
	if err != nil {
		respondError(c, err, "Üyeler eklenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.AddProjectMembersResponse{Added: added})
}

// invitePartners godoc
// @Summary Invite partner companies
// @Description Selected ids and free-text ids are merged and de-duplicated; the caller's own company is skipped. Each partner owner is emailed an accept link.
// @Tags projects
// @Accept json
// @Produce json
// @Param project_id path string true "Project id"
// @Param request body dto.InvitePartnersRequest true "Partners"
// @Success 201 {object} dto.InvitePartnersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /projects/{project_id}/partners [post]
func (h *projectHandler) invitePartners(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.InvitePartnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.projectService.InvitePartners(c.Request.Context(), userID, c.Param("project_id"), req)
	if err != nil {
		respondError(c, err, "Davetler gönderilemedi.")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
