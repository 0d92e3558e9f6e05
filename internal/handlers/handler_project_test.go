package handlers_test

import (
	"net/http"
	"time"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

const testProjectID = "5d9c1f3a-7b2e-4c8d-9e0f-1a2b3c4d5e6f"

func (suite *HandlerTestSuite) TestListProjects() {
	suite.mockProject.On("ListProjectsForUser", mock.Anything, "u-1").Return([]domain.Project{
		{ProjectID: "p-1", CompanyID: "c-1", Name: "Çamlıca Kulesi"},
		{ProjectID: "p-2", CompanyID: "c-2", Name: "Zeytinburnu Konutları"},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/projects", nil, "u-1")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListProjectsResponse
	suite.decode(w, &resp)
	suite.Len(resp.Projects, 2)
}

func (suite *HandlerTestSuite) TestCreateProject() {
	suite.mockProject.On("CreateProject", mock.Anything, "u-1", mock.MatchedBy(func(req dto.CreateProjectRequest) bool {
		return req.Name == "Kaplan Rezidans"
	})).Return(&domain.Project{ProjectID: testProjectID, Name: "Kaplan Rezidans"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/projects", map[string]string{"name": "Kaplan Rezidans"}, "u-1")

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestGetProject_Forbidden() {
	suite.mockProject.On("GetProject", mock.Anything, "u-9", testProjectID).
		Return(nil, apperrors.NewForbiddenError("you do not have access to this project")).Once()

	w := suite.do(http.MethodGet, "/api/v1/projects/"+testProjectID, nil, "u-9")

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestAddProjectMembers_RequiresUUIDs() {
	w := suite.do(http.MethodPost, "/api/v1/projects/"+testProjectID+"/members",
		map[string]any{"userIDs": []string{"not-a-uuid"}}, "u-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockProject.AssertNotCalled(suite.T(), "AddProjectMembers")
}

func (suite *HandlerTestSuite) TestInvitePartners() {
	expires := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	suite.mockProject.On("InvitePartners", mock.Anything, "u-1", testProjectID, mock.AnythingOfType("dto.InvitePartnersRequest")).
		Return(&dto.InvitePartnersResponse{Invited: []string{"c-2"}, ExpiresAt: expires}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/projects/"+testProjectID+"/partners",
		map[string]any{"manualIDs": "c-2", "expireDays": 7}, "u-1")

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InvitePartnersResponse
	suite.decode(w, &resp)
	suite.Equal([]string{"c-2"}, resp.Invited)
	suite.True(expires.Equal(resp.ExpiresAt))
}

func (suite *HandlerTestSuite) TestInvitePartners_ExpireDaysOutOfRange() {
	w := suite.do(http.MethodPost, "/api/v1/projects/"+testProjectID+"/partners",
		map[string]any{"manualIDs": "c-2", "expireDays": 120}, "u-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockProject.AssertNotCalled(suite.T(), "InvitePartners")
}

func (suite *HandlerTestSuite) TestAcceptInvite() {
	suite.mockProject.On("AcceptPartnerInvite", mock.Anything, "u-2", "tok").Return(&domain.PartnerInvite{
		InviteID:  "i-1",
		ProjectID: testProjectID,
		Status:    domain.InviteAccepted,
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invites/tok/accept", nil, "u-2")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PartnerInviteResponse
	suite.decode(w, &resp)
	suite.Equal(domain.InviteAccepted, resp.Status)
}

func (suite *HandlerTestSuite) TestRejectInvite_AlreadyAnswered() {
	suite.mockProject.On("RejectPartnerInvite", mock.Anything, "u-2", "tok").
		Return(nil, apperrors.NewConflictError("invite has already been answered")).Once()

	w := suite.do(http.MethodPost, "/api/v1/invites/tok/reject", nil, "u-2")

	suite.Equal(http.StatusConflict, w.Code)
}
