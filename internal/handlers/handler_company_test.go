package handlers_test

import (
	"net/http"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestCreateCompany_StatusReflectsCreation() {
	company := &domain.Company{CompanyID: "c-1", Name: "Kaplan İnşaat", Plan: domain.PlanTrial, OwnerID: "u-1"}
	suite.mockCompany.On("CreateCompany", mock.Anything, "u-1", mock.AnythingOfType("dto.CreateCompanyRequest")).
		Return(company, true, nil).Once()
	suite.mockCompany.On("CreateCompany", mock.Anything, "u-1", mock.AnythingOfType("dto.CreateCompanyRequest")).
		Return(company, false, nil).Once()

	first := suite.do(http.MethodPost, "/api/v1/companies", map[string]string{"name": "Kaplan İnşaat"}, "u-1")
	second := suite.do(http.MethodPost, "/api/v1/companies", map[string]string{"name": "Kaplan İnşaat"}, "u-1")

	suite.Equal(http.StatusCreated, first.Code)
	suite.Equal(http.StatusOK, second.Code)
	var resp dto.CreateCompanyResponse
	suite.decode(second, &resp)
	suite.False(resp.Created)
	suite.Equal("c-1", resp.Company.CompanyID)
}

func (suite *HandlerTestSuite) TestCreateCompany_MissingName() {
	w := suite.do(http.MethodPost, "/api/v1/companies", map[string]string{}, "u-1")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateCompany_RejectsUnknownPlan() {
	w := suite.do(http.MethodPatch, "/api/v1/companies/current", map[string]string{"plan": "platinum"}, "u-1")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCompany.AssertNotCalled(suite.T(), "UpdateCompany")
}

func (suite *HandlerTestSuite) TestJoinCompany_InvalidID() {
	suite.mockCompany.On("JoinCompany", mock.Anything, "u-1", "nope").
		Return(false, apperrors.NewValidationFailedError("company id is not a valid UUID")).Once()

	w := suite.do(http.MethodPost, "/api/v1/companies/join", map[string]string{"companyID": "nope"}, "u-1")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Equal("company id is not a valid UUID", resp["error"])
}

func (suite *HandlerTestSuite) TestUpdateMemberRole_AcceptsLegacySpelling() {
	suite.mockCompany.On("UpdateMemberRole", mock.Anything, "u-1", "u-2", domain.RoleManager).Return(nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/companies/current/members/u-2", map[string]string{"role": "yönetici"}, "u-1")

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateMemberRole_UnknownRole() {
	w := suite.do(http.MethodPut, "/api/v1/companies/current/members/u-2", map[string]string{"role": "ceo"}, "u-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCompany.AssertNotCalled(suite.T(), "UpdateMemberRole")
}

func (suite *HandlerTestSuite) TestRemoveMember_Forbidden() {
	suite.mockCompany.On("RemoveMember", mock.Anything, "u-2", "u-3").
		Return(apperrors.NewForbiddenError("insufficient permissions")).Once()

	w := suite.do(http.MethodDelete, "/api/v1/companies/current/members/u-3", nil, "u-2")

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestListMembers_PassesFilters() {
	suite.mockCompany.On("ListMembers", mock.Anything, "u-1", dto.ListMembersParams{ExcludeOwners: true, ExcludeSelf: true}).
		Return([]domain.CompanyMember{{CompanyID: "c-1", UserID: "u-3", Role: domain.RoleWorker}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/companies/current/members?excludeOwners=true&excludeSelf=true", nil, "u-1")

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestListPartners_OnlyIDAndName() {
	partners := []domain.Company{{
		CompanyID:     "c-2",
		Name:          "Demir Yapı",
		OwnerID:       "u-9",
		InitialBudget: decimal.NewFromInt(5000000),
	}}
	suite.mockCompany.On("ListPartnerCandidates", mock.Anything, "u-1").Return(partners, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/companies/partners", nil, "u-1")

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "ownerID")
	suite.NotContains(w.Body.String(), "initialBudget")
	var resp dto.ListPartnersResponse
	suite.decode(w, &resp)
	suite.Equal([]dto.PartnerCompanyResponse{{CompanyID: "c-2", Name: "Demir Yapı"}}, resp.Companies)
}

func (suite *HandlerTestSuite) TestListPartners_WithoutCompanyIsForbidden() {
	suite.mockCompany.On("ListPartnerCandidates", mock.Anything, "u-stranger").
		Return(nil, apperrors.NewForbiddenError("user does not belong to a company")).Once()

	w := suite.do(http.MethodGet, "/api/v1/companies/partners", nil, "u-stranger")

	suite.Equal(http.StatusForbidden, w.Code)
}
