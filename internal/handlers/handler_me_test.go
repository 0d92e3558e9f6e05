package handlers_test

import (
	"net/http"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestGetMe_NeedsCompany() {
	suite.mockIdentity.On("GetUser", mock.Anything, "u-1").Return(&domain.User{
		UserID:   "u-1",
		Email:    "ayse@example.com",
		FullName: "Ayşe Yılmaz",
		Metadata: domain.Metadata{domain.PendingIntentKey: domain.JoinTenantIntent("not-a-uuid")},
	}, nil).Once()
	suite.mockCompany.On("GetCompanyForUser", mock.Anything, "u-1").
		Return(nil, domain.Role(""), apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/me", nil, "u-1")

	suite.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	suite.decode(w, &resp)
	suite.Equal(true, resp["needsCompany"])
	suite.Nil(resp["company"])
	user := resp["user"].(map[string]any)
	suite.Equal(string(domain.IntentJoinTenant), user["pendingIntent"])
}

func (suite *HandlerTestSuite) TestGetMe_WithCompany() {
	suite.mockIdentity.On("GetUser", mock.Anything, "u-1").
		Return(&domain.User{UserID: "u-1", Metadata: domain.Metadata{}}, nil).Once()
	suite.mockCompany.On("GetCompanyForUser", mock.Anything, "u-1").
		Return(&domain.Company{CompanyID: "c-1", Name: "Kaplan İnşaat", Plan: domain.PlanPro}, domain.RoleManager, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/me", nil, "u-1")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.MeResponse
	suite.decode(w, &resp)
	suite.False(resp.NeedsCompany)
	suite.Require().NotNil(resp.Company)
	suite.Equal("Profesyonel", resp.Company.PlanLabel)
	suite.Equal(domain.RoleManager, resp.Role)
}

func (suite *HandlerTestSuite) TestGetMe_DeletedUser() {
	suite.mockIdentity.On("GetUser", mock.Anything, "u-gone").
		Return(nil, apperrors.NewNotFoundError("user not found")).Once()

	w := suite.do(http.MethodGet, "/api/v1/me", nil, "u-gone")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockCompany.AssertNotCalled(suite.T(), "GetCompanyForUser")
}

func (suite *HandlerTestSuite) TestRunBootstrap() {
	suite.mockBootstrap.On("Run", mock.Anything, "u-1").Return(domain.BootstrapResult{
		Intent:  domain.IntentCreateTenant,
		Outcome: domain.OutcomeFailed,
		Warning: "Şirket kurulumu tamamlanamadı.",
	}).Once()

	w := suite.do(http.MethodPost, "/api/v1/me/bootstrap", nil, "u-1")

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.BootstrapResult
	suite.decode(w, &resp)
	suite.Equal(domain.OutcomeFailed, resp.Outcome)
	suite.False(resp.IntentCleared)
}
