package handlers_test

import (
	"net/http"
	"time"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

func testSession(userID string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		AccessToken:           "access-" + userID,
		AccessTokenExpiresAt:  now.Add(time.Hour),
		RefreshToken:          "refresh-" + userID,
		RefreshTokenExpiresAt: now.Add(30 * 24 * time.Hour),
		User: &domain.User{
			UserID:   userID,
			Email:    userID + "@example.com",
			Metadata: domain.Metadata{},
		},
	}
}

func signUpBody() map[string]any {
	return map[string]any{
		"fullName":        "Ayşe Yılmaz",
		"email":           "ayse@example.com",
		"password":        "secret123",
		"passwordConfirm": "secret123",
	}
}

func (suite *HandlerTestSuite) TestSignUp_StoresCreateIntent() {
	body := signUpBody()
	body["tenantName"] = "Kaplan İnşaat"
	body["plan"] = "Profesyonel"

	suite.mockIdentity.On("SignUp", mock.Anything, "ayse@example.com", "secret123",
		mock.MatchedBy(func(md domain.Metadata) bool {
			intent, ok := md[domain.PendingIntentKey].(domain.PendingIntent)
			return ok &&
				intent.Kind == domain.IntentCreateTenant &&
				intent.TenantName == "Kaplan İnşaat" &&
				intent.Plan == domain.PlanPro &&
				md["full_name"] == "Ayşe Yılmaz"
		}),
	).Return(&domain.User{UserID: "u-1"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/signup", body, "")

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestSignUp_BothTenantFieldsRejected() {
	body := signUpBody()
	body["tenantName"] = "Kaplan İnşaat"
	body["tenantId"] = "2c4a0f6e-8a38-4b8e-9a4e-3b7c1d2e5f60"

	w := suite.do(http.MethodPost, "/api/v1/auth/signup", body, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Contains(resp["error"], "birlikte")
	suite.mockIdentity.AssertNotCalled(suite.T(), "SignUp")
}

func (suite *HandlerTestSuite) TestSignUp_ShortTenantNameRejected() {
	body := signUpBody()
	body["tenantName"] = " A "

	w := suite.do(http.MethodPost, "/api/v1/auth/signup", body, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Contains(resp["error"], "2 ile 120")
	suite.mockIdentity.AssertNotCalled(suite.T(), "SignUp")
}

func (suite *HandlerTestSuite) TestSignUp_NeitherTenantFieldRejected() {
	w := suite.do(http.MethodPost, "/api/v1/auth/signup", signUpBody(), "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockIdentity.AssertNotCalled(suite.T(), "SignUp")
}

func (suite *HandlerTestSuite) TestSignUp_DuplicateEmail() {
	body := signUpBody()
	body["tenantId"] = "2c4a0f6e-8a38-4b8e-9a4e-3b7c1d2e5f60"
	suite.mockIdentity.On("SignUp", mock.Anything, "ayse@example.com", "secret123", mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/signup", body, "")

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestLogin_RunsBootstrap() {
	suite.mockIdentity.On("SignIn", mock.Anything, "ayse@example.com", "secret123").
		Return(testSession("u-1"), nil).Once()
	suite.mockBootstrap.On("Run", mock.Anything, "u-1").Return(domain.BootstrapResult{
		Intent:        domain.IntentCreateTenant,
		Outcome:       domain.OutcomeCreated,
		CompanyID:     "c-1",
		IntentCleared: true,
	}).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ayse@example.com", "password": "secret123"}, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AuthResponse
	suite.decode(w, &resp)
	suite.Equal("/dashboard", resp.RedirectTo)
	suite.Equal("access-u-1", resp.Session.AccessToken)
	suite.Require().NotNil(resp.Bootstrap)
	suite.Equal(domain.OutcomeCreated, resp.Bootstrap.Outcome)
	suite.Empty(resp.Warning)
}

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.mockIdentity.On("SignIn", mock.Anything, "ayse@example.com", "wrong").
		Return(nil, apperrors.ErrInvalidCredentials).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ayse@example.com", "password": "wrong"}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockBootstrap.AssertNotCalled(suite.T(), "Run")
}

func (suite *HandlerTestSuite) TestLogin_EmailNotConfirmed() {
	suite.mockIdentity.On("SignIn", mock.Anything, "ayse@example.com", "secret123").
		Return(nil, apperrors.ErrEmailNotConfirmed).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ayse@example.com", "password": "secret123"}, "")

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestCallback_RecoveryRedirectsToReset() {
	suite.mockIdentity.On("ExchangeCodeForSession", mock.Anything, "abc").
		Return(testSession("u-1"), nil).Once()
	suite.mockBootstrap.On("Run", mock.Anything, "u-1").
		Return(domain.BootstrapResult{Intent: domain.IntentNone, Outcome: domain.OutcomeNoIntent}).Once()

	w := suite.do(http.MethodGet, "/api/v1/auth/callback?code=abc&type=recovery", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AuthResponse
	suite.decode(w, &resp)
	suite.Equal("/reset-password", resp.RedirectTo)
}

func (suite *HandlerTestSuite) TestCallback_SessionFlowWinsOverQuery() {
	session := testSession("u-1")
	session.Flow = domain.FlowSignup
	suite.mockIdentity.On("ExchangeCodeForSession", mock.Anything, "abc").Return(session, nil).Once()
	suite.mockBootstrap.On("Run", mock.Anything, "u-1").
		Return(domain.BootstrapResult{Outcome: domain.OutcomeNoIntent}).Once()

	w := suite.do(http.MethodGet, "/api/v1/auth/callback?code=abc&type=recovery", nil, "")

	var resp dto.AuthResponse
	suite.decode(w, &resp)
	suite.Equal("/dashboard", resp.RedirectTo)
}

func (suite *HandlerTestSuite) TestCallback_ProviderErrorHasNoRedirect() {
	w := suite.do(http.MethodGet, "/api/v1/auth/callback?error=access_denied", nil, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp map[string]any
	suite.decode(w, &resp)
	suite.NotEmpty(resp["status"])
	suite.NotContains(resp, "redirectTo")
	suite.mockIdentity.AssertNotCalled(suite.T(), "ExchangeCodeForSession")
}

func (suite *HandlerTestSuite) TestCallback_MissingCode() {
	w := suite.do(http.MethodGet, "/api/v1/auth/callback", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCallback_InvalidCode() {
	suite.mockIdentity.On("ExchangeCodeForSession", mock.Anything, "used").
		Return(nil, apperrors.ErrInvalidCode).Once()

	w := suite.do(http.MethodGet, "/api/v1/auth/callback?code=used", nil, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.CallbackFailureResponse
	suite.decode(w, &resp)
	suite.NotEmpty(resp.Status)
}

func (suite *HandlerTestSuite) TestCallback_BootstrapWarningStillRedirects() {
	suite.mockIdentity.On("ExchangeCodeForSession", mock.Anything, "abc").
		Return(testSession("u-1"), nil).Once()
	suite.mockBootstrap.On("Run", mock.Anything, "u-1").Return(domain.BootstrapResult{
		Intent:        domain.IntentJoinTenant,
		Outcome:       domain.OutcomeInvalidIntent,
		IntentCleared: true,
		Warning:       "Şirket kodu geçersiz.",
	}).Once()

	w := suite.do(http.MethodGet, "/api/v1/auth/callback?code=abc&type=signup", nil, "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AuthResponse
	suite.decode(w, &resp)
	suite.Equal("/dashboard", resp.RedirectTo)
	suite.Equal("Şirket kodu geçersiz.", resp.Warning)
	suite.Equal(domain.OutcomeInvalidIntent, resp.Bootstrap.Outcome)
}

func (suite *HandlerTestSuite) TestCallbackTokens_Rejected() {
	suite.mockIdentity.On("SessionFromTokens", mock.Anything, "bad", "stale").
		Return(nil, apperrors.ErrUnauthorized).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/callback",
		map[string]string{"accessToken": "bad", "refreshToken": "stale"}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestCallbackTokens_RequiresRefreshToken() {
	w := suite.do(http.MethodPost, "/api/v1/auth/callback", map[string]string{"accessToken": "only-access"}, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockIdentity.AssertNotCalled(suite.T(), "SessionFromTokens")
}

func (suite *HandlerTestSuite) TestRecover_AlwaysAccepted() {
	suite.mockIdentity.On("RequestPasswordRecovery", mock.Anything, "ghost@example.com").
		Return(errStoreDown).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/recover", map[string]string{"email": "ghost@example.com"}, "")

	suite.Equal(http.StatusAccepted, w.Code)
}

func (suite *HandlerTestSuite) TestRefresh_Expired() {
	suite.mockIdentity.On("RefreshSession", mock.Anything, "u-1", "old").
		Return(nil, apperrors.ErrRefreshTokenExpired).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"userID": "u-1", "refreshToken": "old"}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestLogout() {
	suite.mockIdentity.On("SignOut", mock.Anything, "u-1").Return(nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/auth/logout", nil, "u-1")

	suite.Equal(http.StatusNoContent, w.Code)
}
