package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/core/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/middleware"
)

const (
	dashboardPath     = "/dashboard"
	resetPasswordPath = "/reset-password"
)

// authHandler handles the public authentication routes.
type authHandler struct {
	identity  portssvc.IdentityProviderSvc
	bootstrap portssvc.BootstrapSvc
}

func newAuthHandler(identity portssvc.IdentityProviderSvc, bootstrap portssvc.BootstrapSvc) *authHandler {
	return &authHandler{identity: identity, bootstrap: bootstrap}
}

// registerAuthRoutes sets up the public routes for authentication.
// Credential-guessing routes share limit.
func registerAuthRoutes(r *gin.Engine, svc *portssvc.ServiceContainer, limit gin.HandlerFunc) {
	h := newAuthHandler(svc.Identity, svc.Bootstrap)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/signup", limit, h.signUp)
		auth.POST("/login", limit, h.login)
		auth.GET("/callback", h.callbackCode)
		auth.POST("/callback", h.callbackTokens)
		auth.POST("/magic-link", limit, h.magicLink)
		auth.POST("/recover", limit, h.recoverPassword)
		auth.POST("/refresh", h.refresh)
	}
}

// signUp godoc
// @Summary Register a new account
// @Description Creates the account and stores the create-or-join choice as a pending intent. Exactly one of tenantName or tenantId must be given. A confirmation link is emailed; no session is returned.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignUpRequest true "Signup form"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *authHandler) signUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	intent, err := domain.NewSignupIntent(req.TenantName, req.Plan, req.TenantID)
	if err != nil {
		msg := "Şirket adı veya şirket kodu alanlarından birini doldurun."
		switch {
		case errors.Is(err, domain.ErrIntentAmbiguous):
			msg = "Şirket adı ve şirket kodu birlikte gönderilemez; yalnızca birini doldurun."
		case errors.Is(err, domain.ErrIntentNameLength):
			msg = fmt.Sprintf("Şirket adı %d ile %d karakter arasında olmalıdır.", domain.MinCompanyNameLength, domain.MaxCompanyNameLength)
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	metadata := intent.ToMetadata()
	metadata[services.MetadataFullName] = req.FullName
	metadata[services.MetadataPhone] = req.Phone

	if _, err := h.identity.SignUp(c.Request.Context(), req.Email, req.Password, metadata); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Bu e-posta zaten kayıtlı."})
			return
		}
		respondError(c, err, "Kayıt sırasında bir hata oluştu.")
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{
		Message: "Kayıt başarılı. Hesabınızı doğrulamak için e-postanızı kontrol edin.",
	})
}

// login godoc
// @Summary Sign in with email and password
// @Description Establishes a session and completes any pending company setup.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Email not confirmed"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	session, err := h.identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "E-posta veya şifre hatalı."})
		case errors.Is(err, apperrors.ErrEmailNotConfirmed):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "E-posta adresiniz henüz doğrulanmadı."})
		default:
			respondError(c, err, "Giriş sırasında bir hata oluştu.")
		}
		return
	}

	c.JSON(http.StatusOK, h.completeSignIn(c, session, dashboardPath))
}

// callbackCode godoc
// @Summary Complete an emailed sign-in link
// @Description Exchanges the single-use code from a confirmation, magic link or recovery email for a session, then completes any pending company setup. Recovery links redirect to the password reset page.
// @Tags auth
// @Produce json
// @Param code query string true "Single-use code"
// @Param type query string false "Flow type (signup, magiclink, recovery)"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.CallbackFailureResponse
// @Failure 500 {object} dto.CallbackFailureResponse
// @Router /auth/callback [get]
func (h *authHandler) callbackCode(c *gin.Context) {
	if c.Query("error") != "" {
		c.JSON(http.StatusBadRequest, dto.CallbackFailureResponse{Status: "Doğrulama bağlantısı geçersiz veya süresi dolmuş."})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.CallbackFailureResponse{Status: "Doğrulama kodu bulunamadı."})
		return
	}

	session, err := h.identity.ExchangeCodeForSession(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, dto.CallbackFailureResponse{Status: "Doğrulama bağlantısı geçersiz veya süresi dolmuş."})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to exchange auth code", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.CallbackFailureResponse{Status: "Doğrulama sırasında bir hata oluştu."})
		return
	}

	flow := session.Flow
	if flow == "" {
		flow = domain.AuthFlow(c.Query("type"))
	}
	c.JSON(http.StatusOK, h.completeSignIn(c, session, redirectForFlow(flow)))
}

// callbackTokens godoc
// @Summary Complete a legacy fragment callback
// @Description Validates tokens an older email link delivered in the URL fragment and completes any pending company setup.
// @Tags auth
// @Accept json
// @Produce json
// @Param tokens body dto.CallbackTokensRequest true "Fragment tokens"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.CallbackFailureResponse
// @Failure 401 {object} dto.CallbackFailureResponse
// @Router /auth/callback [post]
func (h *authHandler) callbackTokens(c *gin.Context) {
	var req dto.CallbackTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CallbackFailureResponse{Status: "Doğrulama bağlantısı eksik."})
		return
	}

	session, err := h.identity.SessionFromTokens(c.Request.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Fragment tokens rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, dto.CallbackFailureResponse{Status: "Oturum doğrulanamadı."})
		return
	}

	c.JSON(http.StatusOK, h.completeSignIn(c, session, redirectForFlow(domain.AuthFlow(req.Type))))
}

// magicLink godoc
// @Summary Email a sign-in link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Email"
// @Success 202 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/magic-link [post]
func (h *authHandler) magicLink(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.identity.SendMagicLink(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Giriş bağlantısı gönderilemedi.")
		return
	}
	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Giriş bağlantısı e-posta adresinize gönderildi."})
}

// recoverPassword godoc
// @Summary Request a password recovery email
// @Description Always answers 202 so the response does not reveal whether the address is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Email"
// @Success 202 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/recover [post]
func (h *authHandler) recoverPassword(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.identity.RequestPasswordRecovery(c.Request.Context(), req.Email); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Password recovery failed", slog.String("error", err.Error()))
	}
	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Hesap mevcutsa şifre sıfırlama bağlantısı gönderildi."})
}

// refresh godoc
// @Summary Refresh a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	session, err := h.identity.RefreshSession(c.Request.Context(), req.UserID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrRefreshTokenExpired) || errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Oturum süresi doldu. Lütfen tekrar giriş yapın."})
			return
		}
		respondError(c, err, "Oturum yenilenemedi.")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// completeSignIn runs the pending company setup for a fresh session and
// builds the response. A failed setup never blocks the redirect.
func (h *authHandler) completeSignIn(c *gin.Context, session *domain.Session, redirectTo string) dto.AuthResponse {
	resp := dto.AuthResponse{
		RedirectTo: redirectTo,
		Session:    dto.ToSessionResponse(session),
	}
	if session.User == nil {
		return resp
	}
	result := h.bootstrap.Run(c.Request.Context(), session.User.UserID)
	resp.Bootstrap = &result
	resp.Warning = result.Warning
	return resp
}

func redirectForFlow(flow domain.AuthFlow) string {
	if flow == domain.FlowRecovery {
		return resetPasswordPath
	}
	return dashboardPath
}
