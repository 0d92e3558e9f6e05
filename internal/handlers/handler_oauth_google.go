package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insaatai/insaat_backend/internal/apperrors"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/middleware"
	"github.com/insaatai/insaat_backend/internal/platform/config"
)

const oauthStateCookie = "oauthstate"

// GoogleOAuthHandler handles the Google sign-in routes.
type GoogleOAuthHandler struct {
	oauth  portssvc.GoogleOAuthSvcFacade
	auth   *authHandler
	secure bool
}

// NewGoogleOAuthHandler creates a new GoogleOAuthHandler.
func NewGoogleOAuthHandler(cfg *config.Config, svc *portssvc.ServiceContainer) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		oauth:  svc.GoogleOAuth,
		auth:   newAuthHandler(svc.Identity, svc.Bootstrap),
		secure: cfg.IsProduction,
	}
}

// registerGoogleOAuthRoutes is a no-op unless Google OAuth is fully configured.
func registerGoogleOAuthRoutes(r *gin.Engine, cfg *config.Config, svc *portssvc.ServiceContainer, limit gin.HandlerFunc) {
	if !cfg.GoogleOAuthEnabled() || svc.GoogleOAuth == nil {
		return
	}
	h := NewGoogleOAuthHandler(cfg, svc)

	google := r.Group("/api/v1/auth/google")
	{
		google.GET("/login", h.HandleGoogleLogin)
		google.POST("/exchange-code", limit, h.HandleExchangeCode)
	}
}

// HandleGoogleLogin godoc
// @Summary Start Google sign-in
// @Description Returns the Google consent URL. The CSRF state is also set as a cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) HandleGoogleLogin(c *gin.Context) {
	state, err := h.oauth.GenerateStateString(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Google ile giriş başlatılamadı."})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.secure, true)
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{
		URL:   h.oauth.GetGoogleLoginURL(c.Request.Context(), state),
		State: state,
	})
}

// HandleExchangeCode godoc
// @Summary Complete Google sign-in
// @Description Exchanges the Google authorization code for a session and completes any pending company setup.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.CallbackFailureResponse
// @Failure 401 {object} dto.CallbackFailureResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} dto.CallbackFailureResponse
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) HandleExchangeCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CallbackFailureResponse{Status: "Google doğrulama kodu eksik."})
		return
	}

	if req.State != "" {
		if cookieState, err := c.Cookie(oauthStateCookie); err == nil && cookieState != req.State {
			logger.Warn("OAuth state mismatch")
			c.JSON(http.StatusBadRequest, dto.CallbackFailureResponse{Status: "Google oturumu doğrulanamadı."})
			return
		}
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secure, true)

	session, err := h.auth.identity.ExchangeGoogleCode(c.Request.Context(), req.Code)
	if err != nil {
		logger.Warn("Google code exchange failed", slog.String("error", err.Error()))
		status := http.StatusInternalServerError
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status = appErr.Code
		}
		c.JSON(status, dto.CallbackFailureResponse{Status: "Google ile giriş tamamlanamadı."})
		return
	}

	c.JSON(http.StatusOK, h.auth.completeSignIn(c, session, dashboardPath))
}
