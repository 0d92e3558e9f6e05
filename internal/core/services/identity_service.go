package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/platform/config"
	"github.com/insaatai/insaat_backend/internal/platform/mail"
	"github.com/insaatai/insaat_backend/internal/utils"
)

// Metadata keys copied onto user columns at signup.
const (
	MetadataFullName = "full_name"
	MetadataPhone    = "phone"
)

// identityService is the in-process identity provider backed by Postgres.
type identityService struct {
	BaseService
	cfg      *config.Config
	userRepo portsrepo.UserRepositoryFacade
	codeRepo portsrepo.AuthCodeRepository
	tokens   portssvc.TokenSvcFacade
	google   portssvc.GoogleOAuthSvcFacade
	mailer   mail.Mailer
	now      func() time.Time
}

// NewIdentityService creates the identity provider.
func NewIdentityService(
	cfg *config.Config,
	userRepo portsrepo.UserRepositoryFacade,
	codeRepo portsrepo.AuthCodeRepository,
	tokens portssvc.TokenSvcFacade,
	google portssvc.GoogleOAuthSvcFacade,
	mailer mail.Mailer,
) portssvc.IdentityProviderSvc {
	return &identityService{
		cfg:      cfg,
		userRepo: userRepo,
		codeRepo: codeRepo,
		tokens:   tokens,
		google:   google,
		mailer:   mailer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.IdentityProviderSvc = (*identityService)(nil)

func (s *identityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if !utils.IsValidUUID(userID) {
		return nil, apperrors.ErrNotFound
	}
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *identityService) UpdateUserMetadata(ctx context.Context, userID string, patch domain.Metadata) (domain.Metadata, error) {
	merged, err := s.userRepo.MergeUserMetadata(ctx, userID, patch)
	if err != nil {
		s.LogError(ctx, err, "Failed to merge user metadata", slog.String("user_id", userID))
		return nil, err
	}
	return merged, nil
}

func (s *identityService) SignUp(ctx context.Context, email, password string, metadata domain.Metadata) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationFailedError("email is required")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationFailedError(err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if metadata == nil {
		metadata = domain.Metadata{}
	}
	now := s.now()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Email:        email,
		FullName:     metadataString(metadata, MetadataFullName),
		Phone:        metadataString(metadata, MetadataPhone),
		PasswordHash: &hash,
		AuthProvider: domain.ProviderLocal,
		Metadata:     metadata,
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save user", slog.String("email", email))
		return nil, err
	}

	if err := s.sendCode(ctx, &user, domain.FlowSignup, s.cfg.SignupCodeTTL); err != nil {
		// The account stays usable: a magic link also confirms the address.
		s.LogError(ctx, err, "Failed to send signup confirmation", slog.String("user_id", userID))
	}

	s.LogInfo(ctx, "User signed up", slog.String("user_id", userID))
	return &user, nil
}

func (s *identityService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !utils.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsConfirmed() {
		return nil, apperrors.ErrEmailNotConfirmed
	}
	return s.issueSession(ctx, user, "")
}

func (s *identityService) ExchangeCodeForSession(ctx context.Context, code string) (*domain.Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.ErrInvalidCode
	}
	authCode, err := s.codeRepo.ConsumeAuthCode(ctx, utils.HashToken(code), s.now())
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, authCode.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCode
		}
		return nil, err
	}
	// Every mailed code proves control of the address.
	if !user.IsConfirmed() {
		now := s.now()
		if err := s.userRepo.MarkEmailConfirmed(ctx, user.UserID, now); err != nil {
			return nil, err
		}
		user.EmailConfirmedAt = &now
	}
	return s.issueSession(ctx, user, authCode.Flow)
}

func (s *identityService) ExchangeGoogleCode(ctx context.Context, code string) (*domain.Session, error) {
	if s.google == nil || !s.cfg.GoogleOAuthEnabled() {
		return nil, apperrors.NewBadRequestError("google sign-in is not configured")
	}
	token, err := s.google.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, apperrors.NewAppError(401, "google code exchange failed", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperrors.NewUnauthorizedError("google response carried no id token")
	}
	info, err := s.google.ValidateGoogleIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, apperrors.NewAppError(401, "google id token rejected", err)
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, domain.FlowOAuth)
}

func (s *identityService) findOrCreateGoogleUser(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error) {
	user, err := s.userRepo.FindUserByProviderDetails(ctx, domain.ProviderGoogle, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	user, err = s.userRepo.FindUserByEmail(ctx, normalizeEmail(info.Email))
	switch {
	case err == nil:
		if !info.VerifiedEmail {
			return nil, apperrors.NewUnauthorizedError("google email is not verified")
		}
		if err := s.userRepo.LinkProvider(ctx, user.UserID, domain.ProviderGoogle, info.ID); err != nil {
			return nil, err
		}
		if !user.IsConfirmed() {
			if err := s.userRepo.MarkEmailConfirmed(ctx, user.UserID, now); err != nil {
				return nil, err
			}
			user.EmailConfirmedAt = &now
		}
		s.LogInfo(ctx, "Linked google account to existing user", slog.String("user_id", user.UserID))
		return user, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	userID := uuid.NewString()
	providerID := info.ID
	newUser := domain.User{
		UserID:         userID,
		Email:          normalizeEmail(info.Email),
		FullName:       info.Name,
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: &providerID,
		Metadata:       domain.Metadata{MetadataFullName: info.Name},
		AuditFields:    domain.NewAuditFields(userID, now),
	}
	if info.VerifiedEmail {
		newUser.EmailConfirmedAt = &now
	}
	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Created user from google sign-in", slog.String("user_id", userID))
	return &newUser, nil
}

// SessionFromTokens rotates a session handed over as a token pair. The refresh
// token must match the stored one; a valid access token alone is not enough.
func (s *identityService) SessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	userID, err := s.tokens.ParseAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if err := s.checkRefreshToken(user, refreshToken); err != nil {
		s.LogWarn(ctx, "Rejected token pair", slog.String("user_id", userID))
		return nil, err
	}
	return s.issueSession(ctx, user, "")
}

func (s *identityService) RefreshSession(ctx context.Context, userID, refreshToken string) (*domain.Session, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if err := s.checkRefreshToken(user, refreshToken); err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, "")
}

func (s *identityService) checkRefreshToken(user *domain.User, refreshToken string) error {
	if refreshToken == "" || user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return apperrors.ErrUnauthorized
	}
	if s.now().After(*user.RefreshTokenExpiryTime) {
		return apperrors.ErrRefreshTokenExpired
	}
	if !utils.CompareTokenHash(refreshToken, user.RefreshTokenHash) {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func (s *identityService) SignOut(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

func (s *identityService) SendMagicLink(ctx context.Context, email string) error {
	return s.mailCodeIfExists(ctx, email, domain.FlowMagicLink)
}

func (s *identityService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return s.mailCodeIfExists(ctx, email, domain.FlowRecovery)
}

// mailCodeIfExists never reveals whether the address is registered.
func (s *identityService) mailCodeIfExists(ctx context.Context, email string, flow domain.AuthFlow) error {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up user for mailed code", slog.String("flow", string(flow)))
		}
		return nil
	}
	if err := s.sendCode(ctx, user, flow, s.cfg.RecoveryCodeTTL); err != nil {
		s.LogError(ctx, err, "Failed to send mailed code",
			slog.String("user_id", user.UserID),
			slog.String("flow", string(flow)))
	}
	return nil
}

func (s *identityService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return apperrors.NewValidationFailedError(err.Error())
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to update password", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "Password updated", slog.String("user_id", userID))
	return nil
}

func (s *identityService) issueSession(ctx context.Context, user *domain.User, flow domain.AuthFlow) (*domain.Session, error) {
	accessToken, accessExpiry, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.tokens.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, utils.HashToken(refreshToken), refreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &domain.Session{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiry,
		User:                  user,
		Flow:                  flow,
	}, nil
}

func (s *identityService) sendCode(ctx context.Context, user *domain.User, flow domain.AuthFlow, ttl time.Duration) error {
	raw, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.codeRepo.SaveAuthCode(ctx, domain.AuthCode{
		CodeHash:  utils.HashToken(raw),
		UserID:    user.UserID,
		Flow:      flow,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	link := callbackLink(s.cfg.FrontendBaseURL, raw, flow)
	subject, intro := codeMailCopy(flow)
	name := user.FullName
	if name == "" {
		name = user.Email
	}
	return s.mailer.Send(ctx, mail.Message{
		Kind:    string(flow),
		From:    s.cfg.MailFromEmail,
		To:      []string{user.Email},
		Subject: subject,
		Text:    fmt.Sprintf("Merhaba %s,\n\n%s\n\n%s\n", name, intro, link),
		HTML: fmt.Sprintf(`<p>Merhaba %s,</p><p>%s</p><p><a href="%s">%s</a></p>`,
			html.EscapeString(name), html.EscapeString(intro), html.EscapeString(link), html.EscapeString(link)),
	})
}

// callbackLink builds the frontend URL that hands a mailed code to the callback route.
func callbackLink(base, code string, flow domain.AuthFlow) string {
	q := url.Values{}
	q.Set("code", code)
	q.Set("type", string(flow))
	return strings.TrimRight(base, "/") + "/auth/callback?" + q.Encode()
}

func codeMailCopy(flow domain.AuthFlow) (subject, intro string) {
	switch flow {
	case domain.FlowRecovery:
		return "Şifre sıfırlama", "Şifrenizi sıfırlamak için aşağıdaki bağlantıya tıklayın."
	case domain.FlowMagicLink:
		return "Giriş bağlantınız", "Hesabınıza giriş yapmak için aşağıdaki bağlantıya tıklayın."
	default:
		return "E-posta adresinizi doğrulayın", "Hesabınızı etkinleştirmek için aşağıdaki bağlantıya tıklayın."
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func metadataString(md domain.Metadata, key string) string {
	if v, ok := md[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
