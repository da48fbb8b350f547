package auth

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CredentialRepository interface {
	CreateCredential(ctx context.Context, c *Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	GetCredentialByID(ctx context.Context, id string) (*Credential, error)
	DeleteCredential(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ConfirmEmail(ctx context.Context, id string, at time.Time) error
	CreateActionToken(ctx context.Context, t *ActionToken) error
	// ConsumeActionToken marks the token used and returns it. Unknown or
	// already used tokens yield ErrInvalidToken, stale ones ErrTokenExpired.
	ConsumeActionToken(ctx context.Context, tokenHash, purpose string, at time.Time) (*ActionToken, error)
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*finance.User, error)
	Create(ctx context.Context, u *finance.User) error
}

// Sessions drops the per-owner state kept between requests.
type Sessions interface {
	End(ownerID string)
}

// Mailer delivers the links behind action tokens.
type Mailer interface {
	Send(ctx context.Context, to, purpose, token string) error
}

// LogMailer writes the token to the log instead of sending mail.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, to, purpose, token string) error {
	m.Logger.Info("auth mail", "to", to, "purpose", purpose, "token", token)
	return nil
}

type Options struct {
	RequireEmailConfirmation bool
	BCryptCost               int
	ActionTokenTTL           time.Duration
}

type Service struct {
	credentials CredentialRepository
	profiles    ProfileRepository
	sessions    Sessions
	tokens      TokenGenerator
	mailer      Mailer
	publisher   events.Publisher
	opts        Options
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(credentials CredentialRepository, profiles ProfileRepository, sessions Sessions, tokens TokenGenerator, mailer Mailer, publisher events.Publisher, opts Options, logger *slog.Logger) *Service {
	if opts.BCryptCost == 0 {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	if opts.ActionTokenTTL <= 0 {
		opts.ActionTokenTTL = time.Hour
	}
	return &Service{
		credentials: credentials,
		profiles:    profiles,
		sessions:    sessions,
		tokens:      tokens,
		mailer:      mailer,
		publisher:   publisher,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Signup creates the identity and then the profile. When the profile cannot
// be written the identity is removed again so the address stays free.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*SignupResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	cred := &Credential{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(dto.Email),
		PasswordHash: hash,
		IsActive:     true,
	}
	if !s.opts.RequireEmailConfirmation {
		cred.EmailConfirmedAt = &now
	}
	if err := s.credentials.CreateCredential(ctx, cred); err != nil {
		return nil, err
	}

	profile := &finance.User{ID: cred.ID, Email: cred.Email, Name: dto.Name}
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.logger.Error("profile creation failed, removing credential", "error", err, "user_id", cred.ID)
		if delErr := s.credentials.DeleteCredential(ctx, cred.ID); delErr != nil {
			s.logger.Error("failed to remove credential", "error", delErr, "user_id", cred.ID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.announce(ctx, events.NewUserRegisteredEvent(cred.ID, cred.Email))
	s.logger.Info("user signed up", "user_id", cred.ID)

	if s.opts.RequireEmailConfirmation {
		if err := s.issueActionToken(ctx, cred, PurposeEmailConfirmation); err != nil {
			return nil, err
		}
		return &SignupResult{Status: StatusPendingVerification}, nil
	}

	tokens, err := s.tokens.GenerateTokens(cred.ID, cred.Email)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse(*profile)
	return &SignupResult{Status: "active", Tokens: &tokens, User: &resp}, nil
}

func (s *Service) ConfirmEmail(ctx context.Context, dto ConfirmEmailDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	now := s.now().UTC()
	token, err := s.credentials.ConsumeActionToken(ctx, HashToken(dto.Token), PurposeEmailConfirmation, now)
	if err != nil {
		return err
	}
	if err := s.credentials.ConfirmEmail(ctx, token.UserID, now); err != nil {
		return err
	}
	s.logger.Info("email confirmed", "user_id", token.UserID)
	return nil
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.credentials.GetCredentialByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if goerrors.Is(err, errors.ErrUserNotFound) {
			return AuthTokens{}, errors.ErrInvalidCredentials
		}
		return AuthTokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, errors.ErrInvalidCredentials
	}
	if !cred.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}
	if s.opts.RequireEmailConfirmation && !cred.Confirmed() {
		return AuthTokens{}, errors.ErrEmailNotConfirmed
	}

	s.logger.Info("user logged in", "user_id", cred.ID)
	return s.tokens.GenerateTokens(cred.ID, cred.Email)
}

func (s *Service) Refresh(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}
	claims, err := s.tokens.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	cred, err := s.credentials.GetCredentialByID(ctx, claims.UserID)
	if err != nil {
		if goerrors.Is(err, errors.ErrUserNotFound) {
			return AuthTokens{}, errors.ErrInvalidToken
		}
		return AuthTokens{}, err
	}
	if !cred.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}
	return s.tokens.GenerateTokens(cred.ID, cred.Email)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// Logout resets the owner's session state. Issued JWTs stay valid until they
// expire.
func (s *Service) Logout(_ context.Context, ownerID string) {
	s.sessions.End(ownerID)
	s.logger.Info("user logged out", "user_id", ownerID)
}

func (s *Service) Session(ctx context.Context, ownerID string) (*finance.User, error) {
	return s.profiles.GetByID(ctx, ownerID)
}

// RequestPasswordReset succeeds for unknown addresses too, so the endpoint
// does not reveal which e-mails are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, dto PasswordResetRequestDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	cred, err := s.credentials.GetCredentialByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if goerrors.Is(err, errors.ErrUserNotFound) {
			s.logger.Debug("password reset for unknown email")
			return nil
		}
		return err
	}
	return s.issueActionToken(ctx, cred, PurposePasswordReset)
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, dto PasswordResetConfirmDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	token, err := s.credentials.ConsumeActionToken(ctx, HashToken(dto.Token), PurposePasswordReset, s.now().UTC())
	if err != nil {
		return err
	}
	return s.setPassword(ctx, token.UserID, dto.Password)
}

func (s *Service) UpdatePassword(ctx context.Context, ownerID string, dto UpdatePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	return s.setPassword(ctx, ownerID, dto.Password)
}

func (s *Service) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.credentials.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *Service) issueActionToken(ctx context.Context, cred *Credential, purpose string) error {
	raw, err := GenerateRandomToken()
	if err != nil {
		return err
	}
	token := &ActionToken{
		ID:        uuid.NewString(),
		UserID:    cred.ID,
		Purpose:   purpose,
		TokenHash: HashToken(raw),
		ExpiresAt: s.now().UTC().Add(s.opts.ActionTokenTTL),
	}
	if err := s.credentials.CreateActionToken(ctx, token); err != nil {
		return err
	}
	return s.mailer.Send(ctx, cred.Email, purpose, raw)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BCryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) announce(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
