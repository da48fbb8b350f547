package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/frahmantamala/personal-finance/internal"
	userDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
)

// Purposes of single-use action tokens.
const (
	PurposeEmailConfirmation = "email_confirmation"
	PurposePasswordReset     = "password_reset"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// Credential is the authentication identity of a user. Display fields live
// on the profile.
type Credential struct {
	ID               string
	Email            string
	PasswordHash     string
	IsActive         bool
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

func (c Credential) Confirmed() bool {
	return c.EmailConfirmedAt != nil
}

// ActionToken backs the e-mail confirmation and password reset links.
type ActionToken struct {
	ID        string
	UserID    string
	Purpose   string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims represents JWT token claims. TokenUse keeps a refresh token from
// being accepted where an access token is expected.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and checks signed session tokens.
type TokenGenerator interface {
	GenerateTokens(userID, email string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	now                func() time.Time
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		now:                time.Now,
	}
}

func (j *JWTTokenGenerator) GenerateTokens(userID, email string) (AuthTokens, error) {
	access, err := j.sign(userID, email, tokenUseAccess, j.AccessTokenTTL, j.AccessTokenSecret)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := j.sign(userID, email, tokenUseRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(j.AccessTokenTTL.Seconds()),
	}, nil
}

func (j *JWTTokenGenerator) sign(userID, email, use string, ttl time.Duration, secret []byte) (string, error) {
	now := j.now()
	claims := &Claims{
		UserID:   userID,
		Email:    email,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenUseAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenUseRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, use string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenUse != use || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// HashToken is the form in which action tokens are stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func CredentialToDataModel(c *Credential) *userDatamodel.User {
	return &userDatamodel.User{
		ID:               c.ID,
		Email:            c.Email,
		PasswordHash:     c.PasswordHash,
		IsActive:         c.IsActive,
		EmailConfirmedAt: c.EmailConfirmedAt,
		CreatedAt:        c.CreatedAt,
	}
}

func CredentialFromDataModel(u *userDatamodel.User) *Credential {
	return &Credential{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		IsActive:         u.IsActive,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
	}
}

func ActionTokenToDataModel(t *ActionToken) *userDatamodel.AuthToken {
	return &userDatamodel.AuthToken{
		ID:        t.ID,
		UserID:    t.UserID,
		Purpose:   t.Purpose,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
	}
}

func ActionTokenFromDataModel(t *userDatamodel.AuthToken) *ActionToken {
	return &ActionToken{
		ID:        t.ID,
		UserID:    t.UserID,
		Purpose:   t.Purpose,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		UsedAt:    t.UsedAt,
	}
}
