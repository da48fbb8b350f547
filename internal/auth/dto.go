package auth

import (
	"strings"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
	"github.com/frahmantamala/personal-finance/internal/user"
)

type SignupDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (d SignupDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6).MaxLength(72)
	v.Field("name", d.Name).MaxLength(100)
	return v.Validate()
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required()
	return v.Validate()
}

type ConfirmEmailDTO struct {
	Token string `json:"token"`
}

func (d ConfirmEmailDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	return v.Validate()
}

type PasswordResetRequestDTO struct {
	Email string `json:"email"`
}

func (d PasswordResetRequestDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	return v.Validate()
}

type PasswordResetConfirmDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (d PasswordResetConfirmDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("password", d.Password).Required().MinLength(6).MaxLength(72)
	return v.Validate()
}

type UpdatePasswordDTO struct {
	Password string `json:"password"`
}

func (d UpdatePasswordDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("password", d.Password).Required().MinLength(6).MaxLength(72)
	return v.Validate()
}

// normalizeEmail makes e-mail lookups case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const StatusPendingVerification = "pending_verification"

// SignupResult carries either a signed-in session or the pending status
// when the address must be confirmed first.
type SignupResult struct {
	Status string             `json:"status"`
	Tokens *AuthTokens        `json:"tokens,omitempty"`
	User   *user.UserResponse `json:"user,omitempty"`
}

type SessionResponse struct {
	User user.UserResponse `json:"user"`
}
