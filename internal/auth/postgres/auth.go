package postgres

import (
	"context"
	goerrors "errors"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/auth"
	userDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateCredential(ctx context.Context, c *auth.Credential) error {
	row := auth.CredentialToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrDuplicateEmail
		}
		return err
	}
	c.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) GetCredentialByID(ctx context.Context, id string) (*auth.Credential, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*auth.Credential, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return auth.CredentialFromDataModel(&row), nil
}

func (r *Repository) DeleteCredential(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.AuthToken{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&userDatamodel.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrUserNotFound
		}
		return nil
	})
}

func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *Repository) ConfirmEmail(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"email_confirmed_at": at})
}

func (r *Repository) update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) CreateActionToken(ctx context.Context, t *auth.ActionToken) error {
	return r.db.WithContext(ctx).Create(auth.ActionTokenToDataModel(t)).Error
}

func (r *Repository) ConsumeActionToken(ctx context.Context, tokenHash, purpose string, at time.Time) (*auth.ActionToken, error) {
	var consumed *auth.ActionToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userDatamodel.AuthToken
		err := tx.Where("token_hash = ? AND purpose = ? AND used_at IS NULL", tokenHash, purpose).First(&row).Error
		if err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrInvalidToken
			}
			return err
		}
		if !at.Before(row.ExpiresAt) {
			return errors.ErrTokenExpired
		}

		result := tx.Model(&userDatamodel.AuthToken{}).
			Where("id = ? AND used_at IS NULL", row.ID).
			Update("used_at", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrInvalidToken
		}
		row.UsedAt = &at
		consumed = auth.ActionTokenFromDataModel(&row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}
