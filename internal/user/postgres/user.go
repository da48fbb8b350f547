package postgres

import (
	"context"
	"database/sql"
	goerrors "errors"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	userDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/user"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/user"
	"github.com/jmoiron/sqlx"
)

// ProfileRepository stores profiles with plain SQL. Queries are written with
// '?' placeholders and rebound for the driver in use.
type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*finance.User, error) {
	var row userDatamodel.Profile
	query := r.db.Rebind(`SELECT id, email, name, avatar_url, created_at, updated_at FROM profiles WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *ProfileRepository) Create(ctx context.Context, u *finance.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	row := user.ToDataModel(u)
	query := `INSERT INTO profiles (id, email, name, avatar_url, created_at, updated_at)
	          VALUES (:id, :email, :name, :avatar_url, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, row)
	return err
}

func (r *ProfileRepository) Update(ctx context.Context, u *finance.User) error {
	u.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE profiles SET name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, u.Name, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM profiles WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}
