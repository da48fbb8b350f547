package user

import (
	userDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/user"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
)

func ToDataModel(u *finance.User) *userDatamodel.Profile {
	return &userDatamodel.Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromDataModel(p *userDatamodel.Profile) *finance.User {
	return &finance.User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
