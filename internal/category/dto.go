package category

import (
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
)

type CreateCategoryDTO struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (dto CreateCategoryDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(50)
	v.Field("type", dto.Type).Required().TransactionType()
	v.Field("icon", dto.Icon).MaxLength(50)
	v.Field("color", dto.Color).MaxLength(20)
	return v.Validate()
}

type UpdateCategoryDTO = CreateCategoryDTO

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	Shared    bool      `json:"shared"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func ToResponse(c finance.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      c.Icon,
		Color:     c.Color,
		Shared:    c.IsShared(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToResponses(categories []finance.Category) CategoriesResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToResponse(c)
	}
	return CategoriesResponse{Categories: out}
}
