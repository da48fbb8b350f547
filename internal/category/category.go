package category

import (
	"sort"

	categoryDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/category"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
)

func NewCategory(ownerID string, dto CreateCategoryDTO) *finance.Category {
	owner := ownerID
	return &finance.Category{
		Name:    dto.Name,
		Type:    finance.TransactionType(dto.Type),
		Icon:    dto.Icon,
		Color:   dto.Color,
		OwnerID: &owner,
	}
}

// SortByName orders categories by type, then name, for display.
func SortByName(categories []finance.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Type != categories[j].Type {
			return categories[i].Type < categories[j].Type
		}
		return categories[i].Name < categories[j].Name
	})
}

func ToDataModel(c *finance.Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:        c.ID,
		UserID:    c.OwnerID,
		Name:      c.Name,
		Type:      string(c.Type),
		Icon:      c.Icon,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *finance.Category {
	return &finance.Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      finance.TransactionType(c.Type),
		Icon:      c.Icon,
		Color:     c.Color,
		OwnerID:   c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*categoryDatamodel.Category) []finance.Category {
	result := make([]finance.Category, len(rows))
	for i, row := range rows {
		result[i] = *FromDataModel(row)
	}
	return result
}
