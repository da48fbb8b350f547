package transaction

import (
	"github.com/frahmantamala/personal-finance/internal/category"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	transactionDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
)

func NewTransaction(ownerID string, dto CreateTransactionDTO) *finance.Transaction {
	return &finance.Transaction{
		Amount:      dto.Amount,
		Type:        finance.TransactionType(dto.Type),
		CategoryID:  dto.CategoryID,
		Description: dto.Description,
		Date:        dto.Date,
		OwnerID:     ownerID,
	}
}

func ToDataModel(t *finance.Transaction) *transactionDatamodel.Transaction {
	return &transactionDatamodel.Transaction{
		ID:          t.ID,
		UserID:      t.OwnerID,
		CategoryID:  t.CategoryID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Description: t.Description,
		Date:        t.Date.Time(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromDataModel converts a row, carrying the joined category when it was preloaded.
func FromDataModel(row *transactionDatamodel.Transaction) *finance.Transaction {
	t := &finance.Transaction{
		ID:          row.ID,
		Amount:      row.Amount,
		Type:        finance.TransactionType(row.Type),
		CategoryID:  row.CategoryID,
		Description: row.Description,
		Date:        calendar.DateOf(row.Date),
		OwnerID:     row.UserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.Category != nil {
		t.Category = category.FromDataModel(row.Category)
	}
	return t
}

func FromDataModelSlice(rows []*transactionDatamodel.Transaction) []finance.Transaction {
	result := make([]finance.Transaction, len(rows))
	for i, row := range rows {
		result[i] = *FromDataModel(row)
	}
	return result
}
