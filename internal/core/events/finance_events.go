package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionRecorded = "transaction.recorded"
	EventTypeBudgetAlertRaised   = "budget.alert_raised"
	EventTypeUserRegistered      = "user.registered"
)

// Types lists every event the service raises.
var Types = []string{
	EventTypeTransactionRecorded,
	EventTypeBudgetAlertRaised,
	EventTypeUserRegistered,
}

func newBase(eventType, ownerID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Owner:     ownerID,
		Timestamp: time.Now().UTC(),
	}
}

// TransactionRecordedEvent is raised after a transaction is created or changed.
type TransactionRecordedEvent struct {
	BaseEvent
	TransactionID   string `json:"transaction_id"`
	TransactionType string `json:"transaction_type"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
}

func NewTransactionRecordedEvent(ownerID, transactionID, transactionType, amount, date string) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseEvent:       newBase(EventTypeTransactionRecorded, ownerID),
		TransactionID:   transactionID,
		TransactionType: transactionType,
		Amount:          amount,
		Date:            date,
	}
}

type BudgetAlertRaisedEvent struct {
	BaseEvent
	AlertID  string `json:"alert_id"`
	BudgetID string `json:"budget_id"`
	Month    string `json:"month"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func NewBudgetAlertRaisedEvent(ownerID, alertID, budgetID, month, severity, message string) *BudgetAlertRaisedEvent {
	return &BudgetAlertRaisedEvent{
		BaseEvent: newBase(EventTypeBudgetAlertRaised, ownerID),
		AlertID:   alertID,
		BudgetID:  budgetID,
		Month:     month,
		Severity:  severity,
		Message:   message,
	}
}

type UserRegisteredEvent struct {
	BaseEvent
	Email string `json:"email"`
}

func NewUserRegisteredEvent(userID, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBase(EventTypeUserRegistered, userID),
		Email:     email,
	}
}
