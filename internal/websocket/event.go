package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeCompleted EventType = "completed"
	EventTypeRecorded  EventType = "recorded"
	EventTypeExported  EventType = "exported"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLoan        EntityType = "loan"
	EntityTypeLoanPayment EntityType = "loan_payment"
	EntityTypeCashBill    EntityType = "cash_bill"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string     `json:"type"`      // Combined type e.g. "loan_payment.recorded"
	Entity    EntityType `json:"entity"`    // Entity type e.g. "loan_payment"
	Payload   any        `json:"payload"`   // Full entity data
	Timestamp time.Time  `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LoanCreated creates a loan.created event
func LoanCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeLoan, payload)
}

// LoanCompleted creates a loan.completed event
func LoanCompleted(payload any) Event {
	return NewEvent(EventTypeCompleted, EntityTypeLoan, payload)
}

// LoanPaymentRecorded creates a loan_payment.recorded event
func LoanPaymentRecorded(payload any) Event {
	return NewEvent(EventTypeRecorded, EntityTypeLoanPayment, payload)
}

// CashBillExported creates a cash_bill.exported event
func CashBillExported(payload any) Event {
	return NewEvent(EventTypeExported, EntityTypeCashBill, payload)
}
