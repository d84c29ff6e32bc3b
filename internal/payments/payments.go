package payments

import (
	"context"
	"errors"
)

// ErrPaymentDeclined is returned when the gateway rejects a charge.
// StatusDetail on the result carries the gateway's reason code.
var ErrPaymentDeclined = errors.New("payments: payment declined")

// Charger processes a card charge for a booking. Implementations must be
// safe for concurrent use.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// Payer identifies the paying customer.
type Payer struct {
	Email                string
	IdentificationType   string
	IdentificationNumber string
}

// ChargeRequest is a tokenized card charge. The card number never reaches
// this service; the frontend exchanges it for a one-time token.
type ChargeRequest struct {
	Amount          float64
	Token           string
	PaymentMethodID string
	Installments    int
	Description     string
	Payer           Payer
}

// ChargeResult is the gateway's answer for an accepted charge.
type ChargeResult struct {
	ID           int64
	Status       string
	StatusDetail string
}
