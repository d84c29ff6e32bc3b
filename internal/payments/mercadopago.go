package payments

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/lststech/agenda-backend/pkg/logging"
)

// MercadoPagoCharger charges cards through the MercadoPago payments API.
// Binary mode is always on: a charge either approves or rejects, never
// stays pending, so the booking flow can decide synchronously.
type MercadoPagoCharger struct {
	client payment.Client
	logger *logging.Logger
}

// NewMercadoPagoCharger builds a charger from an access token.
func NewMercadoPagoCharger(accessToken string, logger *logging.Logger) (*MercadoPagoCharger, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("payments: mercadopago access token required")
	}
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("payments: mercadopago config: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MercadoPagoCharger{client: payment.NewClient(cfg), logger: logger}, nil
}

// Charge submits the tokenized charge and maps a gateway rejection to
// ErrPaymentDeclined.
func (c *MercadoPagoCharger) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := validateCharge(req); err != nil {
		return ChargeResult{}, err
	}

	installments := req.Installments
	if installments <= 0 {
		installments = 1
	}
	mpReq := payment.Request{
		TransactionAmount: req.Amount,
		Token:             req.Token,
		Description:       req.Description,
		Installments:      installments,
		PaymentMethodID:   req.PaymentMethodID,
		BinaryMode:        true,
		Payer: &payment.PayerRequest{
			Email: req.Payer.Email,
			Identification: &payment.IdentificationRequest{
				Type:   req.Payer.IdentificationType,
				Number: req.Payer.IdentificationNumber,
			},
		},
	}

	resp, err := c.client.Create(ctx, mpReq)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("payments: mercadopago create: %w", err)
	}

	result := ChargeResult{
		ID:           int64(resp.ID),
		Status:       resp.Status,
		StatusDetail: resp.StatusDetail,
	}
	if resp.Status != "approved" {
		c.logger.Warn("payment rejected",
			"payment_id", result.ID,
			"status", resp.Status,
			"status_detail", resp.StatusDetail,
		)
		return result, fmt.Errorf("%w: %s", ErrPaymentDeclined, resp.StatusDetail)
	}

	c.logger.Info("payment approved", "payment_id", result.ID, "amount", req.Amount)
	return result, nil
}

func validateCharge(req ChargeRequest) error {
	switch {
	case req.Amount <= 0:
		return fmt.Errorf("payments: amount must be positive")
	case req.Token == "":
		return fmt.Errorf("payments: missing card token")
	case req.PaymentMethodID == "":
		return fmt.Errorf("payments: missing payment method")
	case req.Payer.Email == "":
		return fmt.Errorf("payments: missing payer email")
	}
	return nil
}
