package payments

import (
	"strings"
	"testing"
)

func TestValidateCharge(t *testing.T) {
	valid := ChargeRequest{
		Amount:          350000,
		Token:           "tok_abc",
		PaymentMethodID: "visa",
		Installments:    1,
		Description:     "Extended Session",
		Payer:           Payer{Email: "jane@example.com", IdentificationType: "CC", IdentificationNumber: "1020304050"},
	}
	if err := validateCharge(valid); err != nil {
		t.Fatalf("valid charge rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*ChargeRequest)
		wantMsg string
	}{
		{"zero amount", func(r *ChargeRequest) { r.Amount = 0 }, "amount"},
		{"negative amount", func(r *ChargeRequest) { r.Amount = -10 }, "amount"},
		{"missing token", func(r *ChargeRequest) { r.Token = "" }, "token"},
		{"missing method", func(r *ChargeRequest) { r.PaymentMethodID = "" }, "payment method"},
		{"missing email", func(r *ChargeRequest) { r.Payer.Email = "" }, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := validateCharge(req)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}
