package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
	"fulfillment/internal/pkg/webhooksig"
)

var ErrPaymentWebhookCommandIsNotConstructed = errors.New(
	"PaymentWebhookCommand must be created via NewPaymentWebhookCommand constructor",
)

// Payment webhook form fields.
const (
	PaymentFieldPaymentID = "payment_id"
	PaymentFieldStatus    = "status"
	PaymentFieldReference = "reference_number"
	PaymentFieldAmount    = "amount"
	PaymentFieldCurrency  = "currency"
)

// PaymentWebhookCommand is a form-encoded payment notification. The full form
// is kept because the signature covers every field.
type PaymentWebhookCommand struct { //nolint:recvcheck //using for validation
	form map[string][]string

	guard guard.ConstructorGuard
}

// NewPaymentWebhookCommand rejects forms without a reference, a status or a signature.
func NewPaymentWebhookCommand(form map[string][]string) (PaymentWebhookCommand, error) {
	cmd := PaymentWebhookCommand{
		form:  make(map[string][]string, len(form)),
		guard: guard.NewConstructorGuard(),
	}
	for k, v := range form {
		cmd.form[k] = append([]string(nil), v...)
	}

	var errList []error
	for _, field := range []string{PaymentFieldReference, PaymentFieldStatus, webhooksig.FormSignatureField} {
		if cmd.field(field) == "" {
			errList = append(errList, errs.NewValueIsRequiredError(field))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return PaymentWebhookCommand{}, err
	}

	return cmd, nil
}

func (c PaymentWebhookCommand) Validate() error {
	return c.guard.Validate(ErrPaymentWebhookCommandIsNotConstructed)
}

// Form returns the raw fields, signature included.
func (c PaymentWebhookCommand) Form() map[string][]string {
	return c.form
}

func (c PaymentWebhookCommand) PaymentID() string {
	return c.field(PaymentFieldPaymentID)
}

func (c PaymentWebhookCommand) Status() string {
	return c.field(PaymentFieldStatus)
}

// Reference is the order short code the payment session was opened with.
func (c PaymentWebhookCommand) Reference() string {
	return c.field(PaymentFieldReference)
}

func (c PaymentWebhookCommand) Amount() string {
	return c.field(PaymentFieldAmount)
}

func (c PaymentWebhookCommand) Currency() string {
	return c.field(PaymentFieldCurrency)
}

func (c PaymentWebhookCommand) field(name string) string {
	if vs := c.form[name]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}
