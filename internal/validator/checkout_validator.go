package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"bakery/internal/usecase"
)

// returned for any rejected field
var ErrInvalidInput = errors.New("invalid input")

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)
)

var deliveryMethods = map[string]bool{"": true, "delivery": true, "pickup": true}

type checkoutValidator struct{}

// returned as the usecase port
func NewCheckoutValidator() usecase.CheckoutValidator {
	return &checkoutValidator{}
}

// Presence checks plus loose email and phone formats.
func (v *checkoutValidator) ValidateCheckout(ctx context.Context, in usecase.CheckoutInput) error {
	name := strings.TrimSpace(in.RecipientName)
	email := strings.TrimSpace(in.RecipientEmail)
	phone := strings.TrimSpace(in.RecipientPhone)
	address := strings.TrimSpace(in.DeliveryAddress)

	if name == "" || email == "" || phone == "" || address == "" {
		return ErrInvalidInput
	}
	if len(name) > 255 || len(email) > 255 {
		return ErrInvalidInput
	}
	if !isEmailLike(email) {
		return ErrInvalidInput
	}
	if !phoneRe.MatchString(phone) {
		return ErrInvalidInput
	}
	if !deliveryMethods[strings.TrimSpace(in.DeliveryMethod)] {
		return ErrInvalidInput
	}

	return nil
}

// loose check: something@host.tld
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
