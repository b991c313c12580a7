package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offerInput struct {
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Currency    string     `json:"currency" validate:"required,is-currency"`
	PricingUnit string     `json:"pricing_unit" validate:"omitempty,is-pricing-unit"`
	ValidUntil  *time.Time `json:"valid_until" validate:"omitempty,future"`
}

type listingQuery struct {
	Kind string `form:"kind" validate:"omitempty,is-listing-kind"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	future := time.Now().Add(time.Hour)

	err := v.Validate(&offerInput{Amount: 10, Currency: "USD", PricingUnit: "per_km", ValidUntil: &future})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONNames(t *testing.T) {
	v := New()
	past := time.Now().Add(-time.Hour)

	err := v.Validate(&offerInput{Amount: 0, Currency: "XXX", PricingUnit: "per_bag", ValidUntil: &past})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "amount")
	assert.Contains(t, vErr.Errors, "currency")
	assert.Contains(t, vErr.Errors, "pricing_unit")
	assert.Equal(t, "Must be a date in the future", vErr.Errors["valid_until"])
}

func TestValidate_NegativeAmount(t *testing.T) {
	v := New()
	err := v.Validate(&offerInput{Amount: -5, Currency: "EUR"})

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be greater than 0", vErr.Errors["amount"])
}

func TestValidate_FormTagFallback(t *testing.T) {
	v := New()
	err := v.Validate(&listingQuery{Kind: "boat"})

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "kind")
}
