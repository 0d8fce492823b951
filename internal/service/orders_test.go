package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(&PlaceOrderRequest{})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	err = ValidateRequest(&PlaceOrderRequest{
		Items: []PlaceOrderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 0},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateRequest(&PlaceOrderRequest{
		Items: []PlaceOrderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	assert.NoError(t, err)
}

func TestSetQuantityRejectsBelowOne(t *testing.T) {
	cs := &CartService{}

	for _, qty := range []int{0, -1, -100} {
		_, err := cs.SetQuantity(context.Background(), 1, 1, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}
