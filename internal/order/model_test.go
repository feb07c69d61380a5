package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"PendingToProcessing", StatusPending, StatusProcessing, true},
		{"PendingToCancelled", StatusPending, StatusCancelled, true},
		{"ProcessingToShipped", StatusProcessing, StatusShipped, true},
		{"ShippedToOutForDelivery", StatusShipped, StatusOutForDelivery, true},
		{"OutForDeliveryToDelivered", StatusOutForDelivery, StatusDelivered, true},

		{"PendingToShippedSkips", StatusPending, StatusShipped, false},
		{"ProcessingToCancelled", StatusProcessing, StatusCancelled, false},
		{"ShippedToCancelled", StatusShipped, StatusCancelled, false},
		{"DeliveredIsTerminal", StatusDelivered, StatusProcessing, false},
		{"CancelledIsTerminal", StatusCancelled, StatusProcessing, false},
		{"NoBackwardMove", StatusShipped, StatusProcessing, false},
		{"SelfTransition", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		StatusPending, StatusProcessing, StatusShipped,
		StatusOutForDelivery, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, OrderStatus("PAID").Valid())
	assert.False(t, OrderStatus("").Valid())
}
