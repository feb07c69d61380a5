package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	payload := OrderCreatedPayload{
		OrderID:     "ord-1",
		OrderNumber: "ORD-20260828-1",
		UserID:      7,
		Total:       145300,
		Currency:    "IDR",
		Items: []ItemLine{
			{Name: "Shirt Red / M", Quantity: 2, Price: 50000},
		},
	}

	env, err := NewEnvelope(EventOrderCreated, "ord-1", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, EventOrderCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, ProducerName, env.Producer)
	assert.Equal(t, "ord-1", env.CorrelationID)
	assert.WithinDuration(t, time.Now().UTC(), env.OccurredAt, time.Second)

	// Round-trip through the wire format.
	wire, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(wire, &decoded))

	got, err := UnwrapPayload[OrderCreatedPayload](decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload.OrderNumber, got.OrderNumber)
	assert.Equal(t, payload.Total, got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, []byte("ord-1"), PartitionKey("ord-1"))
}
