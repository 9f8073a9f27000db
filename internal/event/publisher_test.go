package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishListingCreated(context.Background(), ListingCreated{ListingID: 1}))
	p.Close()
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "listing.created")
	assert.Error(t, err)
}

func TestListingCreated_Payload(t *testing.T) {
	evt := ListingCreated{
		ListingID: 42,
		UserID:    7,
		Title:     "Rolex Watch",
		Brand:     "Rolex",
		Category:  "Watches",
		Price:     4500,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(42), got["listing_id"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["created_at"])
}
