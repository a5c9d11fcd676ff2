package search

import (
	"context"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// BookingClient drives the booking-creation boundary. It lives with the
// search clients because all four external boundaries share one
// transport client and credential set.
type BookingClient struct {
	client *Client
}

func NewBookingClient(client *Client) *BookingClient {
	return &BookingClient{client: client}
}

// CreateBooking posts the validated aggregate and returns the booking ID.
func (b *BookingClient) CreateBooking(ctx context.Context, form models.BookingForm) (string, error) {
	var resp struct {
		BookingID string `json:"bookingId"`
	}
	if err := b.client.doPost(ctx, "/api/bookings", form, &resp); err != nil {
		return "", err
	}
	return resp.BookingID, nil
}
