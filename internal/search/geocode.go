package search

import (
	"context"
	"net/url"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// Geocoder resolves free-text city or hotel names through the geocoding
// boundary. Used by the trip-creation entry point, not the core flow.
type Geocoder struct {
	client *Client
}

func NewGeocoder(client *Client) *Geocoder {
	return &Geocoder{client: client}
}

// Lookup resolves a place query to candidate coordinates.
func (g *Geocoder) Lookup(ctx context.Context, query string) ([]models.GeoPoint, error) {
	var wrap struct {
		Results []models.GeoPoint `json:"results"`
	}
	endpoint := "/api/geocode?q=" + url.QueryEscape(query)
	if err := g.client.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	return wrap.Results, nil
}
