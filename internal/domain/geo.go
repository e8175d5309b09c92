package domain

import (
	"context"
	"time"
)

// GeoPoint is a geocoded location. Address is the human-readable form the
// coordinates were resolved from.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeoPoint, error)
}

// RoutePlanner estimates travel time between two points.
type RoutePlanner interface {
	Route(ctx context.Context, from, to GeoPoint) (time.Duration, error)
}

// Pusher delivers a push notification to a device (infrastructure port).
type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}
