// Package fulfillment provides a client for the retailer's public
// fulfillment-messages endpoint, abstracted behind an interface for
// testability.
package fulfillment

import (
	"context"
)

// Query selects one product code near one location on one storefront.
type Query struct {
	// Country is a storefront code such as "CN" or "JP". Unknown codes
	// resolve to the default storefront.
	Country  string
	Code     string
	Location string
}

// Client defines the interface for querying in-store pickup availability.
type Client interface {
	PickupMessages(ctx context.Context, q Query) (*Response, error)
}
