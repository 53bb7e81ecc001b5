package monitor

import (
	"fmt"
	"strings"

	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
)

const (
	noAddress = "no address available"
	noPhone   = "no phone available"
)

// StatusLine formats the one-line summary logged for every retained store.
func StatusLine(store *fulfillment.Store, part fulfillment.PartAvailability) string {
	return fmt.Sprintf("store:%s, model:%s, status:%s",
		strings.TrimSpace(store.StoreName), part.Title(), part.PickupSearchQuote)
}

// PickupDetails formats the pickup block appended when a store can hand
// the product over. Line breaks in the address are flattened.
func PickupDetails(store *fulfillment.Store, location string) string {
	addr := store.RetailStore.Address.TwoLineAddress
	if addr == "" {
		addr = noAddress
	}
	phone := store.RetailStore.Address.DaytimePhone
	if phone == "" {
		phone = noPhone
	}

	return fmt.Sprintf("\npickup address:%s, phone:%s, distance from %s:%s",
		strings.ReplaceAll(addr, "\n", " "), phone, location, store.RetailStore.DistanceWithUnit)
}

// StoreMessage builds the full message for a store and reports whether
// the part is available for pickup there.
func StoreMessage(store *fulfillment.Store, part fulfillment.PartAvailability, location string) (string, bool) {
	msg := StatusLine(store, part)
	if !part.Available() {
		return msg, false
	}
	return msg + PickupDetails(store, location), true
}

// StartupMessage is sent once per channel when monitoring begins.
func StartupMessage(location string) string {
	return "pickup monitor started watching stores near " + location
}
