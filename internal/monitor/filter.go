package monitor

import (
	"strings"

	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
)

// FilterStores returns the stores whose name matches an allow-list entry.
// A store matches when its name contains the entry or the entry contains
// its name, case-sensitively. An empty allow-list keeps every store.
func FilterStores(stores []fulfillment.Store, allow []string) []fulfillment.Store {
	if len(allow) == 0 {
		return stores
	}

	kept := make([]fulfillment.Store, 0, len(stores))
	for i := range stores {
		if allowed(stores[i].StoreName, allow) {
			kept = append(kept, stores[i])
		}
	}
	return kept
}

func allowed(name string, allow []string) bool {
	for _, entry := range allow {
		if strings.Contains(name, entry) || strings.Contains(entry, name) {
			return true
		}
	}
	return false
}
