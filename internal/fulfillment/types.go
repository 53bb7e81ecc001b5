package fulfillment

// Response is the subset of the fulfillment-messages payload the monitor reads.
type Response struct {
	Body struct {
		Content struct {
			PickupMessage PickupMessage `json:"pickupMessage"`
		} `json:"content"`
	} `json:"body"`
}

// PickupMessage holds the stores near the queried location. Stores is nil
// when the upstream omitted the list and empty when it returned none.
type PickupMessage struct {
	Stores []Store `json:"stores"`
}

// Stores returns the store list from the response.
func (r *Response) Stores() []Store {
	return r.Body.Content.PickupMessage.Stores
}

// Store is one retail location and its availability per product code.
type Store struct {
	StoreName         string                      `json:"storeName"`
	StoreNumber       string                      `json:"storeNumber,omitempty"`
	PartsAvailability map[string]PartAvailability `json:"partsAvailability"`
	RetailStore       RetailStore                 `json:"retailStore"`
}

// Part returns the availability entry for code, if present.
func (s *Store) Part(code string) (PartAvailability, bool) {
	p, ok := s.PartsAvailability[code]
	return p, ok
}

// PartAvailability describes pickup state for one product at one store.
type PartAvailability struct {
	PickupDisplay     string `json:"pickupDisplay"`
	PickupSearchQuote string `json:"pickupSearchQuote"`
	MessageTypes      struct {
		Regular struct {
			StorePickupProductTitle string `json:"storePickupProductTitle"`
		} `json:"regular"`
	} `json:"messageTypes"`
}

// PickupDisplayAvailable is the PickupDisplay value that means the product
// can be collected.
const PickupDisplayAvailable = "available"

// Available reports whether the part can be picked up.
func (p PartAvailability) Available() bool {
	return p.PickupDisplay == PickupDisplayAvailable
}

// Title returns the product title shown for store pickup.
func (p PartAvailability) Title() string {
	return p.MessageTypes.Regular.StorePickupProductTitle
}

// RetailStore holds pickup logistics for a store.
type RetailStore struct {
	DistanceWithUnit string  `json:"distanceWithUnit"`
	Address          Address `json:"address"`
}

// Address is the store's postal and phone details.
type Address struct {
	TwoLineAddress string `json:"twoLineAddress"`
	DaytimePhone   string `json:"daytimePhone"`
}
