package entities

// Quote is the server-resolved price of a reservation request.
type Quote struct {
	Event              Event
	Quantity           int
	SeatsToReserve     int
	UnitPrice          Money
	DiscountPercentage int
	Privatized         bool
	// TotalBeforeAddOns is UnitPrice * Quantity, or the flat privatization price.
	TotalBeforeAddOns Money
	Currency          string
}
