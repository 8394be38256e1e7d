package entities

type Activity struct {
	ActivityID  string `json:"activity_id" db:"activity_id"`
	Slug        string `json:"slug" db:"slug"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	RentalItems []RentalItem `json:"rental_items" db:"-"`
}

// RentalItem is equipment a customer may rent alongside an outing.
type RentalItem struct {
	RentalItemID string `json:"rental_item_id" db:"rental_item_id"`
	ActivityID   string `json:"activity_id" db:"activity_id"`
	Name         string `json:"name" db:"name"`
	Price        Money  `json:"price" db:"price"`
}
