package pricing

import (
	"context"
	"fmt"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/samber/lo"
)

type EventReader interface {
	Get(ctx context.Context, eventID string) (entities.Event, error)
}

type RentalItemReader interface {
	RentalItemsByIDs(ctx context.Context, activityID string, ids []string) ([]entities.RentalItem, error)
}

// Resolver computes prices from stored catalog data only. It never reserves seats.
type Resolver struct {
	events  EventReader
	rentals RentalItemReader
}

func NewResolver(events EventReader, rentals RentalItemReader) Resolver {
	if events == nil {
		panic("events is nil")
	}
	if rentals == nil {
		panic("rentals is nil")
	}
	return Resolver{events: events, rentals: rentals}
}

func (r Resolver) Resolve(ctx context.Context, eventID string, quantity int, privatize bool) (entities.Quote, error) {
	if quantity < 1 {
		return entities.Quote{}, fmt.Errorf("%w: quantity must be at least 1", entities.ErrValidation)
	}

	event, err := r.events.Get(ctx, eventID)
	if err != nil {
		return entities.Quote{}, err
	}
	if event.Status == entities.EventStatusCancelled {
		return entities.Quote{}, fmt.Errorf("%w: event %s is cancelled", entities.ErrEventNotFound, eventID)
	}

	if privatize {
		return resolvePrivatization(event, quantity)
	}

	if event.Price == nil {
		return entities.Quote{}, fmt.Errorf("%w: event %s", entities.ErrPriceUndefined, eventID)
	}

	remaining := event.RemainingSeats()
	if remaining < quantity {
		return entities.Quote{}, fmt.Errorf("%w: %d requested, %d left", entities.ErrInsufficientInventory, quantity, remaining)
	}

	discount := event.Discounts.Best(quantity)
	unitPrice := event.Price.Discounted(discount)

	return entities.Quote{
		Event:              event,
		Quantity:           quantity,
		SeatsToReserve:     quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: discount,
		TotalBeforeAddOns:  unitPrice.Times(quantity),
		Currency:           event.Currency,
	}, nil
}

// A private outing books the whole event at a flat price, so nobody else may have booked yet.
func resolvePrivatization(event entities.Event, quantity int) (entities.Quote, error) {
	if event.PrivatizationPrice == nil {
		return entities.Quote{}, fmt.Errorf("%w: event %s cannot be privatized", entities.ErrPriceUndefined, event.EventID)
	}

	remaining := event.RemainingSeats()
	if event.BookedCount > 0 || remaining < event.MaxParticipants {
		return entities.Quote{}, fmt.Errorf("%w: event %s already has bookings", entities.ErrInsufficientInventory, event.EventID)
	}
	if remaining < quantity {
		return entities.Quote{}, fmt.Errorf("%w: %d requested, %d left", entities.ErrInsufficientInventory, quantity, remaining)
	}

	return entities.Quote{
		Event:             event,
		Quantity:          quantity,
		SeatsToReserve:    remaining,
		UnitPrice:         *event.PrivatizationPrice,
		Privatized:        true,
		TotalBeforeAddOns: *event.PrivatizationPrice,
		Currency:          event.Currency,
	}, nil
}

// ResolveAddOns prices rental selections from the catalog of the event's activity.
func (r Resolver) ResolveAddOns(ctx context.Context, event entities.Event, selections []entities.AddOnSelection) (entities.AddOns, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	for _, s := range selections {
		if s.Quantity < 1 {
			return nil, fmt.Errorf("%w: rental %s quantity must be at least 1", entities.ErrValidation, s.RentalItemID)
		}
	}

	ids := lo.Uniq(lo.Map(selections, func(s entities.AddOnSelection, _ int) string { return s.RentalItemID }))

	items, err := r.rentals.RentalItemsByIDs(ctx, event.ActivityID, ids)
	if err != nil {
		return nil, err
	}
	itemsByID := lo.KeyBy(items, func(item entities.RentalItem) string { return item.RentalItemID })

	addOns := make(entities.AddOns, 0, len(selections))
	for _, s := range selections {
		item, ok := itemsByID[s.RentalItemID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown rental item %s", entities.ErrValidation, s.RentalItemID)
		}

		addOns = append(addOns, entities.AddOn{
			RentalItemID: item.RentalItemID,
			Name:         item.Name,
			Quantity:     s.Quantity,
			UnitPrice:    item.Price,
		})
	}

	return addOns, nil
}
