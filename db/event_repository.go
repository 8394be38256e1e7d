package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/jmoiron/sqlx"
)

const eventColumns = `
	event_id, activity_id, title, location, starts_at, duration_minutes,
	price, currency, max_participants, seats_available, booked_count, status,
	privatization_price, discounts, created_at, updated_at`

type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) EventRepository {
	if db == nil {
		panic("db is nil")
	}
	return EventRepository{
		db: db,
	}
}

func (r EventRepository) Create(ctx context.Context, event entities.Event) error {
	_, err := r.db.Conn.NamedExecContext(ctx, `
		INSERT INTO
			events (event_id, activity_id, title, location, starts_at, duration_minutes, price, currency,
			        max_participants, seats_available, booked_count, status, privatization_price, discounts)
		VALUES
			(:event_id, :activity_id, :title, :location, :starts_at, :duration_minutes, :price, :currency,
			 :max_participants, :seats_available, :booked_count, :status, :privatization_price, :discounts)
		`, event)
	if err != nil {
		if isErrorUniqueViolation(err) {
			return fmt.Errorf("%w: event %s already exists", entities.ErrValidation, event.EventID)
		}
		if isErrorForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown activity %s", entities.ErrValidation, event.ActivityID)
		}
		return fmt.Errorf("could not create event: %w", err)
	}

	return nil
}

func (r EventRepository) Get(ctx context.Context, eventID string) (entities.Event, error) {
	return getEvent(ctx, r.db.Conn, eventID)
}

func (r EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]entities.Event, error) {
	var events []entities.Event
	err := r.db.Conn.SelectContext(ctx, &events, `
		SELECT `+eventColumns+`
		FROM events
		WHERE starts_at >= $1 AND status <> 'cancelled'
		ORDER BY starts_at
	`, from)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}

	return events, nil
}

// Reconcile lists events whose seat counters disagree with each other or with confirmed bookings.
func (r EventRepository) Reconcile(ctx context.Context) ([]entities.SeatDrift, error) {
	var drifts []entities.SeatDrift
	err := r.db.Conn.SelectContext(ctx, &drifts, `
		SELECT
			e.event_id,
			e.title,
			e.max_participants,
			e.seats_available,
			e.booked_count,
			COALESCE(SUM(b.seats_reserved) FILTER (WHERE b.status = 'confirmed'), 0) AS confirmed_seats
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.event_id
		GROUP BY e.event_id
		HAVING
			COALESCE(e.seats_available, e.max_participants - e.booked_count) <> e.max_participants - e.booked_count
			OR e.booked_count <> COALESCE(SUM(b.seats_reserved) FILTER (WHERE b.status = 'confirmed'), 0)
		ORDER BY e.starts_at
	`)
	if err != nil {
		return nil, fmt.Errorf("could not reconcile seats: %w", err)
	}

	return drifts, nil
}

func getEvent(ctx context.Context, q sqlx.QueryerContext, eventID string) (entities.Event, error) {
	var event entities.Event
	err := sqlx.GetContext(ctx, q, &event, `SELECT `+eventColumns+` FROM events WHERE event_id = $1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Event{}, fmt.Errorf("%w: %s", entities.ErrEventNotFound, eventID)
	}
	if err != nil {
		if isErrorInvalidText(err) {
			return entities.Event{}, fmt.Errorf("%w: %s", entities.ErrEventNotFound, eventID)
		}
		return entities.Event{}, fmt.Errorf("could not get event %s: %w", eventID, err)
	}

	return event, nil
}

// decrementSeats is the only write path for seats_available after creation.
// The guard and the decrement happen in one statement so concurrent callers cannot both pass the check.
func decrementSeats(ctx context.Context, q sqlx.QueryerContext, eventID string, seats int) (remaining int, ok bool, err error) {
	err = sqlx.GetContext(ctx, q, &remaining, `
		UPDATE events
		SET
			seats_available = COALESCE(seats_available, max_participants - booked_count) - $2,
			booked_count = booked_count + $2,
			status = CASE
				WHEN COALESCE(seats_available, max_participants - booked_count) - $2 = 0 THEN 'full'
				ELSE status
			END,
			updated_at = now()
		WHERE
			event_id = $1
			AND status <> 'cancelled'
			AND COALESCE(seats_available, max_participants - booked_count) >= $2
		RETURNING seats_available
	`, eventID, seats)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("could not decrement seats of event %s: %w", eventID, err)
	}

	return remaining, true, nil
}
