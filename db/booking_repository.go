package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/event"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/outbox"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

const bookingColumns = `
	booking_id, event_id, customer_name, email, phone, quantity, seats_reserved,
	price, add_on_total, currency, add_ons, participants, privatized, status,
	checkout_session_id, payment_ref, cancellation_reason, created_at, updated_at, confirmed_at`

type BookingRepository struct {
	db *DB
}

func NewBookingRepository(db *DB) BookingRepository {
	if db == nil {
		panic("db is nil")
	}
	return BookingRepository{
		db: db,
	}
}

func (r BookingRepository) Create(ctx context.Context, booking entities.Booking) error {
	_, err := r.db.Conn.NamedExecContext(ctx, `
		INSERT INTO
			bookings (booking_id, event_id, customer_name, email, phone, quantity, seats_reserved,
			          price, add_on_total, currency, add_ons, participants, privatized, status)
		VALUES
			(:booking_id, :event_id, :customer_name, :email, :phone, :quantity, :seats_reserved,
			 :price, :add_on_total, :currency, :add_ons, :participants, :privatized, :status)
	`, booking)
	if err != nil {
		return fmt.Errorf("could not add booking: %w", err)
	}

	return nil
}

func (r BookingRepository) BookingByID(ctx context.Context, bookingID string) (entities.Booking, error) {
	var booking entities.Booking
	err := r.db.Conn.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) || isErrorInvalidText(err) {
		return entities.Booking{}, fmt.Errorf("%w: %s", entities.ErrBookingNotFound, bookingID)
	}
	if err != nil {
		return entities.Booking{}, fmt.Errorf("could not get booking %s: %w", bookingID, err)
	}

	return booking, nil
}

func (r BookingRepository) ListByEvent(ctx context.Context, eventID string) ([]entities.Booking, error) {
	var bookings []entities.Booking
	err := r.db.Conn.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("could not list bookings of event %s: %w", eventID, err)
	}

	return bookings, nil
}

// AttachSession stores the checkout session id on a pending booking. The status is left untouched.
func (r BookingRepository) AttachSession(ctx context.Context, bookingID string, sessionID string) error {
	res, err := r.db.Conn.ExecContext(ctx, `
		UPDATE bookings
		SET checkout_session_id = $2, updated_at = now()
		WHERE booking_id = $1 AND status = 'pending'
	`, bookingID, sessionID)
	if err != nil {
		return fmt.Errorf("could not attach session to booking %s: %w", bookingID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not attach session to booking %s: %w", bookingID, err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.BookingByID(ctx, bookingID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", entities.ErrBookingNotPending, bookingID)
}

// ConfirmPaid moves a booking to confirmed and takes its seats in one transaction.
//
// The conditional status update row-locks the booking, so duplicate deliveries of the same payment
// serialize and only the first one decrements. When the event no longer has enough seats the
// booking is cancelled as oversold instead. The resulting domain event goes through the outbox.
func (r BookingRepository) ConfirmPaid(ctx context.Context, bookingID string, paymentRef string) (entities.Confirmation, error) {
	confirmation := entities.Confirmation{BookingID: bookingID}

	err := updateInTx(ctx, r.db.Conn, sql.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		var booking entities.Booking
		err := tx.GetContext(ctx, &booking, `
			UPDATE bookings
			SET status = 'confirmed', payment_ref = $2, confirmed_at = now(), updated_at = now()
			WHERE booking_id = $1 AND status IN ('pending', 'expired')
			RETURNING `+bookingColumns,
			bookingID, paymentRef,
		)
		if errors.Is(err, sql.ErrNoRows) {
			confirmation.Outcome, err = outcomeOfSettledBooking(ctx, tx, bookingID)
			return err
		}
		if err != nil {
			return fmt.Errorf("could not confirm booking %s: %w", bookingID, err)
		}
		confirmation.EventID = booking.EventID

		remaining, ok, err := decrementSeats(ctx, tx, booking.EventID, booking.SeatsReserved)
		if err != nil {
			return err
		}

		outingEvent, err := getEvent(ctx, tx, booking.EventID)
		if err != nil {
			return err
		}

		if !ok {
			_, err = tx.ExecContext(ctx, `
				UPDATE bookings
				SET status = 'cancelled', cancellation_reason = $2, confirmed_at = NULL, updated_at = now()
				WHERE booking_id = $1
			`, bookingID, entities.CancellationReasonOversold)
			if err != nil {
				return fmt.Errorf("could not cancel oversold booking %s: %w", bookingID, err)
			}

			confirmation.Outcome = entities.ConfirmationOutcomeOversold
			return publishInTx(ctx, tx, entities.BookingOversold_v1{
				Header:         entities.NewEventHeaderWithIdempotencyKey("oversold-" + bookingID),
				Booking:        entities.NewBookingSnapshot(booking, outingEvent),
				PaymentRef:     paymentRef,
				SeatsAvailable: outingEvent.RemainingSeats(),
			})
		}

		confirmation.Outcome = entities.ConfirmationOutcomeConfirmed
		confirmation.SeatsRemaining = lo.ToPtr(remaining)
		return publishInTx(ctx, tx, entities.BookingConfirmed_v1{
			Header:         entities.NewEventHeaderWithIdempotencyKey("confirmed-" + bookingID),
			Booking:        entities.NewBookingSnapshot(booking, outingEvent),
			PaymentRef:     paymentRef,
			SeatsRemaining: remaining,
		})
	})
	if err != nil {
		return entities.Confirmation{}, err
	}

	return confirmation, nil
}

// Expire moves a pending booking to expired. It reports false when the booking was not pending.
func (r BookingRepository) Expire(ctx context.Context, bookingID string) (bool, error) {
	expired, err := r.expire(ctx, `booking_id = $1`, bookingID)
	if err != nil {
		return false, err
	}
	return len(expired) > 0, nil
}

// ExpirePendingBefore expires every pending booking created before the deadline.
func (r BookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]entities.Booking, error) {
	return r.expire(ctx, `created_at < $1`, deadline)
}

func (r BookingRepository) expire(ctx context.Context, condition string, arg any) ([]entities.Booking, error) {
	var expired []entities.Booking

	err := updateInTx(ctx, r.db.Conn, sql.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.SelectContext(ctx, &expired, `
			UPDATE bookings
			SET status = 'expired', updated_at = now()
			WHERE status = 'pending' AND `+condition+`
			RETURNING `+bookingColumns,
			arg,
		)
		if err != nil {
			return fmt.Errorf("could not expire bookings: %w", err)
		}

		events := lo.Map(expired, func(b entities.Booking, _ int) any {
			return entities.BookingExpired_v1{
				Header:    entities.NewEventHeaderWithIdempotencyKey("expired-" + b.BookingID),
				BookingID: b.BookingID,
				EventID:   b.EventID,
			}
		})

		return publishInTx(ctx, tx, events...)
	})
	if err != nil {
		return nil, err
	}

	return expired, nil
}

func outcomeOfSettledBooking(ctx context.Context, tx *sqlx.Tx, bookingID string) (entities.ConfirmationOutcome, error) {
	var status entities.BookingStatus
	err := tx.GetContext(ctx, &status, `SELECT status FROM bookings WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) || isErrorInvalidText(err) {
		return "", fmt.Errorf("%w: %s", entities.ErrBookingNotFound, bookingID)
	}
	if err != nil {
		return "", fmt.Errorf("could not get booking status %s: %w", bookingID, err)
	}

	if status == entities.BookingStatusConfirmed {
		return entities.ConfirmationOutcomeAlreadyConfirmed, nil
	}

	log.FromContext(ctx).WithField("booking_id", bookingID).WithField("status", status).
		Warn("Payment received for a booking that is no longer payable")

	return entities.ConfirmationOutcomeNotPending, nil
}

func publishInTx(ctx context.Context, tx *sqlx.Tx, events ...any) error {
	if len(events) == 0 {
		return nil
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx)
	if err != nil {
		return fmt.Errorf("error creating event outbox publisher: %w", err)
	}

	bus := event.NewBus(outboxPublisher)
	for _, e := range events {
		if err := bus.Publish(ctx, e); err != nil {
			return fmt.Errorf("could not publish %T: %w", e, err)
		}
	}

	return nil
}
