package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) ActivityRepository {
	if db == nil {
		panic("db is nil")
	}
	return ActivityRepository{
		db: db,
	}
}

func (r ActivityRepository) Create(ctx context.Context, activity entities.Activity) error {
	return updateInTx(ctx, r.db.Conn, sql.LevelReadCommitted, func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO
				activities (activity_id, slug, name, description)
			VALUES
				(:activity_id, :slug, :name, :description)
		`, activity)
		if err != nil {
			if isErrorUniqueViolation(err) {
				return fmt.Errorf("%w: activity %s already exists", entities.ErrValidation, activity.Slug)
			}
			return fmt.Errorf("could not create activity: %w", err)
		}

		for _, item := range activity.RentalItems {
			item.ActivityID = activity.ActivityID
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO
					rental_items (rental_item_id, activity_id, name, price)
				VALUES
					(:rental_item_id, :activity_id, :name, :price)
			`, item)
			if err != nil {
				return fmt.Errorf("could not create rental item %s: %w", item.Name, err)
			}
		}

		return nil
	})
}

func (r ActivityRepository) Get(ctx context.Context, activityID string) (entities.Activity, error) {
	var activity entities.Activity
	err := r.db.Conn.GetContext(ctx, &activity, `
		SELECT activity_id, slug, name, description
		FROM activities
		WHERE activity_id = $1
	`, activityID)
	if errors.Is(err, sql.ErrNoRows) || isErrorInvalidText(err) {
		return entities.Activity{}, fmt.Errorf("%w: activity %s", entities.ErrValidation, activityID)
	}
	if err != nil {
		return entities.Activity{}, fmt.Errorf("could not get activity %s: %w", activityID, err)
	}

	err = r.db.Conn.SelectContext(ctx, &activity.RentalItems, `
		SELECT rental_item_id, activity_id, name, price
		FROM rental_items
		WHERE activity_id = $1
		ORDER BY name
	`, activityID)
	if err != nil {
		return entities.Activity{}, fmt.Errorf("could not get rental items of activity %s: %w", activityID, err)
	}

	return activity, nil
}

// RentalItemsByIDs returns the rental items of an activity among the given ids.
// Unknown ids are simply absent from the result.
func (r ActivityRepository) RentalItemsByIDs(ctx context.Context, activityID string, ids []string) ([]entities.RentalItem, error) {
	var items []entities.RentalItem
	err := r.db.Conn.SelectContext(ctx, &items, `
		SELECT rental_item_id, activity_id, name, price
		FROM rental_items
		WHERE activity_id = $1 AND rental_item_id::text = ANY($2)
	`, activityID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("could not get rental items: %w", err)
	}

	return items, nil
}
