package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type activityRequest struct {
	ActivityID  string `json:"activity_id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RentalItems []struct {
		RentalItemID string `json:"rental_item_id"`
		Name         string `json:"name"`
		Price        string `json:"price"`
	} `json:"rental_items"`
}

func (h Handler) PostActivities(c echo.Context) error {
	var req activityRequest

	err := c.Bind(&req)
	if err != nil {
		return err
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and slug are required")
	}

	activity := entities.Activity{
		ActivityID:  req.ActivityID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	}
	if activity.ActivityID == "" {
		activity.ActivityID = uuid.NewString()
	}

	for _, item := range req.RentalItems {
		price, err := entities.ParseMoney(item.Price)
		if err != nil {
			return err
		}
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: rental item name is required", entities.ErrValidation)
		}

		rentalItem := entities.RentalItem{
			RentalItemID: item.RentalItemID,
			ActivityID:   activity.ActivityID,
			Name:         item.Name,
			Price:        price,
		}
		if rentalItem.RentalItemID == "" {
			rentalItem.RentalItemID = uuid.NewString()
		}
		activity.RentalItems = append(activity.RentalItems, rentalItem)
	}

	if err := h.activities.Create(c.Request().Context(), activity); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, activity)
}
