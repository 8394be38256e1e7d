package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

const sentNotificationTTL = 7 * 24 * time.Hour

func (h Handler) SendNotification(ctx context.Context, cmd *entities.SendNotification) error {
	logger := log.FromContext(ctx).WithField("idempotency_key", cmd.Header.IdempotencyKey)

	claimed, err := h.deduplicator.Claim(ctx, "notification:"+cmd.Header.IdempotencyKey, sentNotificationTTL)
	if err != nil {
		return fmt.Errorf("could not claim notification: %w", err)
	}
	if !claimed {
		logger.Info("Notification already sent, skipping")
		return nil
	}

	err = h.notifier.Send(ctx, cmd.Email)
	if err != nil {
		releaseErr := h.deduplicator.Release(ctx, "notification:"+cmd.Header.IdempotencyKey)
		return errors.Join(fmt.Errorf("could not send email to %s: %w", cmd.Email.To, err), releaseErr)
	}

	logger.WithField("to", cmd.Email.To).Info("Notification sent")

	return nil
}
