package message

import (
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/command"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/event"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/outbox"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterConfig struct {
	// OutboxSubscriber reads events committed to the database outbox.
	OutboxSubscriber message.Subscriber
	// Publisher is the broker publisher, also used for the poison queue.
	Publisher message.Publisher

	EventProcessorConfig   cqrs.EventProcessorConfig
	CommandProcessorConfig cqrs.CommandProcessorConfig
	EventHandler           event.Handler
	CommandHandler         command.Handler

	// MetricsRegisterer is optional.
	MetricsRegisterer prometheus.Registerer
}

func NewWatermillRouter(cfg RouterConfig, watermillLogger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	if err := useMiddlewares(router, cfg.Publisher, watermillLogger); err != nil {
		return nil, err
	}

	if cfg.MetricsRegisterer != nil {
		metricsBuilder := metrics.NewPrometheusMetricsBuilder(cfg.MetricsRegisterer, "outings", "router")
		metricsBuilder.AddPrometheusRouterMetrics(router)
	}

	if cfg.OutboxSubscriber != nil {
		_, err = outbox.NewForwarder(cfg.OutboxSubscriber, cfg.Publisher, watermillLogger, router)
		if err != nil {
			return nil, err
		}
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, cfg.EventProcessorConfig)
	if err != nil {
		return nil, err
	}

	commandProcessor, err := cqrs.NewCommandProcessorWithConfig(router, cfg.CommandProcessorConfig)
	if err != nil {
		return nil, err
	}

	err = commandProcessor.AddHandlers(
		cqrs.NewCommandHandler(
			"SendNotification",
			cfg.CommandHandler.SendNotification,
		),
	)
	if err != nil {
		return nil, err
	}

	err = eventProcessor.AddHandlers(
		cqrs.NewEventHandler(
			"SendCustomerConfirmation",
			cfg.EventHandler.SendCustomerConfirmation,
		),
		cqrs.NewEventHandler(
			"NotifyAdminOfBooking",
			cfg.EventHandler.NotifyAdminOfBooking,
		),
		cqrs.NewEventHandler(
			"AlertAdminOfOversold",
			cfg.EventHandler.AlertAdminOfOversold,
		),
		cqrs.NewEventHandler(
			"InvalidateListingOnConfirmation",
			cfg.EventHandler.InvalidateListingOnConfirmation,
		),
		cqrs.NewEventHandler(
			"InvalidateListingOnCatalogUpdate",
			cfg.EventHandler.InvalidateListingOnCatalogUpdate,
		),
		cqrs.NewEventHandler(
			"AuditBookingConfirmed",
			cfg.EventHandler.AuditBookingConfirmed,
		),
		cqrs.NewEventHandler(
			"AuditBookingOversold",
			cfg.EventHandler.AuditBookingOversold,
		),
		cqrs.NewEventHandler(
			"AuditBookingExpired",
			cfg.EventHandler.AuditBookingExpired,
		),
	)
	if err != nil {
		return nil, err
	}

	return router, nil
}
