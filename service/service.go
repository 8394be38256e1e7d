package service

import (
	"context"
	"errors"
	"fmt"
	stdHttp "net/http"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/cache"
	"github.com/facenordgraphisme/test-mon-coach-sub000/checkout"
	"github.com/facenordgraphisme/test-mon-coach-sub000/confirmation"
	"github.com/facenordgraphisme/test-mon-coach-sub000/db"
	outingsHttp "github.com/facenordgraphisme/test-mon-coach-sub000/http"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/command"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/event"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message/outbox"
	"github.com/facenordgraphisme/test-mon-coach-sub000/pricing"
	"github.com/facenordgraphisme/test-mon-coach-sub000/reservation"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	HTTPAddr        string
	AdminToken      string
	AdminEmail      string
	PendingTTL      time.Duration
	ReaperInterval  time.Duration
	ListingCacheTTL time.Duration
}

type Dependencies struct {
	DB          db.DB
	RedisClient *redis.Client
	Payments    checkout.PaymentGateway
	Webhooks    confirmation.WebhookVerifier
	Notifier    command.Notifier
	// MetricsRegisterer receives the message router metrics, nil disables them.
	MetricsRegisterer prometheus.Registerer
}

type Service struct {
	watermillRouter *watermillMessage.Router
	echoRouter      *echo.Echo
	reaper          *reservation.Reaper
	httpAddr        string
}

func New(cfg Config, deps Dependencies) (Service, error) {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher, err := message.NewRedisPublisher(deps.RedisClient, watermillLogger)
	if err != nil {
		return Service{}, fmt.Errorf("could not create redis publisher: %w", err)
	}

	eventBus := event.NewBus(redisPublisher)
	commandBus := command.NewCommandBus(redisPublisher)

	eventRepo := db.NewEventRepository(&deps.DB)
	activityRepo := db.NewActivityRepository(&deps.DB)
	bookingRepo := db.NewBookingRepository(&deps.DB)
	auditLogRepo := db.NewAuditLogRepository(&deps.DB)

	listingCache := cache.NewEventListing(deps.RedisClient, cfg.ListingCacheTTL)

	reservations := reservation.NewManager(bookingRepo, cfg.PendingTTL)
	checkoutService := checkout.NewService(
		pricing.NewResolver(eventRepo, activityRepo),
		reservations,
		checkout.NewBroker(deps.Payments, reservations, reservations.PendingTTL()),
	)
	webhookHandler := confirmation.NewHandler(deps.Webhooks, bookingRepo)

	outboxSubscriber, err := outbox.NewSubscriber(deps.DB.Conn, watermillLogger)
	if err != nil {
		return Service{}, err
	}

	watermillRouter, err := message.NewWatermillRouter(message.RouterConfig{
		OutboxSubscriber:       outboxSubscriber,
		Publisher:              redisPublisher,
		EventProcessorConfig:   event.NewProcessorConfig(deps.RedisClient, watermillLogger),
		CommandProcessorConfig: command.NewProcessorConfig(deps.RedisClient, watermillLogger),
		EventHandler:           event.NewHandler(commandBus, listingCache, auditLogRepo, cfg.AdminEmail),
		CommandHandler:         command.NewHandler(deps.Notifier, cache.NewDeduplicator(deps.RedisClient)),
		MetricsRegisterer:      deps.MetricsRegisterer,
	}, watermillLogger)
	if err != nil {
		return Service{}, fmt.Errorf("could not create message router: %w", err)
	}

	echoRouter := outingsHttp.NewHttpRouter(outingsHttp.RouterDependencies{
		Checkout:     checkoutService,
		Webhooks:     webhookHandler,
		Events:       eventRepo,
		Activities:   activityRepo,
		Bookings:     bookingRepo,
		ListingCache: listingCache,
		EventBus:     eventBus,
		AdminToken:   cfg.AdminToken,
	})

	return Service{
		watermillRouter: watermillRouter,
		echoRouter:      echoRouter,
		reaper:          reservation.NewReaper(reservations, cfg.ReaperInterval),
		httpAddr:        cfg.HTTPAddr,
	}, nil
}

func (s Service) Run(
	ctx context.Context,
) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	errgrp.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	errgrp.Go(func() error {
		// we don't want to start HTTP server before Watermill router (so service won't be healthy before it's ready)
		<-s.watermillRouter.Running()

		err := s.echoRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, stdHttp.ErrServerClosed) {
			return err
		}

		return nil
	})

	errgrp.Go(func() error {
		<-s.watermillRouter.Running()
		return s.reaper.Run(ctx)
	})

	errgrp.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.echoRouter.Shutdown(shutdownCtx)
	})

	return errgrp.Wait()
}
