package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/api"
	"github.com/facenordgraphisme/test-mon-coach-sub000/config"
	"github.com/facenordgraphisme/test-mon-coach-sub000/db"
	"github.com/facenordgraphisme/test-mon-coach-sub000/message"
	"github.com/facenordgraphisme/test-mon-coach-sub000/observability"
	"github.com/facenordgraphisme/test-mon-coach-sub000/service"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	log.Init(logrus.InfoLevel)

	cfg := config.MustLoad()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	traceProvider, err := observability.ConfigureTraceProvider(cfg.Tracing.JaegerEndpoint, cfg.Tracing.GatewayAddr)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("Could not shut down trace provider")
		}
	}()

	dbConn, err := db.NewDBConn(cfg.Postgres.URL)
	if err != nil {
		panic(err)
	}
	defer dbConn.Close()

	if err := dbConn.MigrateSchema(); err != nil {
		panic(err)
	}

	redisClient := message.NewRedisClient(cfg.Redis.Addr)
	defer redisClient.Close()

	// Outbound calls to the payment and email providers show up in traces.
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	payments := api.NewStripePaymentsClient(api.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	}, httpClient)

	notifier := api.NewResendEmailClient(cfg.Email.ResendAPIKey, cfg.Email.From, httpClient)

	svc, err := service.New(
		service.Config{
			HTTPAddr:        cfg.HTTP.Addr,
			AdminToken:      cfg.HTTP.AdminToken,
			AdminEmail:      cfg.Email.AdminAddress,
			PendingTTL:      cfg.Reservation.PendingTTL,
			ReaperInterval:  cfg.Reservation.ReaperInterval,
			ListingCacheTTL: cfg.ListingCache.TTL,
		},
		service.Dependencies{
			DB:                dbConn,
			RedisClient:       redisClient,
			Payments:          payments,
			Webhooks:          payments,
			Notifier:          notifier,
			MetricsRegisterer: prometheus.DefaultRegisterer,
		},
	)
	if err != nil {
		panic(err)
	}

	err = svc.Run(ctx)
	if err != nil {
		panic(err)
	}
}
