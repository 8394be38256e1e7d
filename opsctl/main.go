package main

import (
	"fmt"
	"os"
	"time"

	"github.com/facenordgraphisme/test-mon-coach-sub000/db"
	outingsMessage "github.com/facenordgraphisme/test-mon-coach-sub000/message"
	"github.com/facenordgraphisme/test-mon-coach-sub000/reservation"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	log.Init(logrus.InfoLevel)

	app := &cli.App{
		Name:  "opsctl",
		Usage: "Operate the outings booking service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "redis-addr", EnvVars: []string{"REDIS_ADDR"}},
			&cli.StringFlag{Name: "postgres-url", EnvVars: []string{"POSTGRES_URL"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "poison-queue",
				Usage: "Manage the poison queue",
				Subcommands: []*cli.Command{
					{
						Name:  "preview",
						Usage: "preview messages",
						Action: func(c *cli.Context) error {
							q, err := newPoisonQueue(c)
							if err != nil {
								return err
							}

							messages, err := q.Preview(c.Context)
							if err != nil {
								return err
							}

							for _, m := range messages {
								fmt.Fprintf(c.App.Writer, "%v\t%v\t%v\t%v\n", m.ID, m.OriginalTopic, m.Handler, m.Reason)
							}

							return nil
						},
					},
					{
						Name:      "remove",
						ArgsUsage: "<message_id>",
						Usage:     "remove message",
						Action: func(c *cli.Context) error {
							q, err := newPoisonQueue(c)
							if err != nil {
								return err
							}

							return q.Remove(c.Context, c.Args().First())
						},
					},
					{
						Name:      "requeue",
						ArgsUsage: "<message_id>",
						Usage:     "send message back to its original topic",
						Action: func(c *cli.Context) error {
							q, err := newPoisonQueue(c)
							if err != nil {
								return err
							}

							return q.Requeue(c.Context, c.Args().First())
						},
					},
				},
			},
			{
				Name:  "reconcile",
				Usage: "report events whose seat counters disagree with confirmed bookings",
				Action: func(c *cli.Context) error {
					conn, err := newDB(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					drifts, err := db.NewEventRepository(&conn).Reconcile(c.Context)
					if err != nil {
						return err
					}

					printDrifts(c.App.Writer, drifts)

					return nil
				},
			},
			{
				Name:  "oversold",
				Usage: "list paid bookings that were cancelled as oversold and need a refund",
				Action: func(c *cli.Context) error {
					conn, err := newDB(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					entries, err := db.NewAuditLogRepository(&conn).ListByName(c.Context, "BookingOversold_v1")
					if err != nil {
						return err
					}

					return printOversold(c.App.Writer, entries)
				},
			},
			{
				Name:  "expire",
				Usage: "expire pending bookings older than the pending TTL now",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "pending-ttl", EnvVars: []string{"PENDING_BOOKING_TTL"}, Value: 35 * time.Minute},
				},
				Action: func(c *cli.Context) error {
					conn, err := newDB(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					manager := reservation.NewManager(db.NewBookingRepository(&conn), c.Duration("pending-ttl"))

					expired, err := manager.ExpireAbandoned(c.Context)
					if err != nil {
						return err
					}

					fmt.Fprintf(c.App.Writer, "expired %d bookings\n", len(expired))
					for _, b := range expired {
						fmt.Fprintf(c.App.Writer, "%v\t%v\t%v\n", b.BookingID, b.EventID, b.CreatedAt.Format(time.RFC3339))
					}

					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newPoisonQueue(c *cli.Context) (PoisonQueue, error) {
	addr := c.String("redis-addr")
	if addr == "" {
		return PoisonQueue{}, fmt.Errorf("REDIS_ADDR is not set")
	}

	rdb := outingsMessage.NewRedisClient(addr)
	publisher, err := outingsMessage.NewRedisPublisher(rdb, log.NewWatermill(logrus.NewEntry(logrus.StandardLogger())))
	if err != nil {
		return PoisonQueue{}, err
	}

	return NewPoisonQueue(rdb, publisher, outingsMessage.PoisonQueueTopic), nil
}

func newDB(c *cli.Context) (db.DB, error) {
	url := c.String("postgres-url")
	if url == "" {
		return db.DB{}, fmt.Errorf("POSTGRES_URL is not set")
	}

	return db.NewDBConn(url)
}
