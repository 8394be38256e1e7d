package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

func printDrifts(w io.Writer, drifts []entities.SeatDrift) {
	if len(drifts) == 0 {
		fmt.Fprintln(w, "all seat counters agree")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tTITLE\tMAX\tSEATS AVAILABLE\tBOOKED COUNT\tCONFIRMED SEATS")
	for _, d := range drifts {
		seats := "-"
		if d.SeatsAvailable != nil {
			seats = fmt.Sprint(*d.SeatsAvailable)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\n", d.EventID, d.Title, d.MaxParticipants, seats, d.BookedCount, d.ConfirmedSeats)
	}
	_ = tw.Flush()
}

func printOversold(w io.Writer, entries []entities.AuditEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no oversold bookings")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOKING\tEVENT\tCUSTOMER\tEMAIL\tAMOUNT\tPAYMENT")
	for _, entry := range entries {
		var oversold entities.BookingOversold_v1
		if err := json.Unmarshal(entry.EventPayload, &oversold); err != nil {
			return fmt.Errorf("could not decode audit entry %s: %w", entry.EventID, err)
		}

		b := oversold.Booking
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\t%s\n",
			b.BookingID, b.EventTitle, b.CustomerName, b.Email, b.Price, b.Currency, oversold.PaymentRef)
	}

	return tw.Flush()
}
