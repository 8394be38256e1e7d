package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
)

var templates = template.Must(template.New("emails").Funcs(template.FuncMap{
	"money": func(m entities.Money) string { return m.String() },
	"date":  func(b entities.BookingSnapshot) string { return b.EventStarts.Format("Monday 2 January 2006, 15:04") },
}).Parse(`
{{define "customer_confirmation"}}
<p>Hello {{.CustomerName}},</p>
<p>Your booking for <strong>{{.EventTitle}}</strong> on {{date .}} is confirmed.</p>
<ul>
	<li>Meeting point: {{.Location}}</li>
	<li>{{if .Privatized}}Private outing ({{.Seats}} seats){{else}}Participants: {{.Quantity}}{{end}}</li>
	{{range .AddOns}}<li>{{.Quantity}} x {{.Name}}</li>{{end}}
	<li>Total paid: {{money .Price}} {{.Currency}}</li>
</ul>
<p>Booking reference: {{.BookingID}}</p>
{{end}}

{{define "admin_booking"}}
<p>New booking for <strong>{{.Booking.EventTitle}}</strong> on {{date .Booking}}.</p>
<ul>
	<li>Customer: {{.Booking.CustomerName}} ({{.Booking.Email}}, {{.Booking.Phone}})</li>
	<li>Seats: {{.Booking.Seats}}{{if .Booking.Privatized}} (private){{end}}</li>
	<li>Amount: {{money .Booking.Price}} {{.Booking.Currency}}</li>
	<li>Seats remaining: {{.SeatsRemaining}}</li>
</ul>
{{if .Booking.Participants}}
<table>
	<tr><th>Name</th><th>Height (cm)</th><th>Weight (kg)</th><th>Medical info</th></tr>
	{{range .Booking.Participants}}<tr><td>{{.Name}}</td><td>{{.HeightCm}}</td><td>{{.WeightKg}}</td><td>{{.MedicalInfo}}</td></tr>{{end}}
</table>
{{end}}
{{end}}

{{define "admin_oversold"}}
<p><strong>Action required:</strong> a payment was received for {{.Booking.EventTitle}} on {{date .Booking}}
but only {{.SeatsAvailable}} seat(s) were left for {{.Booking.Seats}} requested.</p>
<p>The booking {{.Booking.BookingID}} was cancelled. Refund {{money .Booking.Price}} {{.Booking.Currency}}
(payment {{.PaymentRef}}) to {{.Booking.CustomerName}} ({{.Booking.Email}}, {{.Booking.Phone}}).</p>
{{end}}
`))

func CustomerConfirmation(event entities.BookingConfirmed_v1) (entities.Email, error) {
	body, err := render("customer_confirmation", event.Booking)
	if err != nil {
		return entities.Email{}, err
	}

	return entities.Email{
		To:       event.Booking.Email,
		Subject:  fmt.Sprintf("Booking confirmed: %s", event.Booking.EventTitle),
		HTMLBody: body,
	}, nil
}

func AdminBooking(adminAddress string, event entities.BookingConfirmed_v1) (entities.Email, error) {
	body, err := render("admin_booking", event)
	if err != nil {
		return entities.Email{}, err
	}

	return entities.Email{
		To:       adminAddress,
		Subject:  fmt.Sprintf("New booking: %s (%d seats)", event.Booking.EventTitle, event.Booking.Seats),
		HTMLBody: body,
	}, nil
}

func AdminOversold(adminAddress string, event entities.BookingOversold_v1) (entities.Email, error) {
	body, err := render("admin_oversold", event)
	if err != nil {
		return entities.Email{}, err
	}

	return entities.Email{
		To:       adminAddress,
		Subject:  fmt.Sprintf("Refund needed: %s is oversold", event.Booking.EventTitle),
		HTMLBody: body,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("could not render %s email: %w", name, err)
	}
	return buf.String(), nil
}
