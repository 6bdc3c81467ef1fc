package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/stayloop/booking-service/config"
)

const companyName = "Stayloop"

var confirmationTmpl = template.Must(template.New("booking_confirmation").Parse(`Dear {{.UserName}},

Your booking has been confirmed!

Booking Details:
- Booking ID: {{.BookingID}}
- Property: {{.ListingTitle}}
- Location: {{if .ListingLocation}}{{.ListingLocation}}{{else}}Location not specified{{end}}
- Host: {{if .HostName}}{{.HostName}}{{else}}Host{{end}}
- Check-in: {{.CheckInDate}}
- Check-out: {{.CheckOutDate}}
- Total Price: ${{.TotalPrice}}

Thank you for choosing {{.Company}}!

Best regards,
The {{.Company}} Team
`))

var requestTmpl = template.Must(template.New("booking_request").Parse(`Dear {{.HostName}},

You have received a new booking request!

Property: {{.ListingTitle}}
Guest: {{.GuestName}}
Email: {{.GuestEmail}}
Phone: {{if .GuestPhone}}{{.GuestPhone}}{{else}}Not provided{{end}}
Check-in: {{.CheckInDate}}
Check-out: {{.CheckOutDate}}
Guests: {{.Guests}}
Total Price: ${{.TotalPrice}}
Special Requests: {{if .SpecialRequests}}{{.SpecialRequests}}{{else}}None{{end}}

Please log in at {{.SiteURL}} to confirm or decline the booking.

Best regards,
The {{.Company}} Team
`))

var reminderTmpl = template.Must(template.New("booking_reminder").Parse(`Dear {{.UserName}},

This is a friendly reminder about your upcoming booking:

- Booking ID: {{.BookingID}}
- Property: {{.ListingTitle}}
- Location: {{if .ListingLocation}}{{.ListingLocation}}{{else}}Location not specified{{end}}
- Check-in: {{.CheckInDate}}

We hope you have a wonderful stay!

Best regards,
The {{.Company}} Team
`))

var cancellationTmpl = template.Must(template.New("booking_cancellation").Parse(`Dear {{.UserName}},

Your booking has been cancelled.

Booking Details:
- Booking ID: {{.BookingID}}
- Property: {{.ListingTitle}}
- Reason: {{if .CancellationReason}}{{.CancellationReason}}{{else}}Not specified{{end}}

If you have any questions about this cancellation or need assistance
with rebooking, please contact our support team at {{.SupportEmail}}.

Thank you for using {{.Company}}.

Best regards,
The {{.Company}} Team
`))

// Renderer turns task payloads into plain-text subject/body pairs. A
// template execution failure degrades to a fixed plain-text format
// instead of failing the task.
type Renderer struct {
	supportEmail string
	siteURL      string
}

func NewRenderer(cfg *config.MailConfig) *Renderer {
	return &Renderer{supportEmail: cfg.SupportAddress, siteURL: cfg.SiteURL}
}

func (r *Renderer) Confirmation(p ConfirmationPayload) Message {
	subject := fmt.Sprintf("Booking Confirmation #%d - %s", p.BookingID, p.ListingTitle)
	body, err := render(confirmationTmpl, struct {
		ConfirmationPayload
		Company string
	}{p, companyName})
	if err != nil {
		body = fmt.Sprintf("Dear %s,\n\nYour booking #%d for %s (%s to %s, total $%s) has been confirmed.\n\nThe %s Team",
			p.UserName, p.BookingID, p.ListingTitle, p.CheckInDate, p.CheckOutDate, p.TotalPrice, companyName)
	}
	return Message{To: p.UserEmail, Subject: subject, Body: body}
}

func (r *Renderer) Request(p RequestPayload) Message {
	subject := fmt.Sprintf("New Booking Request - %s", p.ListingTitle)
	body, err := render(requestTmpl, struct {
		RequestPayload
		Company string
		SiteURL string
	}{p, companyName, r.siteURL})
	if err != nil {
		body = fmt.Sprintf("Dear %s,\n\n%s requested booking #%d for %s (%s to %s).\n\nThe %s Team",
			p.HostName, p.GuestName, p.BookingID, p.ListingTitle, p.CheckInDate, p.CheckOutDate, companyName)
	}
	return Message{To: p.HostEmail, Subject: subject, Body: body}
}

func (r *Renderer) Reminder(p ReminderPayload) Message {
	subject := fmt.Sprintf("Booking Reminder - Check-in Tomorrow: %s", p.ListingTitle)
	body, err := render(reminderTmpl, struct {
		ReminderPayload
		Company string
	}{p, companyName})
	if err != nil {
		body = fmt.Sprintf("Dear %s,\n\nReminder: your booking #%d for %s checks in on %s.\n\nThe %s Team",
			p.UserName, p.BookingID, p.ListingTitle, p.CheckInDate, companyName)
	}
	return Message{To: p.UserEmail, Subject: subject, Body: body}
}

func (r *Renderer) Cancellation(p CancellationPayload) Message {
	subject := fmt.Sprintf("Booking Cancellation Confirmation #%d", p.BookingID)
	body, err := render(cancellationTmpl, struct {
		CancellationPayload
		Company      string
		SupportEmail string
	}{p, companyName, r.supportEmail})
	if err != nil {
		body = fmt.Sprintf("Dear %s,\n\nYour booking #%d for %s has been cancelled. Contact %s for assistance.\n\nThe %s Team",
			p.UserName, p.BookingID, p.ListingTitle, r.supportEmail, companyName)
	}
	return Message{To: p.UserEmail, Subject: subject, Body: body}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
