package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/premierauto/dealership-server/cmd/models"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. Every send is best-effort from
// the caller's point of view: callers log failures and never roll back the
// operation that triggered the email.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	operator string
	dealer   string
}

func New() *Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}

	dealer := os.Getenv("DEALER_NAME")
	if dealer == "" {
		dealer = "Premier Auto Sales"
	}

	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		user:     os.Getenv("SMTP_USER"),
		pass:     os.Getenv("SMTP_PASS"),
		operator: os.Getenv("OPERATOR_EMAIL"),
		dealer:   dealer,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// sendWithOperatorCopy delivers the customer email and a separate operator
// variant. The returned error reflects the customer send only; a failed
// operator copy is logged and swallowed so it cannot hold up reminder flags.
func (m *Mailer) sendWithOperatorCopy(to, subject, body, opSubject, opBody string) error {
	err := m.send(to, subject, body)

	if m.operator != "" {
		if opErr := m.send(m.operator, opSubject, opBody); opErr != nil {
			log.Printf("Error sending operator email %q: %v", opSubject, opErr)
		}
	}

	return err
}

// SendBookingConfirmation notifies the customer and the operator about a new
// test drive booking.
func (m *Mailer) SendBookingConfirmation(td *models.TestDrive, v *models.Vehicle) error {
	subject := fmt.Sprintf("Test Drive Request Received - %s", vehicleLabel(v))
	body := bookingConfirmationBody(m.dealer, td, v)

	opSubject := fmt.Sprintf("New test drive booking: %s on %s", vehicleLabel(v), td.Date.Format("2006-01-02"))
	opBody := operatorBookingBody(td, v)

	return m.sendWithOperatorCopy(td.CustomerEmail, subject, body, opSubject, opBody)
}

// SendDayOfReminder sends the "your test drive is today" reminder.
func (m *Mailer) SendDayOfReminder(td *models.TestDrive, v *models.Vehicle) error {
	subject := fmt.Sprintf("Reminder: Your Test Drive Today - %s", vehicleLabel(v))
	body := reminderBody(m.dealer, "today", td, v)

	opSubject := fmt.Sprintf("Test drive today at %s: %s", DisplayTime(td.TimeSlot), td.CustomerName)
	opBody := operatorReminderBody("today", td, v)

	return m.sendWithOperatorCopy(td.CustomerEmail, subject, body, opSubject, opBody)
}

// SendNextDayReminder sends the "your test drive is tomorrow" reminder.
func (m *Mailer) SendNextDayReminder(td *models.TestDrive, v *models.Vehicle) error {
	subject := fmt.Sprintf("Reminder: Your Test Drive Tomorrow - %s", vehicleLabel(v))
	body := reminderBody(m.dealer, "tomorrow", td, v)

	opSubject := fmt.Sprintf("Test drive tomorrow at %s: %s", DisplayTime(td.TimeSlot), td.CustomerName)
	opBody := operatorReminderBody("tomorrow", td, v)

	return m.sendWithOperatorCopy(td.CustomerEmail, subject, body, opSubject, opBody)
}

// SendSubmissionReceived notifies the operator about a new sell/trade intake.
func (m *Mailer) SendSubmissionReceived(sub *models.VehicleSubmission) error {
	if m.operator == "" {
		return nil
	}
	subject := fmt.Sprintf("New %s submission: %d %s %s", sub.Type, sub.Year, sub.Make, sub.ModelName)
	body := submissionBody(sub)
	return m.send(m.operator, subject, body)
}

func vehicleLabel(v *models.Vehicle) string {
	if v == nil {
		return "your selected vehicle"
	}
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.ModelName)
}

// DisplayTime renders a normalized 24-hour slot label ("14:00") in the 12-hour
// format used in customer-facing email. Storage and comparisons stay 24-hour.
func DisplayTime(slot string) string {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return slot
	}
	return t.Format("3:04 PM")
}

func bookingConfirmationBody(dealer string, td *models.TestDrive, v *models.Vehicle) string {
	return fmt.Sprintf(
		"Hi %s,\n\nThanks for booking a test drive of the %s with %s.\n\n"+
			"Date: %s\nTime: %s\n\n"+
			"Your request is pending confirmation. We will reach out shortly to confirm your appointment.\n\n"+
			"If you need to make changes, reply to this email or give us a call.\n\n%s",
		td.CustomerName,
		vehicleLabel(v),
		dealer,
		td.Date.Format("Monday, January 2, 2006"),
		DisplayTime(td.TimeSlot),
		dealer,
	)
}

func operatorBookingBody(td *models.TestDrive, v *models.Vehicle) string {
	return fmt.Sprintf(
		"New test drive booking.\n\nVehicle: %s\nDate: %s\nTime: %s\n\n"+
			"Customer: %s\nEmail: %s\nPhone: %s\nNotes: %s\nSource: %s",
		vehicleLabel(v),
		td.Date.Format("2006-01-02"),
		DisplayTime(td.TimeSlot),
		td.CustomerName,
		td.CustomerEmail,
		td.CustomerPhone,
		td.Notes,
		td.Source,
	)
}

func reminderBody(dealer, when string, td *models.TestDrive, v *models.Vehicle) string {
	return fmt.Sprintf(
		"Hi %s,\n\nThis is a reminder that your test drive of the %s is %s.\n\n"+
			"Date: %s\nTime: %s\n\n"+
			"Please bring a valid driver's license. See you soon!\n\n%s",
		td.CustomerName,
		vehicleLabel(v),
		when,
		td.Date.Format("Monday, January 2, 2006"),
		DisplayTime(td.TimeSlot),
		dealer,
	)
}

func operatorReminderBody(when string, td *models.TestDrive, v *models.Vehicle) string {
	return fmt.Sprintf(
		"Test drive %s.\n\nVehicle: %s\nTime: %s\nCustomer: %s (%s, %s)",
		when,
		vehicleLabel(v),
		DisplayTime(td.TimeSlot),
		td.CustomerName,
		td.CustomerEmail,
		td.CustomerPhone,
	)
}

func submissionBody(sub *models.VehicleSubmission) string {
	return fmt.Sprintf(
		"New %s submission.\n\nVehicle: %d %s %s\nVIN: %s\nMileage: %d\nCondition: %s\nAsking price: %.2f\n\n"+
			"Owner: %s\nEmail: %s\nPhone: %s",
		sub.Type,
		sub.Year,
		sub.Make,
		sub.ModelName,
		sub.VIN,
		sub.Mileage,
		sub.Condition,
		sub.AskingPrice,
		sub.OwnerName,
		sub.OwnerEmail,
		sub.OwnerPhone,
	)
}
