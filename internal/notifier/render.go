package notifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
)

// FormatAmount renders integer cents with the configured currency symbol.
func FormatAmount(currency string, cents int) string {
	return fmt.Sprintf("%s%d.%02d", currency, cents/100, cents%100)
}

// EmailBody renders the confirmation email for a committed reservation.
func EmailBody(p booking.ReservationConfirmedPayload, currency string) (subject, body string) {
	subject = "Property Booking Confirmation"
	var b strings.Builder
	b.WriteString("Your Booking Details\n\n")
	b.WriteString("Thank you for your booking! Below are your booking details.\n\n")
	fmt.Fprintf(&b, "Booking ID: %s\n", p.ReservationID)
	fmt.Fprintf(&b, "Agency: %s\n", p.AgencyName)
	fmt.Fprintf(&b, "Location: %s\n", p.PropertyAddress)
	fmt.Fprintf(&b, "Check-In: %s\n", p.CheckIn)
	fmt.Fprintf(&b, "Check-Out: %s\n", p.CheckOut)
	fmt.Fprintf(&b, "Guests: %d\n", p.Guests)
	fmt.Fprintf(&b, "Total Amount: %s for %d night(s)\n", FormatAmount(currency, p.TotalCents), p.Nights)
	fmt.Fprintf(&b, "Payment: %s\n\n", p.PaymentMethod)
	b.WriteString("We are excited to welcome you soon.\n")
	b.WriteString("Need to change something? Contact us.\n")
	return subject, b.String()
}

// WhatsAppText is the prefilled message for the wa.me deep link.
func WhatsAppText(p booking.ReservationConfirmedPayload, currency string) string {
	return fmt.Sprintf("Hello %s! I have a question about my booking %s at %s (%s to %s, %d guest(s), %s).",
		p.AgencyName, p.ReservationID, p.PropertyTitle, p.CheckIn, p.CheckOut, p.Guests,
		FormatAmount(currency, p.TotalCents))
}

// WhatsAppLink builds the wa.me deep link for a given number and message.
func WhatsAppLink(number, text string) string {
	number = strings.TrimLeft(strings.ReplaceAll(number, " ", ""), "+")
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(text))
}
