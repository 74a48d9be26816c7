package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/stafflink/portal_backend/models"
)

// Mailer sends an email copy of in-app notifications when SMTP is
// configured. Delivery is best-effort: the notification record is already
// persisted, so a mail failure is only logged.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewMailer creates a mailer from environment variables. Returns a mailer
// even when SMTP is unconfigured; Send becomes a logged no-op.
func NewMailer() *Mailer {
	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@portal.local"
	}
	m := &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
	if m.host == "" {
		log.Printf("SMTP_HOST not set, notification emails disabled")
	}
	return m
}

// SendNotificationCopy emails the recipient about a new in-app notification.
func (m *Mailer) SendNotificationCopy(n *models.Notification) {
	if m.host == "" {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.RecipientEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Team portal: new %s notification", n.Module))
	msg.SetBody("text/plain", fmt.Sprintf("%s\n\nOpen the portal to see the details: %s",
		n.Message, models.RouteForModule(n.Module)))

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Printf("failed to email notification %s to %s: %v", n.ID, n.RecipientEmail, err)
	}
}
