package worker_service

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type DigestParams struct {
	GroupName  string
	Channel    string
	SenderName string
	Preview    string
}

// Mailer sends transactional mail through SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) SendOfflineDigest(to string, params DigestParams) error {
	group := params.GroupName
	if group == "" {
		group = "one of your groups"
	}
	sender := params.SenderName
	if sender == "" {
		sender = "Someone"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("New message in %s", group))
	msg.SetBody("text/html", fmt.Sprintf(
		"<p><b>%s</b> posted in <b>%s #%s</b>:</p><blockquote>%s</blockquote><p>Open the app to catch up.</p>",
		sender, group, params.Channel, params.Preview,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send digest to %s: %w", to, err)
	}
	return nil
}
