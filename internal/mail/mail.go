// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier delivers password-reset email via a plain SMTP relay
// with optional AUTH PLAIN credentials.
type SMTPNotifier struct {
	host string
	port int
	user string
	pass string
	from string

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(host string, port int, user, pass, from string) *SMTPNotifier {
	return &SMTPNotifier{
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
		send: smtp.SendMail,
	}
}

func (n *SMTPNotifier) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	b.WriteString("Subject: Password Reset Request\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString("We received a request to reset the password for your account.\r\n\r\n")
	fmt.Fprintf(&b, "Follow this link to choose a new password:\r\n\r\n%s\r\n\r\n", resetLink)
	b.WriteString("The link is valid for 30 minutes and can be used once.\r\n")
	b.WriteString("If you did not request a reset, you can ignore this message.\r\n")

	var auth smtp.Auth
	if n.user != "" {
		auth = smtp.PlainAuth("", n.user, n.pass, n.host)
	}
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := n.send(addr, auth, n.from, []string{toEmail}, []byte(b.String())); err != nil {
		return fmt.Errorf("mail: send to %s: %w", toEmail, err)
	}
	return nil
}
