package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// SMTPSender delivers verification emails directly over SMTP.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers one verification email with both text and HTML bodies.
func (s *SMTPSender) Send(ctx context.Context, to, verificationURL string) error {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = "Verify Your Email Address - Scc Social"

	e.Text = []byte(fmt.Sprintf(
		"Welcome to Scc Social!\n\n"+
			"Thank you for registering! Please verify your email address to activate your account.\n\n"+
			"Verify your email by clicking this link:\n%s\n\n"+
			"If the button doesn't work, copy and paste the above URL into your web browser.\n",
		verificationURL,
	))
	e.HTML = []byte(fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>Welcome to Scc Social!</h2>
			<p>Thank you for registering! Please verify your email address to activate your account.</p>
			<p style="text-align: center; margin: 30px 0;">
				<a href="%s" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">
					Verify Email Address
				</a>
			</p>
			<p style="color: #666; font-size: 14px;">
				Or copy and paste this link in your browser:<br>
				<code>%s</code>
			</p>
		</div>`,
		verificationURL, verificationURL,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
