// Package email sends transactional mail for the auth flows. The rest of
// the application only depends on the Mailer interface and a success/failure
// signal; rendering and transport live entirely in here.
package email

import (
	"fmt"
	"net/smtp"
)

// Template identifies one of the transactional mail kinds the auth flows
// dispatch.
type Template string

const (
	TemplateWelcome       Template = "welcome"
	TemplatePasswordReset Template = "password_reset"
)

// Data carries the values interpolated into a template.
type Data struct {
	Name string // recipient display name
	URL  string // call-to-action link (account page or reset link)
}

// Mailer delivers a rendered template to a recipient. Implementations must
// treat any returned error as a delivery failure; callers decide whether to
// surface or swallow it.
type Mailer interface {
	Send(to string, tpl Template, data Data) error
}

// SMTP is a Mailer backed by a plain SMTP server.
type SMTP struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTP builds an SMTP mailer. An empty username disables authentication,
// which is what local relays like MailHog expect.
func NewSMTP(host, port, username, password, from string) *SMTP {
	return &SMTP{host: host, port: port, username: username, password: password, from: from}
}

// Send renders the template and delivers it. Errors from the SMTP dialog are
// returned as-is for the caller to classify.
func (s *SMTP) Send(to string, tpl Template, data Data) error {
	subject, body, err := render(tpl, data)
	if err != nil {
		return err
	}
	return s.sendMail(to, subject, body)
}

// render produces the subject line and HTML body for a template.
func render(tpl Template, data Data) (subject, body string, err error) {
	switch tpl {
	case TemplateWelcome:
		subject = "Welcome to the Tourhive family!"
		body = fmt.Sprintf(`
        <html>
        <body>
            <h1>Hello %s!</h1>
            <p>Welcome to Tourhive! We are glad to have you on board.</p>
            <p><a href="%s">Start exploring</a></p>
        </body>
        </html>
    `, data.Name, data.URL)
	case TemplatePasswordReset:
		subject = "Your password reset token (valid for 10 minutes)"
		body = fmt.Sprintf(`
        <html>
        <body>
            <h1>Reset your password</h1>
            <p>Hello %s,</p>
            <p>You asked for a password reset. Click the link below to choose a new password:</p>
            <p><a href="%s">Reset my password</a></p>
            <p>If you did not request this, please ignore this email.</p>
        </body>
        </html>
    `, data.Name, data.URL)
	default:
		return "", "", fmt.Errorf("email: unknown template %q", tpl)
	}
	return subject, body, nil
}

func (s *SMTP) sendMail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	msg := fmt.Sprintf("From: %s\r\n", s.from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=UTF-8\r\n"
	msg += "\r\n" + body

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg))
}
