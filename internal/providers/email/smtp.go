package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
)

var ErrNoRecipients = errors.New("no_recipients")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}

	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, to, msg)
}

var resetCodeTmpl = template.Must(template.New("reset_code").Parse(`<html>
<body style="font-family: sans-serif;">
  <p>Hello,</p>
  <p>We received a request to reset the password for your account.</p>
  <p>Your reset code is: <strong style="font-size: 18px;">{{.Code}}</strong></p>
  <p>This code expires in {{.TTLMinutes}} minutes. If you did not request a
  reset, you can ignore this message.</p>
  <p>{{.BarangayName}}</p>
</body>
</html>`))

type ResetCodeData struct {
	Code         string
	TTLMinutes   int
	BarangayName string
}

// RenderResetCode renders the password reset email body.
func RenderResetCode(data ResetCodeData) (string, error) {
	var body bytes.Buffer
	if err := resetCodeTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}
