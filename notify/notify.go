// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNoRecipient = errors.New("message has no recipient")

// Message is an HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the outgoing mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP server with STARTTLS and PLAIN auth
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer returns an SMTP mailer, or a LogMailer when no host is set
func NewMailer(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, buildMIME(m.cfg.From, msg, time.Now())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func buildMIME(from string, msg Message, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mimeHeader(msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@claim-ledger>\r\n", uuid.NewString())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}

// mimeHeader Q-encodes subjects that are not plain ASCII
func mimeHeader(s string) string {
	return mime.QEncoding.Encode("UTF-8", s)
}

// LogMailer logs messages instead of sending them. Used when SMTP is not
// configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	slog.Info("mail not sent, SMTP not configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Welcome is the data of the account creation email
type Welcome struct {
	Name     string
	Username string
	Role     string
	LoginURL string
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Bienvenido{{if .Name}}, {{.Name}}{{end}}</h2>
  <p>Se creó su cuenta en la bitácora de siniestros.</p>
  <table>
    <tr><td><b>Usuario:</b></td><td>{{.Username}}</td></tr>
    <tr><td><b>Rol:</b></td><td>{{.Role}}</td></tr>
  </table>
  {{if .LoginURL}}<p>Ingrese en <a href="{{.LoginURL}}">{{.LoginURL}}</a>.</p>{{end}}
  <p>Su contraseña le será entregada por el administrador.</p>
</body>
</html>`))

// WelcomeMessage renders the account creation email. Passwords are never
// part of the data.
func WelcomeMessage(w Welcome) (Message, error) {
	var b bytes.Buffer
	if err := welcomeTmpl.Execute(&b, w); err != nil {
		return Message{}, fmt.Errorf("failed to render welcome email: %w", err)
	}
	return Message{
		To:      w.Username,
		Subject: "Acceso a bitácora de siniestros",
		HTML:    b.String(),
	}, nil
}
