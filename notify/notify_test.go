// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestWelcomeMessage(t *testing.T) {
	msg, err := WelcomeMessage(Welcome{
		Name:     "Ana Pérez",
		Username: "ana@example.com",
		Role:     "LIQUIDADOR",
		LoginURL: "https://claims.example.com",
	})
	if err != nil {
		t.Fatalf("WelcomeMessage() error = %v", err)
	}

	if msg.To != "ana@example.com" {
		t.Errorf("Expected recipient ana@example.com, got %s", msg.To)
	}
	for _, want := range []string{"ana@example.com", "LIQUIDADOR", "https://claims.example.com", "Ana Pérez"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestWelcomeMessage_EscapesInput(t *testing.T) {
	msg, err := WelcomeMessage(Welcome{Name: "<script>x</script>", Username: "a@b.cl", Role: "LIQUIDADOR"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("Expected name to be HTML-escaped")
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "bot@example.com", Password: "secret"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		if a == nil {
			t.Error("Expected auth to be set")
		}
		return nil
	}

	err := m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Acceso a bitácora", HTML: "<p>hola</p>"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("Expected addr smtp.example.com:587, got %s", gotAddr)
	}
	if gotFrom != "bot@example.com" {
		t.Errorf("Expected From to default to SMTP user, got %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "ana@example.com" {
		t.Errorf("unexpected recipients %v", gotTo)
	}
	body := string(gotBody)
	if !strings.Contains(body, "Content-Type: text/html; charset=UTF-8") {
		t.Error("Expected HTML content type header")
	}
	if !strings.Contains(body, "Subject: =?UTF-8?q?") {
		t.Errorf("Expected encoded subject, got %q", body)
	}
	if !strings.HasSuffix(body, "<p>hola</p>") {
		t.Error("Expected body after headers")
	}
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := m.Send(context.Background(), Message{To: "ana@example.com"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected wrapped send error, got %v", err)
	}
}

func TestMailers_RejectEmptyRecipient(t *testing.T) {
	mailers := map[string]Mailer{
		"smtp": NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25}),
		"log":  LogMailer{},
	}
	for name, m := range mailers {
		t.Run(name, func(t *testing.T) {
			if err := m.Send(context.Background(), Message{To: " "}); !errors.Is(err, ErrNoRecipient) {
				t.Errorf("Expected ErrNoRecipient, got %v", err)
			}
		})
	}
}

func TestNewMailer(t *testing.T) {
	if _, ok := NewMailer(SMTPConfig{Port: 587}).(LogMailer); !ok {
		t.Error("Expected LogMailer without a host")
	}
	m, ok := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "bot@example.com"}).(*SMTPMailer)
	if !ok {
		t.Fatal("Expected SMTPMailer with a host")
	}
	if m.cfg.From != "bot@example.com" {
		t.Errorf("Expected sender to default to the user, got %q", m.cfg.From)
	}
}

func TestBuildMIME_Headers(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	raw := string(buildMIME("a@b.cl", Message{To: "c@d.cl", Subject: "Hola", HTML: "x"}, now))

	if !strings.Contains(raw, "Subject: Hola\r\n") {
		t.Error("ASCII subjects should not be encoded")
	}
	if !strings.Contains(raw, "Date: Tue, 04 Mar 2025 10:00:00 +0000\r\n") {
		t.Errorf("unexpected Date header in %q", raw)
	}
}
