package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/saeid-a/ClinicAgendaBack/internal/config"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerSkipsWithoutSMTP(t *testing.T) {
	mailer := NewMailer(&config.Config{SMTPHost: "smtp.example.com"}, logger.Discard())

	_, isSkip := mailer.(*skipMailer)
	assert.True(t, isSkip)
	assert.NoError(t, mailer.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "x"}))
}

func TestNewMailerUsesSMTPWhenConfigured(t *testing.T) {
	mailer := NewMailer(&config.Config{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		SMTPUser:  "user",
		SMTPPass:  "pass",
		EmailFrom: "turnos@centro.com",
	}, logger.Discard())

	smtpMailer, ok := mailer.(*SMTPMailer)
	assert.True(t, ok)
	assert.Equal(t, "turnos@centro.com", smtpMailer.from)
}

func TestSMTPMailerIgnoresEmptyRecipients(t *testing.T) {
	mailer := &SMTPMailer{host: "invalid.invalid", port: 25}
	assert.NoError(t, mailer.Send(context.Background(), Message{Subject: "x"}))
}

func TestBuildMessageHeaders(t *testing.T) {
	email, err := buildMessage("turnos@centro.com", Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "[Centro] Appointment created - Núñez, José - Kinesiología",
		Body:    "line one\nline two",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = email.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "turnos@centro.com")
	assert.Contains(t, raw, "a@example.com")
	assert.Contains(t, raw, "b@example.com")
	assert.Contains(t, strings.ToLower(raw), "subject: =?utf-8?q?")
	assert.Contains(t, raw, "Date: ")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "line one")
	assert.Contains(t, raw, "line two")
}

func TestBuildMessageRejectsBadAddresses(t *testing.T) {
	_, err := buildMessage("not an address", Message{To: []string{"a@example.com"}})
	assert.Error(t, err)

	_, err = buildMessage("turnos@centro.com", Message{To: []string{"nope"}})
	assert.Error(t, err)
}

func TestSMTPMailerRejectsInvalidPort(t *testing.T) {
	mailer := &SMTPMailer{host: "smtp.example.com", port: 70000, from: "turnos@centro.com"}
	err := mailer.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x"})
	assert.Error(t, err)
}
