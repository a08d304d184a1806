package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/config"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns an SMTP mailer, or one that only logs when SMTP is not configured.
func NewMailer(cfg *config.Config, log *logger.Logger) Mailer {
	if !cfg.EmailConfigured() {
		log.WithComponent("mailer").Warn("SMTP not configured; emails will be skipped")
		return &skipMailer{log: log.WithComponent("mailer")}
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.EmailFrom,
	}
}

type skipMailer struct {
	log *logrus.Entry
}

func (m *skipMailer) Send(_ context.Context, msg Message) error {
	m.log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("email skipped: SMTP not configured")
	return nil
}

type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// Send delivers msg over implicit TLS on port 465 and opportunistic STARTTLS elsewhere.
// A client is built per call since dispatcher workers send concurrently.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	email, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(10 * time.Second),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
	}
	if m.port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(m.host, opts...)
}

func buildMessage(from string, msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := email.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetDate()
	email.SetBodyString(mail.TypeTextPlain, msg.Body)
	return email, nil
}
