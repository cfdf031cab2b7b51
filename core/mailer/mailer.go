package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Notifier defines the interface for outgoing notifications.
// Sending is fire-and-forget from the sync engine's point of view: failures
// are logged by the caller and never block a sync state transition.
type Notifier interface {
	SendEmail(to []string, subject, htmlBody string) error
}

// Config holds configuration for the SMTP notifier.
type Config struct {
	// Enabled turns notification sending on. When false a no-op notifier is used.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Host is the SMTP server host.
	Host string `mapstructure:"host" default:"smtp.gmail.com"`
	// Port is the SMTP server port.
	Port int `mapstructure:"port" default:"587"`
	// User is the SMTP account user and the From address.
	User string `mapstructure:"user" default:""`
	// Password is the SMTP account password.
	Password string `mapstructure:"password" default:""`
}

// New creates a notifier from the configuration. Disabled mail yields a
// notifier that silently accepts every message.
func New(cfg Config) Notifier {
	if !cfg.Enabled {
		return NopNotifier{}
	}
	return &smtpNotifier{cfg: cfg}
}

type smtpNotifier struct {
	cfg Config
}

func (n *smtpNotifier) SendEmail(to []string, subject, htmlBody string) error {
	recipients := make([]string, 0, len(to))
	for _, addr := range to {
		if addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.User)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %v: %w", recipients, err)
	}
	return nil
}

// NopNotifier discards every message. Used when mail is disabled and in tests.
type NopNotifier struct{}

func (NopNotifier) SendEmail(to []string, subject, htmlBody string) error {
	return nil
}
