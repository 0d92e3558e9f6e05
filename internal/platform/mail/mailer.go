// Package mail sends outgoing email over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insaatai/insaat_backend/internal/platform/telemetry"
)

// ErrNotConfigured is returned when a message cannot be addressed.
var ErrNotConfigured = errors.New("mail: sender or recipient not configured")

// Message is one outgoing email. Kind labels metrics only.
type Message struct {
	Kind    string
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig describes the outgoing server. Secure selects implicit TLS
// (usually port 465); otherwise STARTTLS is used when the server offers it.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg         SMTPConfig
	dialTimeout time.Duration
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg, dialTimeout: 10 * time.Second}
}

var _ Mailer = (*SMTPMailer)(nil)

// Send delivers msg, honouring ctx for the dial and the session deadline.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (err error) {
	defer func() { recordResult(msg.Kind, err) }()

	if msg.From == "" || len(msg.To) == 0 {
		return ErrNotConfigured
	}
	body, err := BuildMessage(msg, time.Now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))
	conn, err := m.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(time.Minute))
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp new client: %w", err)
	}
	defer c.Close()

	if !m.implicitTLS() {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(m.tlsConfig()); err != nil {
				return fmt.Errorf("smtp STARTTLS: %w", err)
			}
		}
	}
	if m.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(envelopeAddress(msg.From)); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(envelopeAddress(rcpt)); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

func (m *SMTPMailer) implicitTLS() bool {
	return m.cfg.Secure || m.cfg.Port == 465
}

func (m *SMTPMailer) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
}

func (m *SMTPMailer) dial(ctx context.Context, addr string) (net.Conn, error) {
	netDialer := &net.Dialer{Timeout: m.dialTimeout}
	if m.implicitTLS() {
		tlsDialer := &tls.Dialer{NetDialer: netDialer, Config: m.tlsConfig()}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return netDialer.DialContext(ctx, "tcp", addr)
}

// LogMailer only logs messages. It stands in when no SMTP host is configured.
type LogMailer struct {
	Logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.From == "" || len(msg.To) == 0 {
		recordResult(msg.Kind, ErrNotConfigured)
		return ErrNotConfigured
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Mail not sent (no SMTP host configured)",
		slog.String("kind", msg.Kind),
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	recordResult(msg.Kind, nil)
	return nil
}

func recordResult(kind string, err error) {
	if kind == "" {
		kind = "other"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	telemetry.MailSentTotal.WithLabelValues(kind, result).Inc()
}

// envelopeAddress strips a display name: "Kaplan <a@b.c>" -> "a@b.c".
func envelopeAddress(addr string) string {
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		if j := strings.LastIndex(addr, ">"); j > i {
			return strings.TrimSpace(addr[i+1 : j])
		}
	}
	return strings.TrimSpace(addr)
}

// BuildMessage renders msg as RFC 5322 text. With both Text and HTML set the
// body is multipart/alternative. Headers are Q-encoded so Turkish characters survive.
func BuildMessage(msg Message, now time.Time) ([]byte, error) {
	for _, h := range append([]string{msg.From, msg.ReplyTo, msg.Subject}, msg.To...) {
		if strings.ContainsAny(h, "\r\n") {
			return nil, fmt.Errorf("mail: header contains a line break")
		}
	}

	var buf bytes.Buffer
	writeHeader := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}

	writeHeader("From", msg.From)
	writeHeader("To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		writeHeader("Reply-To", msg.ReplyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(msg.From)))
	writeHeader("MIME-Version", "1.0")

	switch {
	case msg.HTML != "" && msg.Text != "":
		boundary := "alt-" + strings.ReplaceAll(uuid.NewString(), "-", "")
		writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
		buf.WriteString("\r\n")
		writePart(&buf, boundary, "text/plain; charset=utf-8", msg.Text)
		writePart(&buf, boundary, "text/html; charset=utf-8", msg.HTML)
		buf.WriteString("--" + boundary + "--\r\n")
	case msg.HTML != "":
		writeBody(&buf, "text/html; charset=utf-8", msg.HTML)
	default:
		writeBody(&buf, "text/plain; charset=utf-8", msg.Text)
	}
	return buf.Bytes(), nil
}

func writePart(buf *bytes.Buffer, boundary, contentType, body string) {
	buf.WriteString("--" + boundary + "\r\n")
	writeBody(buf, contentType, body)
}

func writeBody(buf *bytes.Buffer, contentType, body string) {
	buf.WriteString("Content-Type: " + contentType + "\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded + "\r\n")
}

func domainOf(addr string) string {
	a := envelopeAddress(addr)
	if i := strings.LastIndex(a, "@"); i >= 0 && i < len(a)-1 {
		return a[i+1:]
	}
	return "localhost"
}
