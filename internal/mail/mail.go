package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
)

const channel = "email"

// ErrNotConfigured is returned when no SMTP password is set.
var ErrNotConfigured = errors.New("GMAIL_APP_PASSWORD is not set")

type Options struct {
	Host     string
	Port     int
	From     string
	Password string
	To       []string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender mails reports over SMTP. smtp.SendMail upgrades with STARTTLS
// when the server offers it, which PLAIN auth requires.
type Sender struct {
	opts Options
	send SendFunc
	md   goldmark.Markdown
	now  func() time.Time
	log  zerolog.Logger
}

func New(opts Options) *Sender {
	return &Sender{
		opts: opts,
		send: smtp.SendMail,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		now: time.Now,
		log: logger.Component("mail"),
	}
}

// WithSendFunc replaces the SMTP transport.
func (s *Sender) WithSendFunc(fn SendFunc) *Sender {
	s.send = fn
	return s
}

// Subject formats the mail subject for day.
func Subject(prefix, day string) string {
	return strings.TrimSpace(prefix + " " + day)
}

// Deliver sends the Markdown report as a plain text part plus a rendered
// HTML part.
func (s *Sender) Deliver(ctx context.Context, subject, body string) error {
	if s.opts.Password == "" {
		s.log.Error().Msg("GMAIL_APP_PASSWORD is not set; create one at https://myaccount.google.com/apppasswords")
		metrics.Deliveries.WithLabelValues(channel, "error").Inc()
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.Message(subject, body)
	if err != nil {
		metrics.Deliveries.WithLabelValues(channel, "error").Inc()
		return err
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	auth := smtp.PlainAuth("", s.opts.From, s.opts.Password, s.opts.Host)
	if err := s.send(addr, auth, s.opts.From, s.opts.To, msg); err != nil {
		metrics.Deliveries.WithLabelValues(channel, "error").Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.Deliveries.WithLabelValues(channel, "ok").Inc()
	s.log.Info().Strs("to", s.opts.To).Str("subject", subject).Msg("📧 report emailed")
	return nil
}

// Message builds the multipart/alternative message.
func (s *Sender) Message(subject, markdown string) ([]byte, error) {
	page, err := s.HTML(markdown)
	if err != nil {
		return nil, err
	}

	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)
	for _, p := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", markdown},
		{"text/html; charset=utf-8", page},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mime part: %w", err)
		}
		if _, err := w.Write(wrapBase64([]byte(p.body))); err != nil {
			return nil, fmt.Errorf("failed to write mime part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close mime writer: %w", err)
	}

	var msg bytes.Buffer
	headers := []struct{ key, value string }{
		{"From", s.opts.From},
		{"To", strings.Join(s.opts.To, ", ")},
		{"Subject", mime.BEncoding.Encode("UTF-8", subject)},
		{"Date", s.now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h.key, h.value)
	}
	msg.WriteString("\r\n")
	msg.Write(parts.Bytes())
	return msg.Bytes(), nil
}

// HTML renders markdown into the mail template.
func (s *Sender) HTML(markdown string) (string, error) {
	var content bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.Replace(htmlTemplate, "{content}", content.String(), 1), nil
}

func wrapBase64(data []byte) []byte {
	const lineLen = 76
	encoded := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(encoded) > lineLen {
		out.WriteString(encoded[:lineLen])
		out.WriteString("\r\n")
		encoded = encoded[lineLen:]
	}
	out.WriteString(encoded)
	out.WriteString("\r\n")
	return out.Bytes()
}
