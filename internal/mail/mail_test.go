package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/adtrends/internal/metrics"
)

const report = "# 📢 주간 광고/미디어 심층 리포트\n\n> **발행일**: 2025-03-05 09:00\n\n**제목**\n*(AdAge)*\n\n[🔗 기사 원문](https://example.com/a)\n"

func testSender() *Sender {
	s := New(Options{
		Host: "smtp.example.com", Port: 587,
		From: "bot@example.com", Password: "app-pass",
		To: []string{"a@example.com", "b@example.com"},
	})
	s.now = func() time.Time { return time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestMessageParts(t *testing.T) {
	raw, err := testSender().Message("[광고 트렌드 리포트] 2025-03-05", report)
	require.NoError(t, err)

	msg, err := netmail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "[광고 트렌드 리포트] 2025-03-05", subject)
	assert.Equal(t, "a@example.com, b@example.com", msg.Header.Get("To"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var bodies []string
	var types []string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, p))
		require.NoError(t, err)
		types = append(types, p.Header.Get("Content-Type"))
		bodies = append(bodies, string(data))
	}

	require.Len(t, bodies, 2)
	assert.Equal(t, []string{"text/plain; charset=utf-8", "text/html; charset=utf-8"}, types)
	assert.Equal(t, report, bodies[0])
	assert.Contains(t, bodies[1], "<h1>📢 주간 광고/미디어 심층 리포트</h1>")
	assert.Contains(t, bodies[1], `<a href="https://example.com/a">🔗 기사 원문</a>`)
	assert.Contains(t, bodies[1], "<strong>제목</strong><br>")
	assert.Contains(t, bodies[1], "자동 발송되었습니다")
}

func TestDeliver(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	s := testSender().WithSendFunc(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		assert.NotEmpty(t, msg)
		return nil
	})

	require.NoError(t, s.Deliver(context.Background(), "subject", report))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotTo)
}

func TestDeliverWithoutPassword(t *testing.T) {
	s := New(Options{Host: "smtp.example.com", Port: 587})
	called := false
	s.WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	})
	failures := metrics.Deliveries.WithLabelValues(channel, "error")
	before := testutil.ToFloat64(failures)

	err := s.Deliver(context.Background(), "subject", report)

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)
	assert.Equal(t, before+1, testutil.ToFloat64(failures))
}

func TestDeliverTransportError(t *testing.T) {
	s := testSender().WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 auth failed")
	})

	err := s.Deliver(context.Background(), "subject", report)

	assert.ErrorContains(t, err, "535 auth failed")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "[광고 트렌드 리포트] 2025-03-05", Subject("[광고 트렌드 리포트]", "2025-03-05"))
	assert.Equal(t, "2025-03-05", Subject("", "2025-03-05"))
}
