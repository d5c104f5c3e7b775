package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/adtrends/internal/ratelimit"
)

type fakeBackend struct {
	name  string
	out   string
	err   error
	calls []string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Translate(_ context.Context, text, _ string) (string, error) {
	f.calls = append(f.calls, text)
	return f.out, f.err
}

func TestServiceTranslatesAndCaches(t *testing.T) {
	fb := &fakeBackend{name: "fake", out: "번역됨"}
	limiter := ratelimit.New(0, 0)
	svc := NewService(fb, "ko", limiter)
	ctx := context.Background()

	assert.Equal(t, "번역됨", svc.Text(ctx, "translated"))
	assert.Equal(t, "번역됨", svc.Text(ctx, "translated"))
	assert.Len(t, fb.calls, 1, "second call served from cache")
	assert.Equal(t, 1, limiter.GetStats()["cache_hits"])
}

func TestServicePassthroughOnFailure(t *testing.T) {
	fb := &fakeBackend{name: "fake", err: errors.New("boom")}
	svc := NewService(fb, "ko", nil)

	assert.Equal(t, "original", svc.Text(context.Background(), "original"))
}

func TestServicePassthroughOnEmptyResult(t *testing.T) {
	fb := &fakeBackend{name: "fake", out: "  "}
	svc := NewService(fb, "ko", nil)

	assert.Equal(t, "original", svc.Text(context.Background(), "original"))
}

func TestServiceSkipsEmptyInput(t *testing.T) {
	fb := &fakeBackend{name: "fake", out: "x"}
	svc := NewService(fb, "ko", nil)

	assert.Equal(t, "", svc.Text(context.Background(), ""))
	assert.Empty(t, fb.calls)
}

func TestServiceTruncatesInput(t *testing.T) {
	fb := &fakeBackend{name: "fake", err: errors.New("down")}
	svc := NewService(fb, "ko", nil)

	got := svc.Text(context.Background(), strings.Repeat("광", 5000))

	require.Len(t, fb.calls, 1)
	assert.Equal(t, MaxInputChars, utf8.RuneCountInString(fb.calls[0]))
	assert.Equal(t, MaxInputChars, utf8.RuneCountInString(got), "failure returns the truncated input")
}

func TestNilBackendIsIdentity(t *testing.T) {
	svc := NewService(nil, "ko", nil)
	assert.Equal(t, "as is", svc.Text(context.Background(), "as is"))
}

func TestLimitedRespectsBudget(t *testing.T) {
	limiter := ratelimit.New(0, 0)
	limiter.SetLimit("fake", 1)
	fb := &fakeBackend{name: "fake", out: "ok"}
	svc := NewService(Limited(fb, limiter), "ko", limiter)
	ctx := context.Background()

	assert.Equal(t, "ok", svc.Text(ctx, "first"))
	assert.Equal(t, "second", svc.Text(ctx, "second"), "budget exhausted, passthrough")
	assert.Len(t, fb.calls, 1)
}

func TestChainFallsThrough(t *testing.T) {
	first := &fakeBackend{name: "google", err: errors.New("429")}
	second := &fakeBackend{name: "gemini", out: "결과"}

	out, err := Chain{first, second}.Translate(context.Background(), "text", "ko")

	require.NoError(t, err)
	assert.Equal(t, "결과", out)
	assert.Equal(t, "google,gemini", Chain{first, second}.Name())
}

func TestChainAllFail(t *testing.T) {
	_, err := Chain{&fakeBackend{name: "a", err: errors.New("x")}, &fakeBackend{name: "b"}}.Translate(context.Background(), "t", "ko")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTranslation)
}

func TestGoogleTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "ko", q.Get("tl"))
		assert.Equal(t, "Ad spend grows. CTV leads.", q.Get("q"))
		_, _ = w.Write([]byte(`[[["광고 지출이 늘었다. ","Ad spend grows. ",null,null,1],["CTV가 주도한다.","CTV leads.",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	g := &Google{Endpoint: srv.URL, Client: srv.Client()}
	out, err := g.Translate(context.Background(), "Ad spend grows. CTV leads.", "ko")

	require.NoError(t, err)
	assert.Equal(t, "광고 지출이 늘었다. CTV가 주도한다.", out)
}

func TestGoogleTranslateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := &Google{Endpoint: srv.URL, Client: srv.Client()}
	_, err := g.Translate(context.Background(), "x", "ko")
	assert.Error(t, err)
}

func TestParseGoogleResponseRejectsGarbage(t *testing.T) {
	_, err := parseGoogleResponse([]byte(`{"error":"nope"}`))
	assert.Error(t, err)
	_, err = parseGoogleResponse([]byte(`[]`))
	assert.Error(t, err)
}

func TestOpenAITranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[0].Content, "Korean")
		assert.Equal(t, "Retail media grows.", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
"choices":[{"index":0,"message":{"role":"assistant","content":"리테일 미디어가 성장합니다.\nNote: machine translation."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("test-key", "gpt-4o-mini", srv.URL+"/v1")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := o.Translate(ctx, "Retail media grows.", "ko")

	require.NoError(t, err)
	assert.Equal(t, "리테일 미디어가 성장합니다.", out)
}
