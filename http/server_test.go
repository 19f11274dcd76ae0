package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fwojciec/sanpo"
	"github.com/fwojciec/sanpo/goquery"
	sanpohttp "github.com/fwojciec/sanpo/http"
	"github.com/fwojciec/sanpo/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, links sanpo.LinkService, opts ...sanpohttp.ServerOption) http.Handler {
	t.Helper()

	if links == nil {
		links = &mock.LinkService{
			ExtractFromHTMLFn: func(html, baseURL string) (*sanpo.LinkResult, error) {
				return goquery.NewLinkExtractor().ExtractLinks(html, baseURL)
			},
		}
	}
	return sanpohttp.NewServer(goquery.NewReportExtractor(), links, opts...).Handler()
}

func post(t *testing.T, h http.Handler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Extract(t *testing.T) {
	t.Parallel()

	t.Run("returns transparency report", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, nil)
		body, err := json.Marshal(map[string]string{
			"html": `<title>物件</title><h1>見出し</h1><p>初期費用は10万円です</p><p>運営会社: 株式会社サンプル</p>`,
		})
		require.NoError(t, err)

		rec := post(t, h, "/extract", string(body))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{
			"meta": {"title": "物件", "operatorName": "運営会社: 株式会社サンプル"},
			"structure": {"h1": ["見出し"], "h2": [], "paragraphs": ["初期費用は10万円です", "運営会社: 株式会社サンプル"]},
			"semantic": {"risks": [], "costs": ["初期費用は10万円です"], "operatorInfo": ["運営会社: 株式会社サンプル"]}
		}`, rec.Body.String())
	})

	t.Run("rejects missing html field", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/extract", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"html field required"}`, rec.Body.String())
	})

	t.Run("rejects null html field", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/extract", `{"html": null}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-string html field", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/extract", `{"html": 42}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "html")
	})

	t.Run("rejects empty and malformed bodies", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, nil)

		assert.Equal(t, http.StatusBadRequest, post(t, h, "/extract", ``).Code)
		assert.Equal(t, http.StatusBadRequest, post(t, h, "/extract", `{"html":`).Code)
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, nil, sanpohttp.WithMaxBodyBytes(64))
		body := `{"html": "` + strings.Repeat("a", 200) + `"}`

		rec := post(t, h, "/extract", body)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("rejects other methods", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/extract", nil)
		rec := httptest.NewRecorder()
		newTestServer(t, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("maps extractor errors to status codes", func(t *testing.T) {
		t.Parallel()

		reports := &mock.ReportExtractor{
			ExtractFn: func(html string) (*sanpo.Report, error) {
				return nil, errors.New("boom")
			},
		}
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		h := sanpohttp.NewServer(reports, &mock.LinkService{}, sanpohttp.WithLogger(logger)).Handler()

		rec := post(t, h, "/extract", `{"html": "<p>x</p>"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal error"}`, rec.Body.String())
		assert.Contains(t, logs.String(), "err=boom")
	})
}

func TestServer_Links(t *testing.T) {
	t.Parallel()

	t.Run("extracts links from html", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/links", `{"html": "<a href=\"../other\">Other</a>", "baseUrl": "https://example.com/dir/page"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"ok": true,
			"meta": {"baseUrl": "https://example.com/dir/page", "linkCount": 1},
			"links": [{"href": "https://example.com/other", "text": "Other"}]
		}`, rec.Body.String())
	})

	t.Run("url mode is disabled by default", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/links", `{"url": "https://example.com"}`)

		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("fetches url when enabled", func(t *testing.T) {
		t.Parallel()

		links := &mock.LinkService{
			ExtractFromURLFn: func(ctx context.Context, u string) (*sanpo.LinkResult, error) {
				return sanpo.NewLinkResult(u, []sanpo.Link{{Href: u + "/a", Text: "A"}}), nil
			},
		}

		rec := post(t, newTestServer(t, links, sanpohttp.WithRemoteFetch(true)), "/links", `{"url": "https://example.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"linkCount":1`)
	})

	t.Run("maps fetch errors to bad gateway", func(t *testing.T) {
		t.Parallel()

		links := &mock.LinkService{
			ExtractFromURLFn: func(ctx context.Context, u string) (*sanpo.LinkResult, error) {
				return nil, &sanpo.FetchError{URL: u, StatusCode: 404, StatusText: "Not Found"}
			},
		}

		rec := post(t, newTestServer(t, links, sanpohttp.WithRemoteFetch(true)), "/links", `{"url": "https://example.com"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"failed to fetch: 404 Not Found"}`, rec.Body.String())
	})

	t.Run("maps transport errors to bad gateway", func(t *testing.T) {
		t.Parallel()

		links := &mock.LinkService{
			ExtractFromURLFn: func(ctx context.Context, u string) (*sanpo.LinkResult, error) {
				return nil, &url.Error{Op: "Get", URL: u, Err: errors.New("dial tcp: no such host")}
			},
		}

		rec := post(t, newTestServer(t, links, sanpohttp.WithRemoteFetch(true)), "/links", `{"url": "https://example.invalid"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("rejects url that is not absolute http", func(t *testing.T) {
		t.Parallel()

		links := &mock.LinkService{
			ExtractFromURLFn: func(ctx context.Context, u string) (*sanpo.LinkResult, error) {
				t.Errorf("unexpected fetch of %q", u)
				return nil, nil
			},
		}
		h := newTestServer(t, links, sanpohttp.WithRemoteFetch(true))

		for _, raw := range []string{"not a url", "/relative/path", "ftp://example.com/file", "mailto:x@example.com"} {
			body, err := json.Marshal(map[string]string{"url": raw})
			require.NoError(t, err)

			rec := post(t, h, "/links", string(body))

			assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
			assert.JSONEq(t, `{"error":"url must be an absolute http or https URL"}`, rec.Body.String(), raw)
		}
	})

	t.Run("requires html or url", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/links", `{"baseUrl": "https://example.com"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("assigns request id", func(t *testing.T) {
		t.Parallel()

		rec := post(t, newTestServer(t, nil), "/extract", `{"html": ""}`)

		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("propagates caller request id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		rec := httptest.NewRecorder()
		newTestServer(t, nil).ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("answers post with full body despite matching etag", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, nil)
		first := post(t, h, "/extract", `{"html": "<p>x</p>"}`)
		etag := first.Header().Get("ETag")
		require.NotEmpty(t, etag)

		req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{"html": "<p>x</p>"}`))
		req.Header.Set("If-None-Match", etag)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, etag, rec.Header().Get("ETag"))
		assert.Equal(t, first.Body.String(), rec.Body.String())
	})

	t.Run("returns not modified for matching etag on get", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, nil)
		first := httptest.NewRecorder()
		h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		etag := first.Header().Get("ETag")
		require.NotEmpty(t, etag)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("If-None-Match", etag)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("rate limits requests", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, nil, sanpohttp.WithRateLimit(0.001, 1))

		assert.Equal(t, http.StatusOK, post(t, h, "/extract", `{"html": ""}`).Code)
		rec := post(t, h, "/extract", `{"html": ""}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("logs each request", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		h := newTestServer(t, nil, sanpohttp.WithLogger(logger))

		post(t, h, "/extract", `{"html": ""}`)

		output := logs.String()
		assert.Contains(t, output, "http request")
		assert.Contains(t, output, "path=/extract")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "request_id=")
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, sanpohttp.ErrorStatusCode(sanpo.EINVALID))
	assert.Equal(t, http.StatusNotFound, sanpohttp.ErrorStatusCode(sanpo.ENOTFOUND))
	assert.Equal(t, http.StatusInternalServerError, sanpohttp.ErrorStatusCode("unknown"))
}
