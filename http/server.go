package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sanpo"
	"github.com/google/uuid"
	whatwg "github.com/nlnwa/whatwg-url/url"
	"golang.org/x/time/rate"
)

// DefaultMaxBodyBytes is the default limit on request body size.
const DefaultMaxBodyBytes = 5 << 20

// Server exposes the sanpo extractors over HTTP.
//
// Routes:
//
//	POST /extract  {"html": "..."}                     -> transparency report
//	POST /links    {"html": "...", "baseUrl": "..."}   -> link result
//	POST /links    {"url": "..."}                      -> link result (when remote fetch is enabled)
//	GET  /healthz                                      -> {"ok": true}
type Server struct {
	server *http.Server
	router *http.ServeMux

	reports sanpo.ReportExtractor
	links   sanpo.LinkService

	logger       *slog.Logger
	maxBodyBytes int64
	limiter      *rate.Limiter
	remoteFetch  bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request and error logging.
// Defaults to a logger that discards output.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMaxBodyBytes limits the size of request bodies.
// Defaults to DefaultMaxBodyBytes (5 MiB).
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithRateLimit enables a server-wide token bucket allowing r requests per
// second with the given burst. A zero rate disables limiting.
func WithRateLimit(r float64, burst int) ServerOption {
	return func(s *Server) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithRemoteFetch allows POST /links to fetch a caller-supplied URL.
// Disabled by default.
func WithRemoteFetch(enabled bool) ServerOption {
	return func(s *Server) {
		s.remoteFetch = enabled
	}
}

// NewServer creates a new Server.
func NewServer(reports sanpo.ReportExtractor, links sanpo.LinkService, opts ...ServerOption) *Server {
	s := &Server{
		router:       http.NewServeMux(),
		reports:      reports,
		links:        links,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.HandleFunc("POST /extract", s.handleExtract)
	s.router.HandleFunc("POST /links", s.handleLinks)
	s.router.HandleFunc("GET /healthz", s.handleHealth)

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.logRequests(s.rateLimit(s.router)))
}

// Serve accepts connections on ln until Shutdown is called.
// It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type extractRequest struct {
	HTML *string `json:"html"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := s.decode(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if req.HTML == nil {
		s.Error(w, r, sanpo.Errorf(sanpo.EINVALID, "html field required"))
		return
	}

	report, err := s.reports.Extract(*req.HTML)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, report)
}

type linksRequest struct {
	HTML    *string `json:"html"`
	BaseURL string  `json:"baseUrl"`
	URL     string  `json:"url"`
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	var req linksRequest
	if err := s.decode(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}

	var result *sanpo.LinkResult
	var err error
	switch {
	case req.HTML != nil:
		result, err = s.links.ExtractFromHTML(*req.HTML, req.BaseURL)
	case req.URL != "":
		if !s.remoteFetch {
			s.Error(w, r, sanpo.Errorf(sanpo.ENOTIMPLEMENTED, "url fetching is disabled"))
			return
		}
		if !fetchable(req.URL) {
			s.Error(w, r, sanpo.Errorf(sanpo.EINVALID, "url must be an absolute http or https URL"))
			return
		}
		result, err = s.links.ExtractFromURL(r.Context(), req.URL)
	default:
		err = sanpo.Errorf(sanpo.EINVALID, "html or url field required")
	}
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

// fetchable reports whether raw is an absolute http(s) URL with a host.
func fetchable(raw string) bool {
	u, err := whatwg.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme() {
	case "http", "https":
		return u.Hostname() != ""
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}

// decode reads a JSON request body into v, enforcing the body size limit.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return err
		case errors.Is(err, io.EOF):
			return sanpo.Errorf(sanpo.EINVALID, "request body required")
		case errors.As(err, &typeErr):
			return sanpo.Errorf(sanpo.EINVALID, "%s field must be a %s", typeErr.Field, typeErr.Type)
		default:
			return sanpo.Errorf(sanpo.EINVALID, "invalid JSON body: %v", err)
		}
	}
	return nil
}

// Error writes err as a JSON error response with an appropriate status code.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := s.errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"err", err,
		)
	}
	s.writeJSON(w, r, status, map[string]string{"error": message})
}

func (s *Server) errorStatus(err error) (int, string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, "request body too large"
	}

	var fetchErr *sanpo.FetchError
	if errors.As(err, &fetchErr) {
		return http.StatusBadGateway, fetchErr.Error()
	}

	// Transport failures from the HTTP client surface as *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return http.StatusBadGateway, fmt.Sprintf("failed to fetch: %v", urlErr.Err)
	}

	code := sanpo.ErrorCode(err)
	return ErrorStatusCode(code), sanpo.ErrorMessage(err)
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	sanpo.ECONFLICT:       http.StatusConflict,
	sanpo.EINVALID:        http.StatusBadRequest,
	sanpo.ENOTFOUND:       http.StatusNotFound,
	sanpo.ENOTIMPLEMENTED: http.StatusNotImplemented,
	sanpo.EUNAVAILABLE:    http.StatusServiceUnavailable,
	sanpo.EINTERNAL:       http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// writeJSON writes v as the response body. Successful responses carry an
// ETag; GET and HEAD requests also honor If-None-Match.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Internal error"}`+"\n")
		return
	}
	body = append(body, '\n')

	if status == http.StatusOK {
		etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
		w.Header().Set("ETag", etag)
		if conditional(r) && r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// conditional reports whether r is safe to answer with 304 Not Modified.
func conditional(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

type contextKey int

const requestIDKey contextKey = iota

// RequestIDFromContext returns the request ID stored by the server, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID propagates the caller's X-Request-Id or assigns a new one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder captures the status code and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(begin),
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.writeJSON(w, r, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
