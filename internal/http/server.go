package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/services"
	"cashflow/internal/sheets"
	appweb "cashflow/web"
)

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger *applog.Logger
	// Exporter enables POST /export/sheets when non-nil.
	Exporter sheets.ViewExporter
	// Ready reports backend readiness for /readyz; nil means always ready.
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
	// TrustedProxies are CIDRs added to the private ranges already trusted
	// for X-Forwarded-For.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	exporter  sheets.ViewExporter
	ready     func(ctx context.Context) error
	logger    *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time
	metrics  appMetrics

	shutdownOnce sync.Once
}

// NewServer builds the dashboard server. The rate limiter starts a cleanup
// goroutine; call Shutdown to release it.
func NewServer(addr string, svc *services.LedgerService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:   svc,
		exporter: opts.Exporter,
		ready:    opts.Ready,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.New("dashboard").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.Handle("/", s.page(s.handleIndex))
	mux.Handle("/transactions", s.page(s.handleAddTransaction))
	mux.Handle("/transactions/delete", s.page(s.handleDeleteTransaction))
	mux.Handle("/reset", s.page(s.handleReset))
	mux.Handle("/api/dashboard", s.page(s.handleDashboardAPI))
	mux.Handle("/api/categories", http.HandlerFunc(s.handleCategories))
	mux.Handle("/export.csv", s.page(s.handleExportCSV))
	mux.Handle("/export/sheets", s.page(s.handleExportSheets))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		Failure(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
			NotifyError("Too many changes, slow down").
			Write(w)
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s
}

// page wraps handlers that read or change the session ledger.
func (s *Server) page(h http.HandlerFunc) http.Handler {
	return withSession(security.NoStore(h))
}

// Shutdown stops background work and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// render executes a named template into a buffer first so a failing
// template never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		ServerError("Templates not loaded").Write(w)
		return
	}

	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	defer bufPool.Put(b)

	if err := s.templates.ExecuteTemplate(b, name, data); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Template render failed", err, applog.OpRender,
				nil)
		ServerError("Unable to render page").Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b.Bytes())
}

// logFailure records an unexpected error with the request logger.
func (s *Server) logFailure(r *http.Request, msg string, err error, op string) {
	ctx := r.Context()
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, msg, err, op, nil)
}
