// Package web serves a local upload page backed by the detection controller.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/logger"
)

//go:embed templates/index.html
var templates embed.FS

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

// shutdownTimeout bounds graceful shutdown in Run
const shutdownTimeout = 5 * time.Second

// Config configures the server
type Config struct {
	Addr        string
	MetricsPath string
	MaxFileSize int64

	Detector  detect.Detector
	Recorders []detect.Recorder

	// Gatherer backs the metrics route; nil disables it
	Gatherer prometheus.Gatherer

	Logger *logger.Logger
}

// Server is the upload page server
type Server struct {
	cfg    Config
	page   *template.Template
	log    *logger.Logger
	router chi.Router
}

// New builds a server and its routes
func New(cfg Config) (*Server, error) {
	if cfg.Detector == nil {
		return nil, errors.New("web: detector is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewWithCallback("web", func() bool { return false })
	}

	page, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{cfg: cfg, page: page, log: cfg.Logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Post("/api/detect", s.handleAPIDetect)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.cfg.Gatherer != nil {
		r.Handle(s.cfg.MetricsPath, promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoWithFields("server starting", []logger.Field{logger.F("addr", s.cfg.Addr)})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

type pageData struct {
	State       detect.State
	MaxFileSize string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, detect.State{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	state, status := s.submit(w, r)
	s.renderPage(w, status, state)
}

func (s *Server) handleAPIDetect(w http.ResponseWriter, r *http.Request) {
	state, status := s.submit(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(state)
}

// submit runs one controller cycle for the request's file field and
// returns the final state with the matching HTTP status
func (s *Server) submit(w http.ResponseWriter, r *http.Request) (detect.State, int) {
	if s.cfg.MaxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+formOverhead)
	}

	upload, cleanup, err := uploadFromRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return alertState("El archivo supera el tamano maximo (%s)", humanBytes(s.cfg.MaxFileSize)), http.StatusRequestEntityTooLarge
		}
		return alertState("Formulario no valido: %v", err), http.StatusBadRequest
	}
	defer cleanup()

	capture := &capturePresenter{}
	ctrl := detect.NewController(s.cfg.Detector, capture, s.cfg.Recorders...)
	if err := ctrl.Submit(r.Context(), upload); err != nil {
		fields := []logger.Field{logger.Error(err)}
		if upload != nil {
			fields = append(fields, logger.File(upload.Name))
		}
		s.log.WarnWithFields("submission failed", fields)
		return capture.Final(), statusFor(err)
	}
	return capture.Final(), http.StatusOK
}

// uploadFromRequest reads the file field. A missing file yields a nil
// upload so the controller reports the validation message.
func uploadFromRequest(r *http.Request) (*detect.Upload, func(), error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, err
	}
	file, header, err := r.FormFile(detect.FormField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return &detect.Upload{Name: header.Filename, Content: file}, cleanup, nil
}

func (s *Server) renderPage(w http.ResponseWriter, status int, state detect.State) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := pageData{State: state, MaxFileSize: humanBytes(s.cfg.MaxFileSize)}
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("failed to render page: %v", err)
	}
}

// requestLogger logs one line per request through the component logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.InfoWithFields("%s %s", []logger.Field{
			logger.Status(ww.Status()),
			logger.Duration(time.Since(start)),
			logger.F("request_id", middleware.GetReqID(r.Context())),
		}, r.Method, r.URL.Path)
	})
}

// capturePresenter keeps the last state presented by the controller
type capturePresenter struct {
	mu     sync.Mutex
	states []detect.State
}

func (p *capturePresenter) Present(state detect.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

// Final returns the last presented state
func (p *capturePresenter) Final() detect.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.states) == 0 {
		return detect.State{}
	}
	return p.states[len(p.states)-1]
}

func alertState(format string, args ...interface{}) detect.State {
	return detect.State{ErrorVisible: true, ErrorText: fmt.Sprintf(format, args...)}
}

// statusFor maps a submission error to the page's HTTP status
func statusFor(err error) int {
	derr := detect.AsError(err)
	switch derr.Type {
	case detect.ErrTypeValidation:
		return http.StatusBadRequest
	case detect.ErrTypeTransport, detect.ErrTypeServer, detect.ErrTypeMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n <= 0 {
		return "sin limite"
	}
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
