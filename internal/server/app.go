package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/ics"
	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/pipeline"
	"github.com/teemow/travelcal/internal/report"
	"github.com/teemow/travelcal/internal/schedule"
)

// DefaultMaxUploadBytes bounds the size of an uploaded document.
const DefaultMaxUploadBytes = 16 << 20

// Upload actions selected by the submit button.
const (
	ActionDownload = "download"
	ActionGoogle   = "google"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = time.Minute
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second
)

// DocumentConverter converts an uploaded document into calendar events.
// *pipeline.Converter implements it.
type DocumentConverter interface {
	ConvertPDF(ctx context.Context, source, path string) (*pipeline.Result, error)
}

// Config configures the web application.
type Config struct {
	// Converter is required.
	Converter DocumentConverter
	Renderer  ics.Renderer
	// Connector enables the Google Calendar action. Nil hides it.
	Connector CalendarConnector
	// Account names the stored token used for web pushes.
	Account        string
	MaxUploadBytes int64
	SessionTTL     time.Duration
	// ScratchDir receives uploads while they are converted. Empty means os.TempDir().
	ScratchDir string
	Metrics    *instrumentation.Metrics
	Logger     *slog.Logger
}

type download struct {
	Name string
	Data []byte
}

type pendingPush struct {
	Document string
	Account  string
	Events   []schedule.Event
}

// App is the upload web application.
type App struct {
	converter      DocumentConverter
	renderer       ics.Renderer
	connector      CalendarConnector
	account        string
	maxUploadBytes int64
	scratchDir     string

	downloads *SessionStore[download]
	pending   *SessionStore[pendingPush]
	health    *HealthChecker
	templates *template.Template
	router    chi.Router

	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// New creates the web application. Call Close to stop its session stores.
func New(cfg Config) (*App, error) {
	if cfg.Converter == nil {
		return nil, errors.New("converter is required")
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if cfg.Account == "" {
		cfg.Account = google.DefaultAccount
	}
	logger := logging.WithService(logging.OrDefault(cfg.Logger), "web")

	a := &App{
		converter:      cfg.Converter,
		renderer:       cfg.Renderer,
		connector:      cfg.Connector,
		account:        cfg.Account,
		maxUploadBytes: cfg.MaxUploadBytes,
		scratchDir:     cfg.ScratchDir,
		downloads:      NewSessionStore[download]("downloads", cfg.SessionTTL, nil, logger),
		pending:        NewSessionStore[pendingPush]("pending_pushes", cfg.SessionTTL, cfg.Metrics, logger),
		templates:      tmpl,
		metrics:        cfg.Metrics,
		logger:         logger,
	}
	a.health = NewHealthChecker(a.pending.Len)
	a.router = a.routes()
	return a, nil
}

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(requestMetrics(a.metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/", a.handleIndex)
	r.Get("/about", a.handleAbout)
	r.Post("/upload", a.handleUpload)
	r.Get("/download/{id}", a.handleDownload)
	r.Get("/oauth2callback", a.handleOAuthCallback)
	a.health.RegisterHealthEndpoints(r)
	return r
}

// Handler returns the application router.
func (a *App) Handler() http.Handler {
	return a.router
}

// Health returns the health checker behind the probe endpoints.
func (a *App) Health() *HealthChecker {
	return a.health
}

// Close stops the session stores.
func (a *App) Close() {
	a.downloads.Stop()
	a.pending.Stop()
}

// Serve serves the application on ln until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info("web server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.health.SetShuttingDown()
	a.logger.Info("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

func (a *App) handleIndex(w http.ResponseWriter, _ *http.Request) {
	a.render(w, http.StatusOK, "index.html", pageData{Title: "Convert"})
}

func (a *App) handleAbout(w http.ResponseWriter, _ *http.Request) {
	a.render(w, http.StatusOK, "about.html", pageData{Title: "About"})
}

func (a *App) renderFlash(w http.ResponseWriter, status int, category, message string) {
	a.render(w, status, "index.html", pageData{
		Title:   "Convert",
		Flashes: []flash{{Category: category, Message: message}},
	})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.renderFlash(w, http.StatusRequestEntityTooLarge, flashError,
				fmt.Sprintf("File too large. Maximum size is %d MB.", a.maxUploadBytes>>20))
			return
		}
		a.renderFlash(w, http.StatusBadRequest, flashError, "No file selected")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		a.renderFlash(w, http.StatusBadRequest, flashError, "No file selected")
		return
	}
	defer file.Close()

	if !allowedFile(header.Filename) {
		a.renderFlash(w, http.StatusBadRequest, flashError, "Invalid file type. Please upload a PDF file.")
		return
	}

	action := r.FormValue("action")
	if action == "" {
		action = ActionDownload
	}
	if action != ActionDownload && action != ActionGoogle {
		a.renderFlash(w, http.StatusBadRequest, flashError, "Unknown action.")
		return
	}

	filename := secureFilename(header.Filename)
	logger := a.logger.With(logging.File(filename), slog.String("action", action))

	path, err := a.saveUpload(file)
	if err != nil {
		logger.Error("failed to store upload", logging.Err(err))
		a.renderFlash(w, http.StatusInternalServerError, flashError, "Error processing file: could not store the upload.")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove upload", logging.Err(err))
		}
	}()

	res, err := a.converter.ConvertPDF(r.Context(), pipeline.SourceWeb, path)
	switch {
	case errors.Is(err, pipeline.ErrNothingFound):
		a.renderFlash(w, http.StatusUnprocessableEntity, flashWarning,
			"No flights or hotels found in the PDF. Please check if the PDF format is compatible.")
		return
	case err != nil:
		a.renderFlash(w, http.StatusUnprocessableEntity, flashError, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	icsName := filepath.Base(ics.OutputPath(filename))
	if action == ActionGoogle {
		a.startPush(w, r, icsName, res)
		return
	}

	data, err := a.renderer.Render(res.Events)
	if err != nil {
		logger.Error("failed to render calendar", logging.Err(err))
		a.renderFlash(w, http.StatusInternalServerError, flashError, fmt.Sprintf("Error processing file: %v", err))
		return
	}
	for kind, n := range schedule.Counts(res.Events) {
		a.metrics.RecordEventsEmitted(r.Context(), string(kind), ics.SinkName, n)
	}

	id := uuid.NewString()
	a.downloads.Put(id, download{Name: icsName, Data: data})

	a.render(w, http.StatusOK, "index.html", pageData{
		Title: "Converted",
		Flashes: []flash{{
			Category: flashSuccess,
			Message:  "Successfully converted! " + report.Found(res.Flights(), res.Hotels()),
		}},
		Download: &downloadLink{URL: "/download/" + id, Name: icsName},
		Events:   eventRows(res.Events),
	})
}

func (a *App) startPush(w http.ResponseWriter, r *http.Request, document string, res *pipeline.Result) {
	if a.connector == nil {
		a.renderFlash(w, http.StatusServiceUnavailable, flashError, "Google Calendar is not configured on this server.")
		return
	}

	state, err := google.GenerateState()
	if err != nil {
		a.logger.Error("failed to generate OAuth state", logging.Err(err))
		a.renderFlash(w, http.StatusInternalServerError, flashError, "Error processing file: could not start the authorization.")
		return
	}
	a.pending.Put(state, pendingPush{Document: document, Account: a.account, Events: res.Events})
	a.logger.Info("waiting for Google authorization",
		logging.File(document), logging.Counts(res.Flights(), res.Hotels(), len(res.Events)))

	http.Redirect(w, r, a.connector.AuthCodeURL(state), http.StatusSeeOther)
}

func (a *App) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	push, ok := a.pending.Take(q.Get("state"))
	if !ok {
		a.renderFlash(w, http.StatusBadRequest, flashError,
			"Unknown or expired authorization request. Please upload the itinerary again.")
		return
	}
	if reason := q.Get("error"); reason != "" {
		a.renderFlash(w, http.StatusBadRequest, flashError, "Google authorization was not granted: "+reason)
		return
	}
	code := q.Get("code")
	if code == "" {
		a.renderFlash(w, http.StatusBadRequest, flashError, "Google did not return an authorization code.")
		return
	}

	logger := logging.WithAccount(a.logger, push.Account).With(logging.File(push.Document))

	pusher, err := a.connector.Connect(r.Context(), push.Account, code)
	if err != nil {
		logger.Error("failed to connect to Google Calendar", logging.Err(err))
		a.renderFlash(w, http.StatusBadGateway, flashError, "Could not connect to Google Calendar. Please try again.")
		return
	}

	br, err := pusher.Push(r.Context(), push.Events)
	if err != nil {
		logger.Error("calendar push aborted", logging.Err(err))
		a.renderFlash(w, http.StatusGatewayTimeout, flashError, "The calendar push was interrupted. Please try again.")
		return
	}

	category := flashSuccess
	if br.Failed > 0 {
		category = flashWarning
	}
	logger.Info("calendar push finished",
		slog.Int("created", br.Successful), slog.Int("failed", br.Failed))

	a.render(w, http.StatusOK, "result.html", pageData{
		Title: "Google Calendar",
		Flashes: []flash{{
			Category: category,
			Message:  fmt.Sprintf("Added %d of %d events from %s to Google Calendar.", br.Successful, br.Total, push.Document),
		}},
		Push: br,
	})
}

func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	d, ok := a.downloads.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}

func (a *App) saveUpload(src io.Reader) (string, error) {
	path := filepath.Join(a.scratchDir, "travelcal-"+uuid.NewString()+".pdf")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close scratch file: %w", err)
	}
	return path, nil
}

func allowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// secureFilename reduces an uploaded file name to a safe base name made of
// ASCII letters, digits, dots, dashes and underscores.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "itinerary.pdf"
	}
	return out
}
