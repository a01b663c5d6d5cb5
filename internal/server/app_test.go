package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/pdftext/pdftexttest"
	"github.com/teemow/travelcal/internal/pipeline"
	"github.com/teemow/travelcal/internal/schedule"
)

// fakeConverter runs the real text pipeline on a fixed text instead of
// extracting the uploaded bytes.
type fakeConverter struct {
	text  string
	err   error
	paths []string
}

func (c *fakeConverter) ConvertPDF(ctx context.Context, source, path string) (*pipeline.Result, error) {
	c.paths = append(c.paths, path)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	clock := func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return pipeline.NewConverter(schedule.Synthesizer{}, pipeline.WithClock(clock)).ConvertText(ctx, source, c.text)
}

type fakePusher struct {
	result *batch.BatchResult
	err    error
	got    []schedule.Event
}

func (p *fakePusher) Push(_ context.Context, events []schedule.Event) (*batch.BatchResult, error) {
	p.got = events
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	results := make([]batch.Result, 0, len(events))
	for _, e := range events {
		results = append(results, batch.NewSuccessResult(e.UID(), "created"))
	}
	return batch.Summarize(results), nil
}

type fakeConnector struct {
	pusher     *fakePusher
	connectErr error
	account    string
	code       string
}

func (c *fakeConnector) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (c *fakeConnector) Connect(_ context.Context, account, code string) (EventPusher, error) {
	c.account = account
	c.code = code
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.pusher, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/cwt_itinerary.txt")
	require.NoError(t, err)
	return string(data)
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Converter == nil {
		cfg.Converter = &fakeConverter{text: loadFixture(t)}
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = t.TempDir()
	}
	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func uploadRequest(t *testing.T, filename string, content []byte, action string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if action != "" {
		require.NoError(t, mw.WriteField("action", action))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	return rec
}

var downloadLinkPattern = regexp.MustCompile(`/download/([0-9a-f-]{36})`)

func TestNew_RequiresConverter(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	t.Run("without google", func(t *testing.T) {
		app := newTestApp(t, Config{})
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), `action="/upload"`)
		assert.Contains(t, rec.Body.String(), "up to 16 MB")
		assert.NotContains(t, rec.Body.String(), "Add to Google Calendar")
	})

	t.Run("with google", func(t *testing.T) {
		app := newTestApp(t, Config{Connector: &fakeConnector{}})
		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Contains(t, rec.Body.String(), "Add to Google Calendar")
	})
}

func TestAbout(t *testing.T) {
	app := newTestApp(t, Config{})
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "48 hours")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, Config{})
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"travel-to-ics"}`, rec.Body.String())
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    []byte
		action     string
		wantStatus int
		wantText   string
	}{
		{name: "no file", wantStatus: http.StatusBadRequest, wantText: "No file selected"},
		{name: "wrong type", filename: "notes.txt", content: []byte("hello"), wantStatus: http.StatusBadRequest, wantText: "Invalid file type. Please upload a PDF file."},
		{name: "no extension", filename: "itinerary", content: []byte("hello"), wantStatus: http.StatusBadRequest, wantText: "Invalid file type."},
		{name: "unknown action", filename: "trip.pdf", content: []byte("%PDF"), action: "print", wantStatus: http.StatusBadRequest, wantText: "Unknown action."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &fakeConverter{text: loadFixture(t)}
			app := newTestApp(t, Config{Converter: conv})

			rec := serve(app, uploadRequest(t, tt.filename, tt.content, tt.action))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Contains(t, rec.Body.String(), "flash-error")
			assert.Empty(t, conv.paths, "rejected uploads are never converted")
		})
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	app := newTestApp(t, Config{})
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("file=trip.pdf"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(app, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file selected")
}

func TestUpload_TooLarge(t *testing.T) {
	app := newTestApp(t, Config{MaxUploadBytes: 1 << 20})

	rec := serve(app, uploadRequest(t, "big.pdf", bytes.Repeat([]byte("x"), 2<<20), ""))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maximum size is 1 MB")
}

func TestUpload_NothingFound(t *testing.T) {
	app := newTestApp(t, Config{Converter: &fakeConverter{text: "Viaje, 2026\nsin reservas"}})

	rec := serve(app, uploadRequest(t, "empty.pdf", []byte("%PDF-1.4"), ""))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No flights or hotels found in the PDF. Please check if the PDF format is compatible.")
	assert.Contains(t, rec.Body.String(), "flash-warning")
}

func TestUpload_ConversionError(t *testing.T) {
	app := newTestApp(t, Config{Converter: &fakeConverter{err: errors.New("document has no text")}})

	rec := serve(app, uploadRequest(t, "scan.pdf", []byte("%PDF-1.4"), ""))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error processing file: document has no text")
}

func TestUpload_Download(t *testing.T) {
	scratch := t.TempDir()
	conv := &fakeConverter{text: loadFixture(t)}
	app := newTestApp(t, Config{Converter: conv, ScratchDir: scratch})

	rec := serve(app, uploadRequest(t, "My Trip.PDF", []byte("%PDF-1.4"), ActionDownload))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Successfully converted! Found 2 flights and 1 hotels.")
	assert.Contains(t, body, "Flight LA2696")

	require.Len(t, conv.paths, 1)
	assert.True(t, strings.HasPrefix(conv.paths[0], scratch))
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch file is removed after conversion")

	m := downloadLinkPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "page links the download")

	dl := serve(app, httptest.NewRequest(http.MethodGet, "/download/"+m[1], nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", dl.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=My_Trip.ics", dl.Header().Get("Content-Disposition"))

	cal, err := ical.ParseCalendar(dl.Body)
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 5)

	again := serve(app, httptest.NewRequest(http.MethodGet, "/download/"+m[1], nil))
	assert.Equal(t, http.StatusOK, again.Code, "downloads can be fetched until they expire")
}

func TestUpload_ConvertsRealPDF(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	conv := pipeline.NewConverter(schedule.Synthesizer{}, pipeline.WithClock(clock))
	app := newTestApp(t, Config{Converter: conv})

	lines := strings.Split(strings.TrimRight(loadFixture(t), "\n"), "\n")
	rec := serve(app, uploadRequest(t, "trip.pdf", pdftexttest.Build(lines...), ActionDownload))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully converted! Found 2 flights and 1 hotels.")
}

func TestUpload_ConcurrentUploadsUseDistinctScratchFiles(t *testing.T) {
	conv := &fakeConverter{text: loadFixture(t)}
	app := newTestApp(t, Config{Converter: conv})

	serve(app, uploadRequest(t, "trip.pdf", []byte("%PDF-1.4"), ""))
	serve(app, uploadRequest(t, "trip.pdf", []byte("%PDF-1.4"), ""))

	require.Len(t, conv.paths, 2)
	assert.NotEqual(t, conv.paths[0], conv.paths[1])
}

func TestDownload_Unknown(t *testing.T) {
	app := newTestApp(t, Config{})
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/download/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_GoogleWithoutConnector(t *testing.T) {
	app := newTestApp(t, Config{})

	rec := serve(app, uploadRequest(t, "trip.pdf", []byte("%PDF-1.4"), ActionGoogle))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google Calendar is not configured")
	assert.NotRegexp(t, downloadLinkPattern, rec.Body.String(), "never falls back to a download")
}

// startGooglePush uploads the fixture with the google action and returns the
// state carried by the consent redirect.
func startGooglePush(t *testing.T, app *App) string {
	t.Helper()
	rec := serve(app, uploadRequest(t, "trip.pdf", []byte("%PDF-1.4"), ActionGoogle))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func callback(app *App, query url.Values) *httptest.ResponseRecorder {
	return serve(app, httptest.NewRequest(http.MethodGet, "/oauth2callback?"+query.Encode(), nil))
}

func TestGoogleFlow(t *testing.T) {
	pusher := &fakePusher{}
	conn := &fakeConnector{pusher: pusher}
	app := newTestApp(t, Config{Connector: conn, Account: "web"})

	state := startGooglePush(t, app)
	assert.Equal(t, 1, app.pending.Len())

	rec := callback(app, url.Values{"state": {state}, "code": {"auth-code"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Added 5 of 5 events from trip.ics to Google Calendar.")
	assert.Equal(t, "web", conn.account)
	assert.Equal(t, "auth-code", conn.code)
	require.Len(t, pusher.got, 5)
	assert.Equal(t, schedule.KindCommuteBefore, pusher.got[0].Kind())
	assert.Equal(t, 0, app.pending.Len())

	replay := callback(app, url.Values{"state": {state}, "code": {"auth-code"}})
	assert.Equal(t, http.StatusBadRequest, replay.Code, "a state can be redeemed once")
}

func TestOAuthCallback_Failures(t *testing.T) {
	t.Run("unknown state", func(t *testing.T) {
		app := newTestApp(t, Config{Connector: &fakeConnector{pusher: &fakePusher{}}})
		rec := callback(app, url.Values{"state": {"forged"}, "code": {"x"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unknown or expired authorization request")
	})

	t.Run("missing state", func(t *testing.T) {
		app := newTestApp(t, Config{Connector: &fakeConnector{pusher: &fakePusher{}}})
		rec := callback(app, url.Values{"code": {"x"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("consent denied", func(t *testing.T) {
		conn := &fakeConnector{pusher: &fakePusher{}}
		app := newTestApp(t, Config{Connector: conn})
		state := startGooglePush(t, app)

		rec := callback(app, url.Values{"state": {state}, "error": {"access_denied"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "access_denied")
		assert.Empty(t, conn.code)
		assert.Equal(t, 0, app.pending.Len())
	})

	t.Run("missing code", func(t *testing.T) {
		app := newTestApp(t, Config{Connector: &fakeConnector{pusher: &fakePusher{}}})
		state := startGooglePush(t, app)

		rec := callback(app, url.Values{"state": {state}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange fails", func(t *testing.T) {
		conn := &fakeConnector{connectErr: errors.New("invalid_grant")}
		app := newTestApp(t, Config{Connector: conn})
		state := startGooglePush(t, app)

		rec := callback(app, url.Values{"state": {state}, "code": {"x"}})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "invalid_grant")
	})

	t.Run("push aborted", func(t *testing.T) {
		conn := &fakeConnector{pusher: &fakePusher{err: context.Canceled}}
		app := newTestApp(t, Config{Connector: conn})
		state := startGooglePush(t, app)

		rec := callback(app, url.Values{"state": {state}, "code": {"x"}})
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestOAuthCallback_PartialFailure(t *testing.T) {
	br := batch.Summarize([]batch.Result{
		batch.NewSuccessResult("a", "created"),
		{ID: "b", Title: "Flight LA2470: LIM → MEX", Status: batch.StatusError, Class: "retryable", Error: "rate limit exceeded"},
	})
	app := newTestApp(t, Config{Connector: &fakeConnector{pusher: &fakePusher{result: br}}})
	state := startGooglePush(t, app)

	rec := callback(app, url.Values{"state": {state}, "code": {"x"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "flash-warning")
	assert.Contains(t, body, "1 of 2 events created, 1 failed")
	assert.Contains(t, body, "rate limit exceeded")
	assert.Contains(t, body, "retryable")
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"itinerary.pdf", "itinerary.pdf"},
		{"My Trip.PDF", "My_Trip.PDF"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`C:\Users\juan\viaje.pdf`, "viaje.pdf"},
		{"itinerario_señor.pdf", "itinerario_seor.pdf"},
		{"..pdf", "pdf"},
		{"ñ", "itinerary.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, secureFilename(tt.in))
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	app := newTestApp(t, Config{})
	ln, err := ListenWithFallback("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
