package ics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/schedule"
)

// SinkName labels events handed to the file sink in metrics.
const SinkName = "ics"

// FileSink writes a calendar file.
type FileSink struct {
	Path     string
	Renderer Renderer
	Metrics  *instrumentation.Metrics
	Logger   *slog.Logger
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string, metrics *instrumentation.Metrics, logger *slog.Logger) *FileSink {
	return &FileSink{
		Path:    path,
		Metrics: metrics,
		Logger:  logging.OrDefault(logger),
	}
}

// Write renders events and replaces the file at Path. The file is written to a
// temporary name in the same directory first so readers never see a partial
// calendar.
func (s *FileSink) Write(ctx context.Context, events []schedule.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.Renderer.Render(events)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}

	for kind, n := range schedule.Counts(events) {
		s.Metrics.RecordEventsEmitted(ctx, string(kind), SinkName, n)
	}
	logging.OrDefault(s.Logger).Info("calendar written",
		logging.File(s.Path),
		slog.Int(logging.KeyEvents, len(events)),
	)
	return nil
}

// OutputPath returns the default calendar path for a document: the same
// directory and stem with an .ics extension.
func OutputPath(document string) string {
	ext := filepath.Ext(document)
	return strings.TrimSuffix(document, ext) + ".ics"
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".travelcal-*.ics.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

