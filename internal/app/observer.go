package app

import (
	"log/slog"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/workspace"
)

// onEvent logs workspace lifecycle events.
func (a *App) onEvent(ev workspace.Event) {
	attrs := []any{
		slog.String("event", ev.Kind.String()),
		slog.String("file", a.RelPath(ev.URI)),
		slog.Int("version", ev.Version),
	}
	if ev.Kind == workspace.Removing {
		a.log.Debug("File event", attrs...)
		return
	}
	attrs = append(attrs, slog.String("kind", ev.File.Kind().String()))
	errs, warns := CountProblems(ev.File)
	if errs > 0 || warns > 0 {
		attrs = append(attrs, slog.Int("errors", errs), slog.Int("warnings", warns))
		a.log.Info("File event", attrs...)
		return
	}
	a.log.Debug("File event", attrs...)
}

// CountProblems counts error and warning problems of f.
func CountProblems(f model.FileInfo) (errs, warns int) {
	for _, p := range f.Base().Problems() {
		switch p.Severity {
		case model.SeverityError:
			errs++
		case model.SeverityWarning:
			warns++
		}
	}
	return errs, warns
}
