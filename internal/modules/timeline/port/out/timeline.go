package out

import (
	"context"

	"chamberlog/internal/modules/timeline/domain"
)

type CurrentSessionStore interface {
	SaveCurrent(ctx context.Context, current domain.CurrentSession) error
	LoadCurrent(ctx context.Context) (domain.CurrentSession, error)
	ClearCurrent(ctx context.Context) error
}

// ReportExporter receives a fully defined report and writes it somewhere. It
// may run off the UI goroutine.
type ReportExporter interface {
	Export(ctx context.Context, report domain.Report) (string, error)
}
