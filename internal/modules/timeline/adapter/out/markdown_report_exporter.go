package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chamberlog/internal/modules/timeline/domain"
	timelineout "chamberlog/internal/modules/timeline/port/out"
	"chamberlog/internal/platform/markdown"
)

const (
	reportSchemaVersion = 1
	managedReportStart  = "<!-- chamberlog:report:start -->"
	managedReportEnd    = "<!-- chamberlog:report:end -->"
	defaultReportNotes  = "## Observations\n\n## Incidents\n"
)

// MarkdownReportExporter writes one markdown report per session. Text outside
// the generated block survives a re-export.
type MarkdownReportExporter struct {
	dir string
}

func NewMarkdownReportExporter(dir string) timelineout.ReportExporter {
	return &MarkdownReportExporter{dir: dir}
}

func (e *MarkdownReportExporter) Export(_ context.Context, report domain.Report) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(e.dir, report.SessionID+".md")

	body := defaultReportNotes
	if existing, err := os.ReadFile(path); err == nil {
		if _, existingBody, splitErr := markdown.SplitFrontmatter(string(existing)); splitErr == nil && strings.TrimSpace(existingBody) != "" {
			body = existingBody
		}
	}
	body = markdown.ReplaceManagedBlock(body, managedReportStart, managedReportEnd, renderTables(report))

	rendered, err := markdown.RenderFrontmatter(reportFrontmatter(report), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func reportFrontmatter(report domain.Report) []markdown.Field {
	totals := make(map[string]string, len(report.Totals))
	for id, value := range report.Totals {
		totals[id] = value
	}
	return []markdown.Field{
		{Key: "schema_version", Value: reportSchemaVersion},
		{Key: "session_id", Value: report.SessionID},
		{Key: "generated_at", Value: report.GeneratedAt.Format(time.RFC3339)},
		{Key: "totals", Value: totals},
	}
}

func renderTables(report domain.Report) string {
	var sb strings.Builder
	sb.WriteString("## Timeline\n\n| Event | Time |\n|---|---|\n")
	for _, ev := range report.EventOrder {
		fmt.Fprintf(&sb, "| %s | %s |\n", ev.Label, report.EventTimes[string(ev.Key)])
	}
	sb.WriteString("\n## Durations\n\n| Interval | Duration |\n|---|---|\n")
	for _, rule := range report.TotalOrder {
		fmt.Fprintf(&sb, "| %s | %s |\n", rule.Label, report.Totals[rule.ID])
	}
	sb.WriteString("\n## Participants\n\n| Seat | Elapsed |\n|---|---|\n")
	for _, id := range report.ParticipantList {
		fmt.Fprintf(&sb, "| %s | %s |\n", id, report.Participants[string(id)])
	}
	return sb.String()
}
