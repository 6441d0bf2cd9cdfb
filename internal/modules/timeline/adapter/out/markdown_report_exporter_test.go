package out_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timelineout "chamberlog/internal/modules/timeline/adapter/out"
	"chamberlog/internal/modules/timeline/domain"
	"chamberlog/internal/platform/markdown"
)

func sampleReport() domain.Report {
	profile := domain.DefaultProfile()
	events := map[string]string{}
	for _, ev := range profile.Events {
		events[string(ev.Key)] = domain.ZeroDuration
	}
	events[string(domain.EventHypoxiaStart)] = "10:00:00"
	events[string(domain.EventHypoxiaEnd)] = "10:04:30"
	totals := map[string]string{}
	for _, rule := range profile.Rules {
		totals[rule.ID] = domain.ZeroDuration
	}
	totals[domain.RuleHypoxia] = "00:04:30"
	participants := map[string]string{}
	for _, id := range profile.Roster {
		participants[string(id)] = domain.ZeroDuration
	}
	participants["1"] = "00:04:30"
	return domain.Report{
		SessionID:       "12-26",
		GeneratedAt:     time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		EventTimes:      events,
		Totals:          totals,
		Participants:    participants,
		EventOrder:      profile.Events,
		TotalOrder:      profile.Rules,
		ParticipantList: profile.Roster,
	}
}

func TestMarkdownReportExporterWritesFrontmatterAndTables(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	exporter := timelineout.NewMarkdownReportExporter(dir)

	path, err := exporter.Export(context.Background(), sampleReport())
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	meta, body, err := markdown.SplitFrontmatter(string(content))
	require.NoError(t, err)
	assert.Equal(t, "12-26", meta["session_id"])
	totals, ok := meta["totals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "00:04:30", totals[domain.RuleHypoxia])
	assert.Equal(t, "00:00:00", totals[domain.RuleDescent])

	assert.Contains(t, body, "| Hypoxia start | 10:00:00 |")
	assert.Contains(t, body, "| Hypoxia exposure | 00:04:30 |")
	assert.Contains(t, body, "| 1 | 00:04:30 |")
	assert.Contains(t, body, "| 8 | 00:00:00 |")
	assert.Less(t, strings.Index(body, "| Students in |"), strings.Index(body, "| Profile complete |"))
}

func TestMarkdownReportExporterKeepsOperatorNotes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	exporter := timelineout.NewMarkdownReportExporter(dir)
	report := sampleReport()

	path, err := exporter.Export(context.Background(), report)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(content), "## Observations\n", "## Observations\nSeat 3 cleared ears late.\n", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	report.Participants["3"] = "00:06:10"
	_, err = exporter.Export(context.Background(), report)
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Seat 3 cleared ears late.")
	assert.Contains(t, string(content), "| 3 | 00:06:10 |")
	assert.Equal(t, 1, strings.Count(string(content), "<!-- chamberlog:report:start -->"))
}
