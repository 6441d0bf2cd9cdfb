package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	archiveinadapter "chamberlog/internal/modules/archive/adapter/in"
	archiveoutadapter "chamberlog/internal/modules/archive/adapter/out"
	archiveservice "chamberlog/internal/modules/archive/service"
	archiveusecase "chamberlog/internal/modules/archive/usecase"
	timelineinadapter "chamberlog/internal/modules/timeline/adapter/in"
	timelineoutadapter "chamberlog/internal/modules/timeline/adapter/out"
	"chamberlog/internal/modules/timeline/domain"
	timelinedto "chamberlog/internal/modules/timeline/dto"
	timelineservice "chamberlog/internal/modules/timeline/service"
	timelineusecase "chamberlog/internal/modules/timeline/usecase"
	"chamberlog/internal/platform/clock"
	"chamberlog/internal/platform/config"
	"chamberlog/internal/platform/logging"
	uiapp "chamberlog/internal/ui/app"
)

type App struct {
	TimelineCLI timelineinadapter.CLIHandler
	TimelineTUI timelineinadapter.TUIHandler
	ArchiveCLI  archiveinadapter.CLIHandler
	Logger      *slog.Logger

	engine  *timelineservice.Engine
	closers []io.Closer
}

// New wires every module against cfg. Log output goes to logOut.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	profile, err := BuildProfile(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("build profile: %w", err)
	}
	clk := clock.SystemClock{}

	index, err := archiveoutadapter.NewSQLiteSnapshotIndex(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new snapshot index: %w", err)
	}
	archiveUC := archiveusecase.NewInteractor(archiveservice.NewArchiveService(
		clk,
		archiveoutadapter.NewFileDocumentStore(cfg.ArchiveDir),
		index,
		logger.With("module", "archive"),
	))

	engine := timelineservice.NewEngine(profile, clk, logger.With("module", "timeline"), cfg.TickInterval)
	timelineUC := timelineusecase.NewInteractor(
		engine,
		archiveUC,
		timelineoutadapter.NewFileCurrentSessionStore(cfg.CurrentPath),
		timelineoutadapter.NewMarkdownReportExporter(cfg.ReportDir),
		clk,
		logger.With("module", "timeline"),
	)

	app := &App{
		TimelineCLI: timelineinadapter.NewCLIHandler(timelineUC),
		TimelineTUI: timelineinadapter.NewTUIHandler(timelineUC),
		ArchiveCLI:  archiveinadapter.NewCLIHandler(archiveUC),
		Logger:      logger,
		engine:      engine,
	}
	if closer, ok := index.(io.Closer); ok {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// Close stops the live ticker and releases the index.
func (a *App) Close() error {
	a.engine.Stop()
	var errs []error
	for _, closer := range a.closers {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.TimelineTUI, app.TimelineTUI, app.ArchiveCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	stop := app.TimelineTUI.StartLive(func(board timelinedto.BoardOutput) {
		program.Send(uiapp.BoardMsg{Board: board})
	})
	defer stop()
	_, err := program.Run()
	return err
}

// BuildProfile turns the optional config override into a validated profile.
// A nil override yields the built-in chamber profile.
func BuildProfile(pc *config.ProfileConfig) (domain.Profile, error) {
	if pc == nil {
		return domain.DefaultProfile(), nil
	}
	events := make([]domain.EventDef, 0, len(pc.Events))
	for _, ev := range pc.Events {
		events = append(events, domain.EventDef{Key: domain.EventKey(ev.Key), Label: ev.Label})
	}
	rules := make([]domain.DurationRule, 0, len(pc.Rules))
	for _, r := range pc.Rules {
		rules = append(rules, domain.DurationRule{ID: r.ID, Label: r.Label, Start: domain.EventKey(r.Start), End: domain.EventKey(r.End)})
	}
	roster := make([]domain.ParticipantID, 0, len(pc.Roster))
	for _, id := range pc.Roster {
		roster = append(roster, domain.ParticipantID(id))
	}
	return domain.NewProfile(events, rules, roster, domain.EventKey(pc.Reference))
}

// ProfileConfig renders a profile in its config file shape.
func ProfileConfig(p domain.Profile) *config.ProfileConfig {
	pc := &config.ProfileConfig{Reference: string(p.Reference)}
	for _, ev := range p.Events {
		pc.Events = append(pc.Events, config.EventConfig{Key: string(ev.Key), Label: ev.Label})
	}
	for _, r := range p.Rules {
		pc.Rules = append(pc.Rules, config.RuleConfig{ID: r.ID, Label: r.Label, Start: string(r.Start), End: string(r.End)})
	}
	for _, id := range p.Roster {
		pc.Roster = append(pc.Roster, string(id))
	}
	return pc
}
