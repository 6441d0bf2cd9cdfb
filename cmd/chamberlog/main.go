package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"chamberlog/internal/bootstrap"
	timelinedto "chamberlog/internal/modules/timeline/dto"
	"chamberlog/internal/platform/config"
	"chamberlog/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "chamberlog",
		Short:         "Hypobaric chamber training timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", ".", "data directory")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newEventCmd(&dataDir))
	root.AddCommand(newParticipantCmd(&dataDir))
	root.AddCommand(newTotalsCmd(&dataDir))
	root.AddCommand(newExportCmd(&dataDir))
	root.AddCommand(newConfigCmd(&dataDir))
	return root
}

// withApp runs fn against a wired app and releases it afterwards.
func withApp(dataDir string, logOut io.Writer, fn func(app *bootstrap.App) error) error {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg, logOut)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the live timeline terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dataDir)
			if err != nil {
				return err
			}
			logFile, err := logging.OpenFile(cfg.LogPath)
			if err != nil {
				return err
			}
			defer logFile.Close()
			return withApp(*dataDir, logFile, bootstrap.RunTUI)
		},
	}
}

func newSessionCmd(dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Working session and archive commands"}

	var number int
	newCmd := &cobra.Command{
		Use:   "new [id]",
		Short: "Start a working session, by explicit id or sequence number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.NewSession(context.Background(), explicit, number)
				if err != nil {
					return err
				}
				state := "opened archived"
				if out.Created {
					state = "started new"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s session %s\n", state, out.SessionID)
				return nil
			})
		},
	}
	newCmd.Flags().IntVar(&number, "number", 0, "sequence number, id becomes <number>-<yy>")

	openCmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Make an archived session current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.Open(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "current session %s\n", out.SessionID)
				for _, problem := range out.Problems {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", problem)
				}
				return nil
			})
		},
	}

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Print the current session id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				id, err := app.TimelineCLI.Current(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	var query string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived sessions, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				sessions, err := app.ArchiveCLI.List(context.Background(), query)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tsaved=%s\tevents=%d\tseats=%d\n",
						s.SessionID, s.SavedAt.Local().Format("2006-01-02 15:04:05"), s.EventCount, s.ParticipantCount)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&query, "query", "", "filter by id substring")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived session without opening it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				snap, err := app.ArchiveCLI.Show(context.Background(), args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "session %s saved=%s\n", snap.SessionID, snap.SavedAt.Local().Format("2006-01-02 15:04:05"))
				printMap(w, "event_times", snap.EventTimes)
				printMap(w, "participant_elapsed_end_times", snap.ParticipantEndTimes)
				printMap(w, "manual_participant_elapsed", snap.ManualElapsed)
				printMap(w, "computed_totals", snap.ComputedTotals)
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived session for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				if err := app.ArchiveCLI.Delete(context.Background(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}

	var idNumber int
	var idExplicit string
	idCmd := &cobra.Command{
		Use:   "id",
		Short: "Derive a session id without opening it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				id, err := app.ArchiveCLI.DeriveID(context.Background(), idExplicit, idNumber)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	idCmd.Flags().IntVar(&idNumber, "number", 0, "sequence number")
	idCmd.Flags().StringVar(&idExplicit, "explicit", "", "explicit id, wins over --number")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the archive listing from session documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				if err := app.ArchiveCLI.Reindex(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
				return nil
			})
		},
	}

	session.AddCommand(newCmd, openCmd, currentCmd, listCmd, showCmd, deleteCmd, idCmd, reindexCmd)
	return session
}

func newEventCmd(dataDir *string) *cobra.Command {
	event := &cobra.Command{Use: "event", Short: "Record or correct event times in the current session"}

	event.AddCommand(&cobra.Command{
		Use:   "record <key>",
		Short: "Record now for an event, unless it already has a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.RecordEvent(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", out.Row.Key, out.Row.Value)
				return nil
			})
		},
	})

	event.AddCommand(&cobra.Command{
		Use:   "set <key> [HH:MM:SS]",
		Short: "Set an event time by hand; no value clears it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.SetEvent(context.Background(), args[0], value)
				if err != nil {
					if out.Row.Key != "" {
						return fmt.Errorf("%w (kept %s)", err, out.Row.Value)
					}
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", out.Row.Key, out.Row.Value)
				return nil
			})
		},
	})

	event.AddCommand(&cobra.Command{
		Use:   "clear <key>",
		Short: "Clear an event time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.ClearEvent(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s cleared\n", out.Row.Key)
				return nil
			})
		},
	})
	return event
}

func newParticipantCmd(dataDir *string) *cobra.Command {
	participant := &cobra.Command{Use: "participant", Short: "Participant elapsed times in the current session"}

	participant.AddCommand(&cobra.Command{
		Use:   "calc <id>",
		Short: "Commit now as the participant's end time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.CalculateParticipant(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seat %s %s\n", out.Row.ID, out.Row.Value)
				return nil
			})
		},
	})

	participant.AddCommand(&cobra.Command{
		Use:   "set <id> [HH:MM:SS]",
		Short: "Set an elapsed value by hand; no value resets",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.SetParticipant(context.Background(), args[0], value)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seat %s %s\n", out.Row.ID, out.Row.Value)
				return nil
			})
		},
	})

	participant.AddCommand(&cobra.Command{
		Use:   "reset <id>",
		Short: "Drop the committed value and resume live ticking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.ResetParticipant(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seat %s reset\n", out.Row.ID)
				return nil
			})
		},
	})
	return participant
}

func newTotalsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Print events, durations and seats of the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				board, err := app.TimelineCLI.Board(context.Background())
				if err != nil {
					return err
				}
				printBoard(cmd.OutOrStdout(), board)
				return nil
			})
		},
	}
}

func newExportCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the current session report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.TimelineCLI.Export(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report %s\n", out.Path)
				return nil
			})
		},
	}
}

func newConfigCmd(dataDir *string) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration file commands"}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write config.yaml with the current settings and profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dataDir)
			if err != nil {
				return err
			}
			profile, err := bootstrap.BuildProfile(cfg.Profile)
			if err != nil {
				return err
			}
			cfg.Profile = bootstrap.ProfileConfig(profile)
			if err := config.Save(cfg); err != nil {
				return err
			}
			path, _ := cfg.FilePath()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cfgCmd
}

func printBoard(w io.Writer, board timelinedto.BoardOutput) {
	_, _ = fmt.Fprintf(w, "session %s\n\nevents\n", board.SessionID)
	for _, row := range board.Events {
		_, _ = fmt.Fprintf(w, "  %-22s %s\n", row.Key, row.Value)
	}
	_, _ = fmt.Fprintln(w, "\ndurations")
	for _, row := range board.Totals {
		_, _ = fmt.Fprintf(w, "  %-22s %s\n", row.ID, row.Value)
	}
	_, _ = fmt.Fprintln(w, "\nseats")
	for _, row := range board.Participants {
		suffix := ""
		if row.Style == "manual" {
			suffix = " (manual)"
		}
		_, _ = fmt.Fprintf(w, "  %-22s %s%s\n", row.ID, row.Value, suffix)
	}
}

func printMap(w io.Writer, title string, values map[string]string) {
	_, _ = fmt.Fprintln(w, title)
	if len(values) == 0 {
		_, _ = fmt.Fprintln(w, "  (none)")
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s = %s\n", k, strings.TrimSpace(values[k]))
	}
}
