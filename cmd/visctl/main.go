package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"text/tabwriter"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/backend"
	"github.com/brandradar/visibility-dashboard/internal/config"
	"github.com/brandradar/visibility-dashboard/internal/dashboard"
	"github.com/brandradar/visibility-dashboard/internal/export"
	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/brandradar/visibility-dashboard/internal/notifications"
	"github.com/brandradar/visibility-dashboard/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	brandID   string
	modelID   string
	rangeFlag string
	startDay  string
	endDay    string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visctl",
		Short: "Query brand visibility in AI chat answers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(os.Stderr)
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&brandID, "brand", "", "brand or competitor id (default all)")
	rootCmd.PersistentFlags().StringVar(&modelID, "model", "", "model id (default all)")
	rootCmd.PersistentFlags().StringVar(&rangeFlag, "range", "", "time range preset: 7d, 30d or 90d")
	rootCmd.PersistentFlags().StringVar(&startDay, "start", "", "custom range start (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&endDay, "end", "", "custom range end (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(rankingCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session holds what every command needs
type session struct {
	cfg       *config.Config
	dashboard *dashboard.Service
	close     func()
}

// openArchive opens the configured snapshot storage, or dir when given
func openArchive(cfg *config.Config, dir string) (storage.StorageInterface, error) {
	if dir != "" {
		return storage.NewFileStorage(dir)
	}
	return storage.Open(cfg)
}

// openSession connects to the backend; report archive commands also open snapshot storage
func openSession(withArchive bool, archiveDir string) (*session, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var archive storage.StorageInterface
	if withArchive {
		if archive, err = openArchive(cfg, archiveDir); err != nil {
			return nil, err
		}
	}

	b, closeBackend, err := backend.Open(cfg)
	if err != nil {
		return nil, err
	}

	dash, err := dashboard.NewService(cfg, b, archive, nil)
	if err != nil {
		closeBackend()
		return nil, err
	}

	return &session{cfg: cfg, dashboard: dash, close: closeBackend}, nil
}

func (s *session) selection() (models.FilterSelection, error) {
	sel := models.FilterSelection{BrandID: brandID, ModelID: modelID}

	if startDay != "" || endDay != "" {
		r, err := models.NewTimeRange(startDay, endDay)
		if err != nil {
			return sel, err
		}
		sel.Range = r
		return sel, nil
	}

	preset := rangeFlag
	if preset == "" {
		preset = s.cfg.DefaultTimeRange
	}
	r, err := models.ParseTimeRange(preset, time.Now())
	if err != nil {
		return sel, err
	}
	sel.Range = r
	return sel, nil
}

func rankingCmd() *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the visibility ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(false, "")
			if err != nil {
				return err
			}
			defer s.close()

			sel, err := s.selection()
			if err != nil {
				return err
			}

			entries, err := s.dashboard.Ranking(context.Background(), sel)
			if err != nil {
				return err
			}

			if asCSV {
				fmt.Print(export.RankingCSV(entries))
				return nil
			}

			if len(entries) == 0 {
				fmt.Println("No data for this selection")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tBRAND\tMENTIONS\tVISIBILITY\tPOSITION\tSENTIMENT")
			for _, e := range entries {
				name := e.Name
				if e.IsCompetitor {
					name += " *"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d%%\t%s\t%s\n",
					e.Rank, name, e.Mentions, e.Visibility, e.PositionLabel(), e.SentimentLabel())
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "print CSV instead of a table")
	return cmd
}

func reportCmd() *cobra.Command {
	var period string
	var outDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a visibility report and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if period != "daily" && period != "weekly" {
				return fmt.Errorf("period must be daily or weekly")
			}

			s, err := openSession(false, "")
			if err != nil {
				return err
			}
			defer s.close()

			sel, err := s.selection()
			if err != nil {
				return err
			}

			report, err := s.dashboard.GenerateReport(context.Background(), sel, period)
			if err != nil {
				return err
			}

			fmt.Print(notifications.BuildEmailText(report))

			if outDir == "" {
				return nil
			}

			files, err := storage.NewFileStorage(outDir)
			if err != nil {
				return err
			}
			data, err := export.JSON(report)
			if err != nil {
				return err
			}
			name := dashboard.ReportSnapshotName(report, "json")
			if err := files.Store(context.Background(), name, data); err != nil {
				return err
			}

			html, err := notifications.BuildEmailHTML(report)
			if err != nil {
				return err
			}
			htmlName := dashboard.ReportSnapshotName(report, "html")
			if err := files.Store(context.Background(), htmlName, []byte(html)); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Saved %s and %s under %s\n", name, htmlName, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "weekly", "report period label: daily or weekly")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "also save the report as JSON and HTML under this directory")

	cmd.AddCommand(reportListCmd())
	cmd.AddCommand(reportShowCmd())
	cmd.AddCommand(reportPruneCmd())
	return cmd
}

func reportListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(true, dir)
			if err != nil {
				return err
			}
			defer s.close()

			reports, err := s.dashboard.ListReports(context.Background())
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("No archived reports")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tPERIOD\tGENERATED")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\n", path.Base(r.Name), r.Period, r.GeneratedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "read a local snapshot directory instead of the configured storage")
	return cmd
}

func reportShowCmd() *cobra.Command {
	var dir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(true, dir)
			if err != nil {
				return err
			}
			defer s.close()

			report, err := s.dashboard.GetReport(context.Background(), path.Base(args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				data, err := export.JSON(report)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
			fmt.Print(notifications.BuildEmailText(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "read a local snapshot directory instead of the configured storage")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON")
	return cmd
}

func reportPruneCmd() *cobra.Command {
	var dir string
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest archived reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep <= 0 {
				return fmt.Errorf("--keep must be positive")
			}

			s, err := openSession(true, dir)
			if err != nil {
				return err
			}
			defer s.close()

			deleted, err := s.dashboard.PruneReports(context.Background(), keep)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d reports\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "prune a local snapshot directory instead of the configured storage")
	cmd.Flags().IntVar(&keep, "keep", 10, "number of reports to keep")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string
	var limit int

	cmd := &cobra.Command{
		Use:       "export [mentions|ranking]",
		Short:     "Export recent mentions or the ranking as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"mentions", "ranking"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(false, "")
			if err != nil {
				return err
			}
			defer s.close()

			sel, err := s.selection()
			if err != nil {
				return err
			}

			ctx := context.Background()
			var content string
			switch args[0] {
			case "mentions":
				mentions, err := s.dashboard.RecentMentions(ctx, sel, limit)
				if err != nil {
					return err
				}
				content = export.MentionsCSV(mentions)
			case "ranking":
				entries, err := s.dashboard.Ranking(ctx, sel)
				if err != nil {
					return err
				}
				content = export.RankingCSV(entries)
			}

			if out == "" {
				out = export.Filename(args[0], "csv", time.Now())
			}
			if out == "-" {
				fmt.Print(content)
				return nil
			}
			if err := os.WriteFile(out, []byte(content), 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file, or - for stdout (default <kind>-<date>.csv)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum mentions to export (default RECENT_MENTIONS_LIMIT)")
	return cmd
}
