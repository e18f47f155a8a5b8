package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zenflow/internal/fsutil"
	"zenflow/internal/notify"
	"zenflow/internal/reports"

	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		weekly bool
		format string
		render bool
		style  string
		width  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "report [DATE]",
		Short: "Generate a daily or weekly progress report",
		Long: strings.TrimSpace(`
Generate a report summarising the agenda of a date (default today).

The daily report lists each scheduled item with its repetitions and streak.
The weekly report covers the Sunday-to-Saturday week holding DATE.
`),
		Example: strings.TrimSpace(`
  zenflow report
  zenflow report 2024-03-04 --format json
  zenflow report --weekly --render
  zenflow report --weekly --output weekly.md
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case reports.FormatMarkdown, "md":
				format = reports.FormatMarkdown
			case reports.FormatJSON:
				if render {
					return fmt.Errorf("--render only applies to markdown")
				}
			default:
				return fmt.Errorf("invalid format %q, use 'markdown' or 'json'", format)
			}

			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			date, err := parseDateArg(args, b.items.Today())
			if err != nil {
				return err
			}

			gen := reports.NewGenerator(b.items)
			var report any = gen.GenerateDaily(date)
			if weekly {
				report = gen.GenerateWeekly(date)
			}
			out, err := reports.Format(report, format)
			if err != nil {
				return err
			}

			if output != "" {
				if dir := filepath.Dir(output); dir != "." {
					if err := os.MkdirAll(dir, 0o700); err != nil {
						return fmt.Errorf("creating output directory: %w", err)
					}
				}
				if err := fsutil.WriteFileAtomic(output, []byte(out), 0o600); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
				return nil
			}

			if render {
				out = reports.Render(out, style, width)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&weekly, "weekly", "w", false, "weekly report instead of daily")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().BoolVar(&render, "render", false, "render the markdown for the terminal")
	cmd.Flags().StringVar(&style, "style", "dark", "render style: dark, light, notty, ...")
	cmd.Flags().IntVar(&width, "width", 80, "render word-wrap width")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newRemindCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remind [DATE]",
		Short: "Send a desktop notification listing what is still pending",
		Long: strings.TrimSpace(`
Send a desktop notification for the agenda items of DATE (default today)
that are not completed yet. Uses notify-send on Linux and osascript on macOS.
On other systems, or with --dry-run, the reminder is printed instead.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			date, err := parseDateArg(args, b.items.Today())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			msg, ok := notify.Reminder(b.items.Items(), date)
			if !ok {
				fmt.Fprintf(out, "Nothing pending for %s.\n", date)
				return nil
			}

			n := notify.New()
			if dryRun || !n.Supported() {
				fmt.Fprintf(out, "%s\n%s\n", msg.Title, msg.Body)
				return nil
			}
			if _, err := notify.Remind(cmd.Context(), n, b.items.Items(), date, b.cfg.Notify.Sound); err != nil {
				return fmt.Errorf("sending reminder: %w", err)
			}
			fmt.Fprintf(out, "Reminder sent: %s\n", msg.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the reminder instead of sending it")
	return cmd
}
