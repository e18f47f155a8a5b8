package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zenflow/internal/backup"
	"zenflow/internal/config"
	"zenflow/internal/fsutil"
	"zenflow/internal/importer"
	"zenflow/internal/storage"

	"github.com/spf13/cobra"
)

// previewLimit caps how many items an import dry run lists.
const previewLimit = 20

func newImportCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FORMAT FILE",
		Short: "Import items from another app",
		Long: strings.TrimSpace(`
Import items from an export file. Supported formats:

  zenflow   the browser app's localStorage export (the "zenflow_tasks" array,
            bare or wrapped in a localStorage dump). IDs and history are kept;
            items whose ID already exists are skipped.
  todoist   a Todoist CSV backup. Each task becomes a one-off item.
`),
		Example: strings.TrimSpace(`
  zenflow import zenflow zenflow_tasks.json --dry-run
  zenflow import todoist ~/Downloads/Todoist_backup.csv
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])
			imp := importer.Get(format)
			if imp == nil {
				return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(importer.SupportedFormats(), ", "))
			}

			file, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer file.Close()

			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				items, err := imp.Preview(file, b.items.Today())
				if err != nil {
					return fmt.Errorf("parsing file: %w", err)
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "No items found to import.")
					return nil
				}
				fmt.Fprintf(out, "Preview: %d items to import\n", len(items))
				for i, it := range items {
					if i == previewLimit {
						fmt.Fprintf(out, "  ... and %d more\n", len(items)-previewLimit)
						break
					}
					note := ""
					if _, err := b.items.Get(it.ID); err == nil {
						note = ", exists"
					}
					fmt.Fprintf(out, "  %s (%s%s)\n", it.Title, schedule(it), note)
				}
				fmt.Fprintln(out, "\nRun without --dry-run to import.")
				return nil
			}

			result, err := imp.Import(cmd.Context(), file, b.items)
			if err != nil {
				return fmt.Errorf("importing: %w", err)
			}
			fmt.Fprintln(out, "Import complete!")
			fmt.Fprintf(out, "  Imported: %d items\n", result.Imported)
			if result.Skipped > 0 {
				fmt.Fprintf(out, "  Skipped:  %d items\n", result.Skipped)
			}
			if len(result.Errors) > 0 {
				fmt.Fprintf(out, "  Errors:   %d\n", len(result.Errors))
				for _, e := range result.Errors {
					fmt.Fprintf(out, "    - %s\n", e)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview the import without changing anything")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export items as JSON or their history as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("invalid format %q, use 'json' or 'csv'", format)
			}

			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			// The JSON backend exports its own file; the others are
			// rendered in the same format from the loaded items.
			local := b.cfg.Backend == config.BackendJSON
			var data []byte
			switch {
			case format == "json" && local:
				data, err = b.files.ExportJSON()
			case format == "json":
				data, err = storage.EncodeItems(b.items.Items())
			default:
				var csv string
				if local {
					csv, err = b.files.ExportHistoryCSV()
				} else {
					csv, err = storage.HistoryCSV(b.items.Items())
				}
				data = []byte(csv)
			}
			if err != nil {
				return fmt.Errorf("exporting: %w", err)
			}
			if format == "json" {
				data = append(data, '\n')
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := fsutil.WriteFileAtomic(output, data, 0o600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newBackupCmd(app *App) *cobra.Command {
	var (
		list  bool
		prune int
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list or prune backups of the data directory",
		Long: strings.TrimSpace(`
Create a timestamped backup of the data files (items.json, ui_state.json and
zenflow.db when the database lives in the data directory). Backups are
stored in <data_dir>/backups and can be restored with 'zenflow restore'.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return err
			}
			manager := backup.NewManager(cfg.GetDataDir(), version)
			manager.SetNowFunc(app.now)
			out := cmd.OutOrStdout()

			switch {
			case list:
				backups, err := manager.List()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					fmt.Fprintln(out, "No backups available.")
					fmt.Fprintln(out, "Run 'zenflow backup' to create one.")
					return nil
				}
				fmt.Fprintln(out, "Available backups:")
				for _, bk := range backups {
					fmt.Fprintf(out, "  %s  (%s)   Items: %d\n", bk.Name, formatAge(app.now().Sub(bk.CreatedAt)), bk.Stats["items"])
				}
				return nil

			case cmd.Flags().Changed("prune"):
				deleted, err := manager.Prune(prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d backups, kept the newest %d.\n", deleted, prune)
				return nil
			}

			name, err := manager.Create()
			if err != nil {
				return fmt.Errorf("creating backup: %w", err)
			}
			info, err := manager.Get(name)
			if err != nil {
				return fmt.Errorf("reading backup info: %w", err)
			}
			fmt.Fprintf(out, "✓ Backup created: %s\n", name)
			fmt.Fprintf(out, "  Items: %d\n", info.Stats["items"])
			fmt.Fprintf(out, "  Location: %s\n", info.Path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available backups")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the newest N backups")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	var latest bool

	cmd := &cobra.Command{
		Use:   "restore [NAME]",
		Short: "Restore the data directory from a backup",
		Long: strings.TrimSpace(`
Restore the data files from a backup made with 'zenflow backup'. Every file
in the backup is checked first, and the current files are saved as a new
backup before anything is overwritten.
`),
		Example: strings.TrimSpace(`
  zenflow restore --latest
  zenflow restore 2024-03-04_090000_000
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if latest == (len(args) == 1) {
				return errors.New("give a backup NAME or --latest (see 'zenflow backup --list')")
			}
			cfg, err := app.config()
			if err != nil {
				return err
			}
			manager := backup.NewManager(cfg.GetDataDir(), version)
			manager.SetNowFunc(app.now)

			var name string
			if latest {
				name, err = manager.RestoreLatest()
			} else {
				name = args[0]
				err = manager.Restore(name)
			}
			if err != nil {
				return fmt.Errorf("restoring: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored from %s\n", name)
			external := cfg.Backend == config.BackendRemote ||
				(cfg.Backend == config.BackendSQLite && filepath.Dir(cfg.DatabasePath()) != cfg.GetDataDir())
			if external {
				fmt.Fprintf(cmd.OutOrStdout(), "  Note: the %s backend keeps its items outside %s; only local files were restored.\n", cfg.Backend, cfg.GetDataDir())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore the most recent backup")
	return cmd
}

// formatAge returns a human-readable age string.
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}
