package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"zenflow/internal/tracker"

	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// itemLine renders one item for the plain-text listings.
func itemLine(it tracker.Item, date tracker.Date) string {
	mark := "[ ]"
	if (it.Kind == tracker.KindOneOff && it.GlobalStatus == tracker.StatusCompleted) || it.CompletedOn(date) {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s", mark, it.ID, it.Title)
	if it.TargetRepetitions > 1 {
		line += fmt.Sprintf(" [%d/%d]", it.Day(date).RepetitionsDone, it.TargetRepetitions)
	}
	return line
}

func schedule(it tracker.Item) string {
	if it.Kind.Recurring() && len(it.RecurrenceDays) > 0 {
		return string(it.Kind) + " " + strings.Join(it.RecurrenceDays, ",")
	}
	return string(it.Kind) + " " + string(it.StartDate)
}

func newAgendaCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "agenda [DATE]",
		Short: "Show the items due on a date (default today)",
		Args:  cobra.MaximumNArgs(1),
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
			agenda := b.items.Agenda(date)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), agenda)
			}

			out := cmd.OutOrStdout()
			if len(agenda) == 0 {
				fmt.Fprintf(out, "Nothing scheduled for %s.\n", date)
				return nil
			}
			done := 0
			for _, it := range agenda {
				if it.CompletedOn(date) {
					done++
				}
				fmt.Fprintln(out, itemLine(it, date))
			}
			fmt.Fprintf(out, "\n%d/%d complete on %s\n", done, len(agenda), date)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the agenda as JSON")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered item, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			items := b.items.Registry()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No items yet. Add one with 'zenflow add TITLE'.")
				return nil
			}
			today := b.items.Today()
			for _, it := range items {
				fmt.Fprintf(out, "%s  (%s)\n", itemLine(it, today), schedule(it))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the items as JSON")
	return cmd
}

// formFlags binds the editable item fields to command flags.
type formFlags struct {
	kind     string
	start    string
	days     []string
	target   int
	category string
	icon     string
	color    string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "habit, daily or oneoff (inferred from --days when empty)")
	cmd.Flags().StringVar(&f.start, "start", "", "start date, YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&f.days, "days", nil, "recurrence weekdays, e.g. Seg,Qua,Sex")
	cmd.Flags().IntVar(&f.target, "target", 1, "repetitions needed to complete a day")
	cmd.Flags().StringVar(&f.category, "category", "", "Trabalho, Pessoal, Saúde, Estudo or Urgente")
	cmd.Flags().StringVar(&f.icon, "icon", "", "icon name, e.g. Water or Book")
	cmd.Flags().StringVar(&f.color, "color", "", "icon colour as #rrggbb")
}

// apply copies the flags the user set onto form, or every flag when all is
// true. Kind aliases are resolved by the form validation.
func (f *formFlags) apply(cmd *cobra.Command, form *tracker.Form, all bool) {
	set := func(name string) bool { return all || cmd.Flags().Changed(name) }
	if set("kind") {
		form.Kind = tracker.Kind(strings.TrimSpace(f.kind))
	}
	if set("start") {
		form.StartDate = tracker.Date(strings.TrimSpace(f.start))
	}
	if set("days") {
		form.RecurrenceDays = f.days
	}
	if set("target") {
		form.TargetRepetitions = f.target
	}
	if set("category") {
		form.Category = f.category
	}
	if set("icon") {
		form.Icon = f.icon
	}
	if set("color") {
		form.IconColor = f.color
	}
}

func newAddCmd(app *App) *cobra.Command {
	var (
		flags  formFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Register a habit, daily routine or one-off task",
		Example: strings.TrimSpace(`
  zenflow add "Read 20 pages" --days Seg,Ter,Qua,Qui,Sex
  zenflow add "Pay rent" --kind oneoff --start 2024-04-01 --category Pessoal
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Register reads a zero target as the default, so reject it here.
			if flags.target < 1 {
				return &tracker.ValidationError{Field: "target_repetitions", Reason: "target must be at least 1"}
			}
			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			form := tracker.Form{Title: strings.Join(args, " ")}
			flags.apply(cmd, &form, true)
			it, err := b.items.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), it)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s (%s)\n", it.ID, it.Title, schedule(it))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the new item as JSON")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var (
		flags formFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an item's fields; flags left out keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			current, err := b.items.Get(args[0])
			if err != nil {
				return err
			}
			form := tracker.FormFor(current)
			if cmd.Flags().Changed("title") {
				form.Title = title
			}
			flags.apply(cmd, &form, false)
			// Switching to a one-off drops the weekday list unless new days
			// were given.
			if k, err := tracker.ParseKind(string(form.Kind)); err == nil && k == tracker.KindOneOff && !cmd.Flags().Changed("days") {
				form.RecurrenceDays = nil
			}

			it, err := b.items.Edit(cmd.Context(), current.ID, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Edited %s: %s (%s)\n", it.ID, it.Title, schedule(it))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "done ID",
		Short: "Record one repetition for a date (default today)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			date, err := parseDateArg([]string{on}, b.items.Today())
			if err != nil {
				return err
			}
			it, err := b.items.RecordProgress(cmd.Context(), args[0], date)
			if err != nil {
				return fmt.Errorf("%s on %s: %w", args[0], date, err)
			}

			day := it.Day(date)
			out := cmd.OutOrStdout()
			switch {
			case day.DayStatus == tracker.StatusCompleted:
				fmt.Fprintf(out, "Completed: %s (%s)\n", it.Title, date)
			case day.RepetitionsDone == 0:
				fmt.Fprintf(out, "Reset: %s (%s)\n", it.Title, date)
			default:
				fmt.Fprintf(out, "Progress %d/%d: %s (%s)\n", day.RepetitionsDone, it.TargetRepetitions, it.Title, date)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "date to record, YYYY-MM-DD (default today)")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an item (needs --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			it, err := b.items.RequestDelete(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes {
				b.items.CancelDelete(it.ID)
				fmt.Fprintf(out, "Would delete %s: %s\nRun again with --yes to confirm.\n", it.ID, it.Title)
				return nil
			}
			if _, err := b.items.ConfirmDelete(cmd.Context(), it.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s: %s\n", it.ID, it.Title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}
