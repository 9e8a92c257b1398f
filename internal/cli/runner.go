package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/edit"
	"github.com/Makepad-fr/tada/internal/filter"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/share"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

// -------------- subcommands ----------------

func newListCmd(app *App) *cobra.Command {
	var (
		filterName string
		group      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the list",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Parse(filterName)
			if err != nil {
				return usageError{msg: err.Error()}
			}
			st, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			items := st.Items()

			var lines []string
			lines = append(lines, ui.Summary(filter.Count(items)))
			lines = append(lines, "")
			if group {
				lines = append(lines, groupLines(items, f)...)
			} else {
				lines = append(lines, flatLines(items, f)...)
			}
			lines = append(lines, "")
			lines = append(lines, ui.Muted("Tip: add with `todo add \"Buy milk\"`"))
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
	cmd.Flags().StringVar(&filterName, "filter", "all", "Show all|active|completed")
	cmd.Flags().BoolVar(&group, "group", false, "Group output by active/completed")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new item (title can be multiple words)",
		Args:  minArgs(1, "usage: todo add <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("usage: todo add <title...>")
			}
			st, err := app.newStore()
			if err != nil {
				return err
			}
			t, err := st.Add(cmd.Context(), title)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added %q", t.Title))
			return nil
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle completion of the item at a 1-based index",
		Args:  exactArgs(1, "usage: todo done <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, t, err := app.pick(cmd, args[0])
			if err != nil {
				return err
			}
			t, err = st.Toggle(cmd.Context(), t.ID)
			if err != nil {
				return fmt.Errorf("toggle: %w", err)
			}
			if t.Completed {
				ui.OK(cmd.OutOrStdout(), "completed "+strconv.Quote(t.Title))
			} else {
				ui.OK(cmd.OutOrStdout(), "marked active "+strconv.Quote(t.Title))
			}
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <title...>",
		Short: "Rename the item at a 1-based index",
		Args:  minArgs(2, "usage: todo edit <index> <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, t, err := app.pick(cmd, args[0])
			if err != nil {
				return err
			}
			var sess edit.Session
			sess.Start(t)
			if err := sess.ChangeDraft(strings.Join(args[1:], " ")); err != nil {
				return err
			}
			t, err = sess.Save(cmd.Context(), st)
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("updated %q", t.Title))
			return nil
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index",
		Args:  exactArgs(1, "usage: todo rm <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, t, err := app.pick(cmd, args[0])
			if err != nil {
				return err
			}
			if err := st.Remove(cmd.Context(), t.ID); err != nil {
				return fmt.Errorf("remove: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("removed %q", t.Title))
			return nil
		},
	}
}

func newShareCmd(app *App) *cobra.Command {
	var copyOut, mail bool
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print the list as plain text, or send it",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if copyOut && mail {
				return usagef("share: --copy and --mail are exclusive")
			}
			st, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			text, err := share.Build(st.Items())
			if err != nil {
				return fmt.Errorf("share: %w", err)
			}
			switch {
			case copyOut:
				if err := app.clipboardTarget().Deliver(cmd.Context(), text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "Todo list copied to clipboard!")
			case mail:
				if err := app.mailTarget().Deliver(cmd.Context(), text); err != nil {
					return fmt.Errorf("open email client: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "Opening email client...")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy to the system clipboard")
	cmd.Flags().BoolVar(&mail, "mail", false, "Open a new mail in the default mail client")
	return cmd
}

// -------------- helpers ----------------

// loaded returns a store holding the current remote list.
func (app *App) loaded(cmd *cobra.Command) (*store.Store, error) {
	st, err := app.newStore()
	if err != nil {
		return nil, err
	}
	if err := st.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return st, nil
}

// pick loads the list and resolves a 1-based index argument.
func (app *App) pick(cmd *cobra.Command, arg string) (*store.Store, model.Todo, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, model.Todo{}, usagef("not a number: %s", arg)
	}
	st, err := app.loaded(cmd)
	if err != nil {
		return nil, model.Todo{}, err
	}
	items := st.Items()
	if n < 1 || n > len(items) {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Muted("Hint: run `todo list` to see valid indexes"))
		return nil, model.Todo{}, usagef("index out of range: have %d, got %d", len(items), n)
	}
	return st, items[n-1], nil
}

// -------------- rendering helpers --------------

// flatLines numbers rows by their position in the full list so the
// printed index works with done/edit/rm under any filter.
func flatLines(items []model.Todo, f filter.Filter) []string {
	var out []string
	for i, t := range items {
		if f.Match(t) {
			out = append(out, ui.TodoLine(i+1, truncate(t)))
		}
	}
	if len(out) == 0 {
		return []string{ui.Muted("no items")}
	}
	return out
}

func groupLines(items []model.Todo, f filter.Filter) []string {
	var lines []string
	for _, g := range []filter.Filter{filter.Active, filter.Completed} {
		if f != filter.All && f != g {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, ui.C(ui.Current().Accent, strings.ToUpper(g.String()[:1])+g.String()[1:]))
		if len(filter.Apply(items, g)) == 0 {
			lines = append(lines, ui.Muted("(none)"))
			continue
		}
		lines = append(lines, flatLines(items, g)...)
	}
	return lines
}

func truncate(t model.Todo) model.Todo {
	if r := []rune(t.Title); len(r) > 80 {
		t.Title = string(r[:77]) + "..."
	}
	return t
}
