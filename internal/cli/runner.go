package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
	"github.com/spf13/cobra"
)

// -------------- subcommands ----------------

func (a *App) newListCmd() *cobra.Command {
	var group bool
	var format string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos (pending first, newest first)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.doList(group, format)
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	cmd.Flags().StringVar(&format, "format", "panel", "output format: panel, json or markdown")
	return cmd
}

func (a *App) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new todo (title can be multiple words)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.doAdd(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func (a *App) newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <index>",
		Aliases: []string{"toggle"},
		Short:   "Toggle completed for the todo at a 1-based index",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.resolve("done", args[0])
			if err != nil {
				return err
			}
			return a.finish(a.mgr.Toggle(cmd.Context(), it.ID), "toggled")
		},
	}
}

func (a *App) newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <title...>",
		Short: "Rename the todo at a 1-based index",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.resolve("edit", args[0])
			if err != nil {
				return err
			}
			title, ok := a.validTitle(strings.Join(args[1:], " "))
			if !ok {
				return exitCode(exitUsage)
			}
			return a.finish(a.mgr.Edit(cmd.Context(), it.ID, title), "edited")
		},
	}
}

func (a *App) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"delete"},
		Short:   "Delete the todo at a 1-based index",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.resolve("rm", args[0])
			if err != nil {
				return err
			}
			if !a.confirmer().Confirm("Are you sure to delete it?") {
				fmt.Fprintln(a.Out, ui.Current().Muted.Render("cancelled"))
				return nil
			}
			return a.finish(a.mgr.Delete(cmd.Context(), it.ID), "removed")
		},
	}
}

func (a *App) newMarkCmd(use string, mark bool) *cobra.Command {
	short, done := "Mark every todo completed", "marked all"
	if !mark {
		short, done = "Mark every todo pending", "unmarked all"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.finish(a.mgr.MarkAll(cmd.Context(), mark), done)
		},
	}
}

func (a *App) newClearCmd() *cobra.Command {
	var marked bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every todo, or only completed ones with --marked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt, done := "Are you sure to clear all?", "cleared all"
			if marked {
				prompt, done = "Are you sure to clear marked?", "cleared marked"
			}
			if !a.confirmer().Confirm(prompt) {
				fmt.Fprintln(a.Out, ui.Current().Muted.Render("cancelled"))
				return nil
			}
			return a.finish(a.mgr.Clear(cmd.Context(), !marked), done)
		},
	}
	cmd.Flags().BoolVar(&marked, "marked", false, "only delete completed todos")
	return cmd
}

// -------------- subcommand impls ----------------

func (a *App) doList(group bool, format string) error {
	items := view.Project(a.mgr.Items())

	switch format {
	case "json":
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			ui.Fail(a.Err, "encode: "+err.Error())
			return exitCode(exitError)
		}
		return nil
	case "markdown", "md":
		out, err := renderMarkdown(items, a.cfg.NoColor || a.cfg.Theme == "mono")
		if err != nil {
			ui.Fail(a.Err, "render: "+err.Error())
			return exitCode(exitError)
		}
		fmt.Fprint(a.Out, out)
		return nil
	case "panel", "":
	default:
		ui.Fail(a.Err, "ls: unknown format: "+format)
		return exitCode(exitUsage)
	}

	t := ui.Current()
	s := view.Summarize(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), s.Completed,
		t.Pending.Render(t.SymPending), s.Pending,
		t.Accent.Render("Total"), s.Total,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(s.Completed, s.Total, 28)))
	lines = append(lines, "")

	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items, 1)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	fmt.Fprintln(a.Out, ui.Panel(lines))
	return nil
}

func (a *App) doAdd(ctx context.Context, raw string) error {
	title, ok := a.validTitle(raw)
	if !ok {
		return exitCode(exitUsage)
	}
	_, err := a.mgr.Add(ctx, title)
	return a.finish(err, "added")
}

// validTitle applies the input-boundary checks and reports failures.
func (a *App) validTitle(raw string) (string, bool) {
	title, err := model.ValidateTitle(raw)
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		ui.Warn(a.Err, "Error, cannot submit empty form!")
		return "", false
	case errors.Is(err, model.ErrTitleTooShort):
		ui.Warn(a.Err, fmt.Sprintf("title needs at least %d characters", model.MinTitleLen))
		return "", false
	case errors.Is(err, model.ErrTitleTooLong):
		ui.Warn(a.Err, fmt.Sprintf("title can have at most %d characters", model.MaxTitleLen))
		return "", false
	}
	return title, true
}

// resolve maps a 1-based display index (as printed by `ls`) to its item.
func (a *App) resolve(cmdName, arg string) (model.Item, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		ui.Fail(a.Err, cmdName+": not a number: "+arg)
		return model.Item{}, exitCode(exitUsage)
	}
	items := view.Project(a.mgr.Items())
	if n < 1 || n > len(items) {
		ui.Fail(a.Err, fmt.Sprintf("index out of range: have %d, got %d", len(items), n))
		fmt.Fprintln(a.Err, ui.Current().Muted.Render("Hint: run `tada ls` to see valid indexes"))
		return model.Item{}, exitCode(exitUsage)
	}
	return items[n-1], nil
}

// finish reports the outcome of a store operation.
func (a *App) finish(err error, okMsg string) error {
	switch {
	case err == nil:
		ui.OK(a.Out, okMsg)
		return nil
	case errors.Is(err, todo.ErrDuplicateTitle):
		ui.Warn(a.Err, "Todo already exists!")
		return exitCode(exitUsage)
	case errors.Is(err, todo.ErrEmptyTitle):
		ui.Warn(a.Err, "Error, cannot submit empty form!")
		return exitCode(exitUsage)
	}
	ui.Fail(a.Err, "save: "+err.Error())
	return exitCode(exitError)
}
