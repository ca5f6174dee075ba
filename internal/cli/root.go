package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Exit codes: 0 ok, 1 runtime error, 2 usage or rejected input.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// exitCode ends a command whose message was already printed.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

// App carries the IO streams and per-invocation state shared by commands.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	Env map[string]string

	// Confirm gates destructive commands. Nil prompts on the terminal.
	Confirm Confirmer
	// RunTUI starts the interactive list. Nil uses tui.Run.
	RunTUI func(ctx context.Context, ops todo.Ops) error

	configPath string
	dataDir    string
	backend    string
	theme      string
	noColor    bool
	yes        bool

	cfg     config.Config
	adapter store.Adapter
	mgr     *todo.Manager
	logFile *os.File
}

// Main runs tada with os-level plumbing and returns the process exit code.
func Main(args []string, in io.Reader, out, errOut io.Writer, environ []string) int {
	app := &App{In: in, Out: out, Err: errOut, Env: config.EnvMap(environ)}
	return app.Run(context.Background(), args)
}

// Run dispatches args and returns an exit code (0 ok, 1 error, 2 usage).
func (a *App) Run(ctx context.Context, args []string) int {
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	cmd := a.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(a.In)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)

	err := cmd.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return exitOK
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	ui.Fail(a.Err, err.Error())
	fmt.Fprintln(a.Err, ui.Current().Muted.Render("Run `tada --help` for usage"))
	return exitUsage
}

func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tada",
		Short: "tada - a tiny todo list for your terminal",
		Example: strings.TrimSpace(`
  tada                     # interactive list
  tada add "Buy milk"
  tada ls --group
  tada done 2
  tada edit 1 "Buy oat milk"
  tada clear --marked`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			run := a.RunTUI
			if run == nil {
				run = tui.Run
			}
			if err := run(cmd.Context(), a.mgr); err != nil {
				ui.Fail(a.Err, err.Error())
				return exitCode(exitError)
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (JSON with comments)")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory holding the todo data (default: working directory)")
	pf.StringVar(&a.backend, "backend", "", "storage backend: json, sqlite or memory")
	pf.StringVar(&a.theme, "theme", "", "color theme: classic, neon or mono")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colors")
	pf.BoolVarP(&a.yes, "yes", "y", false, "answer yes to confirmation prompts")

	cmd.AddCommand(
		a.newListCmd(),
		a.newAddCmd(),
		a.newDoneCmd(),
		a.newEditCmd(),
		a.newRemoveCmd(),
		a.newMarkCmd("mark-all", true),
		a.newMarkCmd("unmark-all", false),
		a.newClearCmd(),
	)
	return cmd
}

// setup resolves config, wires logging and opens the store.
func (a *App) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var ov config.Overrides
	if flags.Changed("data-dir") {
		ov.DataDir = &a.dataDir
	}
	if flags.Changed("backend") {
		ov.Backend = &a.backend
	}
	if flags.Changed("theme") {
		ov.Theme = &a.theme
	}
	if flags.Changed("no-color") {
		ov.NoColor = &a.noColor
	}

	cfg, err := config.Load(config.LoadInput{ConfigPath: a.configPath, Env: a.Env, Overrides: ov})
	if err != nil {
		ui.Fail(a.Err, err.Error())
		return exitCode(exitUsage)
	}
	a.cfg = cfg

	ui.SetColorForcing(false, cfg.NoColor)
	ui.SetTheme(cfg.Theme)

	if cfg.DebugLog != "" {
		f, err := tea.LogToFile(cfg.DebugLog, "tada")
		if err != nil {
			ui.Fail(a.Err, "debug log: "+err.Error())
			return exitCode(exitError)
		}
		a.logFile = f
	} else {
		log.SetOutput(io.Discard)
	}
	log.Printf("config: backend=%s data_dir=%q sources=%v", cfg.Backend, cfg.DataDir, cfg.Sources)

	adapter, err := openAdapter(cmd.Context(), cfg)
	if err != nil {
		ui.Fail(a.Err, "open store: "+err.Error())
		return exitCode(exitError)
	}
	a.adapter = adapter
	a.mgr = todo.New(cmd.Context(), adapter)
	return nil
}

func (a *App) close() {
	if a.adapter != nil {
		if err := a.adapter.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
		a.adapter = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
