package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thruflo/brigadier/internal/capability"
	"github.com/thruflo/brigadier/internal/config"
	"github.com/thruflo/brigadier/internal/lifecycle"
	"github.com/thruflo/brigadier/internal/logging"
	"github.com/thruflo/brigadier/internal/project"
	"github.com/thruflo/brigadier/internal/script"
	"github.com/thruflo/brigadier/internal/session"
	"github.com/thruflo/brigadier/internal/task"
)

// DefaultScript is loaded when the project argument names a directory.
const DefaultScript = "build" + script.Extension

// exitFunc ends the process when a background process or a signal finishes
// the build. It can be overridden in tests.
var exitFunc = os.Exit

func runBuild(cmd *cobra.Command, args []string) error {
	inv, err := ParseArgs(args)
	if err != nil {
		return err
	}
	if inv.Help {
		return cmd.Help()
	}
	if inv.Version {
		fmt.Fprintf(cmd.OutOrStdout(), "brigadier version %s\n", Version)
		return nil
	}
	if inv.Project == "" {
		return &UsageError{Message: "no project"}
	}

	path, err := resolveProject(inv.Project)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}
	env, err := config.LoadEnvFile(dir, cfg)
	if err != nil {
		return err
	}

	values := make(map[string]interface{}, len(cfg.Defaults)+len(inv.Options))
	for k, v := range cfg.Defaults {
		values[k] = v
	}
	for k, v := range inv.Options {
		values[k] = v
	}

	log := logging.New()
	log.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	log.SetColor(colorEnabled(cfg.Color, cmd.OutOrStdout()))
	log.SetVerbose(cfg.Verbose || project.Truthy(values["verbose"]))

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to change to project directory: %w", err)
	}

	sess := session.New(session.Options{
		Dir:    dir,
		Logger: log,
		Lifecycle: lifecycle.New(
			lifecycle.WithExitFunc(exitFunc),
			lifecycle.WithReporter(func(err error) { log.Error(err) }),
		),
		Capabilities: capability.Builtin(cfg.Disable...),
		Shell:        cfg.Shell,
		Env:          env,
		Config:       values,
		Stdin:        cmd.InOrStdin(),
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sess.Lifecycle().Notify(ctx)

	sc := script.New(sess)
	defer sc.Close()

	err = sess.Define(sc.Definition(path))
	if err == nil {
		_, err = sess.Build(inv.Task)
	}
	if errors.Is(err, task.ErrNoDefaultTask) {
		err = &UsageError{Err: err}
	}

	if IsUsageError(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), usageBanner)
	}
	code := sess.Finish(err)
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// resolveProject finds the project file named by arg. A directory means its
// DefaultScript; a missing extension is added.
func resolveProject(arg string) (string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project: %w", err)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		path = filepath.Join(path, DefaultScript)
	case os.IsNotExist(err) && filepath.Ext(path) == "":
		path += script.Extension
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", &UsageError{Message: fmt.Sprintf("no such project %s", arg)}
		}
		return "", fmt.Errorf("failed to read project: %w", err)
	}
	return path, nil
}

// colorEnabled applies the color mode. Auto styles terminals only.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
