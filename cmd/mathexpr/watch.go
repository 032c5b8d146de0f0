package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceDelay is how long after evaluating a file further changes to it are
// ignored.
const debounceDelay = 200 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch file",
		Short: "Evaluate a file whenever it changes",
		Long: `watch evaluates a script file, then evaluates it again each time it is
written, until interrupted. Each evaluation starts from a fresh scope.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.watch(ctx, cmd, args[0])
		},
	}
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		a.log.Error().Err(err).Msg("creating watcher")
		return err
	}
	defer w.Close()
	// Watch the directory so that files replaced by rename are still seen.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("watching")
		return err
	}
	a.log.Info().Str("path", path).Msg("watching")
	a.evalFile(cmd, path)

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("stopped watching")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if time.Since(last) < debounceDelay {
				continue
			}
			last = time.Now()
			a.log.Debug().Str("op", ev.Op.String()).Msg("file changed")
			a.evalFile(cmd, path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// evalFile evaluates the script in path and prints its result. Errors are
// logged rather than returned so that watching continues.
func (a *app) evalFile(cmd *cobra.Command, path string) {
	b, err := os.ReadFile(path)
	if err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("reading")
		return
	}
	s, err := a.scope()
	if err != nil {
		a.log.Error().Err(err).Msg("defining variables")
		return
	}
	e, err := a.compile(source{name: path, text: string(b)})
	if err != nil {
		return
	}
	a.evaluate(cmd.OutOrStdout(), e, s)
}
