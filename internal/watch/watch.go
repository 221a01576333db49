// Package watch runs a spool-directory loop: files dropped into the
// watched directory whose names match a wildcard pattern are handed to a
// caller-supplied handler once they stop growing.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

// settle polling for newly arrived files.
const (
	pollInterval = 200 * time.Millisecond
	settleLimit  = 10 * time.Second
)

// Watch blocks, invoking handle for every matching file created in dir,
// until ctx is cancelled. Handler errors are logged and do not stop the
// loop; only watcher failures and cancellation end it.
func Watch(ctx context.Context, dir, pattern string, handle func(path string) error, log zerolog.Logger) error {
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Str("pattern", pattern).Msg("watching spool directory")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !g.Match(filepath.Base(ev.Name)) {
				continue
			}
			if err := waitSettled(ctx, ev.Name); err != nil {
				log.Warn().Err(err).Str("file", ev.Name).Msg("skipping unsettled file")
				continue
			}
			log.Info().Str("file", ev.Name).Msg("processing spooled file")
			if err := handle(ev.Name); err != nil {
				log.Error().Err(err).Str("file", ev.Name).Msg("handler failed")
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// waitSettled polls the file size until it holds still for one interval,
// so half-written files are not processed mid-copy.
func waitSettled(ctx context.Context, path string) error {
	deadline := time.Now().Add(settleLimit)
	lastSize := int64(-1)

	for {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()

		if time.Now().After(deadline) {
			return fmt.Errorf("%s still growing after %s", path, settleLimit)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
