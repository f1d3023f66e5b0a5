package loader

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/lingo/lang"
)

// Watch reports changes to translation files in opts.Dir on the OS file
// system until ctx is done. onChange receives the path of each file created,
// written, removed or renamed whose name matches opts.Pattern or
// opts.MessagePattern.
func Watch(ctx context.Context, opts Options, onChange func(path string)) error {
	opts = opts.withDefaults()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return lang.ErrReadInput.Wrap(err).With(slog.String("dir", opts.Dir))
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return lang.ErrReadInput.Wrap(err).With(slog.String("dir", opts.Dir))
	}

	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&relevant == 0 {
				continue
			}

			name := filepath.Base(event.Name)
			if !opts.Pattern.MatchString(name) && !opts.MessagePattern.MatchString(name) {
				continue
			}

			opts.Logger.DebugContext(ctx, "translation file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))

			onChange(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
