// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reports when the session file is removed by another process, such
// as `eduportal logout` in a second terminal.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	onGone  func()
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher watches the directory holding the store's file. onGone runs on
// the watcher goroutine at most once.
func NewWatcher(store *Store, onGone func(), log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path, err := filepath.Abs(store.Path())
	if err != nil {
		fw.Close()
		return nil, err
	}
	// The directory is watched because the file itself is replaced by rename
	// on every save.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    path,
		watcher: fw,
		onGone:  onGone,
		log:     log.With().Str("component", "session-watcher").Logger(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, err := os.Stat(w.path); !errors.Is(err, os.ErrNotExist) {
				continue
			}
			w.log.Info().Str("event", "session_file_removed").Msg("stored session removed")
			if w.onGone != nil {
				w.onGone()
			}
			return

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("session watcher error")
		}
	}
}

// Close stops watching and waits for the goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}
