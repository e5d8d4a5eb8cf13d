// Copyright 2026 resgov.io
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package governor

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"go.resgov.io/agent/app/log"
)

// configWatcher reports edits of the configuration file, so changes apply
// without sending SIGHUP.
type configWatcher struct {
	Events chan struct{}

	w   *fsnotify.Watcher
	dir string
}

// watchConfigFile watches the config directory asynchronously. Watching is
// best-effort: on failure a warning is logged and the returned watcher
// simply never fires.
func watchConfigFile(ctx context.Context, configDir string) *configWatcher {
	w := &configWatcher{
		Events: make(chan struct{}, 1),
		dir:    configDir,
	}

	go func() {
		if err := w.init(); err != nil {
			log.Warnf("not watching config dir: %v", err)
			return
		}

		w.watch(ctx)
	}()

	return w
}

func (w *configWatcher) init() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	// watch the directory, not the file: editors replace config files
	// on save, which would silently drop a file-level watch
	if err := watcher.Add(w.dir); err != nil {
		return errors.Wrap(err, "failed to watch config dir")
	}

	w.w = watcher

	return nil
}

func (w *configWatcher) watch(ctx context.Context) {
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-w.w.Errors:
			log.Warnf("config watcher error: %v", err)

		case event := <-w.w.Events:
			if filepath.Base(event.Name) != ConfigFileName {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			select {
			case w.Events <- struct{}{}:
			default:
				// reload already pending
			}
		}
	}
}
