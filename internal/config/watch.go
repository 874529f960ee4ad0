// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher re-loads Config from path whenever the file changes on disk and
// republishes it on Updates. Its event loop shape is grounded on the
// teacher's cmd/dtn-tool exchange.handler fsnotify select loop.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Updates chan Config

	stopSyn chan struct{}
	stopAck chan struct{}
}

// Watch begins watching path for changes, loading it once up front. The
// caller receives every subsequent successfully-reloaded Config on
// w.Updates; reload errors are logged and do not stop the watcher.
func Watch(path string) (*Watcher, Config, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, Config{}, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, Config{}, err
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, Config{}, err
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		Updates: make(chan Config, 1),
		stopSyn: make(chan struct{}),
		stopAck: make(chan struct{}),
	}
	go w.loop()
	return w, initial, nil
}

func (w *Watcher) loop() {
	defer close(w.stopAck)
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-w.stopSyn:
			return

		case e, ok := <-w.watcher.Events:
			if !ok {
				log.Error("vstp/config: fsnotify event channel closed")
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				log.WithError(err).WithField("path", w.path).Warn("vstp/config: reload failed, keeping prior config")
				continue
			}

			select {
			case w.Updates <- cfg:
			default:
				// Drop the stale pending update in favor of the fresh one.
				select {
				case <-w.Updates:
				default:
				}
				w.Updates <- cfg
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				log.Error("vstp/config: fsnotify error channel closed")
				return
			}
			log.WithError(err).Warn("vstp/config: fsnotify error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopSyn)
	<-w.stopAck
	return nil
}
