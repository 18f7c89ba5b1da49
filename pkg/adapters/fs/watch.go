package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Watch reports item files created, modified or removed by other processes
// (sync clients, editors) in every initialized collection. The channel closes
// when ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	r.mu.RLock()
	collections := make([]string, 0, len(r.collections))
	for c := range r.collections {
		collections = append(collections, c)
	}
	r.mu.RUnlock()

	for _, c := range collections {
		if err := watcher.Add(r.dir(c)); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", c, err)
		}
	}

	events := make(chan core.Event, 64)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return r.watchLoop(ctx, watcher, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.handleWatchError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, ok := r.mapEvent(event)
			if !ok {
				continue
			}
			r.cache.Delete(key(e.Collection, e.ID))
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.handleWatchError(err)
		}
	}
}

// mapEvent turns a raw fsnotify event into an item event, ignoring temp files
// and anything that is not an item file.
func (r *Repository) mapEvent(event fsnotify.Event) (core.Event, bool) {
	if isTempFile(event.Name) || filepath.Ext(event.Name) != r.serializer.Ext() {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	id, err := r.decodeName(event.Name)
	if err != nil {
		r.handleWatchError(fmt.Errorf("failed to resolve ID for %s: %w", event.Name, err))
		return core.Event{}, false
	}
	r.recordReconcile()
	return core.Event{
		Type:       t,
		Collection: filepath.Base(filepath.Dir(event.Name)),
		ID:         id,
		Timestamp:  time.Now().UnixMilli(),
	}, true
}

func (r *Repository) handleWatchError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("fsnotify error", "error", err)
}

var _ core.Watchable = (*Repository)(nil)
