package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/subworks/subflow/internal/classify"
	"github.com/subworks/subflow/pkg/log"
)

const defaultDebounce = 2 * time.Second

// BatchFunc receives one debounced batch of subtitle paths.
type BatchFunc func(paths []string)

// Watcher monitors drop directories for new subtitle files and emits
// them in debounced batches, so a multi-file drop arrives as one batch
// and gets grouped together downstream.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	emit     BatchFunc

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func NewWatcher(dirs []string, emit BatchFunc, opts ...WatcherOption) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one drop directory is required")
	}
	if emit == nil {
		return nil, fmt.Errorf("batch callback is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		dirs:     dirs,
		debounce: defaultDebounce,
		emit:     emit,
		watcher:  fsw,
		pending:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the drop directories recursively and runs the event
// loop until Close is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	// a directory dropped into the watch tree gets watched too
	if info.IsDir() {
		if err := w.addRecursive(event.Name); err != nil {
			log.Warn("Failed to watch new directory %s: %v", event.Name, err)
		}
		return
	}

	if !classify.IsSubtitlePath(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.timer = nil
		w.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(batch)
	log.Info("Drop folder batch ready with %d file(s)", len(batch))
	w.emit(batch)
}
