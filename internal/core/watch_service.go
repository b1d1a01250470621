package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// WatchService reruns the check whenever openapi.yml or the documents
// directory changes.
type WatchService struct {
	configStore ConfigStore
	ui          UICallback
	log         *logrus.Logger

	// debounce is how long a burst of events must be quiet before the
	// callback runs.
	debounce time.Duration
}

// NewWatchService creates a WatchService.
func NewWatchService(configStore ConfigStore, ui UICallback, log *logrus.Logger) *WatchService {
	return &WatchService{configStore: configStore, ui: ui, log: log, debounce: time.Second}
}

// Watch blocks, invoking callback after each burst of changes, until ctx
// is cancelled. Rapid changes are debounced so one save triggers one run.
func (s *WatchService) Watch(ctx context.Context, documentsDir string, callback func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	configPath := s.configStore.Path()
	if !filepath.IsAbs(documentsDir) {
		// The configured path is relative to the repository root, where
		// openapi.yml lives; the process may be running in a subdirectory.
		documentsDir = filepath.Join(filepath.Dir(configPath), documentsDir)
	}
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(configPath), err)
	}
	if err := addDocumentsDir(watcher, documentsDir); err != nil {
		return err
	}

	s.ui.ShowInfo(fmt.Sprintf("Watching %s and %s... press Ctrl+C to stop", configPath, documentsDir))

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.relevant(event, configPath) {
				continue
			}
			// A new per-service subdirectory needs its own watch.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.debounce, func() {
				s.log.WithField("path", event.Name).Debug("change detected")
				if err := callback(); err != nil {
					s.ui.ShowError("Check failed", err.Error())
				}
				s.ui.ShowInfo("Still watching for changes...")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("watch error")
		}
	}
}

// relevant filters out noise: only the config file and document files
// matter, and temp files from atomic writes do not.
func (s *WatchService) relevant(event fsnotify.Event, configPath string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if event.Name == configPath {
		return true
	}
	return strings.HasSuffix(base, ".json") ||
		strings.HasSuffix(base, types.GitRefSuffix) ||
		!strings.Contains(base, ".")
}

func addDocumentsDir(watcher *fsnotify.Watcher, documentsDir string) error {
	if err := watcher.Add(documentsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", documentsDir, err)
	}
	entries, err := os.ReadDir(documentsDir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = watcher.Add(filepath.Join(documentsDir, e.Name()))
		}
	}
	return nil
}
