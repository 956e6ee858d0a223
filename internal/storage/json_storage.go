package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var errCorruptFile = errors.New("store file is not a JSON object")

// JSONStorage keeps all keys in a single JSON object on disk
type JSONStorage struct {
	filePath string
	values   map[string]json.RawMessage
	mutex    sync.RWMutex
	logger   *zap.Logger

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewJSONStorage opens (or creates) the store file and starts watching it
func NewJSONStorage(filePath string, logger *zap.Logger) (*JSONStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &JSONStorage{
		filePath: absPath,
		values:   make(map[string]json.RawMessage),
		logger:   logger.With(zap.String("store", absPath)),
		done:     make(chan struct{}),
	}

	if _, err := os.Stat(absPath); !os.IsNotExist(err) {
		if err := s.load(); err != nil {
			if !errors.Is(err, errCorruptFile) {
				return nil, err
			}
			// A corrupt file degrades to an empty store; the next Save rewrites it.
			s.logger.Warn("starting with an empty store", zap.Error(err))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("file watcher unavailable, external changes will not be picked up", zap.Error(err))
		return s, nil
	}
	// Watch the directory: atomic renames replace the file inode.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		s.logger.Warn("cannot watch store directory", zap.String("dir", dir), zap.Error(err))
		return s, nil
	}
	s.watcher = watcher
	go s.watchFile()

	return s, nil
}

// watchFile reloads the in-memory view when another process rewrites the file
func (s *JSONStorage) watchFile() {
	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Give the writer a moment to finish
			time.Sleep(50 * time.Millisecond)

			s.mutex.Lock()
			err := s.load()
			s.mutex.Unlock()

			if err != nil {
				s.logger.Warn("reloading store file", zap.Error(err))
			} else {
				s.logger.Debug("store file reloaded")
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// load replaces the in-memory view with the file contents
func (s *JSONStorage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.values = make(map[string]json.RawMessage)
			return nil
		}
		return err
	}

	values := make(map[string]json.RawMessage)
	if len(data) == 0 {
		s.values = values
		return nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: %v", errCorruptFile, err)
	}

	s.values = values
	return nil
}

// Load decodes the value stored under key into dst
func (s *JSONStorage) Load(key string, dst any) (bool, error) {
	s.mutex.RLock()
	raw, exists := s.values[key]
	s.mutex.RUnlock()

	if !exists {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("discarding undecodable value", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Save serializes value under key and writes the whole file
func (s *JSONStorage) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	previous, existed := s.values[key]
	s.values[key] = data

	if err := s.saveWithoutLock(); err != nil {
		if existed {
			s.values[key] = previous
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// saveWithoutLock writes a temp file and renames it over the store file
func (s *JSONStorage) saveWithoutLock() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

// Close stops the file watcher
func (s *JSONStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

var _ Store = (*JSONStorage)(nil)
