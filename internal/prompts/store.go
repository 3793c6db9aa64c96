// Package prompts holds the instruction sets sent to the generation
// service. Defaults are compiled in; an operator can override any of them
// through a YAML file that is hot-reloaded on change, so prompt tuning does
// not require a rollout.
package prompts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Set is the YAML shape of a prompt override file. Empty fields keep the
// compiled-in default.
type Set struct {
	Router   string `yaml:"router"`
	Research string `yaml:"research"`
	Planner  string `yaml:"planner"`
	Section  string `yaml:"section"`
}

// Store serves the current prompt set. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	set    Set
	path   string
	logger *zap.Logger
}

func defaults() Set {
	return Set{
		Router:   defaultRouter,
		Research: defaultResearch,
		Planner:  defaultPlanner,
		Section:  defaultSection,
	}
}

// NewStore builds a Store. path may be empty (defaults only) or point to a
// YAML override file; a missing file is not an error, it just means no
// overrides yet.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{set: defaults(), path: path, logger: logger}
	if path != "" {
		if err := s.reload(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load prompt overrides: %w", err)
		}
	}
	return s, nil
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var overrides Set
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	next := defaults()
	if overrides.Router != "" {
		next.Router = overrides.Router
	}
	if overrides.Research != "" {
		next.Research = overrides.Research
	}
	if overrides.Planner != "" {
		next.Planner = overrides.Planner
	}
	if overrides.Section != "" {
		next.Section = overrides.Section
	}

	s.mu.Lock()
	s.set = next
	s.mu.Unlock()
	return nil
}

// Watch hot-reloads the override file until ctx is done. A broken edit
// keeps the previous set; the error is logged, never fatal.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	// Watch the directory: editors replace files instead of writing in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					s.logger.Warn("Prompt override reload failed", zap.Error(err))
					continue
				}
				s.logger.Info("Prompt overrides reloaded", zap.String("file", s.path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Prompt watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (s *Store) get() Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Router returns the routing instruction set.
func (s *Store) Router() string { return s.get().Router }

// Research returns the evidence-extraction instruction set.
func (s *Store) Research() string { return s.get().Research }

// Planner returns the outline-planning instruction set.
func (s *Store) Planner() string { return s.get().Planner }

// Section returns the section-writer instruction set.
func (s *Store) Section() string { return s.get().Section }
