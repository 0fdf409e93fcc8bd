package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/readygate/readygate/internal/ambiguity"
	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/glossary"
	"github.com/readygate/readygate/internal/session"
	"github.com/readygate/readygate/internal/store"
)

// env is the per-command working set: project root, configuration,
// glossary, and the session store.
type env struct {
	root     string
	cfg      config.Config
	glossary glossary.Provider
	db       *store.Store
}

// openEnv resolves the project root (walking up for readygate.yaml) and
// opens everything a command needs. Callers must close it.
func openEnv() (*env, error) {
	root, err := findRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.NewFileStore().Load(root)
	if err != nil {
		return nil, err
	}

	var gloss glossary.Provider
	if cfg.GlossaryPath != "" {
		gloss, err = glossary.LoadFile(filepath.Join(root, cfg.GlossaryPath))
		if err != nil {
			return nil, err
		}
	} else {
		gloss = glossary.Default()
	}

	db, err := store.New(config.StatePath(root))
	if err != nil {
		return nil, err
	}
	return &env{root: root, cfg: cfg, glossary: gloss, db: db}, nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func (e *env) engine() *session.Engine {
	return session.NewEngine(ambiguity.NewDetector(e.glossary), e.db, e.cfg.SessionOptions())
}

// resolveSession loads the named session, or the active one when id is
// empty.
func (e *env) resolveSession(id string) (*session.Session, error) {
	if strings.TrimSpace(id) == "" {
		return e.db.ActiveSession()
	}
	return e.db.LoadSession(id)
}

func saveConfig(e *env) error {
	return config.NewFileStore().Save(e.root, e.cfg)
}

func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	current := dir
	for {
		if _, err := os.Stat(config.FilePath(current)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
