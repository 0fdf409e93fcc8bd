// Package tools implements the MCP tool handlers for the readiness gate.
//
// Each file holds one tool. Tools receive their dependencies through their
// struct and stay thin: parse arguments, drive the engine, persist, format.
package tools

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

// findProjectRoot walks up from the current working directory looking for
// an existing readygate/readygate.yaml. If none is found, returns cwd so
// a fresh project starts where the caller stands.
func findProjectRoot() (string, error) {
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

// Env bundles the per-call working set every tool needs: configuration,
// glossary, and the session store rooted at the project.
type Env struct {
	Root     string
	Config   config.Config
	Glossary glossary.Provider
	DB       *store.Store
}

// loadEnv resolves the project root and loads configuration, glossary and
// session store.
func loadEnv(cfgStore config.Store) (*Env, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := cfgStore.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var gloss glossary.Provider
	if cfg.GlossaryPath != "" {
		gloss, err = glossary.LoadFile(filepath.Join(root, cfg.GlossaryPath))
		if err != nil {
			return nil, fmt.Errorf("loading glossary: %w", err)
		}
	} else {
		gloss = glossary.Default()
	}

	db, err := store.New(config.StatePath(root))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	return &Env{Root: root, Config: cfg, Glossary: gloss, DB: db}, nil
}

// Close releases the environment's store handle.
func (e *Env) Close() {
	if e.DB != nil {
		e.DB.Close()
	}
}

// engine builds a session engine wired to this environment's store as the
// pattern source.
func (e *Env) engine() *session.Engine {
	detector := ambiguity.NewDetector(e.Glossary)
	var patterns session.PatternSource
	if e.DB != nil {
		patterns = e.DB
	}
	return session.NewEngine(detector, patterns, e.Config.SessionOptions())
}

// resolveSession loads the named session, or the active one when id is
// empty.
func (e *Env) resolveSession(id string) (*session.Session, error) {
	if strings.TrimSpace(id) == "" {
		return e.DB.ActiveSession()
	}
	return e.DB.LoadSession(id)
}

// splitCSV parses a comma-separated argument into trimmed entries.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
