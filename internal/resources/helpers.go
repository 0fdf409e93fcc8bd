package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/readygate/readygate/internal/config"
)

// findRoot walks up from cwd looking for readygate/readygate.yaml.
// Falls back to cwd when no project marker exists.
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
