package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are read in order; a variable already set is never overwritten, so
// the process environment wins over .env.local, which wins over .env.
var envFiles = []string{".env.local", ".env"}

// LoadDotEnv loads the project's env files. Missing files are skipped.
func LoadDotEnv(projectRoot string) error {
	var files []string
	for _, name := range envFiles {
		path := filepath.Join(projectRoot, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}
