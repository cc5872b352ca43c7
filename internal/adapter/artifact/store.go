// Package artifact manages the on-disk output directory: raw HTML debug
// artifacts from each fetched month and the final workbook path.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes pipeline outputs under a single directory. Directory creation
// happens once in EnsureDir at pipeline start, not as a side effect of each
// write.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. Call EnsureDir before writing.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output directory path.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the output directory if absent. Idempotent.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure output dir %s: %w", s.dir, err)
	}
	return nil
}

// SaveHTML persists the raw bytes of a fetched monthly page as
// {city}{yearMonth}.html and returns the written path.
func (s *Store) SaveHTML(citySlug, yearMonth string, body []byte) (string, error) {
	path := filepath.Join(s.dir, citySlug+yearMonth+".html")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("save debug artifact %s: %w", path, err)
	}
	return path, nil
}

// WorkbookPath returns the fixed output path for a city's exported workbook.
func (s *Store) WorkbookPath(citySlug string) string {
	return filepath.Join(s.dir, citySlug+"Last30DaysWeather.xlsx")
}
