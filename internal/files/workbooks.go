// Package files discovers workbook inputs for batch analysis.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Workbook describes one discovered .xlsx input file.
type Workbook struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// DiscoverWorkbooks lists the Excel workbooks in dir, sorted by name so
// batch output order is deterministic. Subdirectories and the "~$" lock
// files Excel leaves next to open workbooks are skipped.
func DiscoverWorkbooks(dir string) ([]Workbook, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var books []Workbook
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		if strings.HasPrefix(name, "~$") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		books = append(books, Workbook{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].Name < books[j].Name
	})
	return books, nil
}
