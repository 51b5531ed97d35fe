// Package importer locates statement files and reads raw rows from sheet grids.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// importDir is the subdirectory for incoming statements.
const importDir = "import"

// processedDir is the subdirectory for processed statements.
const processedDir = "import/processed"

// Extensions lists the statement file types Scan picks up.
var Extensions = []string{".xlsx", ".csv"}

// ImportDir returns <root>/import.
func ImportDir(root string) string {
	return filepath.Join(root, importDir)
}

// ProcessedDir returns <root>/import/processed.
func ProcessedDir(root string) string {
	return filepath.Join(root, processedDir)
}

// Scan returns statement files in <root>/import/, sorted by name.
func Scan(root string) ([]FileInfo, error) {
	dir := ImportDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !isStatement(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

func isStatement(name string) bool {
	// Skip lock files left behind by spreadsheet editors.
	if strings.HasPrefix(name, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(ImportDir(root), fileName)
	dstDir := ProcessedDir(root)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
