package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// importDir is the subdirectory scanned for bank exports.
const importDir = "import"

// processedDir is where ingested exports are moved.
const processedDir = "import/processed"

// Scan returns CSV files in <ledgerRoot>/import/.
func Scan(ledgerRoot string) ([]FileInfo, error) {
	dir := filepath.Join(ledgerRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
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

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(ledgerRoot, fileName string) error {
	src := filepath.Join(ledgerRoot, importDir, fileName)
	dstDir := filepath.Join(ledgerRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
