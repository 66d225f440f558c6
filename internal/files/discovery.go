// Package files discovers generated BI artifacts on disk: the exported
// CSV tables, the Excel workbook and the text report.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one discovered artifact file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery lists artifact files under a base directory
type Discovery struct {
	baseDir string
}

// NewDiscovery creates a discovery instance rooted at baseDir
func NewDiscovery(baseDir string) *Discovery {
	return &Discovery{baseDir: baseDir}
}

// ListArtifacts returns all CSV, XLSX and TXT files in the base
// directory, sorted by name.
func (d *Discovery) ListArtifacts() ([]FileInfo, error) {
	return d.findByExtensions(".csv", ".xlsx", ".txt")
}

// FindCSVFiles returns all CSV files in the base directory
func (d *Discovery) FindCSVFiles() ([]FileInfo, error) {
	return d.findByExtensions(".csv")
}

// FindWorkbookFiles returns all Excel workbooks in the base directory
func (d *Discovery) FindWorkbookFiles() ([]FileInfo, error) {
	return d.findByExtensions(".xlsx")
}

func (d *Discovery) findByExtensions(exts ...string) ([]FileInfo, error) {
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.baseDir, err)
	}

	files := []FileInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !hasAnySuffix(strings.ToLower(name), exts) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(d.baseDir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func hasAnySuffix(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
