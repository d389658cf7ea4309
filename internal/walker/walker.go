package walker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the maximum page size to process (8 MB).
const DefaultMaxFileSize int64 = 8 << 20

// FileInfo holds metadata about a single page discovered during traversal.
type FileInfo struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to the site root.
	Size    int64  // File size in bytes.
	Root    string // Relative prefix from the page back to the site root ("" or "../", "../../", ...).
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir     string   // Root directory of the built site.
	Include     []string // Glob patterns; only matching files are included.
	Exclude     []string // Glob patterns; matching files are excluded.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
}

// Walk traverses the built site rooted at config.RootDir and returns every
// page that passes filtering, sorted by relative path. Binary files and
// files above the size limit are skipped.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !MatchesInclude(relPath, config.Include) {
			return nil
		}
		if MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		files = append(files, FileInfo{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			Root:    RootPrefix(relPath),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// RootPrefix returns the relative path from a page back to the site root.
func RootPrefix(relPath string) string {
	depth := strings.Count(filepath.ToSlash(relPath), "/")
	return strings.Repeat("../", depth)
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true // treat unreadable files as binary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}
