package app

import (
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/crosslint/crosslint/internal/lang"
)

// FileHelper collects analyzable source files from a workspace
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectFiles collects files with a recognized language from the given
// paths. Exclude patterns match directory or file base names; a workspace
// .gitignore is honored when respectGitignore is set. The result is sorted
// for deterministic unit dispatch.
func (h *FileHelper) CollectFiles(workspaceRoot string, paths []string, recursive bool, includePatterns, excludePatterns []string, respectGitignore bool) ([]string, error) {
	var matcher *ignore.GitIgnore
	if respectGitignore {
		root := workspaceRoot
		if root == "" {
			root = "."
		}
		// A missing .gitignore simply disables filtering
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		}
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.accepts(path, includePatterns, excludePatterns, matcher) {
				files = append(files, path)
			}
			continue
		}

		if recursive {
			err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					if isExcludedDir(filepath.Base(filePath), excludePatterns) {
						return filepath.SkipDir
					}
					return nil
				}
				if h.accepts(filePath, includePatterns, excludePatterns, matcher) {
					files = append(files, filePath)
				}
				return nil
			})
		} else {
			var entries []os.DirEntry
			entries, err = os.ReadDir(path)
			if err == nil {
				for _, entry := range entries {
					if entry.IsDir() {
						continue
					}
					filePath := filepath.Join(path, entry.Name())
					if h.accepts(filePath, includePatterns, excludePatterns, matcher) {
						files = append(files, filePath)
					}
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (h *FileHelper) accepts(path string, includePatterns, excludePatterns []string, matcher *ignore.GitIgnore) bool {
	if _, ok := lang.FromExtension(path); !ok {
		return false
	}
	base := filepath.Base(path)
	for _, pattern := range excludePatterns {
		if pattern == base {
			return false
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	if len(includePatterns) > 0 {
		included := false
		for _, pattern := range includePatterns {
			if matched, _ := filepath.Match(pattern, base); matched {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	if matcher != nil && matcher.MatchesPath(path) {
		return false
	}
	return true
}

func isExcludedDir(name string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if pattern == name {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
