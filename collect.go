package rowtmpl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// CollectFiles expands paths into the supported source files they name.
// Directories are walked recursively and files of unsupported types inside
// them are ignored; a file given explicitly must be supported. A file that
// is reachable twice is listed once. When a directory holds both data.csv
// and data.csv.gz, only the uncompressed copy is kept.
func CollectFiles(paths ...string) ([]string, error) {
	var collected []string
	seen := make(map[string]bool)

	for _, path := range paths {
		if err := validatePath(path); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			dirFiles, err := collectFilesFromDirectory(path, seen)
			if err != nil {
				return nil, err
			}
			collected = append(collected, dirFiles...)
			continue
		}
		if err := addSingleFile(path, seen, &collected); err != nil {
			return nil, err
		}
	}

	return collected, nil
}

// validatePath validates a single file or directory path
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return openError(path, fmt.Errorf("path does not exist: %w", err))
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	if !info.IsDir() && !IsSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// collectFilesFromDirectory recursively collects all supported files from a directory
func collectFilesFromDirectory(dirPath string, seen map[string]bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dirPath, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSupportedFile(filePath) {
			return nil
		}
		found = append(found, filePath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	var collected []string
	for _, filePath := range deduplicateCompressedFiles(found) {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
		}
		if !seen[absPath] {
			seen[absPath] = true
			collected = append(collected, filePath)
		}
	}
	return collected, nil
}

// addSingleFile adds filePath unless it was collected before
func addSingleFile(filePath string, seen map[string]bool, collected *[]string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if !seen[absPath] {
		seen[absPath] = true
		*collected = append(*collected, filePath)
	}
	return nil
}

// deduplicateCompressedFiles removes compressed files when their uncompressed
// versions exist. The result is sorted.
func deduplicateCompressedFiles(files []string) []string {
	plain := make(map[string]bool)
	for _, f := range files {
		if !newFile(f).isCompressed() {
			plain[f] = true
		}
	}

	result := make([]string, 0, len(files))
	for _, f := range files {
		if newFile(f).isCompressed() && plain[removeCompressionExtension(f)] {
			continue
		}
		result = append(result, f)
	}
	slices.Sort(result)
	return result
}
