package utils

import (
	"fmt"
	"go/ast"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileProcessor finds Go packages on disk and parses them
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a file processor with its own FileReader
func NewFileProcessor() *FileProcessor {
	return NewFileProcessorWithReader(NewFileReader())
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// Reader returns the FileReader used for parsing
func (fp *FileProcessor) Reader() *FileReader {
	return fp.fileReader
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// DefaultGoFileFilter accepts .go files, excluding tests
func DefaultGoFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
	}

	return func(path string, info fs.DirEntry) bool {
		name := info.Name()

		if (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// PackageDirs returns the directories under the given roots that contain Go
// files, sorted. Without recursion only the roots themselves are considered.
func (fp *FileProcessor) PackageDirs(roots []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true

		ok, err := fp.HasGoFiles(dir)
		if err != nil {
			return err
		}
		if ok {
			dirs = append(dirs, dir)
		}
		return nil
	}

	dirFilter := DefaultDirectoryFilter()
	for _, root := range roots {
		if !recursive {
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && !dirFilter(path, d) {
				return filepath.SkipDir
			}
			return add(path)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// HasGoFiles checks if a directory contains any non-test .go files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	files, err := fp.GoFiles(dir)
	return len(files) > 0, err
}

// GoFiles lists the non-test .go files of a directory, sorted
func (fp *FileProcessor) GoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	filter := DefaultGoFileFilter()
	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if filter(path, entry) {
			files = append(files, path)
		}
	}
	return files, nil
}

// ParseDirectoryFiles parses all Go files in a directory and returns them by
// path along with the package name
func (fp *FileProcessor) ParseDirectoryFiles(dirPath string) (map[string]*ast.File, string, error) {
	paths, err := fp.GoFiles(dirPath)
	if err != nil {
		return nil, "", err
	}

	files := make(map[string]*ast.File, len(paths))
	var packageName string
	for _, path := range paths {
		file, err := fp.fileReader.ParseGoFile(path)
		if err != nil {
			return nil, "", err
		}

		if packageName == "" {
			packageName = file.Name.Name
		} else if file.Name.Name != packageName {
			return nil, "", fmt.Errorf("multiple packages found in directory %s: %s and %s", dirPath, packageName, file.Name.Name)
		}
		files[path] = file
	}

	if len(files) == 0 {
		return nil, "", fmt.Errorf("no Go files found in directory %s", dirPath)
	}
	return files, packageName, nil
}
