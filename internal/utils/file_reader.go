package utils

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
)

// FileReader reads and parses files, caching results by cleaned path
type FileReader struct {
	fileSet      *token.FileSet
	astCache     *Cache[string, *ast.File]
	contentCache *Cache[string, string]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		fileSet:      token.NewFileSet(),
		astCache:     NewCache[string, *ast.File](),
		contentCache: NewCache[string, string](),
	}
}

// ParseGoFile parses a Go source file and returns the AST with caching
func (fr *FileReader) ParseGoFile(filePath string) (*ast.File, error) {
	cleanPath, err := cleanFilePath(filePath)
	if err != nil {
		return nil, err
	}

	return fr.astCache.GetOrCompute(cleanPath, func(path string) (*ast.File, error) {
		file, err := parser.ParseFile(fr.fileSet, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Go file %s: %w", filepath.Base(path), err)
		}
		return file, nil
	})
}

// ReadFile reads a file and returns its contents as a string with caching
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := cleanFilePath(filePath)
	if err != nil {
		return "", err
	}

	return fr.contentCache.GetOrCompute(cleanPath, func(path string) (string, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(path), err)
		}
		return string(content), nil
	})
}

// Position resolves a token position of a parsed file
func (fr *FileReader) Position(pos token.Pos) token.Position {
	return fr.fileSet.Position(pos)
}

// CacheStats returns statistics of the AST and content caches
func (fr *FileReader) CacheStats() (astFiles, contentFiles CacheStats) {
	return fr.astCache.GetStats(), fr.contentCache.GetStats()
}

func cleanFilePath(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	return filepath.Clean(filePath), nil
}
