package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "order", "order.go"), "package order\n")
	writeFile(t, filepath.Join(root, "order", "order_test.go"), "package order\n")
	writeFile(t, filepath.Join(root, "order", "repo", "repo.go"), "package repo\n")
	writeFile(t, filepath.Join(root, "docs", "README.md"), "# docs\n")
	writeFile(t, filepath.Join(root, "vendor", "x", "x.go"), "package x\n")
	writeFile(t, filepath.Join(root, "testdata", "y.go"), "package y\n")
	writeFile(t, filepath.Join(root, ".hidden", "z.go"), "package z\n")
	return root
}

func TestPackageDirs(t *testing.T) {
	root := newModule(t)
	fp := NewFileProcessor()

	dirs, err := fp.PackageDirs([]string{root}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "order"),
		filepath.Join(root, "order", "repo"),
	}, dirs)

	dirs, err = fp.PackageDirs([]string{filepath.Join(root, "order"), filepath.Join(root, "order")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "order")}, dirs)

	_, err = fp.PackageDirs([]string{filepath.Join(root, "missing")}, true)
	assert.Error(t, err)
}

func TestParseDirectoryFiles(t *testing.T) {
	root := newModule(t)
	fp := NewFileProcessor()

	files, pkg, err := fp.ParseDirectoryFiles(filepath.Join(root, "order"))
	require.NoError(t, err)
	assert.Equal(t, "order", pkg)
	assert.Len(t, files, 1)

	writeFile(t, filepath.Join(root, "mixed", "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "mixed", "b.go"), "package b\n")
	_, _, err = fp.ParseDirectoryFiles(filepath.Join(root, "mixed"))
	assert.ErrorContains(t, err, "multiple packages")

	_, _, err = fp.ParseDirectoryFiles(filepath.Join(root, "docs"))
	assert.ErrorContains(t, err, "no Go files")

	writeFile(t, filepath.Join(root, "broken", "b.go"), "package broken\nfunc {")
	_, _, err = fp.ParseDirectoryFiles(filepath.Join(root, "broken"))
	assert.ErrorContains(t, err, "failed to parse Go file")
}

func TestFileReaderCaches(t *testing.T) {
	root := newModule(t)
	reader := NewFileReader()
	path := filepath.Join(root, "order", "order.go")

	first, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	second, err := reader.ParseGoFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package order\n", content)

	astStats, contentStats := reader.CacheStats()
	assert.Equal(t, 1, astStats.Size)
	assert.EqualValues(t, 1, astStats.Hits)
	assert.Equal(t, 1, contentStats.Size)

	_, err = reader.ReadFile("")
	assert.Error(t, err)

	assert.Equal(t, "order", first.Name.Name)
	assert.Equal(t, 1, reader.Position(first.Package).Line)
}

func TestGoModParser(t *testing.T) {
	root := newModule(t)
	parser := NewGoModParser(NewFileReader())

	goMod, err := parser.FindGoModFile(filepath.Join(root, "order", "repo"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "go.mod"), goMod)

	module, err := parser.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", module)

	tests := []struct {
		dir  string
		want string
	}{
		{root, "example.com/shop"},
		{filepath.Join(root, "order"), "example.com/shop/order"},
		{filepath.Join(root, "order", "repo"), "example.com/shop/order/repo"},
	}
	for _, tt := range tests {
		got, err := parser.ImportPath(tt.dir)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err = parser.ParseModuleName(filepath.Join(root, "main.go"))
	assert.ErrorContains(t, err, "not a go.mod file")

	writeFile(t, filepath.Join(root, "nomodule", "go.mod"), "go 1.22\n")
	_, err = parser.ParseModuleName(filepath.Join(root, "nomodule", "go.mod"))
	assert.ErrorContains(t, err, "no module declaration")
}
