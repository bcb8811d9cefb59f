package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosass/sass/importer"
	"github.com/gosass/sass/internal/scanner"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestFilesystemCanonicalizeExactMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.scss", "a{b:1}")

	imp := importer.NewFilesystem(dir, nil)
	canon, ok := imp.Canonicalize("foo.scss", false)
	require.True(t, ok)
	assert.Contains(t, canon, "foo.scss")
}

func TestFilesystemCanonicalizeAppendsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.scss", "a{b:1}")

	imp := importer.NewFilesystem(dir, nil)
	canon, ok := imp.Canonicalize("foo", false)
	require.True(t, ok)
	assert.Contains(t, canon, "foo.scss")
}

func TestFilesystemCanonicalizePartialPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_partial.scss", "a{b:1}")

	imp := importer.NewFilesystem(dir, nil)
	canon, ok := imp.Canonicalize("partial", false)
	require.True(t, ok)
	assert.Contains(t, canon, "_partial.scss")
}

func TestFilesystemCanonicalizeDirectoryIndex(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "_index.scss", "a{b:1}")

	imp := importer.NewFilesystem(dir, nil)
	canon, ok := imp.Canonicalize("pkg", false)
	require.True(t, ok)
	assert.Contains(t, canon, "_index.scss")
}

func TestFilesystemCanonicalizePrefersImportVariantOnlyForImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.scss", "plain")
	writeFile(t, dir, "foo.import.scss", "import-only")

	imp := importer.NewFilesystem(dir, nil)

	canon, ok := imp.Canonicalize("foo", false)
	require.True(t, ok)
	assert.Contains(t, canon, "foo.scss")
	assert.NotContains(t, canon, ".import.scss")

	canonImport, ok := imp.Canonicalize("foo", true)
	require.True(t, ok)
	assert.Contains(t, canonImport, "foo.import.scss")
}

func TestFilesystemCanonicalizeSearchesLoadPaths(t *testing.T) {
	dir := t.TempDir()
	lib := t.TempDir()
	writeFile(t, lib, "lib.scss", "a{b:1}")

	imp := importer.NewFilesystem(dir, []string{lib})
	canon, ok := imp.Canonicalize("lib", false)
	require.True(t, ok)
	assert.Contains(t, canon, "lib.scss")
}

func TestFilesystemCanonicalizeMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	imp := importer.NewFilesystem(dir, nil)
	_, ok := imp.Canonicalize("nope", false)
	assert.False(t, ok)
}

func TestFilesystemLoadReadsContentsAndInfersSyntax(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.sass", "a\n  b: 1")

	imp := importer.NewFilesystem(dir, nil)
	canon, ok := imp.Canonicalize("foo", false)
	require.True(t, ok)

	res, ok := imp.Load(canon)
	require.True(t, ok)
	assert.Equal(t, "a\n  b: 1", res.Contents)
	assert.Equal(t, scanner.Indented, res.Syntax)
}
