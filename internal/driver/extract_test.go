package driver

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTarGz builds a small source-tree-shaped tarball: a top-level
// directory with an executable configure script and a nested file.
func writeTarGz(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "ocaml-4.14.2/", Typeflag: tar.TypeDir, Mode: 0755,
	}))
	configure := []byte("#!/bin/sh\nexit 0\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "ocaml-4.14.2/configure", Typeflag: tar.TypeReg, Mode: 0755, Size: int64(len(configure)),
	}))
	_, err = tw.Write(configure)
	require.NoError(t, err)
	readme := []byte("hello\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "ocaml-4.14.2/utils/README", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(readme)),
	}))
	_, err = tw.Write(readme)
	require.NoError(t, err)

	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
}

func TestExtractTarGzReturnsSourceRoot(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "ocaml-4.14.2.tar.gz")
	writeTarGz(t, archive)

	dest := filepath.Join(dir, "build")
	require.NoError(t, os.MkdirAll(dest, 0755))

	root, err := Extract(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "ocaml-4.14.2"), root)

	info, err := os.Stat(filepath.Join(root, "configure"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "configure must stay executable")

	data, err := os.ReadFile(filepath.Join(root, "utils", "README"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestExtractZipReturnsSourceRoot(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "src.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("pkg-1.0/main.ml")
	require.NoError(t, err)
	_, err = w.Write([]byte("let () = ()\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0644))

	dest := t.TempDir()
	root, err := Extract(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "pkg-1.0"), root)

	_, err = os.Stat(filepath.Join(root, "main.ml"))
	assert.NoError(t, err)
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "src.rar")
	require.NoError(t, os.WriteFile(archive, []byte("junk"), 0644))

	_, err := Extract(archive, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}
