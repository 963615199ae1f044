package archive

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	name    string
	body    string
	mode    os.FileMode
	dir     bool
	symlink string
}

func writeZip(t *testing.T, path string, files []testFile) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.name, Method: zip.Deflate}
		mode := f.mode
		if mode == 0 {
			mode = 0o644
		}
		if f.dir {
			mode = os.ModeDir | 0o755
		}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if !f.dir {
			_, err = w.Write([]byte(f.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeTarGz(t *testing.T, path string, files []testFile) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, f := range files {
		hdr := &tar.Header{Name: f.name, Mode: int64(f.mode)}
		switch {
		case f.dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
		case f.symlink != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = f.symlink
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(f.body))
			if hdr.Mode == 0 {
				hdr.Mode = 0o644
			}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(f.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"apache-maven-3.9.11-bin.zip", FormatZip},
		{"fernflower.jar", FormatZip},
		{"OpenJDK23U-jdk_x64_linux_hotspot_23.0.2_7.tar.gz", FormatTarGzip},
		{"LuxDelux-linux.tgz", FormatTarGzip},
		{"LUXDELUX.TGZ", FormatTarGzip},
		{"notes.txt", FormatUnknown},
		{"noext", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.path))
		})
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "apache-maven-bin.zip")
	writeZip(t, archive, []testFile{
		{name: "apache-maven/", dir: true},
		{name: "apache-maven/bin/mvn", body: "#!/bin/sh\n", mode: 0o755},
		{name: "apache-maven/conf/settings.xml", body: "<settings/>"},
	})
	dest := filepath.Join(dir, "out")

	require.NoError(t, Extract(archive, dest))

	assert.Equal(t, "<settings/>", readFile(t, filepath.Join(dest, "apache-maven", "conf", "settings.xml")))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dest, "apache-maven", "bin", "mvn"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jdk.tar.gz")
	writeTarGz(t, archive, []testFile{
		{name: "./", dir: true},
		{name: "jdk-23.0.2+7/", dir: true},
		{name: "jdk-23.0.2+7/bin/java", body: "ELF", mode: 0o755},
		{name: "jdk-23.0.2+7/release", body: "JAVA_VERSION=23"},
		{name: "jdk-23.0.2+7/legal/java.base", symlink: "../release"},
	})
	dest := filepath.Join(dir, "out")

	require.NoError(t, Extract(archive, dest))

	assert.Equal(t, "JAVA_VERSION=23", readFile(t, filepath.Join(dest, "jdk-23.0.2+7", "release")))
	assert.Equal(t, "JAVA_VERSION=23", readFile(t, filepath.Join(dest, "jdk-23.0.2+7", "legal", "java.base")))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dest, "jdk-23.0.2+7", "bin", "java"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}

func TestExtractErrors(t *testing.T) {
	t.Run("unsupported suffix", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.rar")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		err := Extract(path, filepath.Join(dir, "out"))

		var unsupported *UnsupportedFormatError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, path, unsupported.Path)
	})

	t.Run("zip entry escaping destination", func(t *testing.T) {
		dir := t.TempDir()
		archive := filepath.Join(dir, "evil.zip")
		writeZip(t, archive, []testFile{{name: "../evil.txt", body: "x"}})

		err := Extract(archive, filepath.Join(dir, "out"))

		var unsafe *UnsafePathError
		require.ErrorAs(t, err, &unsafe)
		assert.Equal(t, "../evil.txt", unsafe.Entry)
		assert.NoFileExists(t, filepath.Join(dir, "evil.txt"))
	})

	t.Run("tar symlink escaping destination", func(t *testing.T) {
		dir := t.TempDir()
		archive := filepath.Join(dir, "evil.tgz")
		writeTarGz(t, archive, []testFile{{name: "link", symlink: "../../etc/passwd"}})

		err := Extract(archive, filepath.Join(dir, "out"))

		var unsafe *UnsafePathError
		assert.ErrorAs(t, err, &unsafe)
	})

	t.Run("tar symlink chain escaping destination", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks are copied on windows")
		}
		base := t.TempDir()
		archive := filepath.Join(base, "chain.tgz")
		writeTarGz(t, archive, []testFile{
			{name: "sub/", dir: true},
			{name: "sub/c", symlink: ".."},
			{name: "d", symlink: "sub/c/.."},
			{name: "d/evil.txt", body: "x"},
		})

		err := Extract(archive, filepath.Join(base, "dest"))

		var extractErr *ExtractError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "d/evil.txt", extractErr.Entry)
		assert.NoFileExists(t, filepath.Join(base, "evil.txt"))
	})

	t.Run("tar hard link escaping destination", func(t *testing.T) {
		dir := t.TempDir()
		archive := filepath.Join(dir, "hardlink.tgz")
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		tw := tar.NewWriter(gz)
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: "passwd", Typeflag: tar.TypeLink, Linkname: "../secret"}))
		require.NoError(t, tw.Close())
		require.NoError(t, gz.Close())
		require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0o644))

		err := Extract(archive, filepath.Join(dir, "out"))

		var unsafe *UnsafePathError
		require.ErrorAs(t, err, &unsafe)
		assert.Equal(t, "passwd", unsafe.Entry)
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.tgz")
		require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))

		err := Extract(path, filepath.Join(dir, "out"))

		var extractErr *ExtractError
		assert.ErrorAs(t, err, &extractErr)
	})
}
