// Package sdist reads the member listings of Python source distributions.
//
// Sizes come from archive metadata (tar headers, zip central directory), so
// walking an sdist never inflates member contents and never touches disk.
package sdist

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// File is one regular file inside an sdist.  The Path is as recorded in the
// archive, which for well-formed sdists means it starts with a
// ``{name}-{version}/`` directory.
type File struct {
	Path string
	Size int64
}

// Walk calls fn for every regular file in the archive.  The archive format
// is chosen from the filename suffix; sdists have been published as
// .tar.gz/.tgz, .tar.bz2, bare .tar, and (long ago) .zip.
func Walk(filename string, content []byte, fn func(File) error) error {
	switch {
	case strings.HasSuffix(filename, ".tar.gz") || strings.HasSuffix(filename, ".tgz"):
		zr, err := gzip.NewReader(bytes.NewReader(content))
		if err != nil {
			return fmt.Errorf("sdist %q: %w", filename, err)
		}
		defer func() {
			_ = zr.Close()
		}()
		return walkTar(filename, zr, fn)
	case strings.HasSuffix(filename, ".tar.bz2") || strings.HasSuffix(filename, ".tbz2"):
		return walkTar(filename, bzip2.NewReader(bytes.NewReader(content)), fn)
	case strings.HasSuffix(filename, ".tar"):
		return walkTar(filename, bytes.NewReader(content), fn)
	case strings.HasSuffix(filename, ".zip"):
		return walkZip(filename, content, fn)
	default:
		return fmt.Errorf("sdist %q: unrecognized archive suffix", filename)
	}
}

func walkTar(filename string, reader io.Reader, fn func(File) error) error {
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("sdist %q: %w", filename, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(File{Path: header.Name, Size: header.Size}); err != nil {
			return err
		}
	}
}

func walkZip(filename string, content []byte, fn func(File) error) error {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("sdist %q: %w", filename, err)
	}
	for _, member := range zipReader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if err := fn(File{
			Path: member.Name,
			Size: int64(member.UncompressedSize64),
		}); err != nil {
			return err
		}
	}
	return nil
}
