package main

import (
	"io"
	"os"
	"path/filepath"
)

// ReadSdist reads a local sdist into memory, returning the filename the
// archive-format detection should see along with the contents.  A filename
// of "-" reads stdin; there is no real name to sniff a format from in that
// case, so stdin is assumed to be a gzipped tarball.
func ReadSdist(filename string) (string, []byte, error) {
	if filename == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, err
		}
		return "stdin.tar.gz", content, nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(filename), content, nil
}
