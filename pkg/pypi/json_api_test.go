package pypi_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/webassay/pkg/pypi"
)

// newJSONIndex serves a single-project JSON index with one sdist whose
// content (and sha256) the caller controls.
func newJSONIndex(t *testing.T, sdistContent []byte, digest string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/demo-1.2.0.tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(sdistContent)
	})
	mux.HandleFunc("/demo/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
  "info": {"name": "demo", "version": "1.2.0"},
  "releases": {
    "1.0.0": [
      {"filename": "demo-1.0.0-py3-none-any.whl", "url": "http://%[1]s/files/none", "packagetype": "bdist_wheel"}
    ],
    "1.1.0": [
      {"filename": "demo-1.1.0.tar.gz", "url": "http://%[1]s/files/none", "packagetype": "sdist", "yanked": true}
    ],
    "1.2.0": [
      {"filename": "demo-1.2.0-py3-none-any.whl", "url": "http://%[1]s/files/none", "packagetype": "bdist_wheel"},
      {"filename": "demo-1.2.0.tar.gz", "url": "http://%[1]s/files/demo-1.2.0.tar.gz", "packagetype": "sdist",
       "size": %[2]d, "digests": {"sha256": "%[3]s"}}
    ]
  }
}`, r.Host, len(sdistContent), digest)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestJSONProject(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	require.NotNil(t, ctx)

	content := []byte("pretend this is a tarball")
	sum := sha256.Sum256(content)
	server := newJSONIndex(t, content, hex.EncodeToString(sum[:]))
	client := pypi.Client{BaseURL: server.URL}

	proj, err := client.Project(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", proj.Info.Name)
	assert.Equal(t, "1.2.0", proj.Info.Version)

	t.Run("latest", func(t *testing.T) {
		file, version, err := proj.Sdist("")
		require.NoError(t, err)
		assert.Equal(t, "1.2.0", version)
		assert.Equal(t, "demo-1.2.0.tar.gz", file.Filename)
	})
	t.Run("no-sdist", func(t *testing.T) {
		_, _, err := proj.Sdist("1.0.0")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no source distribution found")
	})
	t.Run("yanked", func(t *testing.T) {
		_, _, err := proj.Sdist("1.1.0")
		assert.Error(t, err)
	})
	t.Run("unknown-version", func(t *testing.T) {
		_, _, err := proj.Sdist("9.9.9")
		assert.Error(t, err)
	})
	t.Run("download", func(t *testing.T) {
		file, _, err := proj.Sdist("")
		require.NoError(t, err)
		got, err := client.Download(ctx, file)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})
}

func TestJSONDownloadChecksumMismatch(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	content := []byte("pretend this is a tarball")
	server := newJSONIndex(t, content, "deadbeef")
	client := pypi.Client{BaseURL: server.URL}

	proj, err := client.Project(ctx, "demo")
	require.NoError(t, err)
	file, _, err := proj.Sdist("")
	require.NoError(t, err)

	_, err = client.Download(ctx, file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestJSONProjectNotFound(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	client := pypi.Client{BaseURL: server.URL}

	_, err := client.Project(ctx, "no-such-package")
	assert.Error(t, err)
	var httpErr *pypi.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}
