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

// newSimpleIndex serves a PEP 503 project page for "demo" with a mix of
// wheels, yanked files, prereleases, and proper sdists.
func newSimpleIndex(t *testing.T, sdistContent []byte) *httptest.Server {
	t.Helper()
	sum := sha256.Sum256(sdistContent)
	digest := hex.EncodeToString(sum[:])

	mux := http.NewServeMux()
	for _, filename := range []string{
		"demo-0.9.tar.gz",
		"demo-1.0.tar.gz",
		"demo-2.0rc1.tar.gz",
	} {
		filename := filename
		mux.HandleFunc("/files/"+filename, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(sdistContent)
		})
	}
	mux.HandleFunc("/demo/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
  <head><title>Links for demo</title></head>
  <body>
    <h1>Links for demo</h1>
    <a href="../files/demo-0.9.tar.gz#sha256=%[1]s">demo-0.9.tar.gz</a><br/>
    <a href="../files/demo-1.0.tar.gz#sha256=%[1]s">demo-1.0.tar.gz</a><br/>
    <a href="../files/demo-1.0-py3-none-any.whl">demo-1.0-py3-none-any.whl</a><br/>
    <a href="../files/demo-1.5.tar.gz" data-yanked="broken release">demo-1.5.tar.gz</a><br/>
    <a href="../files/demo-2.0rc1.tar.gz#sha256=%[1]s">demo-2.0rc1.tar.gz</a><br/>
  </body>
</html>`, digest)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSimpleListPackageFiles(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	server := newSimpleIndex(t, []byte("tarball"))
	client := pypi.SimpleClient{BaseURL: server.URL}

	links, err := client.ListPackageFiles(ctx, "Demo")
	require.NoError(t, err)
	require.Len(t, links, 5)
	assert.Equal(t, "demo-0.9.tar.gz", links[0].Text)
	// hrefs resolve relative to the page that served them
	assert.Equal(t, server.URL+"/files/demo-0.9.tar.gz#sha256="+sha256Hex([]byte("tarball")),
		links[0].HRef)
	assert.Equal(t, "broken release", links[3].DataAttrs["data-yanked"])
}

func TestSimpleListPackageFilesBadName(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	client := pypi.SimpleClient{BaseURL: "http://localhost:1"}
	_, err := client.ListPackageFiles(ctx, "bad name!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "illegal character")
}

func TestSimpleSelectSdist(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	server := newSimpleIndex(t, []byte("tarball"))
	client := pypi.SimpleClient{BaseURL: server.URL}

	t.Run("latest-stable", func(t *testing.T) {
		t.Parallel()
		// 2.0rc1 is newer but is a prerelease; 1.5 is yanked
		link, version, err := client.SelectSdist(ctx, "demo", "")
		require.NoError(t, err)
		assert.Equal(t, "demo-1.0.tar.gz", link.Text)
		assert.Equal(t, "1.0", version)
	})
	t.Run("exact-version", func(t *testing.T) {
		t.Parallel()
		link, version, err := client.SelectSdist(ctx, "demo", "0.9")
		require.NoError(t, err)
		assert.Equal(t, "demo-0.9.tar.gz", link.Text)
		assert.Equal(t, "0.9", version)
	})
	t.Run("missing-version", func(t *testing.T) {
		t.Parallel()
		_, _, err := client.SelectSdist(ctx, "demo", "3.0")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no source distribution found")
	})
	t.Run("get-verifies-fragment", func(t *testing.T) {
		t.Parallel()
		link, _, err := client.SelectSdist(ctx, "demo", "")
		require.NoError(t, err)
		content, err := client.Get(ctx, link)
		require.NoError(t, err)
		assert.Equal(t, []byte("tarball"), content)
	})
}

func TestSimpleGetChecksumMismatch(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	mux := http.NewServeMux()
	mux.HandleFunc("/files/demo-1.0.tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tampered"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := pypi.SimpleClient{BaseURL: server.URL}
	_, err := client.Get(ctx, pypi.Link{
		Text: "demo-1.0.tar.gz",
		HRef: server.URL + "/files/demo-1.0.tar.gz#sha256=" + sha256Hex([]byte("original")),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestSimplePrereleaseFallback(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	mux := http.NewServeMux()
	mux.HandleFunc("/demo/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="../files/demo-1.0b2.tar.gz">demo-1.0b2.tar.gz</a>
<a href="../files/demo-1.0b1.tar.gz">demo-1.0b1.tar.gz</a>
</body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := pypi.SimpleClient{BaseURL: server.URL}
	link, version, err := client.SelectSdist(ctx, "demo", "")
	require.NoError(t, err)
	assert.Equal(t, "demo-1.0b2.tar.gz", link.Text)
	assert.Equal(t, "1.0b2", version)
}

func sha256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
