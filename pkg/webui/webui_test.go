package webui_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/webassay/pkg/assay"
	"github.com/datawire/webassay/pkg/pypi"
	"github.com/datawire/webassay/pkg/testutil"
	"github.com/datawire/webassay/pkg/webassets"
	"github.com/datawire/webassay/pkg/webui"
)

var demoMembers = map[string]int{
	"demo-1.0/setup.py":           64,
	"demo-1.0/demo/static/app.js": 2 * webassets.BytesPerMB,
	"demo-1.0/demo/static/ui.css": 1 * webassets.BytesPerMB,
}

// newUIServer stands up a fake JSON index serving one package ("demo") whose
// sdist has the given members, and a webui.Server pointed at it.
func newUIServer(t *testing.T, members map[string]int) *webui.Server {
	t.Helper()

	sdist := testutil.BuildTarGz(t, members)
	sum := sha256.Sum256(sdist)
	digest := hex.EncodeToString(sum[:])

	mux := http.NewServeMux()
	mux.HandleFunc("/files/demo-1.0.tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(sdist)
	})
	mux.HandleFunc("/demo/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
  "info": {"name": "demo", "version": "1.0"},
  "releases": {
    "1.0": [
      {"filename": "demo-1.0.tar.gz", "url": "http://%s/files/demo-1.0.tar.gz",
       "packagetype": "sdist", "size": %d, "digests": {"sha256": "%s"}}
    ]
  }
}`, r.Host, len(sdist), digest)
	})
	index := httptest.NewServer(mux)
	t.Cleanup(index.Close)

	return &webui.Server{
		Assayer: assay.Assayer{
			JSON:       pypi.Client{BaseURL: index.URL},
			Classifier: webassets.NewClassifier(nil),
		},
		DefaultPackages: []string{"demo"},
	}
}

func serveRequest(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	ctx := dlog.NewTestContext(t, false)
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, demoMembers).Handler()

	rec := serveRequest(t, handler, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/analyze"`)
	// the form is seeded with the configured default packages
	assert.Contains(t, body, `value="demo"`)

	rec = serveRequest(t, handler, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzePage(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, demoMembers).Handler()

	rec := serveRequest(t, handler, "/analyze?packages=demo")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Analysis for demo")
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, "demo-1.0/demo/static/app.js")
	assert.Contains(t, body, "Total size: 3.00 MB")
	// even a single successful package gets the cumulative section
	assert.Contains(t, body, "Cumulative summary")
}

func TestAnalyzePageZeroSizeAssets(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, map[string]int{
		"demo-1.0/setup.py":         64,
		"demo-1.0/demo/static/a.js": 0,
		"demo-1.0/demo/static/b.js": 0,
	}).Handler()

	// A zero-total pie can't be drawn; the page still shows the table and
	// summary, just without that chart.
	rec := serveRequest(t, handler, "/analyze?packages=demo")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "demo-1.0/demo/static/a.js")
	assert.Contains(t, body, "Total size: 0.00 MB")
	assert.NotContains(t, body, `alt="Distribution of asset sizes by type"`)
	assert.Contains(t, body, `alt="Distribution of asset sizes">`)
}

func TestAnalyzePageErrors(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, demoMembers).Handler()

	// unknown packages render an error section, not a failed page
	rec := serveRequest(t, handler, "/analyze?packages=no-such-package")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analysis for no-such-package")

	// no packages at all bounces back to the form
	rec = serveRequest(t, handler, "/analyze?packages=")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAPIAnalyze(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, demoMembers).Handler()

	rec := serveRequest(t, handler, "/api/analyze?packages=demo")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var reports []struct {
		webassets.Report
		Error   string `json:"error"`
		Summary struct {
			Count    int     `json:"count"`
			TotalMB  float64 `json:"total_mb"`
			MeanMB   float64 `json:"mean_mb"`
			MedianMB float64 `json:"median_mb"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "demo", reports[0].Package)
	assert.Equal(t, "1.0", reports[0].Version)
	assert.Empty(t, reports[0].Error)
	assert.Equal(t, 2, reports[0].Summary.Count)
	assert.InDelta(t, 3.0, reports[0].Summary.TotalMB, 0.001)
	assert.InDelta(t, 1.5, reports[0].Summary.MeanMB, 0.001)

	rec = serveRequest(t, handler, "/api/analyze")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, demoMembers).Handler()
	rec := serveRequest(t, handler, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStatic(t *testing.T) {
	t.Parallel()
	handler := newUIServer(t, demoMembers).Handler()
	rec := serveRequest(t, handler, "/static/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "body")
}
