// Package webui implements the interactive web UI: a package-name form, and
// a results page with per-package charts, asset tables, and summaries.
package webui

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/webassay/pkg/assay"
	"github.com/datawire/webassay/pkg/charts"
	"github.com/datawire/webassay/pkg/webassets"
)

//go:embed templates/index.html static/style.css
var files embed.FS

var pageTmpl = template.Must(template.ParseFS(files, "templates/index.html"))

// Server serves the web UI.  Charts are rendered server-side and inlined in
// the results page as data URIs; no state survives a request.
type Server struct {
	Assayer         assay.Assayer
	DefaultPackages []string
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/analyze", s.serveAnalyze)
	mux.HandleFunc("/api/analyze", s.serveAPIAnalyze)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/static/", http.FileServer(http.FS(files)))
	return mux
}

type page struct {
	Packages string
	Sections []section
}

type section struct {
	Title   string
	Err     string
	Warning string
	PiePNG  template.URL
	HistPNG template.URL
	Assets  []assetRow
	Summary *summary
}

type assetRow struct {
	Path   string
	Ext    string
	SizeMB string
}

type summary struct {
	Count    int
	TotalMB  string
	MeanMB   string
	MedianMB string
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, r, page{
		Packages: strings.Join(s.DefaultPackages, ","),
	})
}

func (s *Server) serveAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	specs := splitPackagesParam(r.FormValue("packages"))
	if len(specs) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := page{
		Packages: r.FormValue("packages"),
	}
	var analyzed []webassets.Report
	for _, spec := range specs {
		sec := section{Title: "Analysis for " + spec}
		report, err := s.Assayer.Assay(ctx, spec)
		switch {
		case err != nil:
			dlog.Errorf(ctx, "analyze %q: %v", spec, err)
			sec.Err = err.Error()
		case report.Count() == 0:
			sec.Warning = "No web assets found in package"
		default:
			fillSection(ctx, &sec, report)
			analyzed = append(analyzed, report)
		}
		data.Sections = append(data.Sections, sec)
	}

	if len(analyzed) > 0 {
		sec := section{Title: "Cumulative summary"}
		fillSection(ctx, &sec, webassets.Merge(analyzed...))
		data.Sections = append(data.Sections, sec)
	}

	s.renderPage(w, r, data)
}

// fillSection renders the section's charts, table, and summary.  A chart
// that can't be rendered (all assets zero bytes, say) is logged and left off
// the page; the table and summary still show.
func fillSection(ctx context.Context, sec *section, report webassets.Report) {
	if png, err := charts.RenderPNG(charts.Pie(report)); err != nil {
		dlog.Warnf(ctx, "render type chart for %q: %v", report.Package, err)
	} else {
		sec.PiePNG = pngDataURI(png)
	}
	if png, err := charts.RenderPNG(charts.SizeHistogram(report, webassets.DefaultBins)); err != nil {
		dlog.Warnf(ctx, "render size chart for %q: %v", report.Package, err)
	} else {
		sec.HistPNG = pngDataURI(png)
	}
	for _, asset := range report.SortedBySize() {
		sec.Assets = append(sec.Assets, assetRow{
			Path:   asset.Path,
			Ext:    asset.Ext,
			SizeMB: fmt.Sprintf("%.2f", webassets.MB(asset.Size)),
		})
	}
	sec.Summary = &summary{
		Count:    report.Count(),
		TotalMB:  fmt.Sprintf("%.2f", webassets.MB(report.TotalSize())),
		MeanMB:   fmt.Sprintf("%.2f", report.MeanSize()/webassets.BytesPerMB),
		MedianMB: fmt.Sprintf("%.2f", report.MedianSize()/webassets.BytesPerMB),
	}
}

// pngDataURI inlines a rendered chart; html/template would mangle a "data:"
// URL unless it's pre-blessed as a template.URL.
func pngDataURI(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, data page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		dlog.Errorf(r.Context(), "render: %v", err)
	}
}

type apiSummary struct {
	Count    int     `json:"count"`
	TotalMB  float64 `json:"total_mb"`
	MeanMB   float64 `json:"mean_mb"`
	MedianMB float64 `json:"median_mb"`
}

type apiReport struct {
	webassets.Report
	Error   string     `json:"error,omitempty"`
	Summary apiSummary `json:"summary"`
}

func (s *Server) serveAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	specs := splitPackagesParam(r.FormValue("packages"))
	if len(specs) == 0 {
		http.Error(w, `missing "packages" query parameter`, http.StatusBadRequest)
		return
	}
	ret := make([]apiReport, 0, len(specs))
	for _, spec := range specs {
		ctx := r.Context()
		report, err := s.Assayer.Assay(ctx, spec)
		if err != nil {
			dlog.Errorf(ctx, "analyze %q: %v", spec, err)
			name, _ := assay.SplitSpec(spec)
			ret = append(ret, apiReport{
				Report: webassets.Report{Package: name},
				Error:  err.Error(),
			})
			continue
		}
		ret = append(ret, apiReport{
			Report: report,
			Summary: apiSummary{
				Count:    report.Count(),
				TotalMB:  webassets.MB(report.TotalSize()),
				MeanMB:   report.MeanSize() / webassets.BytesPerMB,
				MedianMB: report.MedianSize() / webassets.BytesPerMB,
			},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(ret)
}

func splitPackagesParam(param string) []string {
	var ret []string
	for _, spec := range strings.Split(param, ",") {
		if spec = strings.TrimSpace(spec); spec != "" {
			ret = append(ret, spec)
		}
	}
	return ret
}
