// Package assay ties the pieces together: resolve a package to an sdist,
// download it, walk it, and classify what's inside.
package assay

import (
	"context"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/webassay/pkg/pypi"
	"github.com/datawire/webassay/pkg/sdist"
	"github.com/datawire/webassay/pkg/webassets"
)

// An Assayer downloads and scans packages.  JSON is used unless Simple is
// set, in which case the PEP 503 simple index is scraped instead (private
// indexes usually only serve that).
type Assayer struct {
	JSON       pypi.Client
	Simple     *pypi.SimpleClient
	Classifier webassets.Classifier
}

// SplitSpec splits a command-line package spec of the form "NAME" or
// "NAME==VERSION".
func SplitSpec(spec string) (name, version string) {
	if sep := strings.Index(spec, "=="); sep >= 0 {
		return strings.TrimSpace(spec[:sep]), strings.TrimSpace(spec[sep+2:])
	}
	return strings.TrimSpace(spec), ""
}

// Assay downloads the sdist for a package spec and scans it for web assets.
func (a Assayer) Assay(ctx context.Context, spec string) (webassets.Report, error) {
	name, version := SplitSpec(spec)

	var filename string
	var resolvedVersion string
	var content []byte
	if a.Simple != nil {
		link, ver, err := a.Simple.SelectSdist(ctx, name, version)
		if err != nil {
			return webassets.Report{}, err
		}
		dlog.Infof(ctx, "downloading %s from simple index", link.Text)
		content, err = a.Simple.Get(ctx, link)
		if err != nil {
			return webassets.Report{}, err
		}
		filename, resolvedVersion = link.Text, ver
	} else {
		proj, err := a.JSON.Project(ctx, name)
		if err != nil {
			return webassets.Report{}, err
		}
		file, ver, err := proj.Sdist(version)
		if err != nil {
			return webassets.Report{}, err
		}
		dlog.Infof(ctx, "downloading %s (%d bytes)", file.Filename, file.Size)
		content, err = a.JSON.Download(ctx, file)
		if err != nil {
			return webassets.Report{}, err
		}
		filename, resolvedVersion = file.Filename, ver
	}

	report, err := a.AssayFile(ctx, filename, content)
	if err != nil {
		return webassets.Report{}, err
	}
	report.Package = name
	report.Version = resolvedVersion
	return report, nil
}

// AssayFile scans an already-downloaded sdist.  The report's Package and
// Version are left for the caller to fill in.
func (a Assayer) AssayFile(
	ctx context.Context,
	filename string,
	content []byte,
) (webassets.Report, error) {
	var report webassets.Report
	var scanned int
	err := sdist.Walk(filename, content, func(file sdist.File) error {
		scanned++
		if asset, ok := a.Classifier.Match(file.Path, file.Size); ok {
			report.Assets = append(report.Assets, asset)
		}
		return nil
	})
	if err != nil {
		return webassets.Report{}, err
	}
	dlog.Infof(ctx, "scanned %s: %d files, %d web assets",
		filename, scanned, len(report.Assets))
	return report, nil
}
