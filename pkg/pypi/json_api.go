package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
)

// PyPIBaseURL is the base URL of pypi.org's JSON API.
const PyPIBaseURL = "https://pypi.org/pypi"

// Client speaks the JSON API that warehouse (pypi.org) serves.  The zero
// value is usable and talks to pypi.org.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *Client) fillDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = PyPIBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = "github.com/datawire/webassay/pkg/pypi"
	}
}

type Project struct {
	Info     ProjectInfo              `json:"info"`
	Releases map[string][]ReleaseFile `json:"releases"`
	URLs     []ReleaseFile            `json:"urls"`
}

type ProjectInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}

type ReleaseFile struct {
	Filename    string            `json:"filename"`
	URL         string            `json:"url"`
	PackageType string            `json:"packagetype"`
	Size        int64             `json:"size"`
	Yanked      bool              `json:"yanked"`
	Digests     map[string]string `json:"digests"`
	MD5Digest   string            `json:"md5_digest"`
}

// Project fetches the metadata document for a distribution from
// ``{BaseURL}/{name}/json``.
func (c Client) Project(ctx context.Context, name string) (*Project, error) {
	c.fillDefaults()
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, name, "json")
	_, content, err := httpGet(ctx, c.HTTPClient, c.UserAgent, u.String())
	if err != nil {
		return nil, err
	}
	var proj Project
	if err := json.Unmarshal(content, &proj); err != nil {
		return nil, fmt.Errorf("package index returned malformed JSON for %q: %w", name, err)
	}
	return &proj, nil
}

// Sdist returns the source distribution file for the given version of the
// project; an empty version means the latest version the index reports.
// Yanked files (PEP 592) are skipped.
func (p *Project) Sdist(version string) (ReleaseFile, string, error) {
	if version == "" {
		version = p.Info.Version
	}
	files, ok := p.Releases[version]
	if !ok {
		return ReleaseFile{}, "", fmt.Errorf("%s has no release %q", p.Info.Name, version)
	}
	for _, file := range files {
		if file.Yanked {
			continue
		}
		if file.PackageType == "sdist" {
			return file, version, nil
		}
	}
	return ReleaseFile{}, "", fmt.Errorf("no source distribution found for %s %s",
		p.Info.Name, version)
}

// Download fetches a release file and verifies it against the digests the
// index reported for it.
func (c Client) Download(ctx context.Context, file ReleaseFile) ([]byte, error) {
	c.fillDefaults()
	_, content, err := httpGet(ctx, c.HTTPClient, c.UserAgent, file.URL)
	if err != nil {
		return nil, err
	}

	verified := false
	for _, algo := range []string{"sha256", "md5"} {
		if expected := file.Digests[algo]; expected != "" {
			if err := verifyDigest(content, algo, expected); err != nil {
				return nil, fmt.Errorf("download %q => %w", file.Filename, err)
			}
			verified = true
		}
	}
	if !verified && file.MD5Digest != "" {
		if err := verifyDigest(content, "md5", file.MD5Digest); err != nil {
			return nil, fmt.Errorf("download %q => %w", file.Filename, err)
		}
	}
	return content, nil
}
