package pypi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/datawire/webassay/pkg/pypi/pep440"
)

// SimpleBaseURL is the base URL of pypi.org's PEP 503 simple index.
const SimpleBaseURL = "https://pypi.org/simple/"

// SimpleClient speaks the PEP 503 "simple" HTML repository API, which is
// the least common denominator that private indexes (devpi, Artifactory,
// plain nginx autoindex) actually serve.
type SimpleClient struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *SimpleClient) fillDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = SimpleBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = "github.com/datawire/webassay/pkg/pypi"
	}
}

// Link is an anchor from a simple-index project page.  The HRef is resolved
// relative to the page that served it and keeps its checksum fragment.
type Link struct {
	Text      string
	HRef      string
	DataAttrs map[string]string
}

func visitHTML(node *html.Node, fn func(*html.Node) error) error {
	if err := fn(node); err != nil {
		return err
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := visitHTML(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// ListPackageFiles fetches and parses the project page for pkgname,
// returning one Link per file the index has for it.
func (c SimpleClient) ListPackageFiles(ctx context.Context, pkgname string) ([]Link, error) {
	// "the only valid characters in a name are the ASCII alphabet, ASCII
	// numbers, `.`, `-`, and `_`."
	for _, char := range pkgname {
		if !(('a' <= char && char <= 'z') ||
			('A' <= char && char <= 'Z') ||
			('0' <= char && char <= '9') ||
			char == '.' ||
			char == '-' ||
			char == '_') {
			return nil, fmt.Errorf("illegal character in pkgname: %q: %s",
				pkgname, strconv.QuoteRuneToASCII(char))
		}
	}

	c.fillDefaults()
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, NormalizeName(pkgname)) + "/"
	location, content, err := httpGet(ctx, c.HTTPClient, c.UserAgent, u.String())
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var links []Link
	if err := visitHTML(doc, func(node *html.Node) error {
		if node.Type != html.ElementNode || node.Data != "a" {
			return nil
		}
		link := Link{
			DataAttrs: make(map[string]string),
		}
		for _, attr := range node.Attr {
			switch {
			case attr.Namespace == "" && attr.Key == "href":
				href, err := location.Parse(attr.Val)
				if err != nil {
					return err
				}
				link.HRef = href.String()
			case attr.Namespace == "" && strings.HasPrefix(attr.Key, "data-"):
				link.DataAttrs[attr.Key] = attr.Val
			}
		}
		var text strings.Builder
		_ = visitHTML(node, func(child *html.Node) error {
			if child.Type == html.TextNode {
				text.WriteString(child.Data)
			}
			return nil
		})
		link.Text = text.String()
		links = append(links, link)
		return nil
	}); err != nil {
		return nil, err
	}

	return links, nil
}

// Get downloads the file a Link points at.  Checksums carried in the HRef
// fragment are verified.
func (c SimpleClient) Get(ctx context.Context, link Link) ([]byte, error) {
	c.fillDefaults()
	_, content, err := httpGet(ctx, c.HTTPClient, c.UserAgent, link.HRef)
	return content, err
}

// SelectSdist picks the source distribution to analyze for a package.  An
// empty version selects the newest non-prerelease version that has an sdist,
// falling back to the newest prerelease when nothing stable has one.
func (c SimpleClient) SelectSdist(
	ctx context.Context,
	pkgname, version string,
) (Link, string, error) {
	links, err := c.ListPackageFiles(ctx, pkgname)
	if err != nil {
		return Link{}, "", err
	}

	type candidate struct {
		link    Link
		version *pep440.Version
	}
	var best, bestPre *candidate
	for i := range links {
		link := links[i]
		if _, yanked := link.DataAttrs["data-yanked"]; yanked {
			continue // PEP 592
		}
		dist, verStr, ok := SplitSdistFilename(link.Text)
		if !ok || NormalizeName(dist) != NormalizeName(pkgname) {
			continue
		}
		ver, err := pep440.ParseVersion(verStr)
		if err != nil {
			continue // indexes accumulate junk; skip what we can't order
		}
		if version != "" {
			want, err := pep440.ParseVersion(version)
			if err != nil {
				return Link{}, "", err
			}
			if ver.Cmp(*want) == 0 {
				return link, ver.String(), nil
			}
			continue
		}
		cand := &candidate{link: link, version: ver}
		if ver.IsPreRelease() {
			if bestPre == nil || ver.Cmp(*bestPre.version) > 0 {
				bestPre = cand
			}
		} else {
			if best == nil || ver.Cmp(*best.version) > 0 {
				best = cand
			}
		}
	}

	if version != "" {
		return Link{}, "", fmt.Errorf("no source distribution found for %s %s",
			pkgname, version)
	}
	if best == nil {
		best = bestPre
	}
	if best == nil {
		return Link{}, "", fmt.Errorf("no source distribution found for %s", pkgname)
	}
	return best.link, best.version.String(), nil
}
