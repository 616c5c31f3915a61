// Package pypi accesses Python package indexes, in both the JSON API
// flavor that pypi.org serves and the PEP 503 "simple" HTML flavor that
// private indexes serve.
//
// https://warehouse.pypa.io/api-reference/json.html
// https://www.python.org/dev/peps/pep-0503/
package pypi

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// NormalizeName normalizes a distribution name per PEP 503: runs of ``-``,
// ``_``, and ``.`` become a single ``-``, and the whole thing is lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(regexp.MustCompile(`[-_.]+`).ReplaceAllLiteralString(name, "-"))
}

type HTTPError struct {
	Status     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

// httpGet fetches requestURL, returning the final URL (after redirects) and
// the response body.  If the request URL carries a checksum in its fragment
// (``#sha256=...``, as simple-index file links do), the body is verified
// against it.
func httpGet(
	ctx context.Context,
	httpClient *http.Client,
	userAgent, requestURL string,
) (_ *url.URL, _ []byte, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("GET %q => %w", requestURL, err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		return nil, nil, err
	}
	if err := resp.Body.Close(); err != nil {
		return nil, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &HTTPError{Status: resp.Status, StatusCode: resp.StatusCode}
	}
	if u, err := url.Parse(requestURL); err == nil && u.Fragment != "" {
		if keyvals, err := url.ParseQuery(u.Fragment); err == nil {
			for key, vals := range keyvals {
				for _, val := range vals {
					if err := verifyDigest(content, key, val); err != nil {
						return nil, nil, err
					}
				}
			}
		}
	}

	return resp.Request.URL, content, nil
}

// verifyDigest checks content against a hex digest; unrecognized algorithm
// names are ignored rather than rejected, because indexes are allowed to
// invent new ones.
func verifyDigest(content []byte, algo, expected string) error {
	var sum []byte
	switch algo {
	case "md5":
		_sum := md5.Sum(content)
		sum = _sum[:]
	case "sha1":
		_sum := sha1.Sum(content)
		sum = _sum[:]
	case "sha224":
		_sum := sha256.Sum224(content)
		sum = _sum[:]
	case "sha256":
		_sum := sha256.Sum256(content)
		sum = _sum[:]
	case "sha384":
		_sum := sha512.Sum384(content)
		sum = _sum[:]
	case "sha512":
		_sum := sha512.Sum512(content)
		sum = _sum[:]
	}
	if sum != nil && hex.EncodeToString(sum) != strings.ToLower(expected) {
		return fmt.Errorf("checksum mismatch: %s: expected=%s actual=%s",
			algo, expected, hex.EncodeToString(sum))
	}
	return nil
}

// SdistSuffixes are the archive suffixes that source distributions get
// published with, past and present.
var SdistSuffixes = []string{".tar.gz", ".tgz", ".tar.bz2", ".zip"}

// SplitSdistFilename splits an sdist filename like "Flask-1.1.2.tar.gz" into
// its distribution and version parts.
func SplitSdistFilename(filename string) (dist, version string, ok bool) {
	var base string
	for _, suffix := range SdistSuffixes {
		if strings.HasSuffix(filename, suffix) {
			base = strings.TrimSuffix(filename, suffix)
			break
		}
	}
	if base == "" {
		return "", "", false
	}
	sep := strings.LastIndex(base, "-")
	if sep <= 0 || sep == len(base)-1 {
		return "", "", false
	}
	return base[:sep], base[sep+1:], true
}
