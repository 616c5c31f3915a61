// Package webassets classifies the files bundled in a package as web assets
// (front-end browser content) and computes size statistics over them.
package webassets

import (
	"path"
	"sort"
	"strings"
)

// Asset is one web-asset file found inside a package.
type Asset struct {
	Path string `json:"path"`
	Ext  string `json:"extension"`
	Size int64  `json:"size"`
}

// DefaultExtensions is the extension set that marks a bundled file as a web
// asset: scripts, stylesheets, markup, and images.
var DefaultExtensions = []string{
	".js",
	".css",
	".html",
	".htm",
	".svg",
	".png",
	".jpg",
	".jpeg",
	".gif",
}

// A Classifier decides which file paths count as web assets, by extension,
// case-insensitively.
type Classifier struct {
	exts map[string]struct{}
}

// NewClassifier builds a Classifier for the given extensions; a missing
// leading dot is tolerated.  Passing nil gets you DefaultExtensions.
func NewClassifier(extensions []string) Classifier {
	if extensions == nil {
		extensions = DefaultExtensions
	}
	c := Classifier{
		exts: make(map[string]struct{}, len(extensions)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.exts[ext] = struct{}{}
	}
	return c
}

// Match reports whether the file at filepath is a web asset, and if so
// returns it as an Asset.
func (c Classifier) Match(filepath string, size int64) (Asset, bool) {
	ext := strings.ToLower(path.Ext(filepath))
	if _, ok := c.exts[ext]; !ok {
		return Asset{}, false
	}
	return Asset{Path: filepath, Ext: ext, Size: size}, true
}

// Extensions returns the classifier's extension set, sorted.
func (c Classifier) Extensions() []string {
	ret := make([]string, 0, len(c.exts))
	for ext := range c.exts {
		ret = append(ret, ext)
	}
	sort.Strings(ret)
	return ret
}
