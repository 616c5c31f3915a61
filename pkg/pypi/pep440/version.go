// Package pep440 implements enough of PEP 440 -- Version Identification and
// Dependency Specification -- to parse and order release versions.
//
// https://www.python.org/dev/peps/pep-0440/
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// Version is a parsed public version identifier, plus an optional local
// version label.
//
//     [N!]N(.N)*[{a|b|rc}N][.postN][.devN][+local]
type Version struct {
	// Epoch segment: ``N!``
	Epoch int
	// Release segment: ``N(.N)*``
	Release []int
	// Pre-release segment: ``{a|b|rc}N``
	Pre *PreRelease
	// Post-release segment: ``.postN``
	Post *int
	// Development release segment: ``.devN``
	Dev *int
	// Local version segments: ``+foo.N.bar``; numeric segments are
	// ints, the rest are strings.
	Local []intstr.IntOrString
}

type PreRelease struct {
	L string // "a", "b", or "rc" after normalization
	N int
}

// This is the "permissive" regular expression from PEP 440 Appendix B,
// minus the specifier-set machinery that this package doesn't implement.
var versionRE = regexp.MustCompile(`^v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_.]?(?P<preL>a|b|c|rc|alpha|beta|pre|preview)[-_.]?(?P<preN>[0-9]+)?)?` +
	`(?:(?:-(?P<postN1>[0-9]+))|(?:[-_.]?(?P<postL>post|rev|r)[-_.]?(?P<postN2>[0-9]+)?))?` +
	`(?:[-_.]?(?P<devL>dev)[-_.]?(?P<devN>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?` +
	`$`)

// ParseVersion parses a string to a Version object, performing the
// normalizations that PEP 440 specifies.
func ParseVersion(str string) (*Version, error) {
	match := versionRE.FindStringSubmatch(strings.ToLower(strings.TrimSpace(str)))
	if match == nil {
		return nil, fmt.Errorf("pep440.ParseVersion: invalid version: %q", str)
	}
	group := make(map[string]string, len(match))
	for i, name := range versionRE.SubexpNames() {
		if name != "" {
			group[name] = match[i]
		}
	}

	var ver Version

	if group["epoch"] != "" {
		ver.Epoch, _ = strconv.Atoi(group["epoch"])
	}
	for _, segment := range strings.Split(group["release"], ".") {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("pep440.ParseVersion: invalid version: %q: %w", str, err)
		}
		ver.Release = append(ver.Release, n)
	}

	if l := group["preL"]; l != "" {
		switch l {
		case "alpha":
			l = "a"
		case "beta":
			l = "b"
		case "c", "pre", "preview":
			l = "rc"
		}
		n, _ := strconv.Atoi(group["preN"]) // absent implies 0
		ver.Pre = &PreRelease{L: l, N: n}
	}

	switch {
	case group["postN1"] != "":
		n, _ := strconv.Atoi(group["postN1"])
		ver.Post = &n
	case group["postL"] != "":
		n, _ := strconv.Atoi(group["postN2"]) // absent implies 0
		ver.Post = &n
	}

	if group["devL"] != "" {
		n, _ := strconv.Atoi(group["devN"]) // absent implies 0
		ver.Dev = &n
	}

	if local := group["local"]; local != "" {
		for _, segment := range regexp.MustCompile(`[-_.]`).Split(local, -1) {
			if n, err := strconv.Atoi(segment); err == nil {
				ver.Local = append(ver.Local, intstr.FromInt(n))
			} else {
				ver.Local = append(ver.Local, intstr.FromString(segment))
			}
		}
	}

	return &ver, nil
}

// String returns the normalized form of the version.
func (v Version) String() string {
	var ret strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&ret, "%d!", v.Epoch)
	}
	for i, segment := range v.Release {
		if i > 0 {
			ret.WriteByte('.')
		}
		fmt.Fprintf(&ret, "%d", segment)
	}
	if v.Pre != nil {
		fmt.Fprintf(&ret, "%s%d", v.Pre.L, v.Pre.N)
	}
	if v.Post != nil {
		fmt.Fprintf(&ret, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&ret, ".dev%d", *v.Dev)
	}
	if len(v.Local) > 0 {
		ret.WriteByte('+')
		for i, segment := range v.Local {
			if i > 0 {
				ret.WriteByte('.')
			}
			ret.WriteString(segment.String())
		}
	}
	return ret.String()
}

// IsPreRelease tells whether installers should hide this version unless
// pre-releases were explicitly requested; developmental releases count.
func (v Version) IsPreRelease() bool {
	return v.Pre != nil || v.Dev != nil
}
