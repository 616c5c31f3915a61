package pep440

import (
	"k8s.io/apimachinery/pkg/util/intstr"
)

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Within an equal release segment the ordering is
//
//	.devN < {a|b|rc}N < (final) < .postN
//
// and a .devN suffix drags whatever it is attached to just below the
// unsuffixed form.

func preRank(l string) int {
	switch l {
	case "a":
		return 0
	case "b":
		return 1
	default: // "rc"
		return 2
	}
}

// prePhase buckets a version below (-1), at (0), or above (1) its own
// pre-releases, following the "packaging" reference implementation: a bare
// .devN release sorts below any pre-release of the same release segment.
func (v Version) prePhase() int {
	switch {
	case v.Pre != nil:
		return 0
	case v.Post == nil && v.Dev != nil:
		return -1
	default:
		return 1
	}
}

// Cmp returns -1, 0, or 1 depending on whether v sorts before, equal to, or
// after o.
func (v Version) Cmp(o Version) int {
	if d := cmpInt(v.Epoch, o.Epoch); d != 0 {
		return d
	}

	// Missing trailing release segments count as zero: 1.0 == 1.0.0.
	n := len(v.Release)
	if len(o.Release) > n {
		n = len(o.Release)
	}
	for i := 0; i < n; i++ {
		var a, b int
		if i < len(v.Release) {
			a = v.Release[i]
		}
		if i < len(o.Release) {
			b = o.Release[i]
		}
		if d := cmpInt(a, b); d != 0 {
			return d
		}
	}

	if d := cmpInt(v.prePhase(), o.prePhase()); d != 0 {
		return d
	}
	if v.Pre != nil && o.Pre != nil {
		if d := cmpInt(preRank(v.Pre.L), preRank(o.Pre.L)); d != 0 {
			return d
		}
		if d := cmpInt(v.Pre.N, o.Pre.N); d != 0 {
			return d
		}
	}

	if d := cmpInt(boolToInt(v.Post != nil), boolToInt(o.Post != nil)); d != 0 {
		return d
	}
	if v.Post != nil && o.Post != nil {
		if d := cmpInt(*v.Post, *o.Post); d != 0 {
			return d
		}
	}

	// Absent .devN sorts after present .devN.
	if d := cmpInt(boolToInt(v.Dev == nil), boolToInt(o.Dev == nil)); d != 0 {
		return d
	}
	if v.Dev != nil && o.Dev != nil {
		if d := cmpInt(*v.Dev, *o.Dev); d != 0 {
			return d
		}
	}

	return cmpLocal(v.Local, o.Local)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// cmpLocal compares local version labels: absent sorts before present,
// numeric segments sort after string segments, and an exhausted label sorts
// before a longer one with an equal prefix.
func cmpLocal(a, b []intstr.IntOrString) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if d := cmpLocalSegment(a[i], b[i]); d != 0 {
			return d
		}
	}
	return cmpInt(len(a), len(b))
}

func cmpLocalSegment(a, b intstr.IntOrString) int {
	switch {
	case a.Type == intstr.Int && b.Type == intstr.Int:
		return cmpInt(int(a.IntVal), int(b.IntVal))
	case a.Type == intstr.String && b.Type == intstr.String:
		switch {
		case a.StrVal < b.StrVal:
			return -1
		case a.StrVal > b.StrVal:
			return 1
		default:
			return 0
		}
	case a.Type == intstr.Int:
		return 1 // numeric segments sort after string segments
	default:
		return -1
	}
}
