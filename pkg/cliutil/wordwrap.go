// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

import (
	"strings"
)

// Wrap the string `s` to a maximum width `w`.  Pass `w` == 0 to do no wrapping.
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// Wrap the string `s` to a maximum width `w` with leading indent `i`.  The first line is not
// indented (this is assumed to be done by caller).  Pass `w` == 0 to do no wrapping
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(indent, width int, s string) string {
	if width == 0 {
		return s
	}
	// Every line, including the first, gives up `indent` columns; the
	// first line's indent is assumed to already be on screen.
	budget := width - 5 - indent
	if budget <= 0 {
		return s
	}

	var out []string
	for _, line := range strings.Split(s, "\n") {
		for len(line) > budget {
			// Break at the last space strictly inside the budget; a
			// word that ends flush at the budget goes to the next
			// line.  Inter-word spacing (like double spaces after
			// sentences) is preserved, not re-flowed.
			cut := strings.LastIndexByte(line[:budget], ' ')
			if cut <= 0 {
				cut = strings.IndexByte(line, ' ')
				if cut < 0 {
					break
				}
			}
			out = append(out, strings.TrimRight(line[:cut], " "))
			line = strings.TrimLeft(line[cut:], " ")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"+strings.Repeat(" ", indent))
}
