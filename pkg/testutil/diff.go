// Package testutil has helpers for comparing asset reports in tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/datawire/webassay/pkg/webassets"
)

// DumpReportListing renders a report as a stable, human-readable table,
// sorted the way the UI sorts: largest asset first.
func DumpReportListing(report webassets.Report) string {
	ret := new(strings.Builder)
	fmt.Fprintf(ret, "package=%q version=%q\n", report.Package, report.Version)

	table := tabwriter.NewWriter(
		ret, // output
		0,   // minwidth
		1,   // tabwidth
		1,   // padding
		' ', // padchar
		0)   // flags
	for _, asset := range report.SortedBySize() {
		fmt.Fprintln(table, strings.Join([]string{
			"",
			asset.Ext,
			fmt.Sprintf("% 10d", asset.Size),
			asset.Path,
		}, "\t"))
	}
	_ = table.Flush()

	return ret.String()
}

// DumpReportFull spews the whole report, for when the listing diff isn't
// enough to see what went wrong.
func DumpReportFull(report webassets.Report) string {
	spewConfig := spew.ConfigState{
		Indent:                  "  ",
		DisableMethods:          true,
		DisableCapacities:       true,
		DisablePointerAddresses: true,
		SortKeys:                true,
	}
	return spewConfig.Sdump(report)
}

// AssertEqualReports compares two reports, failing the test with a unified
// diff when they differ.  The cheap listing comparison runs first so that
// the common failures read well.
func AssertEqualReports(t *testing.T, exp, act webassets.Report) bool {
	t.Helper()

	expStr := DumpReportListing(exp)
	actStr := DumpReportListing(act)
	if expStr != actStr {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expStr),
			B:        difflib.SplitLines(actStr),
			FromFile: "Expected",
			FromDate: "",
			ToFile:   "Actual",
			ToDate:   "",
			Context:  1,
		})
		t.Errorf("Listing diff:\n%s", diff)
		return false
	}

	expStr = DumpReportFull(exp)
	actStr = DumpReportFull(act)
	if expStr != actStr {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expStr),
			B:        difflib.SplitLines(actStr),
			FromFile: "Expected",
			FromDate: "",
			ToFile:   "Actual",
			ToDate:   "",
			Context:  1,
		})
		t.Errorf("Full diff:\n%s", diff)
		return false
	}

	return true
}
