// Package charts renders asset reports as charts, mirroring the two plots
// the UI shows: size share by asset type, and the size distribution.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/datawire/dlib/derror"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/datawire/webassay/pkg/webassets"
)

// ErrNoAssets is returned when a chart has nothing to draw: no assets at
// all, or (for the pie) only zero-byte assets, which would make a
// zero-total pie.
var ErrNoAssets = errors.New("no web assets to chart")

// A Chart is anything go-chart can render; both chart.PieChart and
// chart.BarChart satisfy this.
type Chart interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Pie builds the "Distribution of Asset Sizes by Type" pie chart: each
// extension's share of the report's total asset size.
func Pie(r webassets.Report) *chart.PieChart {
	totals := r.ByExtension()
	values := make([]chart.Value, 0, len(totals))
	for _, total := range totals {
		values = append(values, chart.Value{
			Value: float64(total.Size),
			Label: fmt.Sprintf("%s (%d)", total.Ext, total.Count),
		})
	}
	return &chart.PieChart{
		Title:  "Distribution of Asset Sizes by Type",
		Width:  640,
		Height: 512,
		Values: values,
	}
}

// SizeHistogram builds the "Distribution of Asset Sizes" bar chart: file
// counts over equal-width size bins (in MB).
func SizeHistogram(r webassets.Report, nbins int) *chart.BarChart {
	bins := webassets.Histogram(r, nbins)
	bars := make([]chart.Value, 0, len(bins))
	for i, bin := range bins {
		bar := chart.Value{Value: float64(bin.Count)}
		// Labeling all 30 bars makes the axis unreadable; every
		// fifth is enough to read sizes off of.
		if i%5 == 0 {
			bar.Label = fmt.Sprintf("%.2f", bin.Lo)
		}
		bars = append(bars, bar)
	}
	width := 900
	barWidth := width / (len(bins) + 2)
	if barWidth < 4 {
		barWidth = 4
	}
	return &chart.BarChart{
		Title:    "Distribution of Asset Sizes (MB)",
		Width:    width,
		Height:   400,
		BarWidth: barWidth,
		Bars:     bars,
	}
}

// RenderPNG renders a chart to PNG bytes.
func RenderPNG(c Chart) ([]byte, error) {
	return render(c, chart.PNG)
}

// RenderSVG renders a chart to SVG bytes.
func RenderSVG(c Chart) ([]byte, error) {
	return render(c, chart.SVG)
}

// go-chart panics rather than erroring on some degenerate inputs (zero
// totals, single-value ranges), so the render boundary converts panics to
// errors the way the rest of the program expects.
func render(c Chart, rp chart.RendererProvider) (_ []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = derror.PanicToError(rec)
		}
	}()
	if isEmpty(c) {
		return nil, ErrNoAssets
	}
	var buf bytes.Buffer
	if err := c.Render(rp, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isEmpty(c Chart) bool {
	switch c := c.(type) {
	case *chart.PieChart:
		var total float64
		for _, value := range c.Values {
			total += value.Value
		}
		return total == 0
	case *chart.BarChart:
		return len(c.Bars) == 0
	default:
		return false
	}
}
