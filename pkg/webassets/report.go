package webassets

import (
	"sort"
)

// BytesPerMB is the divisor the UI uses for "Size (MB)" columns.
const BytesPerMB = 1 << 20

// MB converts a byte count to mebibytes.
func MB(bytes int64) float64 {
	return float64(bytes) / BytesPerMB
}

// Report is the scan result for one package (or, after Merge, for a set of
// packages).
type Report struct {
	Package string  `json:"package"`
	Version string  `json:"version,omitempty"`
	Assets  []Asset `json:"assets"`
}

func (r Report) Count() int {
	return len(r.Assets)
}

func (r Report) TotalSize() int64 {
	var total int64
	for _, asset := range r.Assets {
		total += asset.Size
	}
	return total
}

// MeanSize returns the average asset size in bytes; 0 for an empty report.
func (r Report) MeanSize() float64 {
	if len(r.Assets) == 0 {
		return 0
	}
	return float64(r.TotalSize()) / float64(len(r.Assets))
}

// MedianSize returns the median asset size in bytes; 0 for an empty report.
// For an even count it averages the two middle values.
func (r Report) MedianSize() float64 {
	if len(r.Assets) == 0 {
		return 0
	}
	sizes := make([]int64, len(r.Assets))
	for i, asset := range r.Assets {
		sizes[i] = asset.Size
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	mid := len(sizes) / 2
	if len(sizes)%2 == 1 {
		return float64(sizes[mid])
	}
	return float64(sizes[mid-1]+sizes[mid]) / 2
}

// ExtensionTotal is the per-extension slice of a report.
type ExtensionTotal struct {
	Ext   string `json:"extension"`
	Count int    `json:"count"`
	Size  int64  `json:"size"`
}

// ByExtension groups the report's assets by extension, largest total first.
func (r Report) ByExtension() []ExtensionTotal {
	byExt := make(map[string]*ExtensionTotal)
	for _, asset := range r.Assets {
		total, ok := byExt[asset.Ext]
		if !ok {
			total = &ExtensionTotal{Ext: asset.Ext}
			byExt[asset.Ext] = total
		}
		total.Count++
		total.Size += asset.Size
	}
	ret := make([]ExtensionTotal, 0, len(byExt))
	for _, total := range byExt {
		ret = append(ret, *total)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Size != ret[j].Size {
			return ret[i].Size > ret[j].Size
		}
		return ret[i].Ext < ret[j].Ext
	})
	return ret
}

// SortedBySize returns the report's assets largest-first, the order the
// asset-details table displays them in.
func (r Report) SortedBySize() []Asset {
	ret := make([]Asset, len(r.Assets))
	copy(ret, r.Assets)
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Size != ret[j].Size {
			return ret[i].Size > ret[j].Size
		}
		return ret[i].Path < ret[j].Path
	})
	return ret
}

// Merge concatenates reports into a cumulative one.
func Merge(reports ...Report) Report {
	var ret Report
	ret.Package = "cumulative"
	for _, report := range reports {
		ret.Assets = append(ret.Assets, report.Assets...)
	}
	return ret
}

// Bin is one histogram bucket over asset sizes, in MB.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// DefaultBins is the bucket count the size-distribution histogram uses.
const DefaultBins = 30

// Histogram buckets the report's asset sizes into nbins equal-width bins
// spanning [0, max size].  An empty report yields nil.
func Histogram(r Report, nbins int) []Bin {
	if len(r.Assets) == 0 {
		return nil
	}
	if nbins <= 0 {
		nbins = DefaultBins
	}
	var maxMB float64
	for _, asset := range r.Assets {
		if mb := MB(asset.Size); mb > maxMB {
			maxMB = mb
		}
	}
	width := maxMB / float64(nbins)
	if width == 0 {
		// Every asset is zero bytes; one degenerate bin holds them all.
		return []Bin{{Lo: 0, Hi: 0, Count: len(r.Assets)}}
	}
	bins := make([]Bin, nbins)
	for i := range bins {
		bins[i].Lo = float64(i) * width
		bins[i].Hi = float64(i+1) * width
	}
	for _, asset := range r.Assets {
		idx := int(MB(asset.Size) / width)
		if idx >= nbins {
			idx = nbins - 1
		}
		bins[idx].Count++
	}
	return bins
}
