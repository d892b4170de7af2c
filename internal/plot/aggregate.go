package plot

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Defaults applied when a caller passes a non-positive limit.
const (
	DefaultTopK    = 30
	DefaultBins    = 10
	DefaultPieTopK = 10
)

// OthersLabel names the slice that aggregates everything cut by top-K.
const OthersLabel = "Others"

// Result is a chart series: Labels[i] is drawn with height Counts[i].
type Result struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Len returns the number of entries.
func (r Result) Len() int { return len(r.Labels) }

// Total returns the sum of all counts.
func (r Result) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

type tally struct {
	key   string
	count int
}

// countOrdered groups keys by exact value, keeping first-seen order.
func countOrdered(keys []string) []tally {
	index := make(map[string]int)
	var out []tally
	for _, k := range keys {
		if i, ok := index[k]; ok {
			out[i].count++
			continue
		}
		index[k] = len(out)
		out = append(out, tally{key: k, count: 1})
	}
	return out
}

// byCountDesc sorts descending by count; ties keep first-seen order.
func byCountDesc(t []tally) {
	sort.SliceStable(t, func(i, j int) bool { return t[i].count > t[j].count })
}

func toResult(t []tally) Result {
	r := Result{Labels: make([]string, len(t)), Counts: make([]int, len(t))}
	for i, e := range t {
		r.Labels[i] = e.key
		r.Counts[i] = e.count
	}
	return r
}

func nonEmpty(values []string) []string {
	keys := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			keys = append(keys, s)
		}
	}
	return keys
}

// CategoryCounts counts non-blank trimmed values and returns the topK most frequent.
func CategoryCounts(values []string, topK int) Result {
	if topK <= 0 {
		topK = DefaultTopK
	}
	t := countOrdered(nonEmpty(values))
	byCountDesc(t)
	if len(t) > topK {
		t = t[:topK]
	}
	return toResult(t)
}

// NumericValueCounts counts numeric values by their canonical string form,
// keeps the topK most frequent and returns them in ascending numeric order
// together with the number of distinct values kept.
func NumericValueCounts(values []string, topK int) (Result, int) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	nums := Numbers(values)
	keys := make([]string, len(nums))
	numeric := make(map[string]float64, len(nums))
	for i, f := range nums {
		k := FormatNumber(f)
		keys[i] = k
		numeric[k] = f
	}

	t := countOrdered(keys)
	byCountDesc(t)
	if len(t) > topK {
		t = t[:topK]
	}
	sort.SliceStable(t, func(i, j int) bool { return numeric[t[i].key] < numeric[t[j].key] })

	return toResult(t), len(t)
}

// BuildHistogram distributes nums into bins equal-width buckets between their min and max.
// A zero-width range is widened by 0.5 on each side.
func BuildHistogram(nums []float64, bins int) Result {
	if bins <= 0 {
		bins = DefaultBins
	}
	if len(nums) == 0 {
		return Result{}
	}

	lo, hi := nums[0], nums[0]
	for _, x := range nums[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	// Ranges wider than MaxFloat64 are split before subtracting.
	width := (hi - lo) / float64(bins)
	if math.IsInf(width, 0) {
		width = hi/float64(bins) - lo/float64(bins)
	}

	counts := make([]int, bins)
	for _, x := range nums {
		counts[binIndex(x, lo, hi, width, bins)]++
	}

	edge := func(i int) float64 {
		e := lo + float64(i)*width
		if math.IsInf(e, 0) {
			f := float64(i) / float64(bins)
			e = lo*(1-f) + hi*f
		}
		return e
	}
	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f–%.2f", edge(i), edge(i+1))
	}
	return Result{Labels: labels, Counts: counts}
}

// binIndex places x in [0, bins-1]. The max always lands in the last bin,
// including when width underflows to zero.
func binIndex(x, lo, hi, width float64, bins int) int {
	if x >= hi {
		return bins - 1
	}
	if width <= 0 {
		return 0
	}
	pos := (x - lo) / width
	if math.IsInf(x-lo, 0) {
		pos = x/width - lo/width
	}
	switch {
	case math.IsNaN(pos) || pos < 0:
		return 0
	case pos >= float64(bins):
		return bins - 1
	}
	return int(pos)
}

// PieTopK groups like CategoryCounts and keeps the topK slices. With includeOthers,
// the counts of every dropped slice are summed into a trailing "Others" slice.
func PieTopK(values []string, topK int, includeOthers bool) Result {
	if topK <= 0 {
		topK = DefaultPieTopK
	}
	t := countOrdered(nonEmpty(values))
	byCountDesc(t)
	if len(t) <= topK {
		return toResult(t)
	}

	rest := 0
	for _, e := range t[topK:] {
		rest += e.count
	}
	r := toResult(t[:topK])
	if includeOthers && rest > 0 {
		r.Labels = append(r.Labels, OthersLabel)
		r.Counts = append(r.Counts, rest)
	}
	return r
}
