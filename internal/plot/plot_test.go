package plot

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"-1e3", -1000, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"12px", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsMostlyNumeric(t *testing.T) {
	tests := []struct {
		values []string
		want   bool
	}{
		{[]string{"1", "2", "x"}, true},
		{[]string{"x", "y", "1"}, false},
		{[]string{"1", "x"}, true},
		{[]string{"1", "", ""}, false},
		{nil, true},
	}
	for _, tt := range tests {
		if got := IsMostlyNumeric(tt.values); got != tt.want {
			t.Errorf("IsMostlyNumeric(%q) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestCategoryCounts(t *testing.T) {
	got := CategoryCounts([]string{"b", "a", " b ", "", "c", "a", "b"}, 0)
	want := Result{Labels: []string{"b", "a", "c"}, Counts: []int{3, 2, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryCounts = %+v, want %+v", got, want)
	}
}

func TestCategoryCountsTiesKeepFirstSeen(t *testing.T) {
	got := CategoryCounts([]string{"z", "x", "y", "x", "y", "z", "w"}, 0)
	want := []string{"z", "x", "y", "w"}
	if !reflect.DeepEqual(got.Labels, want) {
		t.Errorf("labels = %v, want %v", got.Labels, want)
	}
}

func TestCategoryCountsTopK(t *testing.T) {
	var values []string
	for i := 0; i < 50; i++ {
		values = append(values, "v"+strconv.Itoa(i))
	}
	got := CategoryCounts(values, 0)
	if got.Len() != DefaultTopK {
		t.Errorf("len = %d, want %d", got.Len(), DefaultTopK)
	}
	got = CategoryCounts(values, 5)
	if got.Len() != 5 || got.Labels[0] != "v0" {
		t.Errorf("top 5 = %v", got.Labels)
	}
}

func TestNumericValueCounts(t *testing.T) {
	got, unique := NumericValueCounts([]string{"3", "1", "3.0", "2", "2", "2", "x"}, 2)
	want := Result{Labels: []string{"2", "3"}, Counts: []int{3, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NumericValueCounts = %+v, want %+v", got, want)
	}
	if unique != 2 {
		t.Errorf("unique = %d, want 2", unique)
	}
}

func TestNumericValueCountsAscending(t *testing.T) {
	got, unique := NumericValueCounts([]string{"10", "-1", "2.5", "10"}, 0)
	want := []string{"-1", "2.5", "10"}
	if !reflect.DeepEqual(got.Labels, want) {
		t.Errorf("labels = %v, want %v", got.Labels, want)
	}
	if unique != 3 {
		t.Errorf("unique = %d", unique)
	}
}

func TestBuildHistogram(t *testing.T) {
	nums := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := BuildHistogram(nums, 5)
	if got.Len() != 5 {
		t.Fatalf("bins = %d, want 5", got.Len())
	}
	if got.Total() != len(nums) {
		t.Errorf("total = %d, want %d", got.Total(), len(nums))
	}
	// 8, 9 and the max 10 share the last bin
	if got.Counts[4] != 3 {
		t.Errorf("last bin = %d, want 3", got.Counts[4])
	}
	if got.Labels[0] != "0.00–2.00" || got.Labels[4] != "8.00–10.00" {
		t.Errorf("labels = %v", got.Labels)
	}
}

func TestBuildHistogramConstant(t *testing.T) {
	got := BuildHistogram([]float64{5, 5, 5}, 4)
	want := Result{
		Labels: []string{"4.50–4.75", "4.75–5.00", "5.00–5.25", "5.25–5.50"},
		Counts: []int{0, 0, 3, 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildHistogram = %+v, want %+v", got, want)
	}
}

func TestBuildHistogramExtremeRanges(t *testing.T) {
	tests := []struct {
		name string
		nums []float64
		bins int
		want []int
	}{
		{"subnormal range", []float64{0, 5e-324}, 10, []int{1, 0, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"range beyond MaxFloat64", []float64{-math.MaxFloat64, 0, math.MaxFloat64}, 4, []int{1, 0, 1, 1}},
		{"huge constant", []float64{1e300, 1e300}, 3, []int{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildHistogram(tt.nums, tt.bins)
			if !reflect.DeepEqual(got.Counts, tt.want) {
				t.Errorf("counts = %v, want %v", got.Counts, tt.want)
			}
			for _, l := range got.Labels {
				if strings.Contains(l, "NaN") || strings.Contains(l, "Inf") {
					t.Errorf("bad label %q", l)
				}
			}
		})
	}
}

func TestBuildHistogramEmpty(t *testing.T) {
	if got := BuildHistogram(nil, 4); got.Len() != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestNumericDistributionValueMode(t *testing.T) {
	values := []string{"1", "2", "2", "3", "5", "x", ""}
	got := NumericDistribution(values, 4)
	if got.Mode != ModeValue {
		t.Fatalf("mode = %s, want value", got.Mode)
	}
	if got.Total() != 5 {
		t.Errorf("total = %d, want 5", got.Total())
	}
	if !reflect.DeepEqual(got.Labels, []string{"1", "2", "3", "5"}) {
		t.Errorf("labels = %v", got.Labels)
	}
}

func TestNumericDistributionHistMode(t *testing.T) {
	var values []string
	for i := 1; i <= 20; i++ {
		values = append(values, strconv.Itoa(i))
	}
	got := NumericDistribution(values, 5)
	if got.Mode != ModeHist {
		t.Fatalf("mode = %s, want hist", got.Mode)
	}
	if got.Len() != 5 || got.Total() != 20 {
		t.Errorf("len = %d total = %d", got.Len(), got.Total())
	}
}

func TestNumericDistributionBoundary(t *testing.T) {
	values := []string{"1", "2", "3", "4", "5"}
	if got := NumericDistribution(values, 5); got.Mode != ModeValue {
		t.Errorf("5 distinct with 5 bins: mode = %s, want value", got.Mode)
	}
	if got := NumericDistribution(values, 4); got.Mode != ModeHist {
		t.Errorf("5 distinct with 4 bins: mode = %s, want hist", got.Mode)
	}
}

func TestPieTopK(t *testing.T) {
	values := []string{"a", "a", "a", "a", "a", "b", "b", "b", "c", "c", "d", ""}

	got := PieTopK(values, 2, true)
	want := Result{Labels: []string{"a", "b", OthersLabel}, Counts: []int{5, 3, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("with others = %+v, want %+v", got, want)
	}
	if got.Total() != 11 {
		t.Errorf("total = %d, want 11", got.Total())
	}

	got = PieTopK(values, 2, false)
	if got.Len() != 2 || got.Total() != 8 {
		t.Errorf("without others = %+v", got)
	}

	got = PieTopK(values, 4, true)
	for _, l := range got.Labels {
		if l == OthersLabel {
			t.Error("Others must not appear when nothing was truncated")
		}
	}
}

func TestAggregateAuto(t *testing.T) {
	opts := DefaultOptions()

	d, err := Aggregate([]string{"red", "blue", "red", "1"}, ModeAuto, opts)
	if err != nil {
		t.Fatal(err)
	}
	if d.Mode != ModeCategory {
		t.Errorf("mode = %s, want category", d.Mode)
	}

	d, err = Aggregate([]string{"1", "2", "2", "n/a"}, ModeAuto, opts)
	if err != nil {
		t.Fatal(err)
	}
	if d.Mode != ModeValue {
		t.Errorf("mode = %s, want value", d.Mode)
	}

	if _, err := Aggregate(nil, Mode("bogus"), opts); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeAuto {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMode("hist"); err != nil || m != ModeHist {
		t.Errorf("ParseMode(hist) = %v, %v", m, err)
	}
	if _, err := ParseMode("pie"); err == nil {
		t.Error("pie is a chart kind, not a bar mode")
	}
}
