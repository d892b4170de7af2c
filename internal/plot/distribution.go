package plot

import "fmt"

// Mode names how a column was aggregated.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeCategory Mode = "category"
	ModeNumeric  Mode = "numeric"
	ModeValue    Mode = "value"
	ModeHist     Mode = "hist"
	ModePie      Mode = "pie"
)

// ParseMode validates a user-supplied bar mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeCategory, ModeNumeric, ModeValue, ModeHist:
		return m, nil
	}
	return "", fmt.Errorf("unknown plot mode %q (expected auto, category, numeric, value or hist)", s)
}

// Distribution is a numeric aggregation together with the mode that produced it.
type Distribution struct {
	Mode Mode `json:"mode"`
	Result
}

// NumericDistribution shows exact per-value counts when the column has at most
// bins distinct numbers and falls back to a bins-wide histogram otherwise.
func NumericDistribution(values []string, bins int) Distribution {
	if bins <= 0 {
		bins = DefaultBins
	}
	// One slot beyond bins is enough to tell "fits" from "does not fit".
	counts, unique := NumericValueCounts(values, bins+1)
	if unique <= bins {
		return Distribution{Mode: ModeValue, Result: counts}
	}
	return Distribution{Mode: ModeHist, Result: BuildHistogram(Numbers(values), bins)}
}

// Options tunes Aggregate.
type Options struct {
	Bins          int
	TopK          int
	PieTopK       int
	IncludeOthers bool
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Bins:          DefaultBins,
		TopK:          DefaultTopK,
		PieTopK:       DefaultPieTopK,
		IncludeOthers: true,
	}
}

// Aggregate runs the aggregation named by mode. ModeAuto picks a numeric
// distribution for mostly-numeric columns and category counts otherwise.
// The returned Distribution reports the mode actually applied.
func Aggregate(values []string, mode Mode, opts Options) (Distribution, error) {
	switch mode {
	case ModeAuto, "":
		if IsMostlyNumeric(values) {
			return NumericDistribution(values, opts.Bins), nil
		}
		return Distribution{Mode: ModeCategory, Result: CategoryCounts(values, opts.TopK)}, nil
	case ModeCategory:
		return Distribution{Mode: ModeCategory, Result: CategoryCounts(values, opts.TopK)}, nil
	case ModeNumeric:
		return NumericDistribution(values, opts.Bins), nil
	case ModeValue:
		r, _ := NumericValueCounts(values, opts.TopK)
		return Distribution{Mode: ModeValue, Result: r}, nil
	case ModeHist:
		return Distribution{Mode: ModeHist, Result: BuildHistogram(Numbers(values), opts.Bins)}, nil
	case ModePie:
		return Distribution{Mode: ModePie, Result: PieTopK(values, opts.PieTopK, opts.IncludeOthers)}, nil
	}
	return Distribution{}, fmt.Errorf("unknown plot mode %q", mode)
}
