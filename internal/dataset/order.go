package dataset

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// SampleGroup holds the Cramér's V values and summary statistics of one sample.
type SampleGroup struct {
	Sample      string
	Values      []float64 // in input order
	Subclusters []string  // distinct, ordered by subcluster index
	Median      float64
	Q1, Q3      float64
	Mean, Std   float64
}

// SampleOrder groups records by Sample and returns the groups sorted by
// descending median Cramér's V. Equal medians keep ascending sample-name order.
func SampleOrder(records []Record) []SampleGroup {
	byName := map[string]*SampleGroup{}
	subIdx := map[string]map[string]int{}
	for _, r := range records {
		g := byName[r.Sample]
		if g == nil {
			g = &SampleGroup{Sample: r.Sample}
			byName[r.Sample] = g
			subIdx[r.Sample] = map[string]int{}
		}
		g.Values = append(g.Values, r.CramersV)
		subIdx[r.Sample][r.Subcluster] = r.SubclusterIndex
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]SampleGroup, 0, len(names))
	for _, name := range names {
		g := byName[name]
		g.Median = median(g.Values)
		sorted := append([]float64(nil), g.Values...)
		sort.Float64s(sorted)
		g.Q1 = quantile(sorted, 0.25)
		g.Q3 = quantile(sorted, 0.75)
		g.Mean, g.Std = stat.MeanStdDev(g.Values, nil)
		if len(g.Values) < 2 {
			g.Std = 0
		}
		g.Subclusters = orderedLabels(subIdx[name])
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Median > out[j].Median })
	return out
}

// Subclusters lists the distinct subcluster labels ordered by subcluster index.
func Subclusters(records []Record) []string {
	idx := map[string]int{}
	for _, r := range records {
		idx[r.Subcluster] = r.SubclusterIndex
	}
	return orderedLabels(idx)
}

func Names(groups []SampleGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Sample
	}
	return out
}

func orderedLabels(idx map[string]int) []string {
	out := make([]string, 0, len(idx))
	for label := range idx {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool {
		if idx[out[i]] == idx[out[j]] {
			return out[i] < out[j]
		}
		return idx[out[i]] < idx[out[j]]
	})
	return out
}

func median(vals []float64) float64 {
	m, err := stats.Median(vals)
	if err != nil {
		return math.NaN()
	}
	return m
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
