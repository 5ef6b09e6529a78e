package dataset

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var subclusterIndexRe = regexp.MustCompile(`s(\d+)`)

// Prepare loads the association table at path, keeps rows matching the analysis
// type and population prefix, and derives the Sample and Subcluster labels.
//
// Failures are typed: ErrFileNotFound, *SchemaError (ErrSchemaMismatch),
// ErrEmptyAfterFilter and *ParseError can be told apart with errors.Is/As.
func Prepare(path string, opt Options) (*Table, error) {
	header, rows, err := readTable(path, opt)
	if err != nil {
		return nil, err
	}
	idx, err := resolveColumns(path, header)
	if err != nil {
		return nil, err
	}
	label := opt.SubclusterLabel
	if label == "" {
		label = DefaultOptions().SubclusterLabel
	}

	t := &Table{Name: filepath.Base(path), Rows: len(rows)}
	matched := 0
	for i, rec := range rows {
		// Filter cells are matched verbatim.
		analysisType := rec[idx[ColAnalysisType]]
		population := rec[idx[ColPopulation]]
		if analysisType != opt.AnalysisType || !strings.HasPrefix(population, opt.PopulationPrefix) {
			continue
		}
		matched++
		rowNum := i + 1

		n, err := SubclusterIndex(population)
		if err != nil {
			return nil, &ParseError{Row: rowNum, Column: ColPopulation, Value: population, Err: err}
		}
		raw := strings.TrimSpace(rec[idx[ColCramersV]])
		if isMissing(raw) {
			t.Dropped++
			continue
		}
		v, ok := parseNumeric(raw, opt)
		if !ok {
			return nil, &ParseError{Row: rowNum, Column: ColCramersV, Value: raw}
		}
		if math.IsNaN(v) {
			t.Dropped++
			continue
		}
		sampleID := rec[idx[ColSample]]
		t.Records = append(t.Records, Record{
			AnalysisType:    analysisType,
			Population:      population,
			SampleID:        sampleID,
			CramersV:        v,
			Sample:          SampleName(sampleID),
			Subcluster:      label + strconv.Itoa(n),
			SubclusterIndex: n,
		})
	}
	t.Kept = len(t.Records)
	if t.Dropped > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("dropped %d filtered row(s) with a missing %s", t.Dropped, ColCramersV))
	}
	if t.Kept == 0 {
		return nil, fmt.Errorf("%w: %d of %d rows matched %s=%q and %s prefix %q, %d dropped for a missing %s",
			ErrEmptyAfterFilter, matched, t.Rows, ColAnalysisType, opt.AnalysisType, ColPopulation, opt.PopulationPrefix, t.Dropped, ColCramersV)
	}
	return t, nil
}

// isMissing matches the empty cell and the usual NA spellings.
func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// SampleName returns the text preceding the first underscore, or the whole id.
func SampleName(sampleID string) string {
	name, _, _ := strings.Cut(sampleID, "_")
	return name
}

// SubclusterIndex extracts the integer following the first "s<digits>" run.
func SubclusterIndex(population string) (int, error) {
	m := subclusterIndexRe.FindStringSubmatch(population)
	if m == nil {
		return 0, ErrNoSubclusterIndex
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoSubclusterIndex, err)
	}
	return n, nil
}

func resolveColumns(path string, header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(h)
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}
	idx := make(map[string]int, 4)
	var missing []string
	for _, col := range []string{ColSample, ColPopulation, ColAnalysisType, ColCramersV} {
		i, ok := byName[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Path: filepath.Base(path), Missing: missing, Header: header}
	}
	return idx, nil
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
