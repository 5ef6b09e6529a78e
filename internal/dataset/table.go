package dataset

// Column names the input table must carry.
const (
	ColSample       = "sample"
	ColPopulation   = "population"
	ColAnalysisType = "analysis_type"
	ColCramersV     = "cramers_v"
)

// Options controls how an association table is loaded and filtered.
type Options struct {
	// AnalysisType keeps only rows whose analysis_type equals this value.
	AnalysisType string
	// PopulationPrefix keeps only rows whose population starts with this value.
	PopulationPrefix string
	// SubclusterLabel is prepended to the parsed subcluster index.
	SubclusterLabel string
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns the filter used for the tumor subcluster figure.
func DefaultOptions() Options {
	return Options{
		AnalysisType:     "full",
		PopulationPrefix: "Subcluster_Tumor_",
		SubclusterLabel:  "Subcluster ",
		SheetIndex:       1,
	}
}

// Record is one association score between a sample and a tumor subcluster.
type Record struct {
	AnalysisType string
	Population   string
	SampleID     string
	CramersV     float64

	// Derived labels
	Sample          string
	Subcluster      string
	SubclusterIndex int
}

// Table is the filtered, annotated result of Prepare.
type Table struct {
	Name     string
	Rows     int // data rows read, header excluded
	Kept     int // rows that passed the filter and carry a value
	Dropped  int // filtered rows dropped for a missing cramers_v
	Records  []Record
	Warnings []string
}
