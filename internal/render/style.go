package render

// Style holds the fixed visual recipe of the figure.
type Style struct {
	YLabel      string
	LegendTitle string

	// Horizontal dashed guides, in data units.
	ReferenceLines []float64

	// Canvas
	WidthIn  float64
	HeightIn float64
	DPI      int

	// Category layout, as fractions of the spacing between samples.
	BoxWidth float64
	Jitter   float64
	Seed     uint64

	PointRadiusPt float64
	PointAlpha    float64
	BoxLineWidth  float64
	RefLineWidth  float64
	RefLineAlpha  float64

	// Font sizes in points
	LabelFontPt       float64
	LabelPaddingPt    float64
	TickFontPt        float64
	LegendFontPt      float64
	LegendTitleFontPt float64
	// LegendTop anchors the legend title at this fraction of the canvas height.
	LegendTop float64
}

// DefaultStyle returns the slide-sized 16:9 recipe rendered at 300 DPI.
func DefaultStyle() Style {
	return Style{
		YLabel:            "Cramér's V",
		LegendTitle:       "Subcluster",
		ReferenceLines:    []float64{0.05, 0.15},
		WidthIn:           16,
		HeightIn:          9,
		DPI:               300,
		BoxWidth:          0.6,
		Jitter:            0.2,
		Seed:              1,
		PointRadiusPt:     5,
		PointAlpha:        0.9,
		BoxLineWidth:      1.5,
		RefLineWidth:      1.5,
		RefLineAlpha:      0.3,
		LabelFontPt:       24,
		LabelPaddingPt:    15,
		TickFontPt:        18,
		LegendFontPt:      18,
		LegendTitleFontPt: 20,
		LegendTop:         0.6,
	}
}
