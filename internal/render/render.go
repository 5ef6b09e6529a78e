package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/cramerplot/internal/dataset"
	"github.com/KaramelBytes/cramerplot/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ErrNoRecords is returned when asked to draw an empty table.
var ErrNoRecords = errors.New("nothing to plot")

var (
	boxEdge = color.Gray{Y: 64}
	refGray = color.Gray{Y: 128}
)

// Figure is a laid-out chart ready to be drawn onto a canvas.
type Figure struct {
	Plot        *plot.Plot
	Legend      plot.Legend
	Boxes       []*plotter.BoxPlot // one per entry of Order
	Order       []dataset.SampleGroup
	Subclusters []string
	Colors      map[string]color.Color
	style       Style
}

// Build lays out boxes, jittered points, reference lines and legend for t.
func Build(t *dataset.Table, s Style) (*Figure, error) {
	if t == nil || len(t.Records) == 0 {
		return nil, ErrNoRecords
	}
	order := dataset.SampleOrder(t.Records)
	subs := dataset.Subclusters(t.Records)
	colors, err := Palette(len(subs))
	if err != nil {
		return nil, err
	}
	f := &Figure{
		Plot:        plot.New(),
		Legend:      plot.NewLegend(),
		Order:       order,
		Subclusters: subs,
		Colors:      make(map[string]color.Color, len(subs)),
		style:       s,
	}
	for i, label := range subs {
		f.Colors[label] = withAlpha(colors[i], s.PointAlpha)
	}
	p := f.Plot

	pos := make(map[string]float64, len(order))
	ticks := make([]plot.Tick, len(order))
	for i, g := range order {
		pos[g.Sample] = float64(i)
		ticks[i] = plot.Tick{Value: float64(i), Label: g.Sample}
	}

	// Box widths are set in Draw once the data area is known.
	for i, g := range order {
		b, err := plotter.NewBoxPlot(vg.Points(1), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("box for %s: %w", g.Sample, err)
		}
		setQuartiles(b, g)
		b.FillColor = color.White
		line := draw.LineStyle{Color: boxEdge, Width: vg.Points(s.BoxLineWidth)}
		b.BoxStyle = line
		b.MedianStyle = line
		b.WhiskerStyle = line
		p.Add(b)
		f.Boxes = append(f.Boxes, b)
	}

	// Points, one scatter per subcluster so each gets a legend entry.
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
	pts := make(map[string]plotter.XYs, len(subs))
	for _, r := range t.Records {
		x := pos[r.Sample] + (rng.Float64()*2-1)*s.Jitter
		pts[r.Subcluster] = append(pts[r.Subcluster], plotter.XY{X: x, Y: r.CramersV})
	}
	f.Legend.TextStyle.Font.Size = vg.Points(s.LegendFontPt)
	f.Legend.Left = true
	f.Legend.Top = true
	for _, label := range subs {
		sc, err := plotter.NewScatter(pts[label])
		if err != nil {
			return nil, fmt.Errorf("points for %s: %w", label, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  f.Colors[label],
			Radius: vg.Points(s.PointRadiusPt),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(sc)
		f.Legend.Add(label, sc)
	}

	for _, y := range s.ReferenceLines {
		fn := plotter.NewFunction(func(float64) float64 { return y })
		fn.LineStyle = draw.LineStyle{
			Color:  withAlpha(refGray, s.RefLineAlpha),
			Width:  vg.Points(s.RefLineWidth),
			Dashes: []vg.Length{vg.Points(6), vg.Points(3)},
		}
		p.Add(fn)
		p.Y.Min = math.Min(p.Y.Min, y)
		p.Y.Max = math.Max(p.Y.Max, y)
	}

	p.X.Min = -0.5
	p.X.Max = float64(len(order)) - 0.5
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Font.Size = vg.Points(s.TickFontPt)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Label.Text = ""

	p.Y.Label.Text = s.YLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(s.LabelFontPt)
	p.Y.Label.Padding = vg.Points(s.LabelPaddingPt)
	p.Y.Tick.Label.Font.Size = vg.Points(s.TickFontPt)
	return f, nil
}

// Draw renders the figure onto c, keeping a column on the right for the legend.
func (f *Figure) Draw(c draw.Canvas) {
	legendW := f.legendWidth()
	area := draw.Crop(c, 0, -legendW, 0, 0)
	f.sizeBoxes(f.Plot.DataCanvas(area))
	f.Plot.Draw(area)

	legArea := draw.Crop(c, c.Max.X-c.Min.X-legendW, 0, 0, 0)
	pad := vg.Points(8)
	height := c.Max.Y - c.Min.Y
	topY := c.Min.Y + height*vg.Length(f.style.LegendTop)

	title := f.Legend.TextStyle
	title.Font.Size = vg.Points(f.style.LegendTitleFontPt)
	title.XAlign = draw.XLeft
	title.YAlign = draw.YTop
	legArea.FillText(title, vg.Point{X: legArea.Min.X + pad, Y: topY}, f.style.LegendTitle)

	f.Legend.XOffs = pad
	f.Legend.YOffs = -(height - (topY - c.Min.Y) + title.Height(f.style.LegendTitle) + pad)
	f.Legend.Draw(legArea)
}

// sizeBoxes makes each box BoxWidth of the category spacing inside da.
func (f *Figure) sizeBoxes(da draw.Canvas) {
	if len(f.Boxes) == 0 {
		return
	}
	w := (da.Max.X - da.Min.X) / vg.Length(len(f.Boxes)) * vg.Length(f.style.BoxWidth)
	for _, b := range f.Boxes {
		b.Width = w
		b.CapWidth = w / 2
	}
}

// setQuartiles replaces the hinge statistics with the linearly interpolated
// quartiles of g and draws whiskers to the furthest values within 1.5 IQR.
func setQuartiles(b *plotter.BoxPlot, g dataset.SampleGroup) {
	b.Median = g.Median
	b.Quartile1 = g.Q1
	b.Quartile3 = g.Q3
	iqr := g.Q3 - g.Q1
	lo, hi := g.Q1-1.5*iqr, g.Q3+1.5*iqr
	b.AdjLow, b.AdjHigh = g.Q1, g.Q3
	for _, v := range g.Values {
		if v >= lo && v < b.AdjLow {
			b.AdjLow = v
		}
		if v <= hi && v > b.AdjHigh {
			b.AdjHigh = v
		}
	}
	b.Outside = nil
}

func (f *Figure) legendWidth() vg.Length {
	title := f.Legend.TextStyle
	title.Font.Size = vg.Points(f.style.LegendTitleFontPt)
	w := title.Width(f.style.LegendTitle)
	for _, label := range f.Subclusters {
		if lw := f.Legend.ThumbnailWidth + f.Legend.Padding + f.Legend.TextStyle.Width(label); lw > w {
			w = lw
		}
	}
	return w + vg.Points(24)
}

// Render draws the table and encodes it in the format named by ext (".png",
// ".jpg", ".tiff", ".svg" or ".pdf").
func Render(t *dataset.Table, s Style, ext string) ([]byte, *Figure, error) {
	f, err := Build(t, s)
	if err != nil {
		return nil, nil, err
	}
	w := vg.Length(s.WidthIn) * vg.Inch
	h := vg.Length(s.HeightIn) * vg.Inch
	c, err := newCanvas(strings.ToLower(ext), w, h, s.DPI)
	if err != nil {
		return nil, nil, err
	}
	f.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", ext, err)
	}
	return buf.Bytes(), f, nil
}

// WriteFile renders t to path, choosing the format from the extension.
func WriteFile(t *dataset.Table, s Style, path string) (*Figure, error) {
	b, f, err := Render(t, s, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return nil, err
	}
	return f, nil
}

// Palette samples the cool-warm diverging map at n evenly spaced interior points.
func Palette(n int) ([]color.Color, error) {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(0)
	cm.SetMax(1)
	out := make([]color.Color, n)
	for i := range out {
		c, err := cm.At(float64(i+1) / float64(n+1))
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		out[i] = c
	}
	return out, nil
}

func newCanvas(ext string, w, h vg.Length, dpi int) (vg.CanvasWriterTo, error) {
	switch ext {
	case ".png", "":
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case ".jpg", ".jpeg":
		return vgimg.JpegCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case ".tif", ".tiff":
		return vgimg.TiffCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case ".svg":
		return vgsvg.New(w, h), nil
	case ".pdf":
		return vgpdf.New(w, h), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}

func withAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(a * 255))
	return n
}
