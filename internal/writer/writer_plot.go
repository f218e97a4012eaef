package writer

import (
	"fmt"
	"image/color"
	"log"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func init() {
	factory.RegisterWriter("plot", func(def config.WriterDef) (model.Writer, error) {
		return NewPlotWriter(def.Plot.RootPath, def.Plot.Width, def.Plot.Height), nil
	})
}

var (
	outgoingColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	markerColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotWriter renders the per-category sequences as PNG line plots and the
// Summary Table as a PNG and PDF image.
type PlotWriter struct {
	rootPath string
	width    vg.Length
	height   vg.Length
}

// NewPlotWriter creates a plot writer. Sizes are in inches, zero picks 10x4.
func NewPlotWriter(rootPath string, width, height float64) model.Writer {
	if width <= 0 {
		width = 10
	}
	if height <= 0 {
		height = 4
	}
	return &PlotWriter{rootPath: rootPath, width: vg.Length(width) * vg.Inch, height: vg.Length(height) * vg.Inch}
}

// Type returns the writer type.
func (w *PlotWriter) Type() string {
	return "plot"
}

// Write saves one plot per category plus the table images.
func (w *PlotWriter) Write(fp *model.Fingerprint) error {
	_, prefix, err := outputDir(w.rootPath, fp.Name)
	if err != nil {
		return err
	}

	series := []struct {
		suffix, title, yLabel string
		values                []int
	}{
		{"-size-and-direction.png", "Size and Direction", "Bytes (incoming negative)", fp.SizeAndDirection()},
		{"-size-markers.png", "Size Markers", "Burst bytes (quantized)", fp.SizeMarkers()},
		{"-number-markers.png", "Number Markers", "Packets per burst", fp.NumberMarkers()},
	}
	written := 0
	for _, s := range series {
		if len(s.values) == 0 {
			continue
		}
		p, err := linePlot(fmt.Sprintf("%s - %s", fp.Name, s.title), s.yLabel, s.values)
		if err != nil {
			return fmt.Errorf("plot %s: %w", s.title, err)
		}
		if err := p.Save(w.width, w.height, prefix+s.suffix); err != nil {
			return fmt.Errorf("save %s plot: %w", s.title, err)
		}
		written++
	}

	table := tablePlot(fp)
	for _, ext := range []string{".png", ".pdf"} {
		if err := table.Save(6*vg.Inch, 4*vg.Inch, prefix+"-fingerprint-table"+ext); err != nil {
			return fmt.Errorf("save fingerprint table: %w", err)
		}
		written++
	}

	log.Printf("Wrote %d plots for fingerprint '%s'", written, fp.Name)
	return nil
}

func linePlot(title, yLabel string, values []int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sequence index"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i + 1), Y: float64(v)}
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = outgoingColor
	line.Width = vg.Points(1)
	points.Color = markerColor
	points.Radius = vg.Points(1.5)
	p.Add(line, points)
	return p, nil
}

// tablePlotter draws the Summary Table as a two column grid of text.
type tablePlotter struct {
	rows [][2]string
}

func (t tablePlotter) Plot(c draw.Canvas, _ *plot.Plot) {
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(11)),
		Handler: plot.DefaultTextHandler,
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
	}
	grid := draw.LineStyle{Color: color.Gray{Y: 128}, Width: vg.Points(0.5)}

	n := vg.Length(len(t.rows))
	rowHeight := (c.Max.Y - c.Min.Y) / n
	colWidth := (c.Max.X - c.Min.X) / 2
	for i, row := range t.rows {
		top := c.Max.Y - vg.Length(i)*rowHeight
		mid := top - rowHeight/2
		c.FillText(sty, vg.Point{X: c.Min.X + colWidth/2, Y: mid}, row[0])
		c.FillText(sty, vg.Point{X: c.Min.X + colWidth*3/2, Y: mid}, row[1])
		c.StrokeLine2(grid, c.Min.X, top, c.Max.X, top)
	}
	c.StrokeLine2(grid, c.Min.X, c.Min.Y, c.Max.X, c.Min.Y)
	c.StrokeLine2(grid, c.Min.X, c.Min.Y, c.Min.X, c.Max.Y)
	c.StrokeLine2(grid, c.Min.X+colWidth, c.Min.Y, c.Min.X+colWidth, c.Max.Y)
	c.StrokeLine2(grid, c.Max.X, c.Min.Y, c.Max.X, c.Max.Y)
}

func tablePlot(fp *model.Fingerprint) *plot.Plot {
	rows := [][2]string{{"Marker", "Packet Information"}}
	for _, r := range fp.Summary {
		rows = append(rows, [2]string{r.Kind.String(), r.Value})
	}
	p := plot.New()
	p.Title.Text = fp.Name + " fingerprint"
	p.HideAxes()
	p.Add(tablePlotter{rows: rows})
	return p
}
