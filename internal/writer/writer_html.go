package writer

import (
	"fmt"
	"os"
	"strconv"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/model"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func init() {
	factory.RegisterWriter("html", func(def config.WriterDef) (model.Writer, error) {
		return NewHTMLWriter(def.HTML.RootPath), nil
	})
}

// HTMLWriter renders a fingerprint as an interactive chart page.
type HTMLWriter struct {
	rootPath string
}

// NewHTMLWriter creates a new HTML chart writer.
func NewHTMLWriter(rootPath string) model.Writer {
	return &HTMLWriter{rootPath: rootPath}
}

// Type returns the writer type.
func (w *HTMLWriter) Type() string {
	return "html"
}

// Write renders <name>-fingerprint.html with the labeled sequence, the burst
// markers and the numeric Summary Table rows.
func (w *HTMLWriter) Write(fp *model.Fingerprint) error {
	_, prefix, err := outputDir(w.rootPath, fp.Name)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = fp.Name + " fingerprint"
	page.AddCharts(sequenceChart(fp), burstChart(fp), summaryChart(fp))

	path := prefix + "-fingerprint.html"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render '%s': %w", path, err)
	}
	return nil
}

func sequenceChart(fp *model.Fingerprint) *charts.Line {
	byLabel := map[string][]opts.LineData{}
	xs := make([]string, len(fp.Labeled))
	labels := []string{model.LabelSizeAndDirection, model.LabelSizeMarker, model.LabelNumberMarker}
	for i, v := range fp.Labeled {
		xs[i] = strconv.Itoa(v.Index)
		for _, label := range labels {
			if label == v.Label {
				byLabel[label] = append(byLabel[label], opts.LineData{Value: v.Value})
			} else {
				byLabel[label] = append(byLabel[label], opts.LineData{Value: "-"})
			}
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fingerprint sequence", Subtitle: fmt.Sprintf("trace=%s values=%d", fp.Name, len(fp.Labeled))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(xs)
	for _, label := range labels {
		line.AddSeries(label, byLabel[label])
	}
	return line
}

func burstChart(fp *model.Fingerprint) *charts.Bar {
	sizes := fp.SizeMarkers()
	xs := make([]string, len(sizes))
	data := make([]opts.BarData, len(sizes))
	for i, v := range sizes {
		xs[i] = strconv.Itoa(i + 1)
		data[i] = opts.BarData{Value: v}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Size markers", Subtitle: fmt.Sprintf("bursts=%d", len(sizes))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xs).AddSeries("S", data)
	return bar
}

func summaryChart(fp *model.Fingerprint) *charts.Bar {
	var xs []string
	var data []opts.BarData
	for _, row := range fp.Summary {
		v, err := strconv.ParseFloat(row.Value, 64)
		if err != nil {
			continue
		}
		xs = append(xs, row.Kind.String())
		data = append(data, opts.BarData{Value: v})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Summary table"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "log"}),
	)
	bar.SetXAxis(xs).AddSeries("value", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}
