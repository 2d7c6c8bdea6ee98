// Package chart renders FDR chart data as SVG or PNG images.
package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"corromics/internal/errors"
	"corromics/internal/fdr"
)

// Format is an image encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported image format %q, use svg or png", s))
}

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

var namedColors = map[string]drawing.Color{
	"orange": drawing.ColorFromHex("FFA500"),
}

func colorFor(name string, opacity float64) drawing.Color {
	c, ok := namedColors[name]
	if !ok {
		c = drawing.ParseColor(name)
	}
	if opacity > 0 && opacity < 1 {
		c = c.WithAlpha(uint8(math.Round(opacity * 255)))
	}
	return c
}

func frame(title string, width, height int) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
	}
}

// stepSeries turns bin counts into the outline of a bar histogram.
func stepSeries(name string, edges []float64, counts []int, col drawing.Color) chart.ContinuousSeries {
	s := chart.ContinuousSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor: col,
			StrokeWidth: 1,
			FillColor:   col,
		},
	}
	for i, n := range counts {
		s.XValues = append(s.XValues, edges[i], edges[i+1])
		s.YValues = append(s.YValues, float64(n), float64(n))
	}
	return s
}

// RenderHistogram renders the target and decoy score histograms on one set of axes.
func RenderHistogram(w io.Writer, h fdr.HistogramChart, f Format) error {
	if len(h.Edges) < 2 || len(h.Target) != len(h.Edges)-1 || len(h.Decoy) != len(h.Edges)-1 {
		return errors.InvalidInput("histogram needs one count per bin")
	}

	ch := frame(h.Title, h.Width, h.Height)
	ch.XAxis = chart.XAxis{Name: h.XLabel, Range: &chart.ContinuousRange{Min: h.XMin, Max: h.XMax}}
	ch.YAxis = chart.YAxis{Name: h.YLabel, Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(h.MaxCount())*1.05)}}
	ch.Series = []chart.Series{
		stepSeries("Target", h.Edges, h.Target, colorFor(h.TargetColor, h.TargetOpacity)),
		stepSeries("Decoy", h.Edges, h.Decoy, colorFor(h.DecoyColor, h.DecoyOpacity)),
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(f.provider(), w); err != nil {
		return errors.Wrap(err, "failed to render histogram")
	}
	return nil
}

// RenderFDRCurve renders the FDR curve with one dashed reference line per
// threshold and the curve points near each threshold highlighted.
func RenderFDRCurve(w io.Writer, c fdr.FDRCurveChart, f Format) error {
	ymax := 1.0
	var series []chart.Series

	if len(c.Points) > 0 {
		s := chart.ContinuousSeries{
			Name: "FDR",
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 1.5,
				DotColor:    chart.ColorBlue,
				DotWidth:    1.5,
			},
		}
		for _, p := range c.Points {
			s.XValues = append(s.XValues, p.X)
			s.YValues = append(s.YValues, p.Y)
			ymax = math.Max(ymax, p.Y)
		}
		series = append(series, s)
	}

	for _, m := range c.Thresholds {
		col := colorFor(m.Color, 1)
		ymax = math.Max(ymax, m.Percent)
		if m.X1 > m.X0 {
			series = append(series, chart.ContinuousSeries{
				Name:    m.Label,
				Style:   chart.Style{StrokeColor: col, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}},
				XValues: []float64{m.X0, m.X1},
				YValues: []float64{m.Percent, m.Percent},
			})
		}
		if len(m.Points) == 0 {
			continue
		}
		near := chart.ContinuousSeries{
			Name:  fmt.Sprintf("%s (±tolerance)", m.Label),
			Style: chart.Style{StrokeWidth: chart.Disabled, DotColor: col, DotWidth: 4},
		}
		for _, p := range m.Points {
			near.XValues = append(near.XValues, p.X)
			near.YValues = append(near.YValues, p.Y)
		}
		series = append(series, near)
	}

	if len(series) == 0 {
		return errors.InvalidInput("FDR curve has nothing to plot")
	}

	ch := frame(c.Title, c.Width, c.Height)
	ch.XAxis = chart.XAxis{Name: c.XLabel, Range: &chart.ContinuousRange{Min: c.XMin, Max: c.XMax}}
	ch.YAxis = chart.YAxis{Name: c.YLabel, Range: &chart.ContinuousRange{Min: 0, Max: ymax * 1.05}}
	ch.Series = series
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(f.provider(), w); err != nil {
		return errors.Wrap(err, "failed to render FDR curve")
	}
	return nil
}
