package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/ising/internal/report"
	"github.com/san-kum/ising/internal/sweep"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// FormatFor picks the format from a file extension, defaulting to PNG.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return SVG
	}
	return PNG
}

var seriesColors = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	{R: 255, G: 165, B: 0, A: 255},
}

// Chart renders one observable against temperature as a line with markers.
func Chart(w io.Writer, records []sweep.Record, idx int, format Format) error {
	o := report.Observables[idx]
	temps, values := report.Column(records, o)
	if len(values) < 2 {
		return fmt.Errorf("%s: need at least two successful temperatures, have %d", o.Name, len(values))
	}

	color := seriesColors[idx%len(seriesColors)]
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s vs Temperature", o.Name),
		Width:  1000,
		Height: 500,
		XAxis: chart.XAxis{
			Name:  "Temperature",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  o.Name,
			Style: chart.Style{FontSize: 10.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    o.Name,
				XValues: temps,
				YValues: values,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2.0,
					DotColor:    color,
					DotWidth:    3.0,
				},
			},
		},
	}

	provider := chart.PNG
	if format == SVG {
		provider = chart.SVG
	}
	return graph.Render(provider, w)
}

// WriteCharts writes one file per observable next to base, e.g.
// out.png becomes out_energy.png, out_magnetization.png and out_capacity.png.
func WriteCharts(base string, records []sweep.Record) ([]string, error) {
	format := FormatFor(base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	paths := make([]string, 0, len(report.Observables))
	for i, o := range report.Observables {
		path := fmt.Sprintf("%s_%s.%s", stem, strings.ToLower(o.Name), format)
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = Chart(f, records, i, format)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, fmt.Errorf("render %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
