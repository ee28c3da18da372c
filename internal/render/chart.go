package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/models"
)

// View is one of the renderings offered by catalog.Views.
type View string

const (
	ViewReport  View = "report"
	ViewBar     View = "bar"
	ViewLine    View = "line"
	ViewScatter View = "scatter"
)

const (
	chartWidth  = 560
	chartHeight = 367
)

// ParseView accepts either the short name ("bar") or the catalog title
// ("Bar Chart"), case-insensitively.
func ParseView(name string) (View, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, v := range []View{ViewReport, ViewBar, ViewLine, ViewScatter} {
		if key == string(v) {
			return v, nil
		}
	}
	for i, title := range catalog.Views {
		if key == strings.ToLower(title) {
			return []View{ViewReport, ViewBar, ViewLine, ViewScatter}[i], nil
		}
	}
	return "", fmt.Errorf("unknown view: %q", name)
}

// Chart draws state as a PNG in the given chart view.
func Chart(w io.Writer, state models.Reader, view View) error {
	if !state.Valid() {
		return ErrInvalidDataset
	}

	p, err := buildChart(state, view)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(vg.Points(chartWidth), vg.Points(chartHeight), "png")
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

type namedSeries struct {
	name   string
	series models.Series
}

func chartSeries(state models.Reader) []namedSeries {
	out := []namedSeries{{name: catalog.IndicatorAt(catalog.PrimaryIndicator).Name, series: state.Primary()}}
	if !state.Indicator().IsPrimary() {
		out = append(out, namedSeries{name: catalog.IndicatorAt(state.Indicator()).Label, series: state.Secondary()})
	}
	return out
}

func buildChart(state models.Reader, view View) (*plot.Plot, error) {
	indicator := catalog.IndicatorAt(state.Indicator())

	p := plot.New()
	p.Title.Text = indicator.Name
	p.X.Label.Text = "Year"
	p.Y.Label.Text = indicator.Label
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var err error
	switch view {
	case ViewBar:
		err = addBars(p, state)
	case ViewLine, ViewScatter:
		err = addXY(p, state, view)
	default:
		return nil, fmt.Errorf("view %q is not a chart", view)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func addBars(p *plot.Plot, state models.Reader) error {
	all := chartSeries(state)
	years := catalog.Years(state.StartYear(), state.EndYear())
	barWidth := vg.Points(float64(chartWidth) / float64(len(years)*len(all)+len(years)+1))

	for i, s := range all {
		values := make(plotter.Values, len(years))
		for j, y := range years {
			f, err := numeric(s.series, y, s.name)
			if err != nil {
				return err
			}
			values[j] = f
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("failed to build bar chart: %w", err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(len(all)-1)/2) * barWidth

		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	p.NominalX(labels...)
	return nil
}

func addXY(p *plot.Plot, state models.Reader, view View) error {
	for i, s := range chartSeries(state) {
		points := make(plotter.XYs, 0, state.EndYear()-state.StartYear()+1)
		for y := state.StartYear(); y <= state.EndYear(); y++ {
			f, err := numeric(s.series, y, s.name)
			if err != nil {
				return err
			}
			points = append(points, plotter.XY{X: float64(y), Y: f})
		}

		if view == ViewLine {
			line, err := plotter.NewLine(points)
			if err != nil {
				return fmt.Errorf("failed to build line chart: %w", err)
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(2)
			p.Add(line)
			p.Legend.Add(s.name, line)
			continue
		}

		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return fmt.Errorf("failed to build scatter plot: %w", err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(s.name, scatter)
	}
	return nil
}

func numeric(series models.Series, year int, name string) (float64, error) {
	f, ok := series.Get(year).Float()
	if !ok {
		return 0, fmt.Errorf("%w: %s in %d", ErrNonNumeric, name, year)
	}
	return f, nil
}
