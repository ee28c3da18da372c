// Package render turns a validated analysis into the views a collaborator can
// show: the per-year text report, bar/line/scatter charts and a spreadsheet.
//
// Every renderer refuses a dataset that has not passed validation.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/models"
)

var (
	// ErrInvalidDataset is returned when asked to render an invalid state.
	ErrInvalidDataset = errors.New("dataset is not valid for rendering")
	// ErrNonNumeric is returned when a chart meets a value that is not a number.
	ErrNonNumeric = errors.New("value is not numeric")
)

const reportTemplate = `{{.Title}}
{{rule}}
{{range .Years}}Year {{.Year}}:
{{range .Values}}		{{.Label}} => {{.Value}}
{{end}}{{end}}`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"rule": func() string { return strings.Repeat("=", 38) },
}).Parse(reportTemplate))

type reportLine struct {
	Label string
	Value string
}

type reportYear struct {
	Year   int
	Values []reportLine
}

type reportData struct {
	Title string
	Years []reportYear
}

// Report writes the text report for state: the indicator name, a rule, then
// each year of the range with the primary value and, if selected, the
// secondary value.
func Report(w io.Writer, state models.Reader) error {
	if !state.Valid() {
		return ErrInvalidDataset
	}

	indicator := catalog.IndicatorAt(state.Indicator())
	primaryLabel := catalog.IndicatorAt(catalog.PrimaryIndicator).Label
	primary := state.Primary()
	secondary := state.Secondary()
	withSecondary := !state.Indicator().IsPrimary()

	data := reportData{Title: indicator.Name}
	for y := state.StartYear(); y <= state.EndYear(); y++ {
		year := reportYear{Year: y}
		year.Values = append(year.Values, reportLine{Label: primaryLabel, Value: primary.Get(y).String()})
		if withSecondary {
			year.Values = append(year.Values, reportLine{Label: indicator.Label, Value: secondary.Get(y).String()})
		}
		data.Years = append(data.Years, year)
	}

	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// ReportString is Report into a string.
func ReportString(state models.Reader) (string, error) {
	var b strings.Builder
	if err := Report(&b, state); err != nil {
		return "", err
	}
	return b.String(), nil
}
