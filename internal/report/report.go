package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ising/internal/sweep"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444"))
)

// Title renders a section heading.
func Title(s string) string { return titleStyle.Render(s) }

// Line formats one record as "T: 2.27, E: -1.4123, M: 0.5012, Cv: 1.6043".
func Line(r sweep.Record) string {
	if r.Failed() {
		return fmt.Sprintf("T: %.2f, failed: %v", r.Temperature, r.Err)
	}
	return fmt.Sprintf("T: %.2f, E: %.4f, M: %.4f, Cv: %.4f", r.Temperature, r.Energy, r.Magnetization, r.SpecificHeat)
}

// Lines writes one Line per record.
func Lines(w io.Writer, records []sweep.Record) error {
	for _, r := range records {
		line := Line(r)
		if r.Failed() {
			line = failStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Table writes an aligned table including acceptance ratios and seeds.
func Table(w io.Writer, records []sweep.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "T\tE\tM\tCV\tACCEPT\tSEED\tSTATUS")
	for _, r := range records {
		status := "ok"
		if r.Failed() {
			status = "failed: " + r.Err.Error()
		}
		fmt.Fprintf(tw, "%.4f\t%.4f\t%.4f\t%.4f\t%.3f\t%d\t%s\n",
			r.Temperature, r.Energy, r.Magnetization, r.SpecificHeat, r.Acceptance, r.Seed, status)
	}
	return tw.Flush()
}

// Observable selects one column of a record set.
type Observable struct {
	Name  string
	Value func(sweep.Record) float64
}

var Observables = []Observable{
	{"Energy", func(r sweep.Record) float64 { return r.Energy }},
	{"Magnetization", func(r sweep.Record) float64 { return r.Magnetization }},
	{"Capacity", func(r sweep.Record) float64 { return r.SpecificHeat }},
}

// Column extracts the temperatures and values of the successful records.
func Column(records []sweep.Record, o Observable) (temps, values []float64) {
	for _, r := range records {
		if r.Failed() {
			continue
		}
		temps = append(temps, r.Temperature)
		values = append(values, o.Value(r))
	}
	return temps, values
}

// Plot renders one ASCII chart per observable against temperature.
func Plot(w io.Writer, records []sweep.Record, width, height int) error {
	for _, o := range Observables {
		temps, values := Column(records, o)
		if len(values) == 0 {
			return fmt.Errorf("no data to plot")
		}
		caption := fmt.Sprintf("%s vs Temperature (T %.2f..%.2f)", o.Name, temps[0], temps[len(temps)-1])
		graph := asciigraph.Plot(values,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
		)
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", titleStyle.Render(strings.ToLower(o.Name)), graph); err != nil {
			return err
		}
	}
	return nil
}
