package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/couchcryptid/city-risk-service/internal/domain"
)

// Markdown writes the report as GitHub-flavoured Markdown.
func Markdown(w io.Writer, snap domain.CitySnapshot) error {
	v := newView(snap)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Executive Recommendations for %s\n\n", v.City.Name)
	fmt.Fprintf(bw, "%d of %d indicators known", v.Known, v.Total)
	if v.UpdatedAt != "" {
		fmt.Fprintf(bw, ", updated %s", v.UpdatedAt)
	}
	if !v.Ready {
		fmt.Fprint(bw, " (loading)")
	}
	fmt.Fprint(bw, "\n\n| Indicator | Level |\n|---|---|\n")
	for _, s := range v.Sections {
		fmt.Fprintf(bw, "| %s | %s |\n", s.Title, s.Info.Label)
	}
	for _, s := range v.Sections {
		fmt.Fprintf(bw, "\n## %s (%s)\n\n", s.Title, s.Info.Label)
		for _, a := range s.Actions {
			fmt.Fprintf(bw, "- %s\n", a)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("render markdown report: %w", err)
	}
	return nil
}
