// Package report renders a city's recommendations as a printable HTML page
// or as Markdown.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/city-risk-service/internal/domain"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"safeCSS": func(s string) template.CSS { return template.CSS(s) },
}).ParseFS(templateFS, "templates/report.html.tmpl"))

// loadingItems stands in for actions while the city is below the ready threshold.
var loadingItems = []string{"Loading…", "Loading…", "Loading…"}

type section struct {
	Title   string
	Info    domain.RiskInfo
	Actions []string
}

type view struct {
	City      domain.City
	Ready     bool
	Known     int
	Total     int
	Sections  []section
	UpdatedAt string
}

func newView(snap domain.CitySnapshot) view {
	v := view{
		City:  snap.City,
		Ready: snap.Ready,
		Known: snap.KnownCount,
		Total: len(domain.Indicators),
	}
	if !snap.UpdatedAt.IsZero() {
		v.UpdatedAt = snap.UpdatedAt.UTC().Format("2006-01-02 15:04 MST")
	}

	recs := snap.Recommendations
	if len(recs) == 0 {
		recs = domain.Recommendations(nil, nil)
	}
	for _, rec := range recs {
		s := section{Title: rec.Title, Info: rec.Info, Actions: rec.Actions}
		if !snap.Ready {
			s.Info = domain.Unknown
			s.Actions = loadingItems
		}
		v.Sections = append(v.Sections, s)
	}
	return v
}

// HTML writes a self-contained report page. Each indicator is a .card with
// page-break-inside: avoid, so the browser's print dialog never splits one.
func HTML(w io.Writer, snap domain.CitySnapshot) error {
	if err := htmlTemplate.Execute(w, newView(snap)); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
