package report

import (
	"bytes"
	"html"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readySnapshot() domain.CitySnapshot {
	committed := domain.Sample{
		domain.IndicatorAir:         domain.Info(domain.LevelLow),
		domain.IndicatorTemperature: domain.Info(domain.LevelHigh),
		domain.IndicatorRain:        domain.Info(domain.LevelMedium),
	}
	raw := committed.Clone()
	raw[domain.IndicatorAir] = domain.Info(domain.LevelHigh)
	return domain.NewCitySnapshot(
		domain.City{Name: "Dhaka <Central>", Lat: 23.8, Lon: 90.4},
		domain.Reading{},
		raw,
		committed,
		time.Date(2025, 3, 24, 9, 0, 0, 0, time.UTC),
	)
}

func TestHTML_Ready(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, readySnapshot()))
	out := buf.String()

	assert.Contains(t, out, "Executive Recommendations for Dhaka &lt;Central&gt;", "city name is escaped")
	assert.Equal(t, len(domain.Indicators)+1, strings.Count(out, `class="card`), "summary plus one card per indicator")
	assert.Contains(t, out, "page-break-inside: avoid")
	assert.Contains(t, out, "Health alert &#43; mask distribution (N95)", "text content is escaped")
	assert.Contains(t, html.UnescapeString(out), "Health alert + mask distribution (N95)", "air uses the raw band")
	assert.Contains(t, out, "background: "+domain.ColorHigh)
	assert.Contains(t, out, "3 of 10 indicators known")
	assert.Contains(t, out, "2025-03-24 09:00 UTC")
	assert.NotContains(t, out, "Loading…")
}

func TestHTML_LoadingWhenNotReady(t *testing.T) {
	snap := domain.NewCitySnapshot(domain.City{Name: "Khulna"}, domain.Reading{}, nil, nil, time.Time{})

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, snap))
	out := buf.String()

	assert.Equal(t, 3*len(domain.Indicators), strings.Count(out, "<li>Loading…</li>"))
	assert.Contains(t, out, "· loading")
	assert.NotContains(t, out, "updated")
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, readySnapshot()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Executive Recommendations for Dhaka <Central>\n"))
	assert.Contains(t, out, "| Air Quality | High |")
	assert.Contains(t, out, "| Heat/Temperature | High |")
	assert.Contains(t, out, "| Fire | Unknown |")
	assert.Contains(t, out, "## Rain (Medium)\n\n- Pre-position pumps & sandbags\n")
	assert.NotContains(t, out, "(loading)")
}
