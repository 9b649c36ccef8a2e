// Package firms summarizes NASA FIRMS active-fire detections around a point.
package firms

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/observability"
)

const source = "fire"

// ErrNoData is returned when no configured feed produced any detections.
var ErrNoData = errors.New("firms: no feed returned data")

// Client implements domain.FireProvider over the public 24h CSV feeds.
// Feeds are tried in order; the first one with rows wins.
type Client struct {
	httpClient *http.Client
	urls       []string
	radiusKm   float64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a FIRMS client for the given feed URLs.
func NewClient(urls []string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		urls:       urls,
		radiusKm:   domain.FireSearchRadiusKm,
		metrics:    metrics,
		logger:     logger,
	}
}

// FiresNear counts detections within the search radius of lat/lon.
func (c *Client) FiresNear(ctx context.Context, lat, lon float64) (domain.FireSummary, error) {
	var errs []error
	for _, u := range c.urls {
		summary, rows, err := c.fetch(ctx, u, lat, lon)
		if err != nil {
			if ctx.Err() != nil {
				return domain.FireSummary{}, ctx.Err()
			}
			c.logger.Warn("firms feed failed, trying next", "url", u, "error", err)
			errs = append(errs, err)
			continue
		}
		if rows == 0 {
			continue
		}
		return summary, nil
	}
	if len(errs) > 0 {
		return domain.FireSummary{}, fmt.Errorf("%w: %w", ErrNoData, errors.Join(errs...))
	}
	return domain.FireSummary{}, ErrNoData
}

func (c *Client) fetch(ctx context.Context, u string, lat, lon float64) (domain.FireSummary, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.FireSummary{}, 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return domain.FireSummary{}, 0, fmt.Errorf("firms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return domain.FireSummary{}, 0, fmt.Errorf("firms error: status %d", resp.StatusCode)
	}

	summary, rows, err := Summarize(resp.Body, lat, lon, c.radiusKm)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return domain.FireSummary{}, 0, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	return summary, rows, nil
}

// Summarize reads a FIRMS CSV and returns the detections within radiusKm of
// lat/lon along with the total number of data rows read. Rows with
// unparsable coordinates are skipped.
func Summarize(r io.Reader, lat, lon, radiusKm float64) (domain.FireSummary, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.FireSummary{}, 0, nil
	}
	if err != nil {
		return domain.FireSummary{}, 0, fmt.Errorf("read firms header: %w", err)
	}
	latIdx, lonIdx, dateIdx := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "latitude":
			latIdx = i
		case "longitude":
			lonIdx = i
		case "acq_date":
			dateIdx = i
		}
	}
	if latIdx < 0 || lonIdx < 0 {
		return domain.FireSummary{}, 0, errors.New("firms csv: missing latitude/longitude columns")
	}

	var (
		summary domain.FireSummary
		rows    int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.FireSummary{}, rows, fmt.Errorf("read firms row %d: %w", rows+1, err)
		}
		rows++

		fLat, ok1 := field(rec, latIdx)
		fLon, ok2 := field(rec, lonIdx)
		if !ok1 || !ok2 {
			continue
		}
		d := domain.HaversineKm(lat, lon, fLat, fLon)
		if d > radiusKm {
			continue
		}
		summary.Count++
		if !summary.NearestKm.Valid || d < summary.NearestKm.Value {
			summary.NearestKm = domain.Num(d)
		}
		if dateIdx >= 0 && dateIdx < len(rec) {
			if date := strings.TrimSpace(rec[dateIdx]); date > summary.LastDate {
				summary.LastDate = date
			}
		}
	}
	return summary, rows, nil
}

func field(rec []string, i int) (float64, bool) {
	if i >= len(rec) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
