package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/city-risk-service/internal/adapter/http"
	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockStore struct {
	cities []domain.City
	snaps  map[string]domain.CitySnapshot
}

func (m *mockStore) Cities() []domain.City { return m.cities }

func (m *mockStore) Snapshot(name string) (domain.CitySnapshot, bool) {
	s, ok := m.snaps[strings.ToLower(name)]
	return s, ok
}

func newStore() *mockStore {
	dhaka := domain.City{Name: "Dhaka", Lat: 23.8103, Lon: 90.4125}
	committed := domain.Sample{
		domain.IndicatorAir:         domain.Info(domain.LevelMedium),
		domain.IndicatorTemperature: domain.Info(domain.LevelHigh),
		domain.IndicatorHumidity:    domain.Info(domain.LevelHigh),
		domain.IndicatorFire:        domain.Unknown,
	}
	snap := domain.NewCitySnapshot(dhaka, domain.Reading{AQI: domain.Num(75)}, committed, committed, time.Date(2025, 3, 24, 9, 0, 0, 0, time.UTC))
	return &mockStore{
		cities: []domain.City{dhaka, {Name: "Khulna", Lat: 22.8456, Lon: 89.5403}},
		snaps:  map[string]domain.CitySnapshot{"dhaka": snap},
	}
}

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", newStore(), &mockReadiness{err: readyErr}, slog.Default())
}

func serve(srv *httpadapter.Server, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(fmt.Errorf("cities still loading: Khulna")), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCitiesEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/api/cities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		Name       string  `json:"name"`
		Lat        float64 `json:"lat"`
		KnownCount int     `json:"knownCount"`
		Ready      bool    `json:"ready"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Dhaka", body[0].Name)
	assert.Equal(t, 23.8103, body[0].Lat)
	assert.Equal(t, 3, body[0].KnownCount)
	assert.True(t, body[0].Ready)
	assert.Equal(t, "Khulna", body[1].Name)
	assert.False(t, body[1].Ready)
}

func TestBandsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/api/cities/Dhaka/bands", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.CitySnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "Dhaka", snap.City.Name)
	assert.Equal(t, domain.Info(domain.LevelHigh), snap.Committed[domain.IndicatorTemperature])
	assert.Equal(t, domain.Num(75), snap.Reading.AQI)
	assert.Len(t, snap.Recommendations, len(domain.Indicators))
}

func TestBandsEndpoint_UnknownCity(t *testing.T) {
	rec := serve(newTestServer(nil), http.MethodGet, "/api/cities/Atlantis/bands", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Atlantis")
}

func TestReportEndpoints(t *testing.T) {
	srv := newTestServer(nil)

	rec := serve(srv, http.MethodGet, "/api/cities/dhaka/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Executive Recommendations for Dhaka")

	rec = serve(srv, http.MethodGet, "/api/cities/dhaka/report.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "| Heat/Temperature | High |")

	rec = serve(srv, http.MethodGet, "/api/cities/khulna/report", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassifyEndpoint(t *testing.T) {
	body := `{"aqi": "42", "pm25": 20, "temp": 91.4, "tempUnit": "F", "rh": 30, "windSpeedMs": null, "fireEvents": "N/A"}`
	rec := serve(newTestServer(nil), http.MethodPost, "/api/classify", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Bands           map[string]domain.RiskInfo `json:"bands"`
		KnownCount      int                        `json:"knownCount"`
		Ready           bool                       `json:"ready"`
		Recommendations []domain.Recommendation    `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, domain.LevelMedium, resp.Bands["airInfo"].Level, "pm2.5 AQI outranks the reported AQI")
	assert.Equal(t, domain.LevelHigh, resp.Bands["tempInfo"].Level, "33°C after unit conversion")
	assert.Equal(t, domain.LevelNA, resp.Bands["windInfo"].Level)
	assert.Equal(t, domain.LevelHigh, resp.Bands["fireInfo"].Level, "fallback on dry air")
	assert.True(t, resp.Ready)
	assert.Len(t, resp.Recommendations, len(domain.Indicators))
}

func TestClassifyEndpoint_BadRequests(t *testing.T) {
	srv := newTestServer(nil)

	rec := serve(srv, http.MethodPost, "/api/classify", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(srv, http.MethodPost, "/api/classify", `{"temp": 300, "tempUnit": "R"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown temperature unit")
}
