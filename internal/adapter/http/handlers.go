package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/couchcryptid/city-risk-service/internal/domain"
	"github.com/couchcryptid/city-risk-service/internal/report"
)

type cityStatus struct {
	domain.City
	KnownCount int  `json:"knownCount"`
	Ready      bool `json:"ready"`
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	cities := s.store.Cities()
	out := make([]cityStatus, 0, len(cities))
	for _, c := range cities {
		st := cityStatus{City: c}
		if snap, ok := s.store.Snapshot(c.Name); ok {
			st.KnownCount = snap.KnownCount
			st.Ready = snap.Ready
		}
		out = append(out, st)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (domain.CitySnapshot, bool) {
	name := r.PathValue("city")
	snap, ok := s.store.Snapshot(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown city: "+name)
	}
	return snap, ok
}

func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.HTML(&buf, snap); err != nil {
		s.logger.Error("render report failed", "city", snap.City.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "report rendering failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.Markdown(&buf, snap); err != nil {
		s.logger.Error("render report failed", "city", snap.City.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "report rendering failed")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// classifyRequest is a Reading plus the unit its temperature is reported in.
// An empty unit means °C.
type classifyRequest struct {
	domain.Reading
	TempUnit domain.TemperatureUnit `json:"tempUnit"`
}

type classifyResponse struct {
	Bands           domain.Sample           `json:"bands"`
	KnownCount      int                     `json:"knownCount"`
	Ready           bool                    `json:"ready"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid reading: "+err.Error())
		return
	}

	if req.TempUnit != "" {
		c, err := domain.CelsiusFrom(req.TempC, req.TempUnit)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.TempC = c
	}

	bands := domain.ClassifyReading(req.Reading)
	known := domain.KnownCount(bands)
	writeJSON(w, http.StatusOK, classifyResponse{
		Bands:           bands,
		KnownCount:      known,
		Ready:           known >= domain.ReadyThreshold,
		Recommendations: domain.Recommendations(bands, bands),
	})
}
