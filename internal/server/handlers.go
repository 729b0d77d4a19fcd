package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/transitlab/railcast/internal/chat"
	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/explain"
	"github.com/transitlab/railcast/internal/feature"
	"github.com/transitlab/railcast/internal/forecast"
	"github.com/transitlab/railcast/internal/model"
	"github.com/transitlab/railcast/internal/risk"
)

const (
	targetCancellations = "cancellations"
	targetDelays        = "delays"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeModelError maps domain errors onto HTTP statuses.
func writeModelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feature.ErrMissingFeature),
		errors.Is(err, feature.ErrEmptyInput),
		errors.Is(err, dataset.ErrSchema):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func normalizeTarget(raw string) (string, bool) {
	switch raw {
	case "", targetCancellations:
		return targetCancellations, true
	case targetDelays:
		return targetDelays, true
	}
	return "", false
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "railcast",
		"endpoints": []string{
			"/health", "/metrics", "/stats", "/stations",
			"/predict", "/predict/delay", "/forecast", "/forecast/month/{month}",
			"/model/info", "/model/importance", "/chat",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.table.Summarize())
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	names := dataset.Stations()
	stations := make([]map[string]any, 0, len(names))
	for _, name := range names {
		code, err := dataset.StationCode(name)
		if err != nil {
			continue
		}
		stations = append(stations, map[string]any{"name": name, "code": code})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": stations})
}

type predictRequest struct {
	forecast.Request
	Target string `json:"target"`
}

type predictResponse struct {
	Target     string          `json:"target"`
	Prediction float64         `json:"prediction"`
	Risk       risk.Assessment `json:"risk"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, ok := normalizeTarget(req.Target)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown target: "+req.Target)
		return
	}

	m, err := s.fitModel(target)
	if err != nil {
		predictionFailures.Inc()
		writeModelError(w, err)
		return
	}

	means, err := feature.Means(s.table, s.schema)
	if err != nil && req.FillMeans {
		predictionFailures.Inc()
		writeModelError(w, err)
		return
	}

	value, err := forecast.PredictPoint(m, req.Source(means))
	if err != nil {
		predictionFailures.Inc()
		writeModelError(w, err)
		return
	}

	predictionsTotal.Inc()
	writeJSON(w, http.StatusOK, predictResponse{
		Target:     target,
		Prediction: value,
		Risk:       s.translator.Assess(value, s.historicalMean(target)),
	})
}

// handleDelayPredict serves the trip-delay variant from the pre-trained
// station model. Only available when a delay artifact is configured.
func (s *Server) handleDelayPredict(w http.ResponseWriter, r *http.Request) {
	if s.delayModel == nil {
		writeError(w, http.StatusServiceUnavailable, "trip-delay model is not configured")
		return
	}

	var req forecast.DelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := req.Source()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	value, err := forecast.PredictPoint(s.delayModel, src)
	if err != nil {
		predictionFailures.Inc()
		writeModelError(w, err)
		return
	}

	predictionsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"delay_minutes": value,
		"on_time":       value < 5,
	})
}

type forecastRequest struct {
	forecast.HorizonRequest
	Target string `json:"target"`
}

type forecastPoint struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Value float64         `json:"value"`
	Risk  risk.Assessment `json:"risk"`
}

type forecastResponse struct {
	Target string          `json:"target"`
	Model  string          `json:"model"`
	Points []forecastPoint `json:"points"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, ok := normalizeTarget(req.Target)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown target: "+req.Target)
		return
	}

	months := req.Months
	if months == 0 {
		months = s.cfg.Forecast.HorizonMonths
	}

	start := time.Now()
	m, err := s.fitModel(target)
	if err != nil {
		writeModelError(w, err)
		return
	}

	series, err := forecast.PredictHorizon(m, s.table, months)
	if err != nil {
		writeModelError(w, err)
		return
	}
	forecastDuration.Observe(time.Since(start).Seconds())
	forecastsTotal.Inc()

	writeJSON(w, http.StatusOK, forecastResponse{
		Target: target,
		Model:  string(m.Kind()),
		Points: s.assess(series, target),
	})
}

func (s *Server) handleMonthForecast(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, ok := normalizeTarget(r.URL.Query().Get("target"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown target: "+r.URL.Query().Get("target"))
		return
	}

	start := time.Now()
	m, err := s.fitModel(target)
	if err != nil {
		writeModelError(w, err)
		return
	}

	series, err := forecast.PredictMonthAcrossYears(m, s.table, month)
	if err != nil {
		writeModelError(w, err)
		return
	}
	forecastDuration.Observe(time.Since(start).Seconds())
	forecastsTotal.Inc()

	name, _ := dataset.MonthName(month)
	writeJSON(w, http.StatusOK, map[string]any{
		"target": target,
		"model":  string(m.Kind()),
		"month":  name,
		"points": s.assess(series, target),
	})
}

// parseMonth accepts a number or a month name.
func parseMonth(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > 12 {
			return 0, errors.New("month out of range")
		}
		return n, nil
	}
	return dataset.NormalizeMonth(raw)
}

func (s *Server) assess(series forecast.Series, target string) []forecastPoint {
	mean := s.historicalMean(target)
	points := make([]forecastPoint, len(series))
	for i, pt := range series {
		points[i] = forecastPoint{
			Year:  pt.Year,
			Month: pt.Month,
			Value: pt.Value,
			Risk:  s.translator.Assess(pt.Value, mean),
		}
	}
	return points
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	m, err := s.fitModel(targetCancellations)
	if err != nil {
		writeModelError(w, err)
		return
	}

	info := map[string]any{
		"kind":         string(m.Kind()),
		"schema":       m.Schema(),
		"observations": s.table.Len(),
	}
	if lin, ok := m.(*model.LinearModel); ok {
		info["r2"] = lin.R2
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleImportance(w http.ResponseWriter, r *http.Request) {
	m, err := s.fitModel(targetCancellations)
	if err != nil {
		writeModelError(w, err)
		return
	}

	report, err := explain.Explain(m, explain.WithCoefficients())
	if err != nil {
		if errors.Is(err, explain.ErrUnsupportedModel) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type chatRequest struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not enabled")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	chatRequestsTotal.Inc()
	reply, err := s.assistant.Respond(r.Context(), req.History, req.Message)
	if err != nil {
		chatFailures.Inc()
		s.logger.Warn("assistant fallback", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{
			"reply":    chat.Fallback,
			"degraded": true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reply": reply})
}
