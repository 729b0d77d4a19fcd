package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /stations", s.handleStations)

	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /predict/delay", s.handleDelayPredict)
	mux.HandleFunc("POST /forecast", s.handleForecast)
	mux.HandleFunc("GET /forecast/month/{month}", s.handleMonthForecast)

	mux.HandleFunc("GET /model/info", s.handleModelInfo)
	mux.HandleFunc("GET /model/importance", s.handleImportance)

	mux.HandleFunc("POST /chat", s.handleChat)

	return mux
}
