package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railcast_predictions_total",
		Help: "Number of point predictions served.",
	})
	predictionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railcast_prediction_failures_total",
		Help: "Number of prediction requests that failed.",
	})
	forecastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railcast_forecasts_total",
		Help: "Number of multi-period forecasts served.",
	})
	forecastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "railcast_forecast_duration_seconds",
		Help:    "Time spent fitting and forecasting.",
		Buckets: prometheus.DefBuckets,
	})
	chatRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railcast_chat_requests_total",
		Help: "Number of assistant conversations handled.",
	})
	chatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railcast_chat_failures_total",
		Help: "Number of assistant requests that fell back to the apology reply.",
	})
)
