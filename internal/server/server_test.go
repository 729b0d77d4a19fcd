package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/transitlab/railcast/internal/config"
	"github.com/transitlab/railcast/internal/feature"
	"github.com/transitlab/railcast/internal/logger"
	"github.com/transitlab/railcast/internal/model"
)

const historyCSV = `YEAR,MONTH,CATEGORY,CANCEL_PERCENTAGE,DELAY_PERCENTAGE
2020,January,Mechanical Failure,10,20
2020,July,Mechanical Failure,10,20
2021,January,Mechanical Failure,12,24
2021,July,Mechanical Failure,12,24
2022,January,Mechanical Failure,14,28
2022,July,Mechanical Failure,14,28
`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "history.csv")
	if err := os.WriteFile(path, []byte(historyCSV), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Data.CancellationsPath = path
	cfg.Model.Kind = "linear"
	if mutate != nil {
		mutate(cfg)
	}

	s, err := New(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRootListsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["service"] != "railcast" {
		t.Errorf("unexpected service name: %v", body["service"])
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["rows"].(float64) != 6 {
		t.Errorf("expected 6 rows, got %v", body["rows"])
	}
	if body["mean_cancel_percentage"].(float64) != 12 {
		t.Errorf("expected mean cancel 12, got %v", body["mean_cancel_percentage"])
	}
}

func TestStations(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/stations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stations := body["stations"].([]any)
	if len(stations) == 0 {
		t.Fatal("expected stations in response")
	}
}

func TestPredict(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/predict",
		`{"features": {"year": 2023, "month": 1}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	prediction := body["prediction"].(float64)
	if prediction < 15 || prediction > 17 {
		t.Errorf("expected prediction near 16, got %f", prediction)
	}

	riskBody := body["risk"].(map[string]any)
	if riskBody["level"] != "High" {
		t.Errorf("16%% against a 12%% mean should be High, got %v", riskBody["level"])
	}
}

func TestPredictDelaysTarget(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/predict",
		`{"features": {"year": 2023, "month": 1}, "target": "delays"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	prediction := body["prediction"].(float64)
	if prediction < 30 || prediction > 34 {
		t.Errorf("expected delay prediction near 32, got %f", prediction)
	}
}

func TestPredictValidation(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/predict", `{"features": {"year": 2023}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing month should give 400, got %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/predict", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON should give 400, got %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/predict",
		`{"features": {"year": 2023, "month": 1}, "target": "escalators"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown target should give 400, got %d", rec.Code)
	}
}

func TestPredictInsufficientData(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Model.MinObservations = 100
	})

	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/predict",
		`{"features": {"year": 2023, "month": 1}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for thin data, got %d", rec.Code)
	}
}

func TestForecastDefaultHorizon(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/forecast", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	points := body["points"].([]any)
	if len(points) != 6 {
		t.Errorf("expected default 6-month horizon, got %d points", len(points))
	}

	// Latest observation is 2022-07, so the horizon starts at 2022-08.
	first := points[0].(map[string]any)
	if first["year"].(float64) != 2022 || first["month"].(float64) != 8 {
		t.Errorf("unexpected first point: %v", first)
	}
}

func TestForecastExplicitMonths(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/forecast", `{"months": 12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if points := body["points"].([]any); len(points) != 12 {
		t.Errorf("expected 12 points, got %d", len(points))
	}

	rec, _ = doJSON(t, s.Handler(), http.MethodPost, "/forecast", `{"months": -3}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative months should give 400, got %d", rec.Code)
	}
}

func TestMonthForecast(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	for _, path := range []string{"/forecast/month/1", "/forecast/month/January"} {
		rec, body := doJSON(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if body["month"] != "JANUARY" {
			t.Errorf("%s: unexpected month: %v", path, body["month"])
		}
		// 2020..2023: observed years plus one projected.
		points := body["points"].([]any)
		if len(points) != 4 {
			t.Errorf("%s: expected 4 points, got %d", path, len(points))
		}
	}

	rec, _ := doJSON(t, h, http.MethodGet, "/forecast/month/13", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("month 13 should give 400, got %d", rec.Code)
	}
	rec, _ = doJSON(t, h, http.MethodGet, "/forecast/month/Snowuary", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown month should give 400, got %d", rec.Code)
	}
}

func TestModelInfo(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/model/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["kind"] != "linear" {
		t.Errorf("unexpected kind: %v", body["kind"])
	}
	if body["observations"].(float64) != 6 {
		t.Errorf("unexpected observations: %v", body["observations"])
	}
	if _, ok := body["r2"]; !ok {
		t.Error("linear model info should expose r2")
	}
}

func TestImportanceForest(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Model.Kind = "random_forest"
		cfg.Model.NEstimators = 10
	})

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/model/importance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	entries := body["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	top := entries[0].(map[string]any)
	if top["name"] != "year" {
		t.Errorf("expected year as top feature, got %v", top["name"])
	}
}

func TestChatDisabled(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/chat", `{"message": "hi"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when chat disabled, got %d", rec.Code)
	}
}

func TestChatFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Chat.Enabled = true
		cfg.Chat.APIKey = "test-key"
		cfg.Chat.BaseURL = upstream.URL
	})

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/chat", `{"message": "hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("fallback should still answer 200, got %d", rec.Code)
	}
	if body["degraded"] != true {
		t.Error("fallback response should be marked degraded")
	}
	if body["reply"] == "" {
		t.Error("fallback reply cannot be empty")
	}
}

func TestChatSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "All clear today."}},
			},
		})
	}))
	defer upstream.Close()

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Chat.Enabled = true
		cfg.Chat.APIKey = "test-key"
		cfg.Chat.BaseURL = upstream.URL
	})

	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/chat",
		`{"message": "any delays?", "history": [{"role": "user", "content": "hello"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["reply"] != "All clear today." {
		t.Errorf("unexpected reply: %v", body["reply"])
	}
}

func TestDelayPredictUnconfigured(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := doJSON(t, s.Handler(), http.MethodPost, "/predict/delay",
		`{"hour": 8, "day_of_week": 0, "from_station": "Trenton", "to_station": "Edison"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a delay artifact, got %d", rec.Code)
	}
}

func TestDelayPredict(t *testing.T) {
	// delay = 2 + hour + 2*dow; stations carry no weight
	lin, err := model.NewLinear(feature.DelaySchema(), []float64{2, 1, 2, 0, 0})
	if err != nil {
		t.Fatalf("failed to build delay model: %v", err)
	}
	artifact := filepath.Join(t.TempDir(), "delay.json")
	if err := model.Save(artifact, lin); err != nil {
		t.Fatalf("failed to save delay artifact: %v", err)
	}

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Model.DelayArtifactPath = artifact
	})
	h := s.Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/predict/delay",
		`{"hour": 8, "day_of_week": 2, "from_station": "Trenton", "to_station": "Edison"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	if body["delay_minutes"].(float64) != 14 {
		t.Errorf("expected 14 minutes, got %v", body["delay_minutes"])
	}
	if body["on_time"] != false {
		t.Error("14 minutes is not on time")
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/predict/delay",
		`{"hour": 8, "day_of_week": 2, "from_station": "Narnia Central", "to_station": "Edison"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown station should give 400, got %d", rec.Code)
	}

	rec, body = doJSON(t, h, http.MethodPost, "/predict/delay",
		`{"hour": 1, "day_of_week": 0, "from_station": "Trenton", "to_station": "Edison"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["on_time"] != true {
		t.Errorf("3 minutes should be on time, got %v", body)
	}
}

func TestAuthProtectsAPI(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.User = "admin"
		cfg.Auth.Password = "secret"
	})
	h := s.Handler()

	rec, _ := doJSON(t, h, http.MethodGet, "/stats", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	// health stays open for probes
	rec, _ = doJSON(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health must bypass auth, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.SetBasicAuth("admin", "secret")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Errorf("expected 200 with credentials, got %d", rec2.Code)
	}
}
