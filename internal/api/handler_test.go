package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emberwatch/wildfire-engine/internal/models"
	"github.com/emberwatch/wildfire-engine/internal/repository"
)

// mockDetections implements repository.DetectionRepository for testing
type mockDetections struct {
	detections []models.FireDetection
}

func (m *mockDetections) AddDetection(ctx context.Context, d *models.FireDetection) error {
	m.detections = append(m.detections, *d)
	return nil
}

func (m *mockDetections) DetectionExists(ctx context.Context, id string) (bool, error) {
	for _, d := range m.detections {
		if d.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDetections) ListDetections(ctx context.Context, opts repository.DetectionFilter) ([]models.FireDetection, error) {
	results := m.detections

	if opts.MinFRP != nil {
		var filtered []models.FireDetection
		for _, d := range results {
			if d.FRP >= *opts.MinFRP {
				filtered = append(filtered, d)
			}
		}
		results = filtered
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// mockAssessments implements repository.AssessmentRepository for testing
type mockAssessments struct {
	records []repository.AssessmentRecord
}

func (m *mockAssessments) AddAssessment(ctx context.Context, rec *repository.AssessmentRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockAssessments) ListAssessments(ctx context.Context, opts repository.AssessmentFilter) ([]repository.AssessmentRecord, error) {
	results := m.records

	if opts.Kind != nil {
		var filtered []repository.AssessmentRecord
		for _, r := range results {
			if r.Kind == *opts.Kind {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func setupTestRouter(detections *mockDetections, assessments *mockAssessments) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(detections, assessments, nil, nil, 10.0)
	handler.RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return e
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestHealth(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestPredictRisk_ExtremeConditions(t *testing.T) {
	assessments := &mockAssessments{}
	router := setupTestRouter(&mockDetections{}, assessments)

	w := postJSON(t, router, "/api/predict/risk", RiskRequest{
		Location: models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		Environment: models.EnvironmentalInput{
			VegetationDensity: f64(90),
			DaysSinceRain:     f64(25),
			TemperatureF:      f64(95),
			WindSpeed:         f64(20),
			Humidity:          f64(10),
		},
		Seed: i64(42),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	e := decodeEnvelope(t, w)
	if !e.Success {
		t.Fatalf("expected success, got %s", w.Body.String())
	}

	var resp RiskResponse
	if err := json.Unmarshal(e.Data, &resp); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if resp.Assessment.Level != models.RiskLevelExtreme {
		t.Errorf("expected EXTREME, got %s (score %v)", resp.Assessment.Level, resp.Assessment.Score)
	}
	if len(resp.Assessment.Factors) == 0 {
		t.Error("expected non-empty factors")
	}
	if len(resp.Assessment.Distribution) != 20 {
		t.Errorf("expected 20 scatter points, got %d", len(resp.Assessment.Distribution))
	}

	if len(assessments.records) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(assessments.records))
	}
	if assessments.records[0].Kind != repository.KindRisk || assessments.records[0].Level != "EXTREME" {
		t.Errorf("unexpected record: %+v", assessments.records[0])
	}
}

func TestPredictRisk_InvalidLocation(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := postJSON(t, router, "/api/predict/risk", RiskRequest{
		Location: models.GeoPoint{Latitude: 123, Longitude: 0},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Success {
		t.Error("expected success=false")
	}
	if e.Error.Code != "invalid_location" {
		t.Errorf("expected code invalid_location, got %s", e.Error.Code)
	}
}

func TestPredictRisk_Forecast(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := postJSON(t, router, "/api/predict/risk", RiskRequest{
		Location:     models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		ForecastDays: 5,
		Seed:         i64(7),
	})

	e := decodeEnvelope(t, w)
	var resp RiskResponse
	if err := json.Unmarshal(e.Data, &resp); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(resp.Forecast) != 5 {
		t.Fatalf("expected 5 forecast days, got %d", len(resp.Forecast))
	}
	for i, day := range resp.Forecast {
		if day.Score < 0 || day.Score > 100 {
			t.Errorf("day %d score %v out of bounds", i, day.Score)
		}
		if day.Date == "" {
			t.Errorf("day %d has empty date", i)
		}
	}
}

func TestPredictRisk_ForecastDaysCapped(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := postJSON(t, router, "/api/predict/risk", RiskRequest{
		Location:     models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		ForecastDays: 30,
		Seed:         i64(7),
	})

	e := decodeEnvelope(t, w)
	var resp RiskResponse
	json.Unmarshal(e.Data, &resp)
	if len(resp.Forecast) != maxForecastDays {
		t.Errorf("expected forecast capped at %d days, got %d", maxForecastDays, len(resp.Forecast))
	}
}

func TestPredictRisk_DeterministicWithSeed(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	req := RiskRequest{
		Location: models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		Environment: models.EnvironmentalInput{
			VegetationDensity: f64(70),
		},
		Seed: i64(12345),
	}

	first := postJSON(t, router, "/api/predict/risk", req)
	second := postJSON(t, router, "/api/predict/risk", req)

	if first.Body.String() != second.Body.String() {
		t.Error("expected identical responses for the same seed")
	}
}

func TestSimulateSpread_ReturnsPrediction(t *testing.T) {
	assessments := &mockAssessments{}
	router := setupTestRouter(&mockDetections{}, assessments)

	w := postJSON(t, router, "/api/simulate/spread", SpreadRequest{
		Origin:           models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		Intensity:        7,
		WindSpeed:        15,
		WindDirectionDeg: 270,
		DurationHours:    8,
		Seed:             i64(99),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	e := decodeEnvelope(t, w)
	var pred models.SpreadPrediction
	if err := json.Unmarshal(e.Data, &pred); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if pred.TimeSteps != 8 || pred.Directions != 6 {
		t.Errorf("expected 8 steps x 6 directions, got %d x %d", pred.TimeSteps, pred.Directions)
	}
	if len(pred.Points) != pred.TimeSteps*pred.Directions {
		t.Errorf("expected %d points, got %d", pred.TimeSteps*pred.Directions, len(pred.Points))
	}

	if len(assessments.records) != 1 || assessments.records[0].Kind != repository.KindSpread {
		t.Errorf("expected 1 spread record, got %+v", assessments.records)
	}
}

func TestSimulateSpread_NonPositiveDuration(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := postJSON(t, router, "/api/simulate/spread", SpreadRequest{
		Origin:        models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		Intensity:     5,
		DurationHours: 0,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Error.Code != "non_positive_duration" {
		t.Errorf("expected code non_positive_duration, got %s", e.Error.Code)
	}
}

func TestSimulateSpread_GeoJSONFormat(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	body, _ := json.Marshal(SpreadRequest{
		Origin:        models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
		Intensity:     5,
		DurationHours: 4,
		Seed:          i64(1),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/simulate/spread?format=geojson", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %s", fc.Type)
	}
	// 4 steps x 6 directions plus the origin feature
	if len(fc.Features) != 25 {
		t.Errorf("expected 25 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["role"] != "origin" {
		t.Errorf("expected first feature to be the origin, got %v", fc.Features[0].Properties["role"])
	}
}

func TestAssessDamage_Circle(t *testing.T) {
	assessments := &mockAssessments{}
	router := setupTestRouter(&mockDetections{}, assessments)

	w := postJSON(t, router, "/api/assess/damage", DamageRequest{
		Footprint: models.DamageFootprint{
			Kind:     models.FootprintCircle,
			Center:   &models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
			RadiusKm: 5,
		},
		Seed: i64(3),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	e := decodeEnvelope(t, w)
	var resp DamageResponse
	if err := json.Unmarshal(e.Data, &resp); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if resp.Metrics.BurnedArea.Hectares <= 0 {
		t.Error("expected positive burned area")
	}
	if resp.Recovery.Cost.TotalUSD <= 0 {
		t.Error("expected positive total cost")
	}

	if len(assessments.records) != 1 || assessments.records[0].Kind != repository.KindDamage {
		t.Errorf("expected 1 damage record, got %+v", assessments.records)
	}
	if assessments.records[0].Latitude != 39.74 {
		t.Errorf("expected record centered on the footprint, got %v", assessments.records[0].Latitude)
	}
}

func TestAssessDamage_MalformedFootprint(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := postJSON(t, router, "/api/assess/damage", DamageRequest{
		Footprint: models.DamageFootprint{
			Kind: models.FootprintPolygon,
			Polygon: []models.GeoPoint{
				{Latitude: 39.7, Longitude: -105.0},
				{Latitude: 39.8, Longitude: -105.0},
			},
		},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Error.Code != "malformed_footprint" {
		t.Errorf("expected code malformed_footprint, got %s", e.Error.Code)
	}
}

func TestRecentFires_GeoJSON(t *testing.T) {
	detections := &mockDetections{
		detections: []models.FireDetection{
			{
				ID:            "firms_1",
				Source:        "firms",
				Location:      models.GeoPoint{Latitude: 39.74, Longitude: -104.99},
				DetectionTime: time.Now(),
				FRP:           25,
			},
		},
	}
	router := setupTestRouter(detections, &mockAssessments{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/fires/recent?format=geojson", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	coords := fc.Features[0].Geometry.Coordinates
	if coords[0] != -104.99 || coords[1] != 39.74 {
		t.Errorf("expected [lon, lat] ordering, got %v", coords)
	}
}

func TestRecentFires_MinFRPFilter(t *testing.T) {
	detections := &mockDetections{
		detections: []models.FireDetection{
			{ID: "d1", FRP: 30, DetectionTime: time.Now()},
			{ID: "d2", FRP: 5, DetectionTime: time.Now()},
		},
	}
	router := setupTestRouter(detections, &mockAssessments{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/fires/recent?min_frp=20", nil)
	router.ServeHTTP(w, req)

	e := decodeEnvelope(t, w)
	var got []models.FireDetection
	if err := json.Unmarshal(e.Data, &got); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("expected only d1, got %+v", got)
	}
}

func TestListAssessments_KindFilter(t *testing.T) {
	assessments := &mockAssessments{
		records: []repository.AssessmentRecord{
			{ID: "r1", Kind: repository.KindRisk, Payload: []byte(`{}`), CreatedAt: time.Now()},
			{ID: "s1", Kind: repository.KindSpread, Payload: []byte(`{}`), CreatedAt: time.Now()},
		},
	}
	router := setupTestRouter(&mockDetections{}, assessments)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/assessments?kind=risk", nil)
	router.ServeHTTP(w, req)

	e := decodeEnvelope(t, w)
	var got []map[string]any
	if err := json.Unmarshal(e.Data, &got); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(got) != 1 || got[0]["id"] != "r1" {
		t.Errorf("expected only r1, got %+v", got)
	}
}

func TestListAssessments_InvalidKind(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/assessments?kind=volcano", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Error.Code != "invalid_kind" {
		t.Errorf("expected code invalid_kind, got %s", e.Error.Code)
	}
}

func TestStreamEvents_NoBroadcaster(t *testing.T) {
	router := setupTestRouter(&mockDetections{}, &mockAssessments{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ws/events", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		codes[w.Code]++
	}

	if codes[http.StatusTooManyRequests] == 0 {
		t.Error("expected at least one rate-limited response")
	}
	if codes[http.StatusOK] == 0 {
		t.Error("expected at least one successful response")
	}
}
