package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emberwatch/wildfire-engine/internal/damage"
	"github.com/emberwatch/wildfire-engine/internal/feeds"
	"github.com/emberwatch/wildfire-engine/internal/models"
	"github.com/emberwatch/wildfire-engine/internal/repository"
	"github.com/emberwatch/wildfire-engine/internal/risk"
	"github.com/emberwatch/wildfire-engine/internal/spread"
	"github.com/emberwatch/wildfire-engine/internal/stream"
)

const maxForecastDays = 7

type Handler struct {
	detections      repository.DetectionRepository
	assessments     repository.AssessmentRepository
	broadcaster     *stream.Broadcaster
	weather         *feeds.WeatherClient
	scatterRadiusKm float64
}

func NewHandler(detections repository.DetectionRepository, assessments repository.AssessmentRepository, broadcaster *stream.Broadcaster, weather *feeds.WeatherClient, scatterRadiusKm float64) *Handler {
	return &Handler{
		detections:      detections,
		assessments:     assessments,
		broadcaster:     broadcaster,
		weather:         weather,
		scatterRadiusKm: scatterRadiusKm,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.POST("/api/predict/risk", h.predictRisk)
	r.POST("/api/simulate/spread", h.simulateSpread)
	r.POST("/api/assess/damage", h.assessDamage)
	r.GET("/api/fires/recent", h.recentFires)
	r.GET("/api/assessments", h.listAssessments)
	r.GET("/ws/events", h.streamEvents)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RiskRequest is the body of POST /api/predict/risk. An absent seed
// makes the run non-reproducible; pass one to pin the scatter and
// forecast draws.
type RiskRequest struct {
	Location     models.GeoPoint           `json:"location"`
	Environment  models.EnvironmentalInput `json:"environment"`
	ForecastDays int                       `json:"forecast_days,omitempty" jsonschema:"minimum=0,maximum=7"`
	Seed         *int64                    `json:"seed,omitempty"`
}

// RiskResponse pairs the point assessment with an optional multi-day
// outlook.
type RiskResponse struct {
	Assessment models.RiskAssessment    `json:"assessment"`
	Forecast   []models.RiskForecastDay `json:"forecast,omitempty"`
}

func (h *Handler) predictRisk(c *gin.Context) {
	var req RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInputError(c, models.NewInputError("malformed_body", "%v", err))
		return
	}
	if !req.Location.Valid() {
		writeInputError(c, models.NewInputError(
			"invalid_location",
			"location (%v, %v) outside coordinate range", req.Location.Latitude, req.Location.Longitude,
		))
		return
	}

	// Fill absent weather-driven fields from live conditions when a
	// weather provider is configured. Failures degrade to engine
	// defaults rather than failing the request.
	env := req.Environment
	if h.weather != nil && h.weather.Enabled() && needsWeather(env) {
		if snap, err := h.weather.Current(c.Request.Context(), req.Location.Latitude, req.Location.Longitude); err != nil {
			slog.Warn("weather lookup failed, using defaults", "error", err)
		} else {
			env = applyWeather(env, snap)
		}
	}

	seed := resolveSeed(req.Seed)
	assessment := risk.Score(req.Location, env, h.scatterRadiusKm, seed)

	resp := RiskResponse{Assessment: assessment}
	if req.ForecastDays > 0 {
		n := req.ForecastDays
		if n > maxForecastDays {
			n = maxForecastDays
		}
		days := syntheticForecast(env, n, seed)
		resp.Forecast = risk.Forecast(req.Location, env, days, seed)
	}

	h.persistAndBroadcast(c, repository.KindRisk, stream.EventRiskAssessment,
		req.Location, assessment.Score, string(assessment.Level), resp)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// SpreadRequest is the body of POST /api/simulate/spread.
type SpreadRequest struct {
	Origin           models.GeoPoint `json:"origin"`
	Intensity        int             `json:"intensity" jsonschema:"minimum=1,maximum=10"`
	WindSpeed        float64         `json:"wind_speed" jsonschema:"minimum=0"`
	WindDirectionDeg float64         `json:"wind_direction_deg"`
	DurationHours    float64         `json:"duration_hours"`
	TerrainAware     bool            `json:"terrain_aware,omitempty"`
	VegetationAware  bool            `json:"vegetation_aware,omitempty"`
	StartTime        time.Time       `json:"start_time,omitempty"`
	Seed             *int64          `json:"seed,omitempty"`
}

func (h *Handler) simulateSpread(c *gin.Context) {
	var req SpreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInputError(c, models.NewInputError("malformed_body", "%v", err))
		return
	}

	seed := resolveSeed(req.Seed)
	prediction, err := spread.Simulate(spread.Request{
		Origin:           req.Origin,
		Intensity:        req.Intensity,
		WindSpeed:        req.WindSpeed,
		WindDirectionDeg: req.WindDirectionDeg,
		DurationHours:    req.DurationHours,
		TerrainAware:     req.TerrainAware,
		VegetationAware:  req.VegetationAware,
		StartTime:        req.StartTime,
	}, seed)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	h.persistAndBroadcast(c, repository.KindSpread, stream.EventSpreadRun,
		req.Origin, float64(req.Intensity), "", prediction)

	if c.Query("format") == "geojson" {
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, spreadToGeoJSON(prediction))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": prediction})
}

// DamageRequest is the body of POST /api/assess/damage.
type DamageRequest struct {
	Footprint models.DamageFootprint `json:"footprint"`
	PreDate   string                 `json:"pre_fire_date,omitempty"`
	PostDate  string                 `json:"post_fire_date,omitempty"`
	Seed      *int64                 `json:"seed,omitempty"`
}

// DamageResponse pairs the metrics with their derived recovery estimate.
type DamageResponse struct {
	Metrics  models.DamageMetrics    `json:"metrics"`
	Recovery models.RecoveryEstimate `json:"recovery"`
}

func (h *Handler) assessDamage(c *gin.Context) {
	var req DamageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInputError(c, models.NewInputError("malformed_body", "%v", err))
		return
	}

	seed := resolveSeed(req.Seed)
	metrics, recovery, err := damage.Assess(damage.Request{
		Footprint: req.Footprint,
		PreDate:   req.PreDate,
		PostDate:  req.PostDate,
	}, seed)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	center := footprintCenter(req.Footprint)
	resp := DamageResponse{Metrics: metrics, Recovery: recovery}
	h.persistAndBroadcast(c, repository.KindDamage, stream.EventDamageRun,
		center, 0, "", resp)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) recentFires(c *gin.Context) {
	filter := repository.DetectionFilter{
		Limit: 100,
	}

	if hrs := c.Query("hours"); hrs != "" {
		if v, err := strconv.ParseFloat(hrs, 64); err == nil && v > 0 {
			since := time.Now().Add(-time.Duration(v * float64(time.Hour)))
			filter.Since = &since
		}
	}
	if mf := c.Query("min_frp"); mf != "" {
		if v, err := strconv.ParseFloat(mf, 64); err == nil {
			filter.MinFRP = &v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			filter.Limit = v
		}
	}

	detections, err := h.detections.ListDetections(c.Request.Context(), filter)
	if err != nil {
		slog.Error("failed to list detections", "error", err)
		writeInternalError(c, "failed to fetch detections")
		return
	}

	if c.Query("format") == "geojson" {
		c.Header("Content-Type", "application/geo+json")
		c.JSON(http.StatusOK, detectionsToGeoJSON(detections))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": detections})
}

func (h *Handler) listAssessments(c *gin.Context) {
	filter := repository.AssessmentFilter{
		Limit: 50,
	}

	if k := c.Query("kind"); k != "" {
		switch kind := repository.AssessmentKind(k); kind {
		case repository.KindRisk, repository.KindSpread, repository.KindDamage:
			filter.Kind = &kind
		default:
			writeInputError(c, models.NewInputError("invalid_kind", "unknown assessment kind %q", k))
			return
		}
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			filter.Limit = v
		}
	}

	records, err := h.assessments.ListAssessments(c.Request.Context(), filter)
	if err != nil {
		slog.Error("failed to list assessments", "error", err)
		writeInternalError(c, "failed to fetch assessments")
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"id":         rec.ID,
			"kind":       rec.Kind,
			"latitude":   rec.Latitude,
			"longitude":  rec.Longitude,
			"score":      rec.Score,
			"level":      rec.Level,
			"result":     json.RawMessage(rec.Payload),
			"created_at": rec.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// persistAndBroadcast records a completed run and pushes it to stream
// subscribers. Both are best effort; a storage failure never fails the
// request that already computed its result.
func (h *Handler) persistAndBroadcast(c *gin.Context, kind repository.AssessmentKind, event stream.EventType, loc models.GeoPoint, score float64, level string, result any) {
	payload, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to marshal result for persistence", "kind", kind, "error", err)
		return
	}

	if h.assessments != nil {
		rec := &repository.AssessmentRecord{
			ID:        fmt.Sprintf("%s_%d", kind, time.Now().UnixNano()),
			Kind:      kind,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Score:     score,
			Level:     level,
			Payload:   payload,
			CreatedAt: time.Now(),
		}
		if err := h.assessments.AddAssessment(c.Request.Context(), rec); err != nil {
			slog.Error("failed to persist assessment", "kind", kind, "error", err)
		}
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast(stream.Event{
			Type:      event,
			Timestamp: time.Now(),
			Payload:   result,
		})
	}
}

func writeInputError(c *gin.Context, err *models.InputError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   gin.H{"code": err.Code, "message": err.Message},
	})
}

// writeEngineError maps engine errors onto status codes: invalid-input
// errors are the caller's fault, anything else is ours.
func writeEngineError(c *gin.Context, err error) {
	var inputErr *models.InputError
	if errors.As(err, &inputErr) {
		writeInputError(c, inputErr)
		return
	}
	if errors.Is(err, models.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "invalid_input", "message": err.Error()},
		})
		return
	}
	slog.Error("engine error", "error", err)
	writeInternalError(c, "internal error")
}

func writeInternalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"code": "internal", "message": msg},
	})
}

// resolveSeed fixes the run seed at the transport boundary so the
// engines stay pure functions of (input, seed).
func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

func needsWeather(env models.EnvironmentalInput) bool {
	return env.TemperatureF == nil || env.WindSpeed == nil || env.Humidity == nil
}

func applyWeather(env models.EnvironmentalInput, snap *feeds.WeatherSnapshot) models.EnvironmentalInput {
	if env.TemperatureF == nil {
		t := snap.TemperatureF
		env.TemperatureF = &t
	}
	if env.WindSpeed == nil {
		w := snap.WindSpeed
		env.WindSpeed = &w
	}
	if env.WindDirectionDeg == nil {
		d := snap.WindDirectionDeg
		env.WindDirectionDeg = &d
	}
	if env.Humidity == nil {
		h := snap.Humidity
		env.Humidity = &h
	}
	return env
}

// syntheticForecast perturbs the resolved conditions day over day. A
// stand-in until a real forecast feed is wired; the drift bounds keep
// scores in a plausible band.
func syntheticForecast(env models.EnvironmentalInput, n int, seed int64) []risk.ForecastDay {
	base := func(v *float64, def float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}
	temp := base(env.TemperatureF, 75)
	wind := base(env.WindSpeed, 8)
	humidity := base(env.Humidity, 40)

	rng := rand.New(rand.NewSource(seed))
	today := time.Now().UTC().Truncate(24 * time.Hour)

	days := make([]risk.ForecastDay, 0, n)
	for i := 1; i <= n; i++ {
		temp += (rng.Float64()*2 - 1) * 4
		wind += (rng.Float64()*2 - 1) * 3
		if wind < 0 {
			wind = 0
		}
		humidity += (rng.Float64()*2 - 1) * 6
		if humidity < 0 {
			humidity = 0
		}
		if humidity > 100 {
			humidity = 100
		}

		days = append(days, risk.ForecastDay{
			Date:         today.AddDate(0, 0, i),
			TemperatureF: temp,
			WindSpeed:    wind,
			Humidity:     humidity,
		})
	}
	return days
}

// footprintCenter picks a representative coordinate for the history row.
func footprintCenter(fp models.DamageFootprint) models.GeoPoint {
	if fp.Kind == models.FootprintCircle && fp.Center != nil {
		return *fp.Center
	}
	if len(fp.Polygon) > 0 {
		var lat, lon float64
		for _, p := range fp.Polygon {
			lat += p.Latitude
			lon += p.Longitude
		}
		n := float64(len(fp.Polygon))
		return models.GeoPoint{Latitude: lat / n, Longitude: lon / n}
	}
	return models.GeoPoint{}
}
