// Package risk turns environmental conditions into a bounded wildfire
// risk score. The coefficients are calibrated behavioral contracts, not
// outputs of a validated physical model.
package risk

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/emberwatch/wildfire-engine/internal/geo"
	"github.com/emberwatch/wildfire-engine/internal/models"
)

// Score bounds and level thresholds. Scores live on a 0-100 scale.
const (
	ScoreMin = 0.0
	ScoreMax = 100.0

	ThresholdModerate = 30.0 // below: LOW
	ThresholdHigh     = 60.0 // below: MODERATE
	ThresholdExtreme  = 80.0 // below: HIGH, else EXTREME

	baselineScore = 45.0
)

// Input defaults, applied when a field is absent.
const (
	defaultVegetation = 50.0
	defaultDaysRain   = 5.0
	defaultTempF      = 75.0
	defaultWind       = 8.0
	defaultHumidity   = 40.0
)

// Factor coefficients and significance thresholds.
const (
	vegetationMidpoint = 50.0
	vegetationCoeff    = 0.4
	rainCoeff          = 0.5
	rainCapDays        = 30.0
	tempReferenceF     = 70.0
	tempCoeff          = 0.3
	windCoeff          = 0.5 // wind dominates temperature per unit
	humidityCoeff      = 0.2

	terrainHillyBonus    = 5.0
	terrainMountainBonus = 10.0
	weatherWindyBonus    = 5.0
	weatherDryBonus      = 8.0
	weatherDroughtBonus  = 15.0

	sigVegetation = 75.0
	sigDaysRain   = 14.0
	sigTempF      = 85.0
	sigWind       = 15.0
	sigHumidity   = 20.0
)

// Scatter distribution shape. The scatter is for visualization only.
const (
	scatterPoints = 20
	scatterNoise  = 10.0
)

// Score evaluates the environmental input at a location and returns a
// complete assessment. All numeric inputs are clamped into their
// documented ranges (permissive scoring over strict validation); the
// transport layer rejects missing coordinates before calling in.
func Score(location models.GeoPoint, input models.EnvironmentalInput, scatterRadiusKm float64, seed int64) models.RiskAssessment {
	veg := clampInput("vegetation_density", orDefault(input.VegetationDensity, defaultVegetation), 0, 100)
	days := clampInput("days_since_rain", orDefault(input.DaysSinceRain, defaultDaysRain), 0, 365)
	temp := clampInput("temperature_f", orDefault(input.TemperatureF, defaultTempF), -40, 140)
	wind := clampInput("wind_speed", orDefault(input.WindSpeed, defaultWind), 0, 120)
	humidity := clampInput("humidity", orDefault(input.Humidity, defaultHumidity), 0, 100)

	score := baselineScore
	var factors []models.RiskFactor

	if veg > vegetationMidpoint {
		delta := (veg - vegetationMidpoint) * vegetationCoeff
		score += delta
		if veg >= sigVegetation {
			factors = append(factors, models.RiskFactor{Name: "high vegetation density", Contribution: delta})
		}
	}

	rainDelta := min(days, rainCapDays) * rainCoeff
	score += rainDelta
	if days >= sigDaysRain {
		factors = append(factors, models.RiskFactor{Name: "extended period without rainfall", Contribution: rainDelta})
	}

	if temp > tempReferenceF {
		delta := (temp - tempReferenceF) * tempCoeff
		score += delta
		if temp >= sigTempF {
			factors = append(factors, models.RiskFactor{Name: "high temperature", Contribution: delta})
		}
	}

	windDelta := wind * windCoeff
	score += windDelta
	if wind >= sigWind {
		factors = append(factors, models.RiskFactor{Name: "strong winds", Contribution: windDelta})
	}

	humidityDelta := humidity * humidityCoeff
	score -= humidityDelta
	if humidity <= sigHumidity {
		factors = append(factors, models.RiskFactor{Name: "low humidity", Contribution: -humidityDelta})
	}

	if input.Terrain != nil {
		switch *input.Terrain {
		case models.TerrainHilly:
			score += terrainHillyBonus
			factors = append(factors, models.RiskFactor{Name: "hilly terrain", Contribution: terrainHillyBonus})
		case models.TerrainMountainous:
			score += terrainMountainBonus
			factors = append(factors, models.RiskFactor{Name: "mountainous terrain", Contribution: terrainMountainBonus})
		}
	}

	if input.Weather != nil {
		switch *input.Weather {
		case models.WeatherWindy:
			score += weatherWindyBonus
			factors = append(factors, models.RiskFactor{Name: "windy conditions", Contribution: weatherWindyBonus})
		case models.WeatherDry:
			score += weatherDryBonus
			factors = append(factors, models.RiskFactor{Name: "dry conditions", Contribution: weatherDryBonus})
		case models.WeatherDrought:
			score += weatherDroughtBonus
			factors = append(factors, models.RiskFactor{Name: "drought conditions", Contribution: weatherDroughtBonus})
		}
	}

	score = geo.Clamp(score, ScoreMin, ScoreMax)

	// A response always explains something.
	if len(factors) == 0 {
		factors = append(factors, models.RiskFactor{Name: "typical seasonal conditions", Contribution: 0})
	}

	return models.RiskAssessment{
		Location:     location,
		Score:        score,
		Level:        LevelFor(score),
		Factors:      factors,
		Distribution: scatter(location, score, scatterRadiusKm, seed),
	}
}

// LevelFor maps a score onto the discrete risk level table.
func LevelFor(score float64) models.RiskLevel {
	switch {
	case score < ThresholdModerate:
		return models.RiskLevelLow
	case score < ThresholdHigh:
		return models.RiskLevelModerate
	case score < ThresholdExtreme:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelExtreme
	}
}

// scatter spreads sample points around the center with bounded
// symmetric noise on the base score.
func scatter(center models.GeoPoint, baseScore, radiusKm float64, seed int64) []models.RiskSample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]models.RiskSample, 0, scatterPoints)

	for i := 0; i < scatterPoints; i++ {
		bearing := rng.Float64() * 360
		dist := radiusKm * rng.Float64()
		lat, lon := geo.Destination(center.Latitude, center.Longitude, bearing, dist)

		noise := (rng.Float64()*2 - 1) * scatterNoise
		samples = append(samples, models.RiskSample{
			Location: models.GeoPoint{Latitude: lat, Longitude: lon},
			Score:    geo.Clamp(baseScore+noise, ScoreMin, ScoreMax),
		})
	}
	return samples
}

// ForecastDay is one day of weather used by Forecast.
type ForecastDay struct {
	Date         time.Time
	TemperatureF float64
	WindSpeed    float64
	Humidity     float64
}

// Forecast scores each forecast day with the non-weather fields of the
// base input held fixed. The scatter is skipped; only the daily score
// matters for the outlook.
func Forecast(location models.GeoPoint, base models.EnvironmentalInput, days []ForecastDay, seed int64) []models.RiskForecastDay {
	out := make([]models.RiskForecastDay, 0, len(days))
	for i, day := range days {
		input := base
		t, w, h := day.TemperatureF, day.WindSpeed, day.Humidity
		input.TemperatureF = &t
		input.WindSpeed = &w
		input.Humidity = &h

		assessment := Score(location, input, 0, seed+int64(i))
		out = append(out, models.RiskForecastDay{
			Date:  day.Date.Format("2006-01-02"),
			Score: assessment.Score,
		})
	}
	return out
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func clampInput(name string, v, lo, hi float64) float64 {
	clamped := geo.Clamp(v, lo, hi)
	if clamped != v {
		slog.Warn("input out of range, clamped", "field", name, "value", v, "min", lo, "max", hi)
	}
	return clamped
}
