package models

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelModerate RiskLevel = "MODERATE"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelExtreme  RiskLevel = "EXTREME"
)

type TerrainClass string

const (
	TerrainFlat        TerrainClass = "FLAT"
	TerrainHilly       TerrainClass = "HILLY"
	TerrainMountainous TerrainClass = "MOUNTAINOUS"
)

type WeatherClass string

const (
	WeatherNormal  WeatherClass = "NORMAL"
	WeatherDry     WeatherClass = "DRY"
	WeatherDrought WeatherClass = "DROUGHT"
	WeatherWindy   WeatherClass = "WINDY"
)

// EnvironmentalInput carries the conditions the risk engine scores.
// Every field is optional; nil fields fall back to the engine defaults
// and out-of-range values are clamped rather than rejected.
type EnvironmentalInput struct {
	VegetationDensity *float64      `json:"vegetation_density,omitempty" jsonschema:"minimum=0,maximum=100,description=Vegetation density on a 0-100 scale"`
	DaysSinceRain     *float64      `json:"days_since_rain,omitempty" jsonschema:"minimum=0"`
	TemperatureF      *float64      `json:"temperature_f,omitempty"`
	WindSpeed         *float64      `json:"wind_speed,omitempty" jsonschema:"minimum=0"`
	WindDirectionDeg  *float64      `json:"wind_direction_deg,omitempty" jsonschema:"minimum=0,maximum=359,description=Direction the wind blows from (meteorological)"`
	Humidity          *float64      `json:"humidity,omitempty" jsonschema:"minimum=0,maximum=100"`
	Terrain           *TerrainClass `json:"terrain,omitempty"`
	Weather           *WeatherClass `json:"weather,omitempty"`
}

// RiskFactor names one input that pushed the score in a direction.
type RiskFactor struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
}

// RiskSample is one scatter point of the visualization distribution.
// The scatter is synthetic (base score plus bounded noise), not a
// spatial model of risk.
type RiskSample struct {
	Location GeoPoint `json:"location"`
	Score    float64  `json:"score"`
}

// RiskAssessment is the result of one risk-engine run. Score is on a
// 0-100 scale.
type RiskAssessment struct {
	Location     GeoPoint     `json:"location"`
	Score        float64      `json:"score" jsonschema:"minimum=0,maximum=100"`
	Level        RiskLevel    `json:"level"`
	Factors      []RiskFactor `json:"factors"`
	Distribution []RiskSample `json:"distribution"`
}

// RiskForecastDay is one day of the multi-day risk outlook.
type RiskForecastDay struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}
