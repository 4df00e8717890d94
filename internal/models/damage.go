package models

type VegetationType string

const (
	VegetationForest    VegetationType = "FOREST"
	VegetationGrassland VegetationType = "GRASSLAND"
	VegetationShrubland VegetationType = "SHRUBLAND"
	VegetationCropland  VegetationType = "CROPLAND"
)

type FootprintKind string

const (
	FootprintCircle  FootprintKind = "CIRCLE"
	FootprintPolygon FootprintKind = "POLYGON"
)

// DamageFootprint is the burned area given to the damage engine, either
// a (center, radius) circle or an ordered polygon. Kind is resolved once
// at the boundary; the engine never re-inspects shape per call site.
type DamageFootprint struct {
	Kind     FootprintKind `json:"kind"`
	Center   *GeoPoint     `json:"center,omitempty"`
	RadiusKm float64       `json:"radius_km,omitempty" jsonschema:"minimum=0"`
	Polygon  []GeoPoint    `json:"polygon,omitempty"`
}

type BurnedArea struct {
	Hectares  float64 `json:"hectares"`
	TotalHa   float64 `json:"total_hectares"`
	BurnedPct float64 `json:"burned_pct" jsonschema:"minimum=0,maximum=1"`
}

// SeverityMix fractions sum to 1 within floating tolerance.
type SeverityMix struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

type VegetationDamage struct {
	Type       VegetationType `json:"type"`
	AreaHa     float64        `json:"area_hectares"`
	DamagedHa  float64        `json:"damaged_hectares"`
	DamagedPct float64        `json:"damaged_pct" jsonschema:"minimum=0,maximum=1"`
}

type InfrastructureImpact struct {
	TotalCount   uint64 `json:"total_count"`
	DamagedCount uint64 `json:"damaged_count"`
	Buildings    uint64 `json:"buildings"`
	RoadSegments uint64 `json:"road_segments"`
	PowerLines   uint64 `json:"power_lines"`
	WaterSystems uint64 `json:"water_systems"`
}

// DamageMetrics summarizes the burned footprint. The environmental risk
// scores are placeholders pending real remote-sensing inputs.
type DamageMetrics struct {
	BurnedArea      BurnedArea           `json:"burned_area"`
	Severity        SeverityMix          `json:"severity"`
	Vegetation      []VegetationDamage   `json:"vegetation"`
	Infrastructure  InfrastructureImpact `json:"infrastructure"`
	SoilErosionRisk float64              `json:"soil_erosion_risk"`
	WatershedRisk   float64              `json:"watershed_risk"`
	AirQualityRisk  float64              `json:"air_quality_risk"`
}

// RecoveryPhase is a named milestone with a cumulative completion
// percentage reached MonthOffset months after the fire.
type RecoveryPhase struct {
	Name          string  `json:"name"`
	CumulativePct int     `json:"cumulative_pct"`
	MonthOffset   float64 `json:"month_offset"`
}

type VegetationRecovery struct {
	Type   VegetationType  `json:"type"`
	Months float64         `json:"months"`
	Phases []RecoveryPhase `json:"phases"`
}

type InfrastructureRecovery struct {
	Months float64         `json:"months"`
	Phases []RecoveryPhase `json:"phases"`
}

type CostBreakdown struct {
	ImmediateResponseUSD    float64 `json:"immediate_response_usd"`
	RestorationUSD          float64 `json:"restoration_usd"`
	InfrastructureRepairUSD float64 `json:"infrastructure_repair_usd"`
	MonitoringUSD           float64 `json:"monitoring_usd"`
	TotalUSD                float64 `json:"total_usd"`
}

type RecoveryEstimate struct {
	Vegetation     []VegetationRecovery   `json:"vegetation"`
	Infrastructure InfrastructureRecovery `json:"infrastructure"`
	Cost           CostBreakdown          `json:"cost"`
	MonitoringPlan []string               `json:"monitoring_plan"`
}
