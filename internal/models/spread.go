package models

import "time"

type EvacuationPriority string

const (
	PriorityModerate  EvacuationPriority = "MODERATE"
	PriorityHigh      EvacuationPriority = "HIGH"
	PriorityImmediate EvacuationPriority = "IMMEDIATE"
)

type RouteStatus string

const (
	RouteOpen          RouteStatus = "OPEN"
	RouteLimitedAccess RouteStatus = "LIMITED_ACCESS"
)

// SpreadFrontPoint is one sampled point of the fire's leading edge.
type SpreadFrontPoint struct {
	Location     GeoPoint `json:"location"`
	RadiusKm     float64  `json:"radius_km" jsonschema:"minimum=0"`
	ElapsedHours float64  `json:"elapsed_hours" jsonschema:"minimum=0"`
	DirectionDeg float64  `json:"direction_deg"`
	Intensity    int      `json:"intensity" jsonschema:"minimum=1,maximum=10"`
}

type ImpactedRegion struct {
	Name               string             `json:"name"`
	ImpactLevel        int                `json:"impact_level" jsonschema:"minimum=1,maximum=5"`
	PopulationAtRisk   uint64             `json:"population_at_risk"`
	InfrastructureNum  uint64             `json:"infrastructure_count"`
	EvacuationPriority EvacuationPriority `json:"evacuation_priority"`
}

// EvacuationRoute describes a catalog route near the simulated fire.
// Routes are not derived from the road network or the fire geometry at
// this fidelity tier.
type EvacuationRoute struct {
	Name                 string      `json:"name"`
	DistanceKm           float64     `json:"distance_km"`
	EstimatedTimeMinutes uint32      `json:"estimated_time_minutes"`
	Status               RouteStatus `json:"status"`
}

type RequiredResources struct {
	Firefighters     uint64 `json:"firefighters"`
	Firetrucks       uint64 `json:"firetrucks"`
	Helicopters      uint64 `json:"helicopters"`
	Bulldozers       uint64 `json:"bulldozers"`
	WaterGallons     uint64 `json:"water_gallons"`
	SupportPersonnel uint64 `json:"support_personnel"`
}

type ContainmentEstimate struct {
	ETA               time.Time         `json:"eta"`
	TotalHours        float64           `json:"total_hours"`
	RequiredResources RequiredResources `json:"required_resources"`
}

// SpreadPrediction is the full result of one spread-simulation run.
// Points are grouped by time step, then by direction, in emission order.
type SpreadPrediction struct {
	Origin           GeoPoint            `json:"origin"`
	StartTime        time.Time           `json:"start_time"`
	TimeSteps        int                 `json:"time_steps"`
	Directions       int                 `json:"directions"`
	Points           []SpreadFrontPoint  `json:"points"`
	ImpactedRegions  []ImpactedRegion    `json:"impacted_regions"`
	EvacuationRoutes []EvacuationRoute   `json:"evacuation_routes"`
	Containment      ContainmentEstimate `json:"containment"`
}
