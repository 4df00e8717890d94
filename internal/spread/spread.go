// Package spread propagates an ignition point outward over time under
// wind influence. Output size is bounded: duration is downsampled into
// at most maxTimeSteps steps, a deliberate policy rather than a
// physical constraint.
package spread

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/emberwatch/wildfire-engine/internal/geo"
	"github.com/emberwatch/wildfire-engine/internal/models"
)

const (
	maxTimeSteps  = 12
	numDirections = 6

	IntensityMin = 1
	IntensityMax = 10

	// Base linear spread rate (km/h). Intensity contributes more per
	// unit than wind.
	intensityRateCoeff = 0.3
	windRateCoeff      = 0.15

	// Bounded multiplicative modifiers, sampled once per run so the
	// per-direction radius stays monotonic in elapsed time.
	terrainModMin = 0.8
	terrainModMax = 1.2
	vegModMin     = 0.7
	vegModMax     = 1.3

	// Wind bias on the sampled directions, capped at 70%.
	windBiasPerUnit = 0.02
	windBiasCap     = 0.7

	// Per-direction rate jitter, derived from a deterministic
	// sub-seed per coordinate so internal parallelization could not
	// reorder draws.
	dirJitterSpan = 0.05

	// Containment scaling.
	containIntensityHours = 6.0
	containWindHours      = 0.8
)

// Request is one simulation run. StartTime defaults to time.Now when
// zero; pass a fixed value for reproducible containment ETAs.
type Request struct {
	Origin           models.GeoPoint
	Intensity        int
	WindSpeed        float64
	WindDirectionDeg float64 // meteorological: direction the wind blows from
	DurationHours    float64
	TerrainAware     bool
	VegetationAware  bool
	StartTime        time.Time
}

// Simulate runs the spread model. A non-positive duration is a contract
// violation and returns an InvalidInput error; out-of-range intensity
// is clamped with a logged warning.
func Simulate(req Request, seed int64) (models.SpreadPrediction, error) {
	if req.DurationHours <= 0 {
		return models.SpreadPrediction{}, models.NewInputError(
			"non_positive_duration",
			"duration_hours must be > 0, got %v", req.DurationHours,
		)
	}
	if !req.Origin.Valid() {
		return models.SpreadPrediction{}, models.NewInputError(
			"invalid_origin",
			"origin (%v, %v) outside coordinate range", req.Origin.Latitude, req.Origin.Longitude,
		)
	}

	intensity := req.Intensity
	if intensity < IntensityMin || intensity > IntensityMax {
		clamped := min(max(intensity, IntensityMin), IntensityMax)
		slog.Warn("intensity out of range, clamped", "value", intensity, "clamped", clamped)
		intensity = clamped
	}

	wind := math.Max(0, req.WindSpeed)
	start := req.StartTime
	if start.IsZero() {
		start = time.Now().UTC()
	}

	rng := rand.New(rand.NewSource(seed))

	terrainMod := 1.0
	if req.TerrainAware {
		terrainMod = terrainModMin + rng.Float64()*(terrainModMax-terrainModMin)
	}
	vegMod := 1.0
	if req.VegetationAware {
		vegMod = vegModMin + rng.Float64()*(vegModMax-vegModMin)
	}

	baseRate := (intensityRateCoeff*float64(intensity) + windRateCoeff*wind) * terrainMod * vegMod

	steps := int(math.Ceil(req.DurationHours))
	if steps > maxTimeSteps {
		steps = maxTimeSteps
	}
	stepHours := req.DurationHours / float64(steps)

	downwind := geo.DownwindBearing(req.WindDirectionDeg)
	windBias := math.Min(windBiasCap, wind*windBiasPerUnit)

	// Effective km/h per direction: wind bias plus sub-seeded jitter,
	// fixed for the whole run.
	dirRates := make([]float64, numDirections)
	bearings := make([]float64, numDirections)
	for d := 0; d < numDirections; d++ {
		bearings[d] = float64(d) * (360.0 / numDirections)
		diff := geo.AngularDiff(bearings[d], downwind)
		dirMult := 1 + windBias*math.Cos(geo.Radians(diff))

		jrng := rand.New(rand.NewSource(subSeed(seed, 0, d)))
		jitter := 1 + (jrng.Float64()*2-1)*dirJitterSpan

		dirRates[d] = baseRate * dirMult * jitter
	}

	maxFinalRadius := 0.0
	for _, r := range dirRates {
		if fin := r * req.DurationHours; fin > maxFinalRadius {
			maxFinalRadius = fin
		}
	}

	points := make([]models.SpreadFrontPoint, 0, steps*numDirections)
	for s := 1; s <= steps; s++ {
		elapsed := stepHours * float64(s)
		timeFrac := elapsed / req.DurationHours

		for d := 0; d < numDirections; d++ {
			radius := dirRates[d] * elapsed
			lat, lon := geo.Destination(req.Origin.Latitude, req.Origin.Longitude, bearings[d], radius)

			distFrac := 0.0
			if maxFinalRadius > 0 {
				distFrac = radius / maxFinalRadius
			}

			points = append(points, models.SpreadFrontPoint{
				Location:     models.GeoPoint{Latitude: lat, Longitude: lon},
				RadiusKm:     radius,
				ElapsedHours: elapsed,
				DirectionDeg: bearings[d],
				Intensity:    pointIntensity(intensity, distFrac, timeFrac),
			})
		}
	}

	regions := impactedRegions(rng, intensity, len(points))
	routes := evacuationRoutes(rng)
	containment := containmentEstimate(rng, req, intensity, wind, terrainMod, vegMod, start, len(points))

	return models.SpreadPrediction{
		Origin:           req.Origin,
		StartTime:        start,
		TimeSteps:        steps,
		Directions:       numDirections,
		Points:           points,
		ImpactedRegions:  regions,
		EvacuationRoutes: routes,
		Containment:      containment,
	}, nil
}

// pointIntensity decreases with both distance fraction and time
// fraction: near points early in the run read hotter.
func pointIntensity(maxIntensity int, distFrac, timeFrac float64) int {
	v := float64(maxIntensity) * (1 - 0.35*distFrac) * (1 - 0.25*timeFrac)
	i := int(math.Round(v))
	if i < IntensityMin {
		return IntensityMin
	}
	if i > IntensityMax {
		return IntensityMax
	}
	return i
}

var regionCatalog = []string{
	"North Ridge",
	"Cedar Valley",
	"Pine Hollow",
	"Eastfield Flats",
	"Aspen Creek",
	"South Mesa",
	"Granite Pass",
	"Willow Bend",
}

func impactedRegions(rng *rand.Rand, intensity, numPoints int) []models.ImpactedRegion {
	count := 1 + numPoints/20
	if count > 5 {
		count = 5
	}

	perm := rng.Perm(len(regionCatalog))
	regions := make([]models.ImpactedRegion, 0, count)
	for i := 0; i < count; i++ {
		level := intensity/2 + rng.Intn(3) - 1
		if level < 1 {
			level = 1
		}
		if level > 5 {
			level = 5
		}

		regions = append(regions, models.ImpactedRegion{
			Name:               regionCatalog[perm[i]],
			ImpactLevel:        level,
			PopulationAtRisk:   uint64(level) * uint64(2000+rng.Intn(4001)),
			InfrastructureNum:  uint64(level) * uint64(20+rng.Intn(31)),
			EvacuationPriority: priorityFor(level),
		})
	}
	return regions
}

func priorityFor(impactLevel int) models.EvacuationPriority {
	switch {
	case impactLevel >= 4:
		return models.PriorityImmediate
	case impactLevel >= 3:
		return models.PriorityHigh
	default:
		return models.PriorityModerate
	}
}

var routeCatalog = []struct {
	name       string
	distanceKm float64
}{
	{"Highway 6 North", 18.5},
	{"County Road 12 East", 9.2},
	{"Ridgeline Drive South", 14.8},
	{"Old Mill Road West", 6.4},
	{"Valley Bypass", 22.1},
}

// evacuationRoutes picks up to three catalog routes. Routes are not yet
// derived from the road network or the fire geometry.
func evacuationRoutes(rng *rand.Rand) []models.EvacuationRoute {
	const evacSpeedKmh = 40.0

	perm := rng.Perm(len(routeCatalog))
	count := 2 + rng.Intn(2) // 2 or 3

	routes := make([]models.EvacuationRoute, 0, count)
	for i := 0; i < count; i++ {
		r := routeCatalog[perm[i]]

		status := models.RouteOpen
		if rng.Float64() < 0.3 {
			status = models.RouteLimitedAccess
		}

		minutes := r.distanceKm / evacSpeedKmh * 60 * (1 + 0.2*rng.Float64())
		routes = append(routes, models.EvacuationRoute{
			Name:                 r.name,
			DistanceKm:           r.distanceKm,
			EstimatedTimeMinutes: uint32(math.Round(minutes)),
			Status:               status,
		})
	}
	return routes
}

func containmentEstimate(rng *rand.Rand, req Request, intensity int, wind, terrainMod, vegMod float64, start time.Time, numPoints int) models.ContainmentEstimate {
	hours := req.DurationHours + float64(intensity)*containIntensityHours + wind*containWindHours
	if req.TerrainAware {
		hours *= terrainMod
	}
	if req.VegetationAware {
		hours *= vegMod
	}
	hours *= 0.9 + 0.2*rng.Float64()

	// Resource demand grows with sqrt of the simulation size:
	// diminishing returns per additional spread point.
	scale := float64(intensity) * math.Sqrt(float64(numPoints))
	round := func(c float64) uint64 { return uint64(math.Round(c * scale)) }

	return models.ContainmentEstimate{
		ETA:        start.Add(time.Duration(hours * float64(time.Hour))),
		TotalHours: hours,
		RequiredResources: models.RequiredResources{
			Firefighters:     round(12),
			Firetrucks:       round(1.5),
			Helicopters:      round(0.4),
			Bulldozers:       round(0.5),
			WaterGallons:     round(4000),
			SupportPersonnel: round(5),
		},
	}
}

// subSeed mixes the run seed with a (step, direction) coordinate,
// splitmix64-style, yielding an independent stream per coordinate.
func subSeed(seed int64, step, dir int) int64 {
	z := uint64(seed) + uint64(step)*0x9E3779B97F4A7C15 + uint64(dir+1)*0xBF58476D1CE4E5B9
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
