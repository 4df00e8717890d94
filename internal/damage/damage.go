// Package damage translates a burned footprint into area, severity,
// vegetation and infrastructure impact, and multi-phase recovery
// estimates. The environmental sub-scores are placeholders pending real
// remote-sensing integration.
package damage

import (
	"math"
	"math/rand"

	"github.com/emberwatch/wildfire-engine/internal/geo"
	"github.com/emberwatch/wildfire-engine/internal/models"
)

const (
	hectaresPerKm2 = 100.0

	burnedPctMin = 0.40
	burnedPctMax = 0.85

	// Per-type damage percentage bounds.
	typeDamageMin = 0.60
	typeDamageMax = 0.90

	// Rural infrastructure densities per square kilometer.
	structuresPerKm2 = 2.0

	// Recovery phase schedule: cumulative completion percentages and
	// their month offsets as fractions of the total recovery time.
	phaseInitialPct      = 20
	phaseIntermediatePct = 60
	phaseMaturePct       = 100
)

// Base recovery months per vegetation type; forest recovers slowest,
// cropland fastest.
var recoveryBaseMonths = map[models.VegetationType]float64{
	models.VegetationForest:    36,
	models.VegetationShrubland: 18,
	models.VegetationGrassland: 8,
	models.VegetationCropland:  6,
}

var vegetationOrder = []models.VegetationType{
	models.VegetationForest,
	models.VegetationGrassland,
	models.VegetationShrubland,
	models.VegetationCropland,
}

// Request is one assessment run. PreDate and PostDate bracket the fire
// for reporting; they do not alter the computation at this fidelity.
type Request struct {
	Footprint models.DamageFootprint
	PreDate   string
	PostDate  string
}

// Assess computes damage metrics and a recovery estimate for the
// footprint. A footprint with no recognizable shape is rejected.
func Assess(req Request, seed int64) (models.DamageMetrics, models.RecoveryEstimate, error) {
	areaKm2, err := footprintAreaKm2(req.Footprint)
	if err != nil {
		return models.DamageMetrics{}, models.RecoveryEstimate{}, err
	}

	rng := rand.New(rand.NewSource(seed))

	totalHa := areaKm2 * hectaresPerKm2
	burnedPct := burnedPctMin + rng.Float64()*(burnedPctMax-burnedPctMin)
	burnedHa := totalHa * burnedPct

	severity := severityMix(rng)
	vegetation := vegetationDamage(rng, burnedHa)
	infrastructure := infrastructureImpact(rng, areaKm2, burnedPct)

	metrics := models.DamageMetrics{
		BurnedArea: models.BurnedArea{
			Hectares:  burnedHa,
			TotalHa:   totalHa,
			BurnedPct: burnedPct,
		},
		Severity:        severity,
		Vegetation:      vegetation,
		Infrastructure:  infrastructure,
		SoilErosionRisk: 30 + rng.Float64()*60,
		WatershedRisk:   30 + rng.Float64()*60,
		AirQualityRisk:  30 + rng.Float64()*60,
	}

	recovery := recoveryEstimate(metrics)
	return metrics, recovery, nil
}

// footprintAreaKm2 resolves the tagged footprint union. Circles use the
// exact disc area; polygons use the shoelace formula.
func footprintAreaKm2(fp models.DamageFootprint) (float64, error) {
	switch fp.Kind {
	case models.FootprintCircle:
		if fp.Center == nil || !fp.Center.Valid() {
			return 0, models.NewInputError("malformed_footprint", "circle footprint requires a valid center")
		}
		if fp.RadiusKm <= 0 {
			return 0, models.NewInputError("malformed_footprint", "circle radius_km must be > 0, got %v", fp.RadiusKm)
		}
		return math.Pi * fp.RadiusKm * fp.RadiusKm, nil

	case models.FootprintPolygon:
		if len(fp.Polygon) < 3 {
			return 0, models.NewInputError("malformed_footprint", "polygon footprint requires at least 3 points, got %d", len(fp.Polygon))
		}
		lats := make([]float64, len(fp.Polygon))
		lons := make([]float64, len(fp.Polygon))
		for i, p := range fp.Polygon {
			if !p.Valid() {
				return 0, models.NewInputError("malformed_footprint", "polygon point %d outside coordinate range", i)
			}
			lats[i] = p.Latitude
			lons[i] = p.Longitude
		}
		area := geo.PolygonAreaKm2(lats, lons)
		if area <= 0 {
			return 0, models.NewInputError("malformed_footprint", "polygon is degenerate")
		}
		return area, nil

	default:
		return 0, models.NewInputError("malformed_footprint", "unrecognized footprint kind %q", fp.Kind)
	}
}

// severityMix draws bounded high/medium weights and re-normalizes so
// the three fractions sum to 1.
func severityMix(rng *rand.Rand) models.SeverityMix {
	high := 0.20 + rng.Float64()*0.30   // [0.20, 0.50]
	medium := 0.25 + rng.Float64()*0.20 // [0.25, 0.45]
	low := 0.15 + rng.Float64()*0.20    // [0.15, 0.35]

	total := high + medium + low
	return models.SeverityMix{
		High:   high / total,
		Medium: medium / total,
		Low:    low / total,
	}
}

func vegetationDamage(rng *rand.Rand, burnedHa float64) []models.VegetationDamage {
	weights := make([]float64, len(vegetationOrder))
	var total float64
	for i := range weights {
		weights[i] = 0.1 + rng.Float64()
		total += weights[i]
	}

	out := make([]models.VegetationDamage, 0, len(vegetationOrder))
	for i, vt := range vegetationOrder {
		areaHa := burnedHa * weights[i] / total
		pct := typeDamageMin + rng.Float64()*(typeDamageMax-typeDamageMin)
		out = append(out, models.VegetationDamage{
			Type:       vt,
			AreaHa:     areaHa,
			DamagedHa:  areaHa * pct,
			DamagedPct: pct,
		})
	}
	return out
}

func infrastructureImpact(rng *rand.Rand, areaKm2, burnedPct float64) models.InfrastructureImpact {
	total := uint64(math.Round(areaKm2 * structuresPerKm2))
	damagedFrac := burnedPct * (0.5 + rng.Float64()*0.3)
	damaged := uint64(math.Round(float64(total) * damagedFrac))

	// Category split of the damaged count.
	buildings := uint64(math.Round(float64(damaged) * 0.45))
	roads := uint64(math.Round(float64(damaged) * 0.25))
	power := uint64(math.Round(float64(damaged) * 0.20))
	var water uint64
	if sum := buildings + roads + power; damaged > sum {
		water = damaged - sum
	}

	return models.InfrastructureImpact{
		TotalCount:   total,
		DamagedCount: damaged,
		Buildings:    buildings,
		RoadSegments: roads,
		PowerLines:   power,
		WaterSystems: water,
	}
}

// recoveryEstimate derives timelines and costs from the metrics alone,
// so the estimate is fully determined by the assessment.
func recoveryEstimate(m models.DamageMetrics) models.RecoveryEstimate {
	severityIndex := m.Severity.High + 0.6*m.Severity.Medium + 0.3*m.Severity.Low

	veg := make([]models.VegetationRecovery, 0, len(m.Vegetation))
	for _, vd := range m.Vegetation {
		months := recoveryBaseMonths[vd.Type] * (0.5 + severityIndex)
		veg = append(veg, models.VegetationRecovery{
			Type:   vd.Type,
			Months: months,
			Phases: phases(months),
		})
	}

	infraMonths := 6.0
	if m.Infrastructure.TotalCount > 0 {
		frac := float64(m.Infrastructure.DamagedCount) / float64(m.Infrastructure.TotalCount)
		infraMonths = 6 + 30*frac
	}

	immediate := m.BurnedArea.Hectares * 450
	restoration := m.BurnedArea.Hectares * 900 * severityIndex
	infraRepair := float64(m.Infrastructure.DamagedCount) * 120000
	monitoring := (immediate + restoration) * 0.05

	return models.RecoveryEstimate{
		Vegetation: veg,
		Infrastructure: models.InfrastructureRecovery{
			Months: infraMonths,
			Phases: phases(infraMonths),
		},
		Cost: models.CostBreakdown{
			ImmediateResponseUSD:    immediate,
			RestorationUSD:          restoration,
			InfrastructureRepairUSD: infraRepair,
			MonitoringUSD:           monitoring,
			TotalUSD:                immediate + restoration + infraRepair + monitoring,
		},
		MonitoringPlan: []string{
			"quarterly vegetation regrowth survey",
			"post-storm erosion inspection for the first two wet seasons",
			"annual watershed sediment sampling",
			"air quality spot checks during re-burn season",
		},
	}
}

// phases emits the fixed Initial/Intermediate/Mature schedule with
// month offsets proportional to the cumulative percentages.
func phases(totalMonths float64) []models.RecoveryPhase {
	return []models.RecoveryPhase{
		{Name: "Initial", CumulativePct: phaseInitialPct, MonthOffset: totalMonths * 0.2},
		{Name: "Intermediate", CumulativePct: phaseIntermediatePct, MonthOffset: totalMonths * 0.6},
		{Name: "Mature", CumulativePct: phaseMaturePct, MonthOffset: totalMonths},
	}
}
