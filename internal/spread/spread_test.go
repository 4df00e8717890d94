package spread

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/emberwatch/wildfire-engine/internal/models"
)

var origin = models.GeoPoint{Latitude: 39.74, Longitude: -104.99}

func baseRequest() Request {
	return Request{
		Origin:           origin,
		Intensity:        8,
		WindSpeed:        25,
		WindDirectionDeg: 270,
		DurationHours:    24,
		TerrainAware:     true,
		VegetationAware:  true,
		StartTime:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSimulate_NonPositiveDuration(t *testing.T) {
	for _, d := range []float64{0, -1, -24} {
		req := baseRequest()
		req.DurationHours = d

		_, err := Simulate(req, 1)
		if err == nil {
			t.Errorf("duration %v: expected error, got nil", d)
			continue
		}
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("duration %v: expected ErrInvalidInput, got %v", d, err)
		}
	}
}

func TestSimulate_InvalidOrigin(t *testing.T) {
	req := baseRequest()
	req.Origin = models.GeoPoint{Latitude: 95, Longitude: 0}

	_, err := Simulate(req, 1)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	req := baseRequest()

	a, err := Simulate(req, 1234)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(req, 1234)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with the same seed produced different output")
	}

	c, err := Simulate(req, 5678)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Points, c.Points) {
		t.Error("different seeds produced identical points")
	}
}

func TestSimulate_MonotonicRadiusPerDirection(t *testing.T) {
	pred, err := Simulate(baseRequest(), 99)
	if err != nil {
		t.Fatal(err)
	}

	last := make(map[float64]float64)
	lastElapsed := 0.0
	for _, p := range pred.Points {
		if p.ElapsedHours < lastElapsed {
			t.Fatalf("elapsed hours decreased: %v after %v", p.ElapsedHours, lastElapsed)
		}
		lastElapsed = p.ElapsedHours

		if prev, ok := last[p.DirectionDeg]; ok && p.RadiusKm < prev {
			t.Errorf("direction %v: radius %.4f < previous %.4f", p.DirectionDeg, p.RadiusKm, prev)
		}
		last[p.DirectionDeg] = p.RadiusKm
	}
}

func TestSimulate_DownwindBias(t *testing.T) {
	// Wind from 270 (west): easterly points should outrun westerly
	// ones at the final time step.
	pred, err := Simulate(baseRequest(), 7)
	if err != nil {
		t.Fatal(err)
	}

	finalElapsed := pred.Points[len(pred.Points)-1].ElapsedHours

	var downwindSum, upwindSum float64
	var downwindN, upwindN int
	for _, p := range pred.Points {
		if p.ElapsedHours != finalElapsed {
			continue
		}
		switch p.DirectionDeg {
		case 60, 120: // closest bearings to due east
			downwindSum += p.RadiusKm
			downwindN++
		case 240, 300: // closest bearings to due west
			upwindSum += p.RadiusKm
			upwindN++
		}
	}

	if downwindN == 0 || upwindN == 0 {
		t.Fatal("missing final-step directional points")
	}
	if downwindSum/float64(downwindN) <= upwindSum/float64(upwindN) {
		t.Errorf("downwind mean radius %.3f not greater than upwind %.3f",
			downwindSum/float64(downwindN), upwindSum/float64(upwindN))
	}
}

func TestSimulate_TimeStepCap(t *testing.T) {
	req := baseRequest()
	req.DurationHours = 100

	pred, err := Simulate(req, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pred.TimeSteps != maxTimeSteps {
		t.Errorf("expected %d time steps, got %d", maxTimeSteps, pred.TimeSteps)
	}
	if len(pred.Points) != maxTimeSteps*numDirections {
		t.Errorf("expected %d points, got %d", maxTimeSteps*numDirections, len(pred.Points))
	}
}

func TestSimulate_ShortDuration(t *testing.T) {
	req := baseRequest()
	req.DurationHours = 2.5

	pred, err := Simulate(req, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pred.TimeSteps != 3 {
		t.Errorf("expected 3 time steps for 2.5h, got %d", pred.TimeSteps)
	}
}

func TestSimulate_IntensityClamped(t *testing.T) {
	req := baseRequest()
	req.Intensity = 25

	pred, err := Simulate(req, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pred.Points {
		if p.Intensity < IntensityMin || p.Intensity > IntensityMax {
			t.Errorf("point intensity %d out of [%d,%d]", p.Intensity, IntensityMin, IntensityMax)
		}
	}
}

func TestSimulate_IntensityDecaysWithDistanceAndTime(t *testing.T) {
	pred, err := Simulate(baseRequest(), 11)
	if err != nil {
		t.Fatal(err)
	}

	first := pred.Points[0]
	last := pred.Points[len(pred.Points)-1]
	if first.Intensity < last.Intensity {
		t.Errorf("early near point (%d) should read at least as hot as late far point (%d)",
			first.Intensity, last.Intensity)
	}
}

func TestSimulate_RegionsAndRoutes(t *testing.T) {
	pred, err := Simulate(baseRequest(), 21)
	if err != nil {
		t.Fatal(err)
	}

	if len(pred.ImpactedRegions) == 0 || len(pred.ImpactedRegions) > 5 {
		t.Errorf("expected 1-5 impacted regions, got %d", len(pred.ImpactedRegions))
	}
	seen := map[string]bool{}
	for _, r := range pred.ImpactedRegions {
		if seen[r.Name] {
			t.Errorf("region %q drawn twice", r.Name)
		}
		seen[r.Name] = true

		if r.ImpactLevel < 1 || r.ImpactLevel > 5 {
			t.Errorf("impact level %d out of [1,5]", r.ImpactLevel)
		}
		want := priorityFor(r.ImpactLevel)
		if r.EvacuationPriority != want {
			t.Errorf("level %d: priority %s, want %s", r.ImpactLevel, r.EvacuationPriority, want)
		}
	}

	if len(pred.EvacuationRoutes) < 2 || len(pred.EvacuationRoutes) > 3 {
		t.Errorf("expected 2-3 evacuation routes, got %d", len(pred.EvacuationRoutes))
	}
}

func TestSimulate_Containment(t *testing.T) {
	req := baseRequest()
	pred, err := Simulate(req, 31)
	if err != nil {
		t.Fatal(err)
	}

	if !pred.Containment.ETA.After(req.StartTime) {
		t.Error("containment ETA not after start time")
	}
	if math.Abs(pred.Containment.ETA.Sub(req.StartTime).Hours()-pred.Containment.TotalHours) > 0.01 {
		t.Error("ETA does not match TotalHours offset from start")
	}

	res := pred.Containment.RequiredResources
	if res.Firefighters == 0 || res.Firetrucks == 0 || res.WaterGallons == 0 || res.SupportPersonnel == 0 {
		t.Errorf("expected non-zero resource counts, got %+v", res)
	}
}

func TestPriorityFor(t *testing.T) {
	cases := []struct {
		level int
		want  models.EvacuationPriority
	}{
		{1, models.PriorityModerate},
		{2, models.PriorityModerate},
		{3, models.PriorityHigh},
		{4, models.PriorityImmediate},
		{5, models.PriorityImmediate},
	}
	for _, c := range cases {
		if got := priorityFor(c.level); got != c.want {
			t.Errorf("priorityFor(%d) = %s, want %s", c.level, got, c.want)
		}
	}
}
