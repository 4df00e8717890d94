package api

import (
	"github.com/emberwatch/wildfire-engine/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func detectionsToGeoJSON(detections []models.FireDetection) FeatureCollection {
	features := make([]Feature, 0, len(detections))

	for _, d := range detections {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{d.Location.Longitude, d.Location.Latitude},
			},
			Properties: map[string]any{
				"id":             d.ID,
				"source":         d.Source,
				"detection_time": d.DetectionTime,
				"brightness_k":   d.BrightnessK,
				"confidence":     d.Confidence,
				"frp":            d.FRP,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// spreadToGeoJSON flattens the prediction into point features: the
// origin first, then every front point in emission order.
func spreadToGeoJSON(p models.SpreadPrediction) FeatureCollection {
	features := make([]Feature, 0, len(p.Points)+1)

	features = append(features, Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{p.Origin.Longitude, p.Origin.Latitude},
		},
		Properties: map[string]any{
			"role":       "origin",
			"start_time": p.StartTime,
		},
	})

	for _, pt := range p.Points {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{pt.Location.Longitude, pt.Location.Latitude},
			},
			Properties: map[string]any{
				"role":          "front",
				"radius_km":     pt.RadiusKm,
				"elapsed_hours": pt.ElapsedHours,
				"direction_deg": pt.DirectionDeg,
				"intensity":     pt.Intensity,
			},
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
