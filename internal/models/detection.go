package models

import "time"

// FireDetection is one active-fire feed entry. Detections seed
// simulation origins; the engines never consume them directly.
type FireDetection struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Location      GeoPoint  `json:"location"`
	DetectionTime time.Time `json:"detection_time"`
	BrightnessK   float64   `json:"brightness_k"`
	Confidence    string    `json:"confidence"` // low, nominal, high
	FRP           float64   `json:"frp"`        // fire radiative power, MW
	CreatedAt     time.Time `json:"created_at"`
}
