package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emberwatch/wildfire-engine/internal/models"
)

type firmsEntry struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	BrightTI4  float64 `json:"bright_ti4"`
	AcqDate    string  `json:"acq_date"` // YYYY-MM-DD
	AcqTime    string  `json:"acq_time"` // HHMM
	Confidence string  `json:"confidence"`
	FRP        float64 `json:"frp"`
}

func (m *Manager) pollFIRMS(ctx context.Context, url string) ([]*models.FireDetection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var entries []firmsEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	detections := make([]*models.FireDetection, 0, len(entries))
	for _, e := range entries {
		detected, err := parseAcqTime(e.AcqDate, e.AcqTime)
		if err != nil {
			continue // malformed feed row, skip
		}

		d := &models.FireDetection{
			// FIRMS rows carry no identifier; the (time, location)
			// tuple is the natural dedup key.
			ID:            fmt.Sprintf("firms_%s%s_%.4f_%.4f", e.AcqDate, e.AcqTime, e.Latitude, e.Longitude),
			Source:        "firms",
			Location:      models.GeoPoint{Latitude: e.Latitude, Longitude: e.Longitude},
			DetectionTime: detected,
			BrightnessK:   e.BrightTI4,
			Confidence:    normalizeConfidence(e.Confidence),
			FRP:           e.FRP,
			CreatedAt:     time.Now(),
		}
		detections = append(detections, d)
	}

	return detections, nil
}

func parseAcqTime(date, hhmm string) (time.Time, error) {
	if len(hhmm) < 4 {
		hhmm = strings.Repeat("0", 4-len(hhmm)) + hhmm
	}
	return time.Parse("2006-01-02 1504", date+" "+hhmm)
}

// normalizeConfidence maps the feed's single-letter and word forms onto
// low/nominal/high.
func normalizeConfidence(c string) string {
	switch strings.ToLower(c) {
	case "l", "low":
		return "low"
	case "n", "nominal":
		return "nominal"
	case "h", "high":
		return "high"
	default:
		return "nominal"
	}
}
