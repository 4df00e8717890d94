package repository

import (
	"context"
	"time"

	"github.com/emberwatch/wildfire-engine/internal/models"
)

// AssessmentKind tags the engine that produced a stored record.
type AssessmentKind string

const (
	KindRisk   AssessmentKind = "risk"
	KindSpread AssessmentKind = "spread"
	KindDamage AssessmentKind = "damage"
)

// AssessmentRecord is a persisted summary of one engine run. Payload
// holds the serialized engine result; the engines themselves never
// touch storage.
type AssessmentRecord struct {
	ID        string
	Kind      AssessmentKind
	Latitude  float64
	Longitude float64
	Score     float64 // risk score or spread intensity; 0 for damage runs
	Level     string
	Payload   []byte
	CreatedAt time.Time
}

type DetectionFilter struct {
	Limit  int
	Since  *time.Time
	MinFRP *float64
}

type AssessmentFilter struct {
	Limit int
	Kind  *AssessmentKind
	Since *time.Time
}

type DetectionRepository interface {
	AddDetection(ctx context.Context, d *models.FireDetection) error
	DetectionExists(ctx context.Context, id string) (bool, error)
	ListDetections(ctx context.Context, opts DetectionFilter) ([]models.FireDetection, error)
}

type AssessmentRepository interface {
	AddAssessment(ctx context.Context, rec *AssessmentRecord) error
	ListAssessments(ctx context.Context, opts AssessmentFilter) ([]AssessmentRecord, error)
}
