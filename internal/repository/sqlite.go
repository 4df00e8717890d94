package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/emberwatch/wildfire-engine/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			detection_time DATETIME NOT NULL,
			brightness_k REAL,
			confidence TEXT,
			frp REAL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			score REAL,
			level TEXT,
			payload BLOB,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_detections_time ON detections(detection_time);
		CREATE INDEX IF NOT EXISTS idx_assessments_kind ON assessments(kind);
		CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) AddDetection(ctx context.Context, d *models.FireDetection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO detections (id, source, latitude, longitude, detection_time, brightness_k, confidence, frp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Source, d.Location.Latitude, d.Location.Longitude,
		d.DetectionTime, d.BrightnessK, d.Confidence, d.FRP, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting detection: %w", err)
	}
	return nil
}

func (s *SQLiteDB) DetectionExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM detections WHERE id = ?)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking detection existence: %w", err)
	}
	return exists, nil
}

func (s *SQLiteDB) ListDetections(ctx context.Context, opts DetectionFilter) ([]models.FireDetection, error) {
	query := "SELECT id, source, latitude, longitude, detection_time, brightness_k, confidence, frp, created_at FROM detections WHERE 1=1"
	args := []any{}

	if opts.Since != nil {
		query += " AND detection_time >= ?"
		args = append(args, *opts.Since)
	}
	if opts.MinFRP != nil {
		query += " AND frp >= ?"
		args = append(args, *opts.MinFRP)
	}

	query += " ORDER BY detection_time DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing detections: %w", err)
	}
	defer rows.Close()

	var out []models.FireDetection
	for rows.Next() {
		var d models.FireDetection
		if err := rows.Scan(
			&d.ID, &d.Source, &d.Location.Latitude, &d.Location.Longitude,
			&d.DetectionTime, &d.BrightnessK, &d.Confidence, &d.FRP, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning detection row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) AddAssessment(ctx context.Context, rec *AssessmentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, kind, latitude, longitude, score, level, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Latitude, rec.Longitude,
		rec.Score, rec.Level, rec.Payload, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting assessment: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListAssessments(ctx context.Context, opts AssessmentFilter) ([]AssessmentRecord, error) {
	query := "SELECT id, kind, latitude, longitude, score, level, payload, created_at FROM assessments WHERE 1=1"
	args := []any{}

	if opts.Kind != nil {
		query += " AND kind = ?"
		args = append(args, *opts.Kind)
	}
	if opts.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, *opts.Since)
	}

	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentRecord
	for rows.Next() {
		var rec AssessmentRecord
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Latitude, &rec.Longitude,
			&rec.Score, &rec.Level, &rec.Payload, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning assessment row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
