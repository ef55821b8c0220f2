package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platewatch/backend/internal/domain"
)

// PostgresRepository implements domain.SightingRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// HashPlate returns the sha256 hex digest of a normalized plate number.
// Plates are stored hashed, never raw.
func HashPlate(plate string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(plate, " ", ""))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// SearchSightings retrieves sightings for a plate from PostgreSQL.
// Results are capped and ordered by recency, so the consumer must not
// assume chronological order.
func (r *PostgresRepository) SearchSightings(ctx context.Context, plate string, from, to time.Time) ([]domain.Sighting, error) {
	query := `
		SELECT ts, camera_id, lat, lng, confidence, speed,
		       COALESCE(direction, ''), COALESCE(image_url, ''), vehicle_id
		FROM sightings
		WHERE plate_hash = $1
		  AND ($2::timestamptz IS NULL OR ts >= $2)
		  AND ($3::timestamptz IS NULL OR ts <= $3)
		ORDER BY ts DESC
		LIMIT 500
	`

	rows, err := r.pool.Query(ctx, query, HashPlate(plate), nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query sightings: %w", err)
	}
	defer rows.Close()

	var results []domain.Sighting
	for rows.Next() {
		var (
			s  domain.Sighting
			ts time.Time
		)
		err := rows.Scan(&ts, &s.CameraID, &s.Lat, &s.Lng, &s.Confidence, &s.Speed, &s.Direction, &s.ImageURL, &s.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan sighting row: %w", err)
		}
		s.Timestamp = ts.UTC().Format(time.RFC3339)
		results = append(results, s)
	}

	return results, nil
}

// GetPath retrieves the plate's coordinates in chronological order
func (r *PostgresRepository) GetPath(ctx context.Context, plate string) ([]domain.LatLng, error) {
	query := `
		SELECT lat, lng
		FROM sightings
		WHERE plate_hash = $1
		ORDER BY ts ASC
		LIMIT 500
	`

	rows, err := r.pool.Query(ctx, query, HashPlate(plate))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query path: %w", err)
	}
	defer rows.Close()

	var coords []domain.LatLng
	for rows.Next() {
		var p domain.LatLng
		if err := rows.Scan(&p.Lat, &p.Lng); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan coordinate row: %w", err)
		}
		coords = append(coords, p)
	}

	return coords, nil
}

// SaveSighting persists one detection event to PostgreSQL
func (r *PostgresRepository) SaveSighting(ctx context.Context, plate string, s domain.Sighting) error {
	ts, err := s.ParsedTime()
	if err != nil {
		return fmt.Errorf("postgres: refusing to save malformed timestamp %q: %w", s.Timestamp, err)
	}

	query := `
		INSERT INTO sightings (
			plate_hash, ts, camera_id, lat, lng, confidence,
			speed, direction, image_url, vehicle_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		HashPlate(plate), ts, s.CameraID, s.Lat, s.Lng, s.Confidence,
		s.Speed, s.Direction, s.ImageURL, s.VehicleID,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save sighting: %w", err)
	}

	return nil
}

// PurgeOlderThan deletes sightings past the retention cutoff
func (r *PostgresRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sightings WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to purge old sightings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// nullableTime maps a zero time to SQL NULL so range bounds stay open.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
