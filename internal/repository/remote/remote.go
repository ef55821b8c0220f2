// Package remote sources sightings from the upstream storage service's
// REST API instead of a local database. It is the thin fetch layer the
// dashboard otherwise assumes: all coordinate payloads are canonicalized
// to [lat, lng] here, at the boundary, regardless of which axis order
// the endpoint variant uses.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/platewatch/backend/internal/domain"
)

// RemoteRepository implements domain.SightingRepository over HTTP
type RemoteRepository struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRemoteRepository creates a repository backed by the storage service API.
// token is an optional service bearer token attached to every request.
func NewRemoteRepository(baseURL, token string) *RemoteRepository {
	return &RemoteRepository{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// pathPayload accepts both observed path endpoint variants: the plain
// {coordinates: [[lat,lng],...]} form and the GeoJSON-style
// {geometry:{coordinates:[[lng,lat],...]}} form.
type pathPayload struct {
	Coordinates []domain.LatLng            `json:"coordinates"`
	Geometry    *domain.LineStringGeometry `json:"geometry"`
}

// SearchSightings fetches sightings for a plate from the upstream API
func (r *RemoteRepository) SearchSightings(ctx context.Context, plate string, from, to time.Time) ([]domain.Sighting, error) {
	endpoint := fmt.Sprintf("%s/api/v1/plates/%s", r.baseURL, url.PathEscape(plate))

	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var sightings []domain.Sighting
	if err := r.getJSON(ctx, endpoint, &sightings); err != nil {
		return nil, err
	}
	return sightings, nil
}

// GetPath fetches and canonicalizes the plate's path from the upstream API
func (r *RemoteRepository) GetPath(ctx context.Context, plate string) ([]domain.LatLng, error) {
	endpoint := fmt.Sprintf("%s/api/v1/plates/%s/path", r.baseURL, url.PathEscape(plate))

	var payload pathPayload
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if payload.Geometry != nil {
		return domain.FromGeoJSON(*payload.Geometry), nil
	}
	return payload.Coordinates, nil
}

// SaveSighting forwards a detection event to the upstream API
func (r *RemoteRepository) SaveSighting(ctx context.Context, plate string, s domain.Sighting) error {
	endpoint := fmt.Sprintf("%s/api/v1/events", r.baseURL)

	body, err := json.Marshal(struct {
		Plate string `json:"plate"`
		domain.Sighting
	}{Plate: plate, Sighting: s})
	if err != nil {
		return fmt.Errorf("remote: failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: event upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("remote: event upload returned status %d", resp.StatusCode)
	}
	return nil
}

// PurgeOlderThan is a no-op: retention is owned by the storage service
func (r *RemoteRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// Health checks upstream API connectivity
func (r *RemoteRepository) Health(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/health", r.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("remote: failed to create health request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (r *RemoteRepository) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("remote: failed to create request: %w", err)
	}
	r.authorize(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: failed to decode response: %w", err)
	}
	return nil
}

func (r *RemoteRepository) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}
