package http

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/platewatch/backend/internal/domain"
	"github.com/platewatch/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	auth     *service.AuthService
	search   *service.SearchService
	stats    *service.StatsService
	paths    *service.PathService
	repo     service.SightingRepository
	validate *validator.Validate
	mediaDir string
	log      zerolog.Logger
}

// NewHandler creates a new handler
func NewHandler(
	auth *service.AuthService,
	search *service.SearchService,
	stats *service.StatsService,
	paths *service.PathService,
	repo service.SightingRepository,
	mediaDir string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		search:   search,
		stats:    stats,
		paths:    paths,
		repo:     repo,
		validate: validator.New(),
		mediaDir: mediaDir,
		log:      log,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	if err := h.repo.Health(c.Context()); err != nil {
		h.log.Warn().Err(err).Msg("store health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "degraded",
			"service": "platewatch-backend",
		})
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "platewatch-backend",
		"version": "1.0.0",
	})
}

// Login verifies credentials and issues a bearer token
func (h *Handler) Login(c *fiber.Ctx) error {
	var creds domain.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(creds); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Username and password are required")
	}

	resp, err := h.auth.Login(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Uniform message: never reveal which field failed
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Login failed")
	}

	return c.JSON(resp)
}

// GetSightings returns the sighting list for a plate
func (h *Handler) GetSightings(c *fiber.Ctx) error {
	plate := c.Params("plate")

	from, to, err := parseRange(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sightings, err := h.repo.SearchSightings(c.Context(), plate, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("plate", plate).Msg("sightings fetch failed")
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch sightings")
	}

	return c.JSON(domain.SightingsResponse{
		Data:    sightings,
		Count:   len(sightings),
		Success: true,
	})
}

// GetStats returns derived statistics for a plate's sightings
func (h *Handler) GetStats(c *fiber.Ctx) error {
	plate := c.Params("plate")

	from, to, err := parseRange(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sightings, err := h.repo.SearchSightings(c.Context(), plate, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("plate", plate).Msg("sightings fetch failed")
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch sightings")
	}

	stats, err := h.stats.Aggregate(sightings)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Sighting data contains malformed records")
	}
	if stats == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    nil,
			"message": "no sightings",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// GetPath returns the rendered path view for a plate. With
// ?format=geojson the line is emitted in GeoJSON axis order; the
// canonical [lat, lng] order is used everywhere else.
func (h *Handler) GetPath(c *fiber.Ctx) error {
	plate := c.Params("plate")

	coords, err := h.repo.GetPath(c.Context(), plate)
	if err != nil {
		h.log.Error().Err(err).Str("plate", plate).Msg("path fetch failed")
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch path")
	}

	view := h.paths.BuildPath(coords)
	if view == nil {
		// Empty map state: no bounds fitting over zero points
		return c.JSON(fiber.Map{
			"success": true,
			"data":    nil,
			"center":  domain.LatLng{Lat: domain.DefaultCenterLat, Lng: domain.DefaultCenterLng},
		})
	}

	if c.Query("format") == "geojson" {
		return c.JSON(fiber.Map{
			"success":  true,
			"geometry": domain.ToGeoJSON(view.Line),
			"markers":  view.Markers,
			"viewport": view.Viewport,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}

// GetSummary returns sightings, stats and path in one response, fetched
// concurrently through the search coordinator
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	plate := c.Params("plate")

	from, to, err := parseRange(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.search.Search(c.Context(), plate, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("plate", plate).Msg("search failed")
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch plate data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// uploadForm is the multipart metadata for a media upload
type uploadForm struct {
	PlateNumber string `validate:"required,min=2,max=16"`
	CameraID    string `validate:"required,min=2,max=32"`
}

// UploadMedia stores an uploaded plate image and returns its URL
func (h *Handler) UploadMedia(c *fiber.Ctx) error {
	form := uploadForm{
		PlateNumber: c.FormValue("plateNumber"),
		CameraID:    c.FormValue("cameraId"),
	}
	if err := h.validate.Struct(form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "plateNumber and cameraId are required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dest := filepath.Join(h.mediaDir, name)
	if err := c.SaveFile(file, dest); err != nil {
		h.log.Error().Err(err).Str("dest", dest).Msg("media save failed")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store file")
	}

	uploader := ""
	if claims := ClaimsFromCtx(c); claims != nil {
		uploader = claims.Username
	}
	h.log.Info().
		Str("plate", form.PlateNumber).
		Str("camera", form.CameraID).
		Str("file", name).
		Str("user", uploader).
		Msg("media uploaded")

	return c.JSON(fiber.Map{
		"success": true,
		"fileUrl": "/media/" + name,
	})
}

// parseRange reads optional from/to RFC 3339 query params
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	var from, to time.Time

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, fmt.Errorf("invalid 'from' timestamp")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, fmt.Errorf("invalid 'to' timestamp")
		}
		to = t
	}
	return from, to, nil
}
