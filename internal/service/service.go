package service

import (
	"github.com/platewatch/backend/internal/domain"
)

// SightingRepository is re-exported from domain for convenience
type SightingRepository = domain.SightingRepository
