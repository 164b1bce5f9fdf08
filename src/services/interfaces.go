package services

import (
	"context"
	"errors"

	"github.com/username/fundfolio/backend/src/models"
)

// Extraction and parse failures are not import errors: they surface as an
// empty ParseResult with diagnostics. The sentinels cover the two ways an
// import genuinely fails.
var (
	ErrInvalidStatement = errors.New("statement file is invalid")
	ErrPersistFailed    = errors.New("parse result could not be persisted")
)

// ImportService runs the full import flow for one statement file:
// validation, extraction, the parser strategy chain, and persistence.
type ImportService interface {
	ImportStatement(ctx context.Context, path string, password string) (*models.ParseResult, error)
	LatestResult() (*models.ParseResult, bool)
}
