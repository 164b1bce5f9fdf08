package parsers

import (
	"context"

	"github.com/username/fundfolio/backend/src/extractor"
	"github.com/username/fundfolio/backend/src/models"
)

// Strategy is one parser tier. Parse must be side-effect free with respect
// to the document so that a failed tier leaves nothing behind for the next
// tier to trip over.
type Strategy interface {
	Name() string
	Parse(ctx context.Context, doc *extractor.Document) (*models.ParseResult, error)
}
