package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/extractor"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/parsers"
	"github.com/username/fundfolio/backend/src/security/validation"
	"github.com/username/fundfolio/backend/src/storage"
)

const (
	ckLatestImportResult = "agg_latest_import_result"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type importServiceImpl struct {
	strategies  []parsers.Strategy
	resultCache *cache.Cache
	persist     bool
}

// NewImportService wires the strategy chain and result cache. persist=false
// keeps imports in memory only, used by the CLI dry-run mode and tests.
func NewImportService(strategies []parsers.Strategy, resultCache *cache.Cache, persist bool) ImportService {
	return &importServiceImpl{
		strategies:  strategies,
		resultCache: resultCache,
		persist:     persist,
	}
}

func (s *importServiceImpl) ImportStatement(ctx context.Context, path string, password string) (*models.ParseResult, error) {
	overallStartTime := time.Now()
	importID := uuid.New().String()
	logger.L.Info("ImportStatement START", "importID", importID, "path", path)

	if err := validation.ValidateStatementFile(path, config.Cfg.MaxStatementSizeBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatement, err)
	}

	extractCtx, cancel := context.WithTimeout(ctx, config.Cfg.ExtractTimeout)
	defer cancel()
	// Extraction failure is not an import failure: the strategies run on
	// empty content and return an empty result with diagnostics.
	doc := extractor.Extract(extractCtx, path, password)

	result := parsers.RunStrategies(ctx, s.strategies, doc)
	result.Diagnostics.ImportID = importID
	result.Diagnostics.ExtractionBackend = doc.Backend

	if result.Empty() {
		logger.L.Warn("Statement yielded no holdings and no transactions",
			"importID", importID, "backend", doc.Backend)
	}

	if s.persist && !result.Empty() {
		if err := storage.SaveParseResult(ctx, result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}

	s.resultCache.Set(ckLatestImportResult, result, cache.DefaultExpiration)

	logger.L.Info("ImportStatement END",
		"importID", importID,
		"holdings", len(result.Holdings),
		"transactions", len(result.Transactions),
		"strategy", result.Diagnostics.Strategy,
		"duration", time.Since(overallStartTime).String())
	return result, nil
}

// LatestResult returns the most recent import result still in cache.
func (s *importServiceImpl) LatestResult() (*models.ParseResult, bool) {
	v, found := s.resultCache.Get(ckLatestImportResult)
	if !found {
		return nil, false
	}
	res, ok := v.(*models.ParseResult)
	return res, ok
}
