package parsers

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/extractor"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type stubStrategy struct {
	name string
	res  *models.ParseResult
	err  error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Parse(context.Context, *extractor.Document) (*models.ParseResult, error) {
	return s.res, s.err
}

func nonEmptyResult(strategy string) *models.ParseResult {
	units := decimal.RequireFromString("100.5")
	return &models.ParseResult{
		Holdings: []models.HoldingCandidate{{
			SchemeName: "Some Fund",
			ISIN:       "INF194K01391",
			Units:      &units,
			Kind:       models.HoldingFolio,
		}},
		Diagnostics: models.ParseDiagnostics{Strategy: strategy},
	}
}

func emptyResult(strategy string) *models.ParseResult {
	return &models.ParseResult{Diagnostics: models.ParseDiagnostics{Strategy: strategy}}
}

func TestRunStrategiesFirstNonEmptyWins(t *testing.T) {
	chain := []Strategy{
		&stubStrategy{name: "first", res: nonEmptyResult("first")},
		&stubStrategy{name: "second", res: nonEmptyResult("second")},
	}
	res := RunStrategies(context.Background(), chain, &extractor.Document{})
	assert.Equal(t, "first", res.Diagnostics.Strategy)
}

func TestRunStrategiesAdvancesOnError(t *testing.T) {
	chain := []Strategy{
		&stubStrategy{name: "broken", err: errors.New("model unavailable")},
		&stubStrategy{name: "fallback", res: nonEmptyResult("fallback")},
	}
	res := RunStrategies(context.Background(), chain, &extractor.Document{})
	assert.Equal(t, "fallback", res.Diagnostics.Strategy)
}

func TestRunStrategiesAdvancesOnEmptyResult(t *testing.T) {
	chain := []Strategy{
		&stubStrategy{name: "empty", res: emptyResult("empty")},
		&stubStrategy{name: "fallback", res: nonEmptyResult("fallback")},
	}
	res := RunStrategies(context.Background(), chain, &extractor.Document{})
	assert.Equal(t, "fallback", res.Diagnostics.Strategy)
}

func TestRunStrategiesAllEmptyReturnsLastEmpty(t *testing.T) {
	chain := []Strategy{
		&stubStrategy{name: "a", res: emptyResult("a")},
		&stubStrategy{name: "b", res: emptyResult("b")},
	}
	res := RunStrategies(context.Background(), chain, &extractor.Document{})
	require.NotNil(t, res)
	assert.True(t, res.Empty())
	assert.Equal(t, "b", res.Diagnostics.Strategy)
}

func TestRunStrategiesAllFailedSynthesizesResult(t *testing.T) {
	chain := []Strategy{
		&stubStrategy{name: "broken", err: errors.New("boom")},
	}
	doc := &extractor.Document{Backend: extractor.BackendPlainText}
	res := RunStrategies(context.Background(), chain, doc)
	require.NotNil(t, res)
	assert.True(t, res.Empty())
	assert.Equal(t, extractor.BackendPlainText, res.Diagnostics.ExtractionBackend)
}

func TestBuildStrategiesHeuristicOnly(t *testing.T) {
	config.Cfg = &config.AppConfig{ParserStrategy: "heuristic"}
	chain := BuildStrategies()
	require.Len(t, chain, 1)
	assert.Equal(t, "heuristic", chain[0].Name())
}

func TestBuildStrategiesGeminiWithoutKeyFallsBack(t *testing.T) {
	config.Cfg = &config.AppConfig{ParserStrategy: "gemini", GeminiAPIKey: ""}
	chain := BuildStrategies()
	require.Len(t, chain, 1)
	assert.Equal(t, "heuristic", chain[0].Name())
}
