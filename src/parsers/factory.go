package parsers

import (
	"context"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/extractor"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/parsers/cas"
	"github.com/username/fundfolio/backend/src/parsers/gemini"
)

// BuildStrategies assembles the ordered strategy chain from configuration.
// The heuristic tier is always present and always last; the AI tier is
// prepended only when explicitly selected and an API key exists.
func BuildStrategies() []Strategy {
	var chain []Strategy
	if config.Cfg.ParserStrategy == "gemini" && config.Cfg.GeminiAPIKey != "" {
		g, err := gemini.NewStrategy()
		if err != nil {
			logger.L.Warn("Gemini strategy unavailable, heuristic tier will handle all statements", "error", err)
		} else {
			chain = append(chain, g)
		}
	}
	return append(chain, cas.NewStrategy())
}

// RunStrategies evaluates the chain in order. A tier that errors or returns
// an empty result hands the document to the next tier; the first non-empty
// result wins. When every tier comes back empty, the last empty result is
// returned so callers still get diagnostics.
func RunStrategies(ctx context.Context, chain []Strategy, doc *extractor.Document) *models.ParseResult {
	var last *models.ParseResult
	for _, s := range chain {
		res, err := s.Parse(ctx, doc)
		if err != nil {
			logger.L.Warn("Parse strategy failed, advancing to next tier", "strategy", s.Name(), "error", err)
			continue
		}
		if res == nil {
			continue
		}
		if !res.Empty() {
			return res
		}
		logger.L.Info("Parse strategy produced an empty result", "strategy", s.Name())
		last = res
	}
	if last == nil {
		last = &models.ParseResult{
			Diagnostics: models.ParseDiagnostics{
				ExtractionBackend: doc.Backend,
				Strategy:          "none",
			},
		}
	}
	return last
}
