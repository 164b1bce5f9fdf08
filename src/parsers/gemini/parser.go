// Package gemini implements the AI-assisted parser tier. Holdings come from
// a structured-output prompt against the Gemini API; transactions and
// investor identity still go through the deterministic scanners, which are
// reliable on the line-oriented parts of a statement and free.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/extractor"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/parsers/cas"
)

const extractionPrompt = `You are a financial data extraction system. Extract every mutual fund holding from the consolidated account statement text below.

Return ONLY a JSON array. Each element must have exactly these keys:
- "scheme_name": string, the full scheme name as printed
- "isin": string, the 12-character ISIN, or "" if not printed
- "folio": string, the folio number, or "" for demat holdings
- "units": number, the closing unit balance
- "nav": number, the NAV per unit, or 0 if not printed
- "current_value": number, the current market value, or 0 if not printed
- "invested_amount": number, the total cost, or 0 if not printed

Rules:
- Include every holding exactly once.
- Never invent values; use 0 or "" for anything not printed.
- Do not include totals, summaries, or closed (zero-balance) schemes.
- Output raw JSON with no markdown fences and no commentary.

STATEMENT TEXT:
`

// geminiHolding mirrors the JSON schema in the prompt. Folio tolerates the
// model returning a bare number instead of a string.
type geminiHolding struct {
	SchemeName     string          `json:"scheme_name"`
	ISIN           string          `json:"isin"`
	Folio          json.RawMessage `json:"folio"`
	Units          float64         `json:"units"`
	NAV            float64         `json:"nav"`
	CurrentValue   float64         `json:"current_value"`
	InvestedAmount float64         `json:"invested_amount"`
}

// Strategy is the Gemini-backed parser tier.
type Strategy struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	maxText int
}

// NewStrategy builds the Gemini client from configuration.
func NewStrategy() (*Strategy, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.Cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	rpm := config.Cfg.AIRequestsPerMinute
	if rpm <= 0 {
		rpm = 1
	}
	return &Strategy{
		client:  client,
		model:   config.Cfg.GeminiModel,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		maxText: config.Cfg.MaxAITextChars,
	}, nil
}

func (s *Strategy) Name() string { return "gemini" }

// Parse extracts holdings via the model and everything else via the
// deterministic scanners. Any failure in the model path returns an error so
// the dispatcher falls through to the heuristic tier.
func (s *Strategy) Parse(ctx context.Context, doc *extractor.Document) (*models.ParseResult, error) {
	text := doc.Text
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text to send to model")
	}
	if len(text) > s.maxText {
		logger.L.Warn("Statement text exceeds model budget, truncating",
			"textChars", len(text), "maxChars", s.maxText)
		text = text[:s.maxText]
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(extractionPrompt+text),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	holdings, err := decodeHoldings(result.Text())
	if err != nil {
		return nil, err
	}

	res := &models.ParseResult{
		Investor:     cas.ParseInvestorInfo(doc.Text),
		Holdings:     holdings,
		Transactions: cas.ParseTransactions(doc.Text),
		Diagnostics: models.ParseDiagnostics{
			Strategy:            s.Name(),
			ExtractionBackend:   doc.Backend,
			TablesSeen:          len(doc.Tables),
			HoldingsBeforeDedup: len(holdings),
			HoldingsAfterDedup:  len(holdings),
		},
	}
	logger.L.Info("Statement parsed", "strategy", s.Name(),
		"holdings", len(res.Holdings), "transactions", len(res.Transactions))
	return res, nil
}

// decodeHoldings turns the model response into validated candidates. The
// response is repaired before decoding because models emit trailing commas,
// markdown fences and single quotes often enough to matter.
func decodeHoldings(response string) ([]models.HoldingCandidate, error) {
	cleaned := stripFences(response)
	if cleaned == "" {
		return nil, errors.New("empty model response")
	}
	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil {
		return nil, fmt.Errorf("model response is not repairable JSON: %w", err)
	}

	var raw []geminiHolding
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	holdings := make([]models.HoldingCandidate, 0, len(raw))
	for _, g := range raw {
		if strings.TrimSpace(g.SchemeName) == "" || g.Units <= 0 {
			logger.L.Debug("Dropping invalid model holding", "scheme", g.SchemeName, "units", g.Units)
			continue
		}
		parts := cas.DecomposeSchemeName(g.SchemeName)
		h := models.HoldingCandidate{
			SchemeName: parts.CleanName,
			PlanType:   parts.PlanType,
			OptionType: parts.OptionType,
			ISIN:       strings.ToUpper(strings.TrimSpace(g.ISIN)),
			Folio:      decodeFolio(g.Folio),
			Units:      decPtr(g.Units),
			Kind:       models.HoldingFolio,
		}
		if h.Folio == "" {
			h.Kind = models.HoldingDemat
		}
		if g.NAV > 0 {
			h.NAV = decPtr(g.NAV)
		}
		if g.CurrentValue > 0 {
			h.CurrentValue = decPtr(g.CurrentValue)
		}
		if g.InvestedAmount > 0 {
			h.InvestedAmount = decPtr(g.InvestedAmount)
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return nil, errors.New("model returned no valid holdings")
	}
	return holdings, nil
}

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// decodeFolio accepts a JSON string or number; models return both.
func decodeFolio(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// stripFences removes a markdown code fence wrapper if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
