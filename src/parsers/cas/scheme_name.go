package cas

import (
	"regexp"
	"strings"

	"github.com/username/fundfolio/backend/src/models"
)

// SchemeNameParts is the structured decomposition of a raw scheme name into
// a clean fund name plus the plan and option encoded in its suffixes.
type SchemeNameParts struct {
	CleanName  string
	PlanType   models.PlanType
	OptionType models.OptionType
}

// Option detection order matters: "Growth" wins over "Dividend" when a name
// carries both (e.g. "Dividend Yield Fund - Growth"), and "Dividend" wins
// over "Reinvestment" ("Dividend Reinvestment" is a dividend option).
var optionPatterns = []struct {
	re     *regexp.Regexp
	option models.OptionType
}{
	{regexp.MustCompile(`(?i)\bGrowth\b`), models.OptionGrowth},
	{regexp.MustCompile(`(?i)\bDividend\b`), models.OptionDividend},
	{regexp.MustCompile(`(?i)\bIDCW\b`), models.OptionDividend},
	{regexp.MustCompile(`(?i)\bPayout\b`), models.OptionDividend},
	{regexp.MustCompile(`(?i)\bReinvest(?:ment)?\b`), models.OptionReinvestment},
}

var planPatterns = []struct {
	re   *regexp.Regexp
	plan models.PlanType
}{
	{regexp.MustCompile(`(?i)\bDirect\b`), models.PlanDirect},
	{regexp.MustCompile(`(?i)\bRegular\b`), models.PlanRegular},
}

// suffixPatterns are applied in order, each stripping one known plan/option
// suffix from the tail of the name. Longer compound suffixes come first so
// that " - Regular Plan - Growth" is removed whole instead of piecemeal.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*-\s*Direct\s*Plan\s*-?\s*Growth\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*Regular\s*Plan\s*-?\s*Growth\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*Direct\s*Plan\s*-?\s*(?:Dividend|IDCW)[\w\s]*$`),
	regexp.MustCompile(`(?i)\s*-\s*Regular\s*Plan\s*-?\s*(?:Dividend|IDCW)[\w\s]*$`),
	regexp.MustCompile(`(?i)\s*-\s*Direct\s*-?\s*Growth\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*Regular\s*-?\s*Growth\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*Growth\s*Option\s*$`),
	regexp.MustCompile(`(?i)\s*-\s*(?:Dividend|IDCW)\s*Option\s*$`),
	regexp.MustCompile(`(?i)\s+Direct\s*Plan\s*$`),
	regexp.MustCompile(`(?i)\s+Regular\s*Plan\s*$`),
	regexp.MustCompile(`(?i)\s+Direct\s*$`),
	regexp.MustCompile(`(?i)\s+Regular\s*$`),
	regexp.MustCompile(`(?i)\s+Growth\s*$`),
	regexp.MustCompile(`(?i)\s+(?:Dividend|IDCW)\s*$`),
}

var (
	trailingSeparator = regexp.MustCompile(`[\s\-]+$`)
	innerWhitespace   = regexp.MustCompile(`\s+`)
)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// DecomposeSchemeName splits a raw scheme name like
// "Axis ESG Integration Strategy Fund - Regular Plan - Growth" into the fund
// name and its plan/option attributes. Detection runs on the raw name before
// any suffix is stripped, so attributes survive even when the suffix form is
// one the stripper does not know.
func DecomposeSchemeName(raw string) SchemeNameParts {
	parts := SchemeNameParts{CleanName: collapseWhitespace(raw)}
	if parts.CleanName == "" {
		return parts
	}

	for _, p := range optionPatterns {
		if p.re.MatchString(parts.CleanName) {
			parts.OptionType = p.option
			break
		}
	}
	for _, p := range planPatterns {
		if p.re.MatchString(parts.CleanName) {
			parts.PlanType = p.plan
			break
		}
	}

	clean := parts.CleanName
	for _, re := range suffixPatterns {
		clean = re.ReplaceAllString(clean, "")
	}
	clean = trailingSeparator.ReplaceAllString(clean, "")
	clean = collapseWhitespace(clean)
	if clean != "" {
		parts.CleanName = clean
	}
	return parts
}
