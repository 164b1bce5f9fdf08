package cas

import (
	"regexp"
	"strings"

	"github.com/username/fundfolio/backend/src/models"
)

var (
	panPattern   = regexp.MustCompile(`(?i)\bPAN\s*:?\s*([A-Z]{5}[0-9]{4}[A-Z])\b`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	nameLabel    = regexp.MustCompile(`(?i)(?:Investor|Account\s*Holder)?\s*Name\s*:[ \t]*([A-Za-z][A-Za-z .]{2,60})`)
)

// ParseInvestorInfo pulls the account-holder identity block from statement
// text. Every field is best-effort; a statement with none of them still
// parses.
func ParseInvestorInfo(text string) models.InvestorInfo {
	var info models.InvestorInfo
	if m := panPattern.FindStringSubmatch(text); m != nil {
		info.PAN = strings.ToUpper(m[1])
	}
	if m := emailPattern.FindString(text); m != "" {
		info.Email = strings.ToLower(m)
	}
	if m := nameLabel.FindStringSubmatch(text); m != nil {
		info.Name = collapseWhitespace(m[1])
	}
	return info
}
