package extract

import (
	"regexp"
	"strings"
)

// KeyInfo holds the structured metadata detected in a tender's text. Every
// field is best-effort; a missing match leaves it empty.
type KeyInfo struct {
	Reference    string
	Title        string
	Deadline     string
	Budget       string
	Requirements []string
	Criteria     []string
}

var (
	refPattern      = regexp.MustCompile(`(?i)(?:référence|ref|n°)\s*[:\-]?\s*([A-Z0-9\-/]+)`)
	deadlinePattern = regexp.MustCompile(`(?i)(?:date limite|échéance|deadline)\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	budgetPattern   = regexp.MustCompile(`(?i)(?:budget|montant)\s*[:\-]?\s*([\d\s]+(?:€|EUR|euros?))`)
)

const maxTitleLen = 200

// KeyInformation scans a tender's plain text for reference code, deadline and
// budget, and uses the first non-blank line as the title.
func KeyInformation(text string) KeyInfo {
	var info KeyInfo
	if m := refPattern.FindStringSubmatch(text); m != nil {
		info.Reference = strings.TrimSpace(m[1])
	}
	if m := deadlinePattern.FindStringSubmatch(text); m != nil {
		info.Deadline = strings.TrimSpace(m[1])
	}
	if m := budgetPattern.FindStringSubmatch(text); m != nil {
		info.Budget = strings.TrimSpace(m[1])
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxTitleLen {
			line = string(r[:maxTitleLen])
		}
		info.Title = line
		break
	}
	return info
}
