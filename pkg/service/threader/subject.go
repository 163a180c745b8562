package threader

import (
	"regexp"
	"strings"
)

var (
	replyPrefixRe   = regexp.MustCompile(`(?i)^\s*(re|fwd|fw)\s*:\s*`)
	bracketedTagRe  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// NormalizeSubject reduces a subject line to its matching key: reply and
// forward prefixes are stripped (repeatedly, so "Re: Fwd: x" collapses),
// bracketed tags like "[URGENT]" or "(external)" are removed, and the rest
// is whitespace-collapsed, trimmed and lowercased.
func NormalizeSubject(subject string) string {
	s := subject
	for {
		stripped := replyPrefixRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = bracketedTagRe.ReplaceAllString(s, " ")
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
