package translate

import (
	"regexp"
	"strings"
)

var (
	parenNote   = regexp.MustCompile(`(?i)\(\s*(?:note|translator'?s note|translation note)\s*:[^)]*\)`)
	bracketNote = regexp.MustCompile(`(?i)\[\s*(?:note|translator'?s note|translation note)\s*:[^\]]*\]`)
	lineNote    = regexp.MustCompile(`(?i)^\s*(?:note|translator'?s note|translation note)\s*:`)
	koLineNote  = regexp.MustCompile(`^\s*(?:참고|주의|번역 참고)\s*:.*번역`)
	spaces      = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeAIText strips the disclaimers language models like to add to
// translations ("Note: this is a machine translation...").
func SanitizeAIText(s string) string {
	s = parenNote.ReplaceAllString(s, "")
	s = bracketNote.ReplaceAllString(s, "")

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if lineNote.MatchString(line) || koLineNote.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
