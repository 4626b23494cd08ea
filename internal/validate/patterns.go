package validate

import (
	"regexp"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

var placeholderNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(placeholder\)`),
	regexp.MustCompile(`(?i)\bplaceholder\b`),
	regexp.MustCompile(`(?i)^\s*(tbd|tba|to be determined|to be announced)\s*$`),
	regexp.MustCompile(`(?i)^\s*(free\s+)?elective\s*$`),
	regexp.MustCompile(`(?i)\bnupath\b`),
}

var placeholderCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(tbd|tba)\s*$`),
	regexp.MustCompile(`(?i)(^|[\s\d])x{2,}\s*$`),
	regexp.MustCompile(`(?i)\bnupath\b`),
}

// IsPlaceholder reports whether c stands in for a course rather than naming
// one. A course with options listed is never a placeholder: the options are
// the concrete choices.
func IsPlaceholder(c schema.Course) bool {
	if strings.TrimSpace(c.Options) != "" {
		return false
	}
	for _, re := range placeholderNamePatterns {
		if re.MatchString(c.Name) {
			return true
		}
	}
	for _, re := range placeholderCodePatterns {
		if re.MatchString(c.Code) {
			return true
		}
	}
	return false
}
