// slug derives stable anchor identifiers from heading text.
package slug

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	invalidChars   = regexp.MustCompile(`[^\w-]`)
)

// Make turns heading text into the anchor id the preview page uses.
// "  Getting   Started! " becomes "getting-started".
func Make(heading string) string {
	s := strings.TrimSpace(heading)
	s = strings.ToLower(s)
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = invalidChars.ReplaceAllString(s, "")
	return s
}
