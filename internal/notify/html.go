package notify

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	htmlEntities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// StripHTML removes tags, decodes the common entities and collapses whitespace.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}

	clean := htmlTagPattern.ReplaceAllString(text, "")
	clean = htmlEntities.Replace(clean)
	clean = whitespacePattern.ReplaceAllString(clean, " ")

	return strings.TrimSpace(clean)
}
