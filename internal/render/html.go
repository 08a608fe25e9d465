package render

import (
	"fmt"
	"regexp"
)

var (
	headOpenRe = regexp.MustCompile(`(?i)<head[^>]*>`)
	htmlOpenRe = regexp.MustCompile(`(?i)<html[^>]*>`)
)

// injectBaseHref rewrites the document so root-relative asset paths resolve
// against origin: the render happens outside the web server's path context,
// so a <base> tag is injected into the head. A head is synthesized when the
// document has none.
func injectBaseHref(html, origin string) string {
	baseTag := fmt.Sprintf(`<base href="%s">`, origin)
	if loc := headOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + baseTag + html[loc[1]:]
	}
	if loc := htmlOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + "<head>" + baseTag + "</head>" + html[loc[1]:]
	}
	return baseTag + html
}
