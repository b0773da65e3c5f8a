package webdriver

import "strings"

// W3C drivers accept only a subset of the legacy locator strategies; the
// rest are rewritten as CSS selectors. The legacy dialect passes every
// strategy through unchanged.
func translateLocator(d Dialect, by, value string) (string, string) {
	if d != W3C {
		return by, value
	}
	switch by {
	case ByID:
		return ByCSSSelector, "#" + escapeCSS(value)
	case ByClassName:
		return ByCSSSelector, "." + escapeCSS(value)
	case ByName:
		return ByCSSSelector, "*[name='" + escapeCSS(value) + "']"
	case ByTagName:
		// A bare tag name is already a valid selector.
		return ByCSSSelector, value
	}
	return by, value
}

// cssEscapeSet is the set of characters that must be backslash-escaped in a
// CSS identifier.
const cssEscapeSet = "'\"\\#.:;,!?+<>=~*^$|%&@`{}-[]()"

// escapeCSS escapes a string for embedding in a synthetic CSS selector,
// mirroring the CSS.escape algorithm. A leading digit is not valid in an
// identifier and is rewritten as a numeric code-point escape.
func escapeCSS(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(cssEscapeSet, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > 0 && out[0] >= '0' && out[0] <= '9' {
		out = `\3` + out[:1] + " " + out[1:]
	}
	return out
}
